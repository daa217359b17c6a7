package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gator-hub/gator-hub/config"
	"github.com/gator-hub/gator-hub/internal/application/query"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/student"
	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "Gator Hub API",
		"version": "v1",
		"endpoints": map[string]string{
			"health":        "/health",
			"ready":         "/ready",
			"home":          "/api/v1/home",
			"notifications": "/api/v1/notifications",
			"chat":          "/api/v1/chat/messages",
			"resources":     "/api/v1/resources",
			"calendar":      "/api/v1/calendar/events",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSONResponse(w, r, code, JSONResponse{Success: status.Healthy, Data: status})
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "healthy",
		"uptime": s.Uptime().String(),
	})
}

// handleReady reports the readiness gate state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Gate == nil {
		writeJSON(w, r, http.StatusOK, map[string]string{"state": "ready"})
		return
	}
	state := map[string]string{"state": string(s.deps.Gate.State())}
	if err := s.deps.Gate.Check(); err != nil {
		writeJSONResponse(w, r, http.StatusServiceUnavailable, JSONResponse{
			Data:  state,
			Error: &APIError{Code: "not_ready", Message: errorMessage(err)},
		})
		return
	}
	writeJSON(w, r, http.StatusOK, state)
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE & HOME HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetState handles GET /api/v1/state
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Store.Snapshot())
}

// handleGetHome handles GET /api/v1/home
func (s *Server) handleGetHome(w http.ResponseWriter, r *http.Request) {
	feed, err := s.deps.HomeFeed.Handle(r.Context(), query.GetHomeFeedQuery{
		Now:                 s.now(),
		RecentNotifications: getQueryParamInt(r, "recent", 0),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, feed)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT & PREFERENCE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type studentsResponse struct {
	Students []student.Student `json:"students"`
	Selected *student.Student  `json:"selected"`
	Current  *student.Student  `json:"current,omitempty"`
}

func (s *Server) studentsPayload() studentsResponse {
	snap := s.deps.Store.Snapshot()
	resp := studentsResponse{Students: snap.Students, Selected: snap.SelectedStudent}
	if current, ok := snap.CurrentStudent(); ok {
		resp.Current = &current
	}
	return resp
}

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.studentsPayload())
}

// handleAddStudent handles POST /api/v1/students (staff)
func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var req AddStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	_, err := s.deps.Store.AddStudent(r.Context(), student.Student{
		ID:     strings.TrimSpace(req.ID),
		Name:   strings.TrimSpace(req.Name),
		Grade:  strings.TrimSpace(req.Grade),
		Avatar: req.Avatar,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, s.studentsPayload())
}

// handleSelectStudent handles PUT /api/v1/students/selected
func (s *Server) handleSelectStudent(w http.ResponseWriter, r *http.Request) {
	var req SelectStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if _, err := s.deps.Store.SelectStudent(r.Context(), req.ID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.studentsPayload())
}

// handleToggleDarkMode handles POST /api/v1/preferences/dark-mode
func (s *Server) handleToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	next := s.deps.Store.ToggleDarkMode(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]bool{"isDarkMode": next.IsDarkMode})
}

// handleGetNotificationSettings handles GET /api/v1/settings/notifications
func (s *Server) handleGetNotificationSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Store.Snapshot().NotificationSettings)
}

// handleUpdateNotificationSettings handles PATCH /api/v1/settings/notifications
func (s *Server) handleUpdateNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var patch notification.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDomainError(w, r, err)
		return
	}
	next := s.deps.Store.UpdateNotificationSettings(r.Context(), patch)
	writeJSON(w, r, http.StatusOK, next.NotificationSettings)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListNotifications handles GET /api/v1/notifications?filter=all|unread
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Notifications.Handle(r.Context(), query.GetNotificationsQuery{
		Filter: r.URL.Query().Get("filter"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSONWithMeta(w, r, http.StatusOK, list, list.Total)
}

// handleGetNotification handles GET /api/v1/notifications/{id}
func (s *Server) handleGetNotification(w http.ResponseWriter, r *http.Request) {
	detail, err := s.deps.Notifications.Detail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

// handleCreateNotification handles POST /api/v1/notifications (staff)
func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	n, err := s.deps.Store.AddNotification(r.Context(), req.Draft())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, n)
}

// handleMarkNotificationRead handles POST /api/v1/notifications/{id}/read
func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	next, err := s.deps.Store.MarkNotificationRead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"unreadCount": next.UnreadCount})
}

// handleMarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	next := s.deps.Store.MarkAllNotificationsRead(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]int{"unreadCount": next.UnreadCount})
}

// ══════════════════════════════════════════════════════════════════════════════
// CHAT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListChatMessages handles GET /api/v1/chat/messages
func (s *Server) handleListChatMessages(w http.ResponseWriter, r *http.Request) {
	snap := s.deps.Store.Snapshot()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"messages": snap.ChatHistory,
		"typing":   s.deps.Chat.Busy(),
	})
}

// handleSendChatMessage handles POST /api/v1/chat/messages. The call blocks
// until the answer is recorded.
func (s *Server) handleSendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	exchange, err := s.deps.Chat.Send(r.Context(), req.Text)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, exchange)
}

// handleClearChat handles DELETE /api/v1/chat/messages
func (s *Server) handleClearChat(w http.ResponseWriter, r *http.Request) {
	next := s.deps.Store.ClearChatHistory(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{"messages": next.ChatHistory})
}

// handleOpenSuggestion handles POST /api/v1/chat/suggestions/open
func (s *Server) handleOpenSuggestion(w http.ResponseWriter, r *http.Request) {
	var req OpenSuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	opened, err := s.deps.Chat.OpenSuggestion(r.Context(), req.Label)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, opened)
}

// handleQuickSuggestions handles GET /api/v1/chat/quick-suggestions
func (s *Server) handleQuickSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions := []string{}
	if s.featureEnabled(config.FeatureQuickSuggestions) {
		suggestions = s.deps.Chat.QuickSuggestions()
	}
	writeJSON(w, r, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

// handleToggleChatPanel handles POST /api/v1/chat/panel/toggle
func (s *Server) handleToggleChatPanel(w http.ResponseWriter, r *http.Request) {
	next := s.deps.Store.ToggleGaitor(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]bool{"isGaitorVisible": next.IsGaitorVisible})
}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListResources handles GET /api/v1/resources?category=&q=
func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	resources := s.deps.Catalog.FilterResources(category, r.URL.Query().Get("q"))
	writeJSONWithMeta(w, r, http.StatusOK, resources, len(resources))
}

// handleListCategories handles GET /api/v1/resources/categories
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.Catalog.Categories())
}

// handleGetResource handles GET /api/v1/resources/{id}
func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	detail, err := s.deps.Catalog.ResourceDetail(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, detail)
}

// handleListEvents handles GET /api/v1/calendar/events?date= or ?from=&to=.
// Without parameters it returns today's events.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		fromDate, err := parseDateParam("from", from)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		toDate, err := parseDateParam("to", to)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		events, err := s.deps.Catalog.EventsBetween(fromDate, toDate)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSONWithMeta(w, r, http.StatusOK, events, len(events))
		return
	}

	day := timeutil.StartOfDay(s.now())
	if raw := q.Get("date"); raw != "" {
		d, err := parseDateParam("date", raw)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		day = d
	}
	events := s.deps.Catalog.EventsForDate(day)
	writeJSONWithMeta(w, r, http.StatusOK, events, len(events))
}

// handleUpcomingEvents handles GET /api/v1/calendar/upcoming?limit=
func (s *Server) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 5)
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	events := s.deps.Catalog.UpcomingEvents(s.now(), limit)
	writeJSONWithMeta(w, r, http.StatusOK, events, len(events))
}

// handleMonth handles GET /api/v1/calendar/month?month=YYYY-MM
func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	month := timeutil.StartOfMonth(now)
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := timeutil.ParseMonth(raw)
		if err != nil {
			writeDomainError(w, r, &validationError{
				message: "validation failed",
				fields:  map[string]string{"month": "must be formatted as YYYY-MM"},
			})
			return
		}
		month = m
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"month": month.Format(timeutil.FormatMonth),
		"days":  s.deps.Catalog.MonthDays(month, now),
	})
}

// handleListNews handles GET /api/v1/news
func (s *Server) handleListNews(w http.ResponseWriter, r *http.Request) {
	news := s.deps.Catalog.News()
	writeJSONWithMeta(w, r, http.StatusOK, news, len(news))
}

func parseDateParam(name, value string) (time.Time, error) {
	d, err := timeutil.ParseDate(value)
	if err != nil {
		return time.Time{}, &validationError{
			message: "validation failed",
			fields:  map[string]string{name: "must be formatted as YYYY-MM-DD"},
		}
	}
	return d, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STAFF ADMINISTRATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListJobs handles GET /api/v1/admin/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Background jobs are disabled")
		return
	}
	jobs := s.deps.Jobs.ListJobs()
	writeJSONWithMeta(w, r, http.StatusOK, jobs, len(jobs))
}

// handleRunJob handles POST /api/v1/admin/jobs/{name}/run
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, r, http.StatusNotImplemented, "not_implemented", "Background jobs are disabled")
		return
	}
	result, err := s.deps.Jobs.RunNow(r.Context(), r.PathValue("name"))
	if err != nil {
		if result.JobName == "" {
			writeDomainError(w, r, err)
			return
		}
		writeJSONResponse(w, r, http.StatusBadGateway, JSONResponse{
			Data:  result,
			Error: &APIError{Code: "job_failed", Message: result.Error},
		})
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// handleListFeatures handles GET /api/v1/admin/features
func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	if s.deps.Features == nil {
		writeJSON(w, r, http.StatusOK, []config.Feature{})
		return
	}
	writeJSON(w, r, http.StatusOK, s.deps.Features.All())
}
