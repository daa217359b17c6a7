// Package http implements the REST API of Gator Hub. It exposes the store,
// the assistant and the catalogs to the mobile client, plus probes, metrics
// and a small staff API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gator-hub/gator-hub/config"
	appchat "github.com/gator-hub/gator-hub/internal/application/chat"
	"github.com/gator-hub/gator-hub/internal/application/query"
	"github.com/gator-hub/gator-hub/internal/application/readiness"
	"github.com/gator-hub/gator-hub/internal/domain/appstate"
	"github.com/gator-hub/gator-hub/internal/domain/catalog"
	"github.com/gator-hub/gator-hub/internal/domain/notification"
	"github.com/gator-hub/gator-hub/internal/domain/shared"
	"github.com/gator-hub/gator-hub/internal/domain/student"
	"github.com/gator-hub/gator-hub/internal/infrastructure/scheduler"
	"github.com/gator-hub/gator-hub/internal/interface/http/handlers"
	"github.com/gator-hub/gator-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SERVER CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// Config contains HTTP server configuration.
type Config struct {
	// Addr - address to listen on (default: ":8080").
	Addr string

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// MaxHeaderBytes - maximum size of request headers.
	MaxHeaderBytes int

	// MaxBodyBytes - maximum size of request bodies.
	MaxBodyBytes int64

	// AllowedOrigins - allowed origins for CORS. Empty allows any origin.
	AllowedOrigins []string

	// RateLimitPerMinute - requests per minute per IP (0 = disabled).
	RateLimitPerMinute int

	// APIKeyHeader - header carrying the staff API key.
	APIKeyHeader string

	// APIKeyHashes - bcrypt hashes of accepted staff keys.
	APIKeyHashes []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		ReadTimeout:        15 * time.Second,
		ReadHeaderTimeout:  5 * time.Second,
		WriteTimeout:       60 * time.Second,
		IdleTimeout:        60 * time.Second,
		MaxHeaderBytes:     1 << 20, // 1 MB
		MaxBodyBytes:       64 << 10,
		RateLimitPerMinute: 120,
		APIKeyHeader:       "X-API-Key",
	}
}

// ConfigFrom maps application configuration onto server configuration.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Addr = cfg.HTTP.Addr
	c.ReadTimeout = cfg.HTTP.ReadTimeout
	c.ReadHeaderTimeout = cfg.HTTP.ReadHeaderTimeout
	c.WriteTimeout = cfg.HTTP.WriteTimeout
	c.IdleTimeout = cfg.HTTP.IdleTimeout
	c.AllowedOrigins = cfg.HTTP.AllowedOrigins
	c.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	c.APIKeyHeader = cfg.Auth.Header
	c.APIKeyHashes = cfg.Auth.APIKeyHashes
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES
// ══════════════════════════════════════════════════════════════════════════════

// StateStore is the store surface the API reads and mutates.
type StateStore interface {
	Snapshot() appstate.State
	SelectStudent(ctx context.Context, id *string) (appstate.State, error)
	AddStudent(ctx context.Context, st student.Student) (appstate.State, error)
	ToggleDarkMode(ctx context.Context) appstate.State
	UpdateNotificationSettings(ctx context.Context, patch notification.SettingsPatch) appstate.State
	AddNotification(ctx context.Context, draft notification.Draft) (notification.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (appstate.State, error)
	MarkAllNotificationsRead(ctx context.Context) appstate.State
	ClearChatHistory(ctx context.Context) appstate.State
	ToggleGaitor(ctx context.Context) appstate.State
}

// ChatService answers assistant queries.
type ChatService interface {
	Send(ctx context.Context, text string) (appchat.Exchange, error)
	OpenSuggestion(ctx context.Context, label string) (appchat.OpenedSuggestion, error)
	QuickSuggestions() []string
	Busy() bool
}

// Gate reports startup readiness.
type Gate interface {
	State() readiness.State
	Check() error
}

// JobRunner lists and triggers background jobs.
type JobRunner interface {
	ListJobs() []scheduler.JobInfo
	RunNow(ctx context.Context, name string) (scheduler.JobResult, error)
}

// FeatureSet answers feature flag lookups.
type FeatureSet interface {
	IsEnabled(name string) bool
	All() []config.Feature
}

// Dependencies contains all dependencies required by HTTP handlers.
type Dependencies struct {
	Store   StateStore
	Chat    ChatService
	Catalog *catalog.Catalog
	Gate    Gate

	// Query Handlers (CQRS Read Side)
	HomeFeed      *query.GetHomeFeedHandler
	Notifications *query.GetNotificationsHandler

	// Optional
	Jobs          JobRunner
	Features      FeatureSet
	Gatherer      prometheus.Gatherer
	HealthChecker handlers.HealthChecker

	// Clock overrides time.Now; the calendar endpoints use it for "today".
	Clock func() time.Time

	Logger *logger.Logger
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER
// ══════════════════════════════════════════════════════════════════════════════

// Server represents the HTTP server.
type Server struct {
	config     Config
	deps       Dependencies
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *logger.Logger
	auth       *handlers.APIKeyAuth
	now        func() time.Time

	// Middleware state
	rateLimiter *rateLimiter

	// Server state
	mu        sync.RWMutex
	running   bool
	startedAt time.Time
}

// NewServer creates a new HTTP server with the given configuration and
// dependencies. It fails when a staff key hash is malformed.
func NewServer(config Config, deps Dependencies) (*Server, error) {
	auth, err := handlers.NewAPIKeyAuth(config.APIKeyHeader, config.APIKeyHashes)
	if err != nil {
		return nil, fmt.Errorf("staff auth: %w", err)
	}

	s := &Server{
		config: config,
		deps:   deps,
		router: http.NewServeMux(),
		logger: deps.Logger,
		auth:   auth,
		now:    deps.Clock,
	}

	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.logger = s.logger.With(logger.Component("http"))
	if s.now == nil {
		s.now = time.Now
	}
	if config.MaxBodyBytes <= 0 {
		s.config.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	if config.RateLimitPerMinute > 0 {
		s.rateLimiter = newRateLimiter(config.RateLimitPerMinute, time.Minute)
	}

	s.setupRoutes()
	s.handler = s.buildMiddlewareChain(s.router)

	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
	}

	return s, nil
}

// Handler returns the fully wrapped handler. Tests serve it directly.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ══════════════════════════════════════════════════════════════════════════════
// ROUTING
// ══════════════════════════════════════════════════════════════════════════════

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Health & Status Endpoints
	// ─────────────────────────────────────────────────────────────────────────
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /live", s.handleLive)
	s.router.HandleFunc("GET /{$}", s.handleRoot)

	// ─────────────────────────────────────────────────────────────────────────
	// State & Home
	// ─────────────────────────────────────────────────────────────────────────
	s.api("GET /api/v1/state", s.handleGetState)
	s.api("GET /api/v1/home", s.handleGetHome)

	// ─────────────────────────────────────────────────────────────────────────
	// Students & Preferences
	// ─────────────────────────────────────────────────────────────────────────
	s.api("GET /api/v1/students", s.handleListStudents)
	s.staff("POST /api/v1/students", s.handleAddStudent)
	s.api("PUT /api/v1/students/selected", s.handleSelectStudent)
	s.api("POST /api/v1/preferences/dark-mode", s.handleToggleDarkMode)
	s.api("GET /api/v1/settings/notifications", s.handleGetNotificationSettings)
	s.api("PATCH /api/v1/settings/notifications", s.handleUpdateNotificationSettings)

	// ─────────────────────────────────────────────────────────────────────────
	// Notifications
	// ─────────────────────────────────────────────────────────────────────────
	s.api("GET /api/v1/notifications", s.handleListNotifications)
	s.api("GET /api/v1/notifications/{id}", s.handleGetNotification)
	s.staff("POST /api/v1/notifications", s.handleCreateNotification)
	s.api("POST /api/v1/notifications/{id}/read", s.handleMarkNotificationRead)
	s.api("POST /api/v1/notifications/read-all", s.handleMarkAllNotificationsRead)

	// ─────────────────────────────────────────────────────────────────────────
	// Chat
	// ─────────────────────────────────────────────────────────────────────────
	s.api("GET /api/v1/chat/messages", s.handleListChatMessages)
	s.api("POST /api/v1/chat/messages", s.handleSendChatMessage)
	s.api("DELETE /api/v1/chat/messages", s.handleClearChat)
	s.api("POST /api/v1/chat/suggestions/open", s.handleOpenSuggestion)
	s.api("GET /api/v1/chat/quick-suggestions", s.handleQuickSuggestions)
	s.api("POST /api/v1/chat/panel/toggle", s.handleToggleChatPanel)

	// ─────────────────────────────────────────────────────────────────────────
	// Catalogs
	// ─────────────────────────────────────────────────────────────────────────
	s.api("GET /api/v1/resources", s.handleListResources)
	s.api("GET /api/v1/resources/categories", s.handleListCategories)
	s.api("GET /api/v1/resources/{id}", s.handleGetResource)
	s.api("GET /api/v1/calendar/events", s.handleListEvents)
	s.api("GET /api/v1/calendar/upcoming", s.handleUpcomingEvents)
	s.api("GET /api/v1/calendar/month", s.handleMonth)
	s.api("GET /api/v1/news", s.handleListNews)

	// ─────────────────────────────────────────────────────────────────────────
	// Staff Administration
	// ─────────────────────────────────────────────────────────────────────────
	s.router.Handle("GET /api/v1/admin/jobs", s.auth.Middleware(http.HandlerFunc(s.handleListJobs)))
	s.router.Handle("POST /api/v1/admin/jobs/{name}/run", s.auth.Middleware(s.gated(s.handleRunJob)))
	s.router.Handle("GET /api/v1/admin/features", s.auth.Middleware(http.HandlerFunc(s.handleListFeatures)))

	// ─────────────────────────────────────────────────────────────────────────
	// Metrics (if enabled)
	// ─────────────────────────────────────────────────────────────────────────
	if s.deps.Gatherer != nil && s.featureEnabled(config.FeatureMetricsEndpoint) {
		s.router.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
}

// api registers a route that is served only once the readiness gate is open.
func (s *Server) api(pattern string, h http.HandlerFunc) {
	s.router.Handle(pattern, s.gated(h))
}

// staff registers a gated route that also requires a staff key and the
// staff write feature.
func (s *Server) staff(pattern string, h http.HandlerFunc) {
	s.router.Handle(pattern, s.auth.Middleware(s.gated(func(w http.ResponseWriter, r *http.Request) {
		if !s.featureEnabled(config.FeatureStaffWrites) {
			writeJSONError(w, r, http.StatusForbidden, "feature_disabled", "Staff writes are disabled")
			return
		}
		h(w, r)
	})))
}

// gated rejects requests with 503 until the readiness gate has opened.
func (s *Server) gated(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Gate != nil {
			if err := s.deps.Gate.Check(); err != nil {
				state := s.deps.Gate.State()
				w.Header().Set("Retry-After", "1")
				writeJSONResponse(w, r, http.StatusServiceUnavailable, JSONResponse{
					Success: false,
					Data:    map[string]string{"state": string(state)},
					Error:   &APIError{Code: "not_ready", Message: "The application is still starting"},
				})
				return
			}
		}
		h(w, r)
	})
}

func (s *Server) featureEnabled(name string) bool {
	if s.deps.Features == nil {
		return true
	}
	return s.deps.Features.IsEnabled(name)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE CHAIN
// ══════════════════════════════════════════════════════════════════════════════

// buildMiddlewareChain wraps the router with all middleware. The last
// wrapper applied runs first.
func (s *Server) buildMiddlewareChain(handler http.Handler) http.Handler {
	h := handlers.ChainHandler(handler,
		handlers.SecurityHeadersMiddleware,
		handlers.NoCacheMiddleware,
		handlers.RequestSizeLimitMiddleware(s.config.MaxBodyBytes),
	)

	if s.rateLimiter != nil {
		h = s.rateLimitMiddleware(h)
	}

	h = s.corsMiddleware(h)

	// Recovery and logging sit outside the handlers they observe.
	h = s.recoveryMiddleware(h)
	h = s.loggingMiddleware(h)

	// Request ID middleware runs first so every later layer sees the id.
	h = s.requestIDMiddleware(h)

	return h
}

// requestIDMiddleware adds a unique request ID to each request.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		ctx = logger.WithContext(ctx, s.logger.WithRequestID(requestID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs all HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rw.statusCode),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()),
			logger.String("ip", getClientIP(r)),
			logger.String("user_agent", r.UserAgent()),
			logger.String(logger.RequestIDKey, getRequestID(r.Context())),
		)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered",
					logger.Any("error", err),
					logger.String("stack", string(debug.Stack())),
					logger.String("path", r.URL.Path),
					logger.String(logger.RequestIDKey, getRequestID(r.Context())),
				)
				writeJSONError(w, r, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds CORS headers.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := len(s.config.AllowedOrigins) == 0
		for _, o := range s.config.AllowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware implements per-IP rate limiting.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.rateLimiter.Allow(getClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SERVER LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("starting HTTP server", logger.String("address", s.config.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Run starts the server and shuts it down gracefully when ctx is done.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.logger.Info("shutting down HTTP server")
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns the server uptime.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// JSONResponse represents a standard JSON response.
type JSONResponse struct {
	Success   bool          `json:"success"`
	Data      any           `json:"data,omitempty"`
	Error     *APIError     `json:"error,omitempty"`
	Meta      *ResponseMeta `json:"meta,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ResponseMeta contains response metadata.
type ResponseMeta struct {
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
}

// writeJSONResponse fills in metadata and writes the envelope.
func writeJSONResponse(w http.ResponseWriter, r *http.Request, status int, resp JSONResponse) {
	if resp.Meta == nil {
		resp.Meta = &ResponseMeta{}
	}
	resp.Meta.Timestamp = time.Now().UTC()
	resp.Meta.Version = "v1"
	if r != nil {
		resp.RequestID = getRequestID(r.Context())
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a successful JSON response.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSONResponse(w, r, status, JSONResponse{Success: true, Data: data})
}

// writeJSONWithMeta writes a successful JSON response with a total count.
func writeJSONWithMeta(w http.ResponseWriter, r *http.Request, status int, data any, total int) {
	writeJSONResponse(w, r, status, JSONResponse{
		Success: true,
		Data:    data,
		Meta:    &ResponseMeta{TotalCount: total},
	})
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSONResponse(w, r, status, JSONResponse{
		Error: &APIError{Code: code, Message: message},
	})
}

// writeDomainError maps a domain error onto a status code and error code.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		writeJSONResponse(w, r, http.StatusBadRequest, JSONResponse{
			Error: &APIError{Code: "validation_error", Message: verr.message, Details: verr.fields},
		})
	case shared.IsNotFound(err), errors.Is(err, scheduler.ErrJobNotFound):
		writeJSONError(w, r, http.StatusNotFound, "not_found", errorMessage(err))
	case shared.IsValidation(err):
		writeJSONError(w, r, http.StatusBadRequest, "validation_error", errorMessage(err))
	case shared.IsBusy(err):
		w.Header().Set("Retry-After", "1")
		writeJSONError(w, r, http.StatusConflict, "busy", errorMessage(err))
	case shared.IsNotReady(err), errors.Is(err, scheduler.ErrNotReady):
		writeJSONError(w, r, http.StatusServiceUnavailable, "not_ready", errorMessage(err))
	case errors.Is(err, shared.ErrUnauthorized):
		writeJSONError(w, r, http.StatusUnauthorized, "unauthorized", errorMessage(err))
	case shared.IsExternalService(err):
		writeJSONError(w, r, http.StatusServiceUnavailable, "service_unavailable", "A backing service is unavailable")
	default:
		logger.FromContext(r.Context()).Error("request failed", logger.Err(err), logger.String("path", r.URL.Path))
		writeJSONError(w, r, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}

// errorMessage returns the human-readable part of a domain error.
func errorMessage(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPER TYPES AND FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getRequestID extracts the request ID from context.
func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return id
	}
	return ""
}

// getQueryParamInt extracts an integer query parameter with a default value.
func getQueryParamInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITER
// ══════════════════════════════════════════════════════════════════════════════

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	stop     chan struct{}
	once     sync.Once
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		stop:     make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *rateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	valid := pruneBefore(rl.requests[key], now.Add(-rl.window))

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func (rl *rateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
		}

		rl.mu.Lock()
		windowStart := time.Now().Add(-rl.window)
		for key, requests := range rl.requests {
			if valid := pruneBefore(requests, windowStart); len(valid) == 0 {
				delete(rl.requests, key)
			} else {
				rl.requests[key] = valid
			}
		}
		rl.mu.Unlock()
	}
}

// pruneBefore drops timestamps at or before start. Timestamps are appended
// in order, so the slice is sorted.
func pruneBefore(times []time.Time, start time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(start) {
		i++
	}
	return times[i:]
}
