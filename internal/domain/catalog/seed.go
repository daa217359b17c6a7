package catalog

import (
	"time"

	"github.com/gator-hub/gator-hub/pkg/timeutil"
)

func seedCategories() []CategoryInfo {
	return []CategoryInfo{
		{ID: CategoryAll, Name: "All", Icon: "grid-outline", Color: CategoryAll.Color()},
		{ID: CategoryAcademic, Name: "Academic", Icon: "school-outline", Color: CategoryAcademic.Color()},
		{ID: CategoryServices, Name: "Services", Icon: "business-outline", Color: CategoryServices.Color()},
		{ID: CategoryCommunication, Name: "Communication", Icon: "chatbubbles-outline", Color: CategoryCommunication.Color()},
		{ID: CategoryCommunity, Name: "Community", Icon: "people-outline", Color: CategoryCommunity.Color()},
	}
}

func resource(id, title, description string, category Category, icon string, external bool) Resource {
	return Resource{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category,
		Icon:        icon,
		Color:       category.Color(),
		IsExternal:  external,
	}
}

func seedResources() []Resource {
	canvas := resource("1", "Canvas LMS", "Access assignments, grades, and course materials", CategoryAcademic, "school-outline", true)
	canvas.URL = "https://canvas.gatewayprep.edu"

	return []Resource{
		// Academic
		canvas,
		resource("2", "Student Handbook", "School policies, procedures, and important information", CategoryAcademic, "book-outline", false),
		resource("3", "Library Resources", "Online catalog, digital resources, and research tools", CategoryAcademic, "library-outline", true),

		// Services
		resource("4", "Food Services", "Weekly lunch menus, nutrition info, and meal accounts", CategoryServices, "restaurant-outline", false),
		resource("5", "Absence Reporting", "Report student absences and tardies online", CategoryServices, "calendar-clear-outline", false),
		resource("6", "Nurse Office", "Health forms, medication info, and wellness resources", CategoryServices, "medical-outline", false),
		resource("7", "Transportation", "Bus routes, schedules, and transportation updates", CategoryServices, "bus-outline", false),
		resource("8", "School Store", "Gator gear, supplies, and merchandise", CategoryServices, "storefront-outline", true),

		// Communication
		resource("9", "SchoolMessenger", "Receive important school communications and alerts", CategoryCommunication, "mail-outline", true),
		resource("10", "Teacher Directory", "Contact information for all faculty and staff", CategoryCommunication, "people-circle-outline", false),

		// Community
		resource("11", "PTO Portal", "Parent-Teacher Organization events and volunteer opportunities", CategoryCommunity, "people-outline", false),
		resource("12", "Volunteer Hub", "Sign up for volunteer opportunities and track hours", CategoryCommunity, "heart-outline", false),
		resource("13", "Gator Giving", "Support school programs through donations and fundraising", CategoryCommunity, "gift-outline", true),
		resource("14", "Athletics", "Sports schedules, team rosters, and athletic information", CategoryCommunity, "trophy-outline", false),
	}
}

func seedQuickAccess() []Resource {
	return []Resource{
		resource("qa-1", "Canvas", "Access your assignments and grades", CategoryAcademic, "school-outline", true),
		resource("qa-2", "Lunch Menu", "See this week's lunch options", CategoryServices, "restaurant-outline", false),
		resource("qa-3", "Nurse Office", "Health services and forms", CategoryServices, "medical-outline", false),
		resource("qa-4", "Absence Form", "Report student absence", CategoryServices, "calendar-clear-outline", false),
	}
}

func seedDetails(resources []Resource) map[string]ResourceDetail {
	byTitle := make(map[string]Resource, len(resources))
	for _, r := range resources {
		byTitle[r.Title] = r
	}

	return map[string]ResourceDetail{
		"Canvas LMS": {
			Resource:    byTitle["Canvas LMS"],
			Description: "Canvas is our Learning Management System where you can access all your academic materials, submit assignments, view grades, and communicate with teachers.",
			Features: []string{
				"View assignment due dates and requirements",
				"Submit homework and projects online",
				"Check grades and feedback from teachers",
				"Access course materials and resources",
				"Participate in class discussions",
				"Message teachers and classmates",
			},
			QuickLinks: []QuickLink{
				{Title: "Student Login", URL: "https://canvas.gatewayprep.edu"},
				{Title: "Parent Access", URL: "https://canvas.gatewayprep.edu/parent"},
				{Title: "Mobile App Guide", URL: "#"},
			},
			HelpInfo: "Need help with Canvas? Contact the IT Help Desk at helpdesk@gatewayprep.edu or call (555) 123-4570.",
		},
		"Food Services": {
			Resource:    byTitle["Food Services"],
			Description: "Stay informed about our weekly lunch menus, nutrition information, and meal account management.",
			Features: []string{
				"View daily and weekly lunch menus",
				"Check nutritional information and allergen alerts",
				"Manage student meal accounts and payments",
				"Sign up for free/reduced lunch programs",
				"Special dietary accommodation requests",
				"Breakfast program information",
			},
			QuickLinks: []QuickLink{
				{Title: "This Week's Menu", URL: "#"},
				{Title: "Account Balance", URL: "#"},
				{Title: "Nutrition Info", URL: "#"},
			},
			HelpInfo: "Questions about food services? Contact our cafeteria manager at food@gatewayprep.edu or call (555) 123-4571.",
		},
		"Absence Reporting": {
			Resource:    byTitle["Absence Reporting"],
			Description: "Quickly and easily report student absences, tardies, and early dismissals through our online system.",
			Features: []string{
				"Report full-day and partial absences",
				"Submit absence documentation",
				"View attendance history and records",
				"Set up recurring absence notifications",
				"Request homework for extended absences",
				"Early dismissal requests",
			},
			QuickLinks: []QuickLink{
				{Title: "Report Absence", URL: "#"},
				{Title: "View Attendance", URL: "#"},
				{Title: "Upload Documents", URL: "#"},
			},
			HelpInfo: "For attendance questions, contact the main office at (555) 123-4567 or attendance@gatewayprep.edu.",
		},
	}
}

// seedEvents generates the sample calendar relative to now. Offsets past the
// end of the month roll into the next month.
func seedEvents(now time.Time) []CalendarEvent {
	local := timeutil.ToSchool(now)
	year, month, day := local.Year(), local.Month(), local.Day()
	at := func(d int) time.Time { return timeutil.Date(year, month, d) }

	return []CalendarEvent{
		{ID: "1", Title: "Morning Assembly", Date: at(day), StartTime: "8:00 AM", EndTime: "8:30 AM", Type: EventTypeEvent, Location: "Main Auditorium", Description: "Weekly student assembly with announcements"},
		{ID: "2", Title: "Math Quiz - Grade 10", Date: at(day), StartTime: "10:00 AM", EndTime: "11:00 AM", Type: EventTypeAcademic, Location: "Room 204", Description: "Chapter 5 quiz on algebraic equations"},
		{ID: "3", Title: "Parent-Teacher Conferences", Date: at(day + 2), StartTime: "3:00 PM", EndTime: "8:00 PM", Type: EventTypeMeeting, Location: "All Classrooms", Description: "Spring parent-teacher conferences. Sign up online."},
		{ID: "4", Title: "Basketball Game vs Eagles", Date: at(day + 3), StartTime: "6:00 PM", EndTime: "8:00 PM", Type: EventTypeEvent, Location: "Gymnasium", Description: "Home basketball game against Central Eagles"},
		{ID: "5", Title: "Science Fair Setup", Date: at(day + 5), StartTime: "2:00 PM", EndTime: "4:00 PM", Type: EventTypeEvent, Location: "Cafeteria", Description: "Students set up their science fair projects"},
		{ID: "6", Title: "Science Fair Project Due", Date: at(day + 7), StartTime: "11:59 PM", Type: EventTypeDeadline, Description: "All science fair projects must be submitted"},
		{ID: "7", Title: "School Picture Day", Date: at(day + 9), StartTime: "9:00 AM", EndTime: "3:00 PM", Type: EventTypeEvent, Location: "Library", Description: "Individual and class photos"},
		{ID: "8", Title: "PTO Meeting", Date: at(day + 10), StartTime: "7:00 PM", EndTime: "8:30 PM", Type: EventTypeMeeting, Location: "Conference Room", Description: "Monthly Parent-Teacher Organization meeting"},
		{ID: "9", Title: "Field Trip - Science Museum", Date: at(day + 12), StartTime: "9:00 AM", EndTime: "3:00 PM", Type: EventTypeEvent, Location: "Science Museum Downtown", Description: "Grade 8 field trip to explore interactive exhibits"},
		{ID: "10", Title: "Spring Break Begins", Date: at(day + 15), Type: EventTypeEvent, Description: "No school - Spring Break begins"},
		{ID: "11", Title: "Book Fair", Date: at(day + 20), StartTime: "8:00 AM", EndTime: "4:00 PM", Type: EventTypeEvent, Location: "Library", Description: "Annual book fair with special author visit"},
		{ID: "12", Title: "Drama Club Performance", Date: at(day + 22), StartTime: "7:00 PM", EndTime: "9:00 PM", Type: EventTypeEvent, Location: "Main Auditorium", Description: "Spring musical performance by Drama Club"},
		{ID: "13", Title: "Early Dismissal", Date: at(8), StartTime: "1:00 PM", Type: EventTypeEvent, Description: "Early dismissal for staff development"},
		{ID: "14", Title: "Spelling Bee Finals", Date: at(14), StartTime: "2:00 PM", EndTime: "3:30 PM", Type: EventTypeEvent, Location: "Main Auditorium", Description: "School-wide spelling bee competition"},
		{ID: "15", Title: "Report Cards Available", Date: at(25), Type: EventTypeAcademic, Description: "Quarterly report cards available in parent portal"},
	}
}

func seedNews(now time.Time) []NewsItem {
	return []NewsItem{
		{
			ID:          "1",
			Title:       "Spring Sports Registration Now Open",
			Summary:     "Sign up for baseball, softball, tennis, and track & field by March 15th.",
			PublishedAt: now,
			Category:    "Athletics",
			Priority:    PriorityHigh,
		},
		{
			ID:          "2",
			Title:       "Parent-Teacher Conferences",
			Summary:     "Schedule your spring conferences online starting next week.",
			PublishedAt: now.Add(-2 * time.Hour),
			Category:    "Events",
			Priority:    PriorityMedium,
		},
	}
}
