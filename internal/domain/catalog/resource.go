package catalog

import (
	"strings"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCE CATEGORY
// ══════════════════════════════════════════════════════════════════════════════

// Category groups resources in the directory.
type Category string

const (
	CategoryAll           Category = "all"
	CategoryAcademic      Category = "academic"
	CategoryServices      Category = "services"
	CategoryCommunication Category = "communication"
	CategoryCommunity     Category = "community"
)

// IsValid reports whether c is a concrete category or "all".
func (c Category) IsValid() bool {
	switch c {
	case CategoryAll, CategoryAcademic, CategoryServices, CategoryCommunication, CategoryCommunity:
		return true
	}
	return false
}

// Color returns the accent color of the category.
func (c Category) Color() string {
	switch c {
	case CategoryAcademic:
		return "#10502f"
	case CategoryServices:
		return "#ee592b"
	case CategoryCommunication:
		return "#3b82f6"
	case CategoryCommunity:
		return "#8b5cf6"
	default:
		return "#6b7280"
	}
}

// ParseCategory parses a category filter. Empty input means CategoryAll.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryAll, nil
	}
	if !c.IsValid() {
		return "", shared.ErrInvalidCategory
	}
	return c, nil
}

// CategoryInfo is a selectable chip in the resource directory.
type CategoryInfo struct {
	ID    Category `json:"id"`
	Name  string   `json:"name"`
	Icon  string   `json:"icon"`
	Color string   `json:"color"`
}

// ══════════════════════════════════════════════════════════════════════════════
// RESOURCE
// ══════════════════════════════════════════════════════════════════════════════

// Resource is an immutable entry of the resource directory.
type Resource struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	IsExternal  bool     `json:"isExternal,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Matches reports whether the resource passes a category and search filter.
// Search is a case-insensitive substring match on title or description.
func (r Resource) Matches(category Category, search string) bool {
	if category != "" && category != CategoryAll && r.Category != category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.Description), q)
}

// FilterResources returns the resources matching category and search, in order.
func FilterResources(resources []Resource, category Category, search string) []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		if r.Matches(category, search) {
			out = append(out, r)
		}
	}
	return out
}

// QuickLink is a shortcut shown on a resource detail page.
type QuickLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResourceDetail is the long-form content of a resource page.
type ResourceDetail struct {
	Resource    Resource    `json:"resource"`
	Description string      `json:"description"`
	Features    []string    `json:"features"`
	QuickLinks  []QuickLink `json:"quickLinks"`
	HelpInfo    string      `json:"helpInfo"`
}
