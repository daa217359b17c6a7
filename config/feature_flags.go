package config

import (
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags holds on/off toggles for optional parts of the portal.
// Every flag can be overridden with FEATURE_<NAME>, dots becoming underscores.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
	now      func() time.Time
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
	EnabledFrom *time.Time `json:"enabled_from,omitempty"`
	EnabledTill *time.Time `json:"enabled_till,omitempty"`
}

// Predefined feature flag names.
const (
	FeatureEventReminders   = "notifications.event_reminders"
	FeatureQuickSuggestions = "chat.quick_suggestions"
	FeatureStaffWrites      = "staff.write_api"
	FeatureMetricsEndpoint  = "observability.metrics_endpoint"
)

// LoadFeatureFlags returns the defaults with environment overrides applied.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features: make(map[string]*Feature),
		now:      time.Now,
	}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	for _, f := range []Feature{
		{Name: FeatureEventReminders, Description: "Notify about tomorrow's calendar events", Enabled: true},
		{Name: FeatureQuickSuggestions, Description: "Offer canned starter questions in the chat panel", Enabled: true},
		{Name: FeatureStaffWrites, Description: "Allow staff to add students and broadcast notifications", Enabled: true},
		{Name: FeatureMetricsEndpoint, Description: "Serve Prometheus metrics on /metrics", Enabled: true},
	} {
		f := f
		ff.features[f.Name] = &f
	}
}

func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		if val := os.Getenv(featureNameToEnvKey(name)); val != "" {
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
			}
		}
	}
}

// featureNameToEnvKey converts a feature name to its environment key.
// "chat.quick_suggestions" -> "FEATURE_CHAT_QUICK_SUGGESTIONS"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled reports whether the feature is on right now. Unknown features
// are off.
func (ff *FeatureFlags) IsEnabled(name string) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	f, ok := ff.features[name]
	if !ok || !f.Enabled {
		return false
	}

	now := ff.now()
	if f.EnabledFrom != nil && now.Before(*f.EnabledFrom) {
		return false
	}
	if f.EnabledTill != nil && now.After(*f.EnabledTill) {
		return false
	}
	return true
}

// SetEnabled switches a feature on or off.
func (ff *FeatureFlags) SetEnabled(name string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	f, ok := ff.features[name]
	if !ok {
		return ErrFeatureNotFound
	}
	f.Enabled = enabled
	return nil
}

// SetWindow limits a feature to [from, till]. Nil bounds are open.
func (ff *FeatureFlags) SetWindow(name string, from, till *time.Time) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	f, ok := ff.features[name]
	if !ok {
		return ErrFeatureNotFound
	}
	f.EnabledFrom, f.EnabledTill = from, till
	return nil
}

// All returns copies of every feature, sorted by name.
func (ff *FeatureFlags) All() []Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make([]Feature, 0, len(ff.features))
	for _, f := range ff.features {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ErrFeatureNotFound is returned for unknown feature names.
var ErrFeatureNotFound = &FeatureFlagError{Message: "feature not found"}

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
