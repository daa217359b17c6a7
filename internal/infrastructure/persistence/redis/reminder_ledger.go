package redis

import (
	"context"
	"time"
)

// ReminderLedger records which event reminders were already sent, so
// several replicas of the scheduler do not notify twice.
type ReminderLedger struct {
	cache *Cache
	ttl   time.Duration
}

// NewReminderLedger creates a ReminderLedger with TTLReminderMarker.
func NewReminderLedger(cache *Cache) *ReminderLedger {
	return &ReminderLedger{cache: cache, ttl: TTLReminderMarker}
}

// MarkSent records key and reports true if it had not been recorded before.
func (l *ReminderLedger) MarkSent(ctx context.Context, key string) (bool, error) {
	return l.cache.SetNX(ctx, PrefixReminder+key, time.Now().UTC().Format(time.RFC3339), l.ttl)
}
