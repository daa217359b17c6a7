package memory

import (
	"context"
	"sync"
)

// ReminderLedger remembers sent reminder keys for the life of the process.
type ReminderLedger struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

// NewReminderLedger creates an empty ledger.
func NewReminderLedger() *ReminderLedger {
	return &ReminderLedger{sent: make(map[string]struct{})}
}

// MarkSent records key and reports true if it had not been recorded before.
func (l *ReminderLedger) MarkSent(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sent[key]; ok {
		return false, nil
	}
	l.sent[key] = struct{}{}
	return true, nil
}
