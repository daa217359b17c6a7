package postgres

import (
	"context"
	"fmt"
)

// ReminderRepository records sent event reminders in reminder_ledger.
type ReminderRepository struct {
	db Querier
}

// NewReminderRepository creates a ReminderRepository.
func NewReminderRepository(db Querier) *ReminderRepository {
	return &ReminderRepository{db: db}
}

const queryMarkSent = `INSERT INTO reminder_ledger (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`

// MarkSent records key and reports true if it had not been recorded before.
func (r *ReminderRepository) MarkSent(ctx context.Context, key string) (bool, error) {
	tag, err := r.db.Exec(ctx, queryMarkSent, key)
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
