package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gator-hub/gator-hub/internal/domain/shared"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestStateRepository_GetItem(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    []byte
		errKind error
	}{
		{
			name: "found",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM app_storage`).
					WithArgs("gator-hub-storage").
					WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"isDarkMode":true}`)))
			},
			want: []byte(`{"isDarkMode":true}`),
		},
		{
			name: "missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM app_storage`).
					WithArgs("gator-hub-storage").
					WillReturnError(pgx.ErrNoRows)
			},
			errKind: shared.ErrNotFound,
		},
		{
			name: "backend down",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT value FROM app_storage`).
					WithArgs("gator-hub-storage").
					WillReturnError(errors.New("connection refused"))
			},
			errKind: shared.ErrServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			repo := NewStateRepository(NewConnectionFromPool(mock))
			got, err := repo.GetItem(context.Background(), "gator-hub-storage")

			if tt.errKind != nil {
				assert.ErrorIs(t, err, tt.errKind)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStateRepository_SetItem(t *testing.T) {
	mock := newMock(t)
	at := time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO app_storage`).
		WithArgs("gator-hub-storage", []byte(`{}`), at).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO app_storage`).
		WithArgs("gator-hub-storage", []byte(`{}`), at).
		WillReturnError(errors.New("disk full"))

	repo := NewStateRepository(NewConnectionFromPool(mock))
	repo.now = func() time.Time { return at }

	require.NoError(t, repo.SetItem(context.Background(), "gator-hub-storage", []byte(`{}`)))

	err := repo.SetItem(context.Background(), "gator-hub-storage", []byte(`{}`))
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_RemoveItem(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM app_storage`).
		WithArgs("gator-hub-storage").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewStateRepository(NewConnectionFromPool(mock))
	assert.NoError(t, repo.RemoveItem(context.Background(), "gator-hub-storage"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnection_Closed(t *testing.T) {
	mock := newMock(t)
	conn := NewConnectionFromPool(mock)
	conn.Close()
	conn.Close()
	assert.True(t, conn.IsClosed())

	assert.ErrorIs(t, conn.Ping(context.Background()), ErrConnectionClosed)

	_, err := NewStateRepository(conn).GetItem(context.Background(), "k")
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	assert.ErrorIs(t, err, ErrConnectionClosed)
}

func TestReminderRepository_MarkSent(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`INSERT INTO reminder_ledger`).
		WithArgs("event-3:2024-03-05").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO reminder_ledger`).
		WithArgs("event-3:2024-03-05").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewReminderRepository(NewConnectionFromPool(mock))

	first, err := repo.MarkSent(context.Background(), "event-3:2024-03-05")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := repo.MarkSent(context.Background(), "event-3:2024-03-05")
	require.NoError(t, err)
	assert.False(t, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_AppliesPending(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version, applied_at FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}).AddRow(1, time.Now()))
	mock.ExpectBeginTx(DefaultTxOptions())
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS reminder_ledger`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO schema_migrations`).
		WithArgs(2, "create_reminder_ledger").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	applied, err := NewMigrator(NewConnectionFromPool(mock)).Migrate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS schema_migrations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT version, applied_at FROM schema_migrations`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "applied_at"}))
	mock.ExpectBeginTx(DefaultTxOptions())
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS app_storage`).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	applied, err := NewMigrator(NewConnectionFromPool(mock)).Migrate(context.Background())
	assert.ErrorIs(t, err, ErrMigrationFailed)
	assert.Equal(t, 0, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
