package usage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store handles generation_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Use atomically checks the monthly quota and deducts one generation.
// The counter resets to quota when last_reset_month is behind now's month.
// Returns ErrQuotaExceeded when 0 rows are updated (quota exhausted or caller absent).
func (s *Store) Use(ctx context.Context, caller string, quota int, now time.Time) error {
	month := now.Format(monthLayout)

	tag, err := s.db.Exec(ctx, `
		UPDATE generation_usage SET
			generations_left = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE generations_left - 1 END,
			last_reset_month = $1,
			updated_at = NOW()
		WHERE caller = $3 AND (last_reset_month < $1 OR generations_left > 0)
	`, month, quota, caller)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaExceeded
	}
	return nil
}

// Refund gives back one generation for the current month, never above quota.
func (s *Store) Refund(ctx context.Context, caller string, quota int, now time.Time) error {
	_, err := s.db.Exec(ctx, `
		UPDATE generation_usage SET
			generations_left = LEAST(generations_left + 1, $2),
			updated_at = NOW()
		WHERE caller = $3 AND last_reset_month = $1
	`, now.Format(monthLayout), quota, caller)
	return err
}

// EnsureCaller inserts a new row for caller with the full allowance.
// If the row already exists the insert is silently skipped (ON CONFLICT DO NOTHING).
func (s *Store) EnsureCaller(ctx context.Context, caller string, quota int, now time.Time) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO generation_usage (caller, generations_left, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (caller) DO NOTHING
	`, caller, quota, now.Format(monthLayout))
	return err
}

// Remaining returns how many generations caller has left this month.
// Unknown callers and callers from an earlier month have the full quota.
func (s *Store) Remaining(ctx context.Context, caller string, quota int, now time.Time) (int, error) {
	var left int
	var month string
	err := s.db.QueryRow(ctx,
		`SELECT generations_left, last_reset_month FROM generation_usage WHERE caller = $1`, caller,
	).Scan(&left, &month)
	if errors.Is(err, pgx.ErrNoRows) {
		return quota, nil
	}
	if err != nil {
		return 0, err
	}
	if month != now.Format(monthLayout) {
		return quota, nil
	}
	return left, nil
}
