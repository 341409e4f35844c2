package usage

import (
	"context"
	"errors"
	"time"
)

// Service orchestrates the monthly generation quota.
type Service struct {
	store *Store
	quota int
	now   func() time.Time
}

// NewService creates a Service backed by the given Store. A quota below 1
// falls back to DefaultQuota.
func NewService(store *Store, quota int) *Service {
	if quota < 1 {
		quota = DefaultQuota
	}
	return &Service{store: store, quota: quota, now: time.Now}
}

// Quota is the monthly allowance per caller.
func (s *Service) Quota() int { return s.quota }

// Consume deducts one generation from the caller's monthly allowance.
// If the caller row does not exist yet it is initialised and the generation is immediately consumed.
// Returns ErrQuotaExceeded when the quota for the current month is exhausted.
func (s *Service) Consume(ctx context.Context, caller string) error {
	now := s.now()
	err := s.store.Use(ctx, caller, s.quota, now)
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureCaller(ctx, caller, s.quota, now); initErr != nil {
		return initErr
	}
	return s.store.Use(ctx, caller, s.quota, now)
}

// Refund returns a generation consumed by a call that never reached the model.
func (s *Service) Refund(ctx context.Context, caller string) error {
	return s.store.Refund(ctx, caller, s.quota, s.now())
}

// Remaining reports the caller's generations left this month.
func (s *Service) Remaining(ctx context.Context, caller string) (int, error) {
	return s.store.Remaining(ctx, caller, s.quota, s.now())
}
