package season

import (
	"context"
	"errors"
	"time"
)

// Service resolves the active season for a point in time.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithNow overrides the clock. Used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Resolve returns the season for the given time, creating it on first use.
// The name carries a unique constraint; a concurrent creator losing the race
// falls back to the lookup, so callers never see a duplicate.
func (s *Service) Resolve(ctx context.Context, at time.Time) (*Season, error) {
	if at.IsZero() {
		at = s.now()
	}
	name := NameAt(at)

	existing, err := s.repo.GetByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created, err := s.repo.Create(ctx, name)
	if errors.Is(err, ErrAlreadyExists) {
		return s.repo.GetByName(ctx, name)
	}
	return created, err
}

// Current resolves the season for the injected clock's current time.
func (s *Service) Current(ctx context.Context) (*Season, error) {
	return s.Resolve(ctx, s.now())
}

// Get returns a season by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Season, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all seasons, newest first.
func (s *Service) List(ctx context.Context) ([]Season, error) {
	return s.repo.List(ctx)
}
