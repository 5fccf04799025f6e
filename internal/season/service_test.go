package season

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memorySeasonRepo struct {
	byName map[string]*Season
	nextID int64

	// when set, the next Create fails as if another writer won the race
	raceOnce bool
}

func newMemorySeasonRepo() *memorySeasonRepo {
	return &memorySeasonRepo{byName: make(map[string]*Season)}
}

func (r *memorySeasonRepo) GetByID(ctx context.Context, id int64) (*Season, error) {
	for _, s := range r.byName {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memorySeasonRepo) GetByName(ctx context.Context, name string) (*Season, error) {
	if s, ok := r.byName[name]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (r *memorySeasonRepo) Create(ctx context.Context, name string) (*Season, error) {
	if r.raceOnce {
		r.raceOnce = false
		r.insert(name)
		return nil, ErrAlreadyExists
	}
	if _, ok := r.byName[name]; ok {
		return nil, ErrAlreadyExists
	}
	return r.insert(name), nil
}

func (r *memorySeasonRepo) insert(name string) *Season {
	r.nextID++
	s := &Season{ID: r.nextID, Name: name, CreatedAt: time.Now()}
	r.byName[name] = s
	return s
}

func (r *memorySeasonRepo) List(ctx context.Context) ([]Season, error) {
	var out []Season
	for _, s := range r.byName {
		out = append(out, *s)
	}
	return out, nil
}

func TestNameAt(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "Eiri2025"},
		{time.Date(2025, 7, 31, 23, 59, 0, 0, time.UTC), "Eiri2025"},
		{time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), "Eiri2026"},
		{time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), "Eiri2026"},
		{time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), "Eiri2026"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "Eiri2026"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NameAt(tc.at), "at %s", tc.at)
	}
}

func TestResolveCreatesOnFirstUse(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySeasonRepo()
	svc := NewService(repo)

	s, err := svc.Resolve(ctx, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "Eiri2025", s.Name)
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySeasonRepo()
	svc := NewService(repo)

	at := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	first, err := svc.Resolve(ctx, at)
	require.NoError(t, err)

	second, err := svc.Resolve(ctx, at.AddDate(0, 2, 0))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	all, _ := repo.List(ctx)
	require.Len(t, all, 1)
}

func TestResolveSurvivesCreateRace(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySeasonRepo()
	repo.raceOnce = true
	svc := NewService(repo)

	s, err := svc.Resolve(ctx, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "Eiri2026", s.Name)

	all, _ := repo.List(ctx)
	require.Len(t, all, 1)
}

func TestCurrentUsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	repo := newMemorySeasonRepo()
	svc := NewService(repo)
	svc.WithNow(func() time.Time {
		return time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	})

	s, err := svc.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "Eiri2026", s.Name)
}
