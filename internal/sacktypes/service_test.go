package sacktypes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memorySackTypeRepo struct {
	rows   map[int64]*SackType
	nextID int64
}

func newMemorySackTypeRepo() *memorySackTypeRepo {
	return &memorySackTypeRepo{rows: make(map[int64]*SackType)}
}

func (r *memorySackTypeRepo) Get(ctx context.Context, id int64) (*SackType, error) {
	st, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *memorySackTypeRepo) List(ctx context.Context, activeOnly bool) ([]SackType, error) {
	var out []SackType
	for _, st := range r.rows {
		if activeOnly && !st.IsActive {
			continue
		}
		out = append(out, *st)
	}
	return out, nil
}

func (r *memorySackTypeRepo) Create(ctx context.Context, st SackType) (int64, error) {
	r.nextID++
	st.ID = r.nextID
	st.CreatedAt = time.Now()
	st.UpdatedAt = st.CreatedAt
	r.rows[st.ID] = &st
	return st.ID, nil
}

func (r *memorySackTypeRepo) Update(ctx context.Context, id int64, updates map[string]any) error {
	st, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["name"]; ok {
		st.Name = v.(string)
	}
	if v, ok := updates["unit_price"]; ok {
		st.UnitPrice = v.(float64)
	}
	if v, ok := updates["is_active"]; ok {
		st.IsActive = v.(bool)
	}
	st.UpdatedAt = time.Now()
	return nil
}

func TestCreateRoundsPrice(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemorySackTypeRepo())

	st, err := svc.Create(ctx, CreateSackTypeRequest{Name: "Feed", UnitPrice: 50.005})
	require.NoError(t, err)
	require.Equal(t, 50.01, st.UnitPrice)
	require.True(t, st.IsActive)
}

func TestUpdatePartialFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemorySackTypeRepo())

	st, err := svc.Create(ctx, CreateSackTypeRequest{Name: "Gom", UnitPrice: 42})
	require.NoError(t, err)

	price := 45.5
	updated, err := svc.Update(ctx, st.ID, UpdateSackTypeRequest{UnitPrice: &price})
	require.NoError(t, err)
	require.Equal(t, 45.5, updated.UnitPrice)
	require.Equal(t, "Gom", updated.Name)

	inactive := false
	updated, err = svc.Update(ctx, st.ID, UpdateSackTypeRequest{IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, updated.IsActive)
}

func TestUpdateMissingSackType(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemorySackTypeRepo())

	name := "x"
	_, err := svc.Update(ctx, 99, UpdateSackTypeRequest{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveOnly(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemorySackTypeRepo())

	a, err := svc.Create(ctx, CreateSackTypeRequest{Name: "Feed", UnitPrice: 50})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateSackTypeRequest{Name: "Gom", UnitPrice: 40})
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(ctx, a.ID, UpdateSackTypeRequest{IsActive: &inactive})
	require.NoError(t, err)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "Gom", active[0].Name)
}
