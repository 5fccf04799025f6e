package sacktypes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the sack type does not exist.
var ErrNotFound = errors.New("sacktypes: not found")

// Repository defines data access for sack types.
type Repository interface {
	Get(ctx context.Context, id int64) (*SackType, error)
	List(ctx context.Context, activeOnly bool) ([]SackType, error)
	Create(ctx context.Context, st SackType) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*SackType, error) {
	var st SackType
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, unit_price, is_active, created_at, updated_at FROM sack_types WHERE id = $1`, id,
	).Scan(&st.ID, &st.Name, &st.UnitPrice, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sacktypes: get: %w", err)
	}
	return &st, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]SackType, error) {
	query := `SELECT id, name, unit_price, is_active, created_at, updated_at FROM sack_types`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sacktypes: list: %w", err)
	}
	defer rows.Close()

	var out []SackType
	for rows.Next() {
		var st SackType
		if err := rows.Scan(&st.ID, &st.Name, &st.UnitPrice, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Create(ctx context.Context, st SackType) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sack_types (name, unit_price, is_active, created_at, updated_at)
VALUES ($1, $2, TRUE, NOW(), NOW()) RETURNING id`,
		st.Name, st.UnitPrice,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sacktypes: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE sack_types SET updated_at = NOW()"
	args := []any{}
	argNum := 1
	for _, col := range []string{"name", "unit_price", "is_active"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argNum)
			args = append(args, v)
			argNum++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sacktypes: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
