package season

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates a season row does not exist.
	ErrNotFound = errors.New("season: not found")
	// ErrAlreadyExists indicates the unique name constraint fired.
	ErrAlreadyExists = errors.New("season: already exists")
)

// Repository defines data access for seasons.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Season, error)
	GetByName(ctx context.Context, name string) (*Season, error)
	Create(ctx context.Context, name string) (*Season, error)
	List(ctx context.Context) ([]Season, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Season, error) {
	var s Season
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM seasons WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("season: get by id: %w", err)
	}
	return &s, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*Season, error) {
	var s Season
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM seasons WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("season: get by name: %w", err)
	}
	return &s, nil
}

func (r *repository) Create(ctx context.Context, name string) (*Season, error) {
	var s Season
	err := r.pool.QueryRow(ctx,
		`INSERT INTO seasons (name, created_at) VALUES ($1, NOW()) RETURNING id, name, created_at`, name,
	).Scan(&s.ID, &s.Name, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("season: create: %w", err)
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]Season, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM seasons ORDER BY name DESC`)
	if err != nil {
		return nil, fmt.Errorf("season: list: %w", err)
	}
	defer rows.Close()

	var seasons []Season
	for rows.Next() {
		var s Season
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt); err != nil {
			return nil, err
		}
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seasons, nil
}
