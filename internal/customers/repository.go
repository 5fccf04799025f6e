package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the customer does not exist.
var ErrNotFound = errors.New("customers: not found")

// Repository defines data access for customers.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Create(ctx context.Context, c Customer) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	var imageRef pgtype.Text
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, area, phone, image_ref, created_at, updated_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Area, &c.Phone, &imageRef, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("customers: get: %w", err)
	}
	if imageRef.Valid {
		c.ImageRef = &imageRef.String
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	query := `SELECT id, name, area, phone, image_ref, created_at, updated_at FROM customers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM customers WHERE 1=1`

	args := []any{}
	argNum := 1

	if req.Search != nil && *req.Search != "" {
		filter := fmt.Sprintf(" AND (name ILIKE $%d OR area ILIKE $%d OR phone ILIKE $%d)", argNum, argNum, argNum)
		query += filter
		countQuery += filter
		args = append(args, "%"+*req.Search+"%")
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	query += " ORDER BY name"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		var imageRef pgtype.Text
		if err := rows.Scan(&c.ID, &c.Name, &c.Area, &c.Phone, &imageRef, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if imageRef.Valid {
			c.ImageRef = &imageRef.String
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) Create(ctx context.Context, c Customer) (int64, error) {
	var id int64
	var imageRef pgtype.Text
	if c.ImageRef != nil {
		imageRef = pgtype.Text{String: *c.ImageRef, Valid: true}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (name, area, phone, image_ref, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW()) RETURNING id`,
		c.Name, c.Area, c.Phone, imageRef,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("customers: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	query := "UPDATE customers SET updated_at = NOW()"
	args := []any{}
	argNum := 1
	for _, col := range []string{"name", "area", "phone", "image_ref"} {
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
		return fmt.Errorf("customers: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("customers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
