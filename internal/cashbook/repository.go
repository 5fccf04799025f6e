package cashbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arotkhata/arotkhata/internal/platform/db"
)

// Repository encapsulates DB operations for the cash book. Inserts go through
// WithTx so the ledger row and the cash balance delta commit together.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetCashBalance(ctx context.Context, seasonID int64) (*CashBalance, error)
	ListFundInputs(ctx context.Context, seasonID int64) ([]FundInput, error)
	ListIncomes(ctx context.Context, seasonID int64) ([]AdditionalIncome, error)
	ListExpenses(ctx context.Context, seasonID int64) ([]Expense, error)
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	InsertFundInput(ctx context.Context, f FundInput) (int64, error)
	InsertIncome(ctx context.Context, in AdditionalIncome) (int64, error)
	InsertExpense(ctx context.Context, e Expense) (int64, error)
	AddToCashBalance(ctx context.Context, seasonID int64, delta float64, at time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *repository) GetCashBalance(ctx context.Context, seasonID int64) (*CashBalance, error) {
	var cb CashBalance
	err := r.pool.QueryRow(ctx,
		`SELECT season_id, amount, last_updated FROM cash_balances WHERE season_id = $1`, seasonID,
	).Scan(&cb.SeasonID, &cb.Amount, &cb.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBalanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cashbook: get balance: %w", err)
	}
	return &cb, nil
}

func (r *repository) ListFundInputs(ctx context.Context, seasonID int64) ([]FundInput, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, season_id, source, amount, input_date, notes, created_at
FROM fund_inputs WHERE season_id = $1 ORDER BY input_date DESC, id DESC`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("cashbook: list fund inputs: %w", err)
	}
	defer rows.Close()

	var out []FundInput
	for rows.Next() {
		var f FundInput
		if err := rows.Scan(&f.ID, &f.SeasonID, &f.Source, &f.Amount, &f.InputDate, &f.Notes, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) ListIncomes(ctx context.Context, seasonID int64) ([]AdditionalIncome, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, season_id, source, amount, income_date, notes, created_at
FROM additional_incomes WHERE season_id = $1 ORDER BY income_date DESC, id DESC`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("cashbook: list incomes: %w", err)
	}
	defer rows.Close()

	var out []AdditionalIncome
	for rows.Next() {
		var in AdditionalIncome
		if err := rows.Scan(&in.ID, &in.SeasonID, &in.Source, &in.Amount, &in.IncomeDate, &in.Notes, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *repository) ListExpenses(ctx context.Context, seasonID int64) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, season_id, category, amount, expense_date, description, created_at
FROM expenses WHERE season_id = $1 ORDER BY expense_date DESC, id DESC`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("cashbook: list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.SeasonID, &e.Category, &e.Amount, &e.ExpenseDate, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) InsertFundInput(ctx context.Context, f FundInput) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
INSERT INTO fund_inputs (season_id, source, amount, input_date, notes, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING id`,
		f.SeasonID, f.Source, f.Amount, f.InputDate, f.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cashbook: insert fund input: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertIncome(ctx context.Context, in AdditionalIncome) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
INSERT INTO additional_incomes (season_id, source, amount, income_date, notes, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING id`,
		in.SeasonID, in.Source, in.Amount, in.IncomeDate, in.Notes,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cashbook: insert income: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertExpense(ctx context.Context, e Expense) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
INSERT INTO expenses (season_id, category, amount, expense_date, description, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING id`,
		e.SeasonID, e.Category, e.Amount, e.ExpenseDate, e.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("cashbook: insert expense: %w", err)
	}
	return id, nil
}

func (t *txRepo) AddToCashBalance(ctx context.Context, seasonID int64, delta float64, at time.Time) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO cash_balances (season_id, amount, last_updated)
VALUES ($1, $2, $3)
ON CONFLICT (season_id) DO UPDATE SET
	amount = cash_balances.amount + EXCLUDED.amount,
	last_updated = GREATEST(cash_balances.last_updated, EXCLUDED.last_updated)`,
		seasonID, delta, at)
	if err != nil {
		return fmt.Errorf("cashbook: cash balance: %w", err)
	}
	return nil
}
