package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrBalanceNotFound indicates the customer has no activity in the season.
var ErrBalanceNotFound = errors.New("reports: no balance for customer and season")

// Repository runs the aggregate queries behind reports. Queries are read-only
// and independent, so the service fans them out concurrently.
type Repository interface {
	SalesForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error)
	PaymentsForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error)
	ExpensesForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error)
	FundsForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error)
	IncomesForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error)

	SumTransactions(ctx context.Context, seasonID int64) (float64, error)
	SumPayments(ctx context.Context, seasonID int64) (float64, error)
	SumFundInputs(ctx context.Context, seasonID int64) (float64, error)
	SumIncomes(ctx context.Context, seasonID int64) (float64, error)
	SumExpenses(ctx context.Context, seasonID int64) (float64, error)
	BalanceTotals(ctx context.Context, seasonID int64) (due, advance float64, customers int64, err error)
	CashAmount(ctx context.Context, seasonID int64) (float64, error)

	CustomerBalance(ctx context.Context, customerID, seasonID int64) (BalanceSnapshot, error)
	StatementLines(ctx context.Context, customerID, seasonID int64) ([]StatementLine, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) totalCount(ctx context.Context, query string, args ...any) (TotalCount, error) {
	var tc TotalCount
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&tc.Total, &tc.Count); err != nil {
		return TotalCount{}, err
	}
	return tc, nil
}

func (r *repository) SalesForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error) {
	return r.totalCount(ctx, `
SELECT COALESCE(SUM(total_amount), 0), COUNT(*)
FROM transactions
WHERE season_id = $1 AND transaction_date::date = $2::date`, seasonID, day)
}

func (r *repository) PaymentsForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error) {
	return r.totalCount(ctx, `
SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM payments
WHERE season_id = $1 AND payment_date::date = $2::date`, seasonID, day)
}

func (r *repository) ExpensesForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error) {
	return r.totalCount(ctx, `
SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM expenses
WHERE season_id = $1 AND expense_date::date = $2::date`, seasonID, day)
}

func (r *repository) FundsForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error) {
	return r.totalCount(ctx, `
SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM fund_inputs
WHERE season_id = $1 AND input_date::date = $2::date`, seasonID, day)
}

func (r *repository) IncomesForDay(ctx context.Context, seasonID int64, day time.Time) (TotalCount, error) {
	return r.totalCount(ctx, `
SELECT COALESCE(SUM(amount), 0), COUNT(*)
FROM additional_incomes
WHERE season_id = $1 AND income_date::date = $2::date`, seasonID, day)
}

func (r *repository) sum(ctx context.Context, query string, seasonID int64) (float64, error) {
	var total float64
	if err := r.pool.QueryRow(ctx, query, seasonID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) SumTransactions(ctx context.Context, seasonID int64) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM transactions WHERE season_id = $1`, seasonID)
}

func (r *repository) SumPayments(ctx context.Context, seasonID int64) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE season_id = $1`, seasonID)
}

func (r *repository) SumFundInputs(ctx context.Context, seasonID int64) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM fund_inputs WHERE season_id = $1`, seasonID)
}

func (r *repository) SumIncomes(ctx context.Context, seasonID int64) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM additional_incomes WHERE season_id = $1`, seasonID)
}

func (r *repository) SumExpenses(ctx context.Context, seasonID int64) (float64, error) {
	return r.sum(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE season_id = $1`, seasonID)
}

func (r *repository) BalanceTotals(ctx context.Context, seasonID int64) (float64, float64, int64, error) {
	var due, advance float64
	var customers int64
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(balance), 0), COALESCE(SUM(advance_payment), 0), COUNT(*)
FROM customer_balances WHERE season_id = $1`, seasonID,
	).Scan(&due, &advance, &customers)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("reports: balance totals: %w", err)
	}
	return due, advance, customers, nil
}

func (r *repository) CashAmount(ctx context.Context, seasonID int64) (float64, error) {
	var amount float64
	err := r.pool.QueryRow(ctx,
		`SELECT amount FROM cash_balances WHERE season_id = $1`, seasonID,
	).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reports: cash amount: %w", err)
	}
	return amount, nil
}

func (r *repository) CustomerBalance(ctx context.Context, customerID, seasonID int64) (BalanceSnapshot, error) {
	var b BalanceSnapshot
	err := r.pool.QueryRow(ctx, `
SELECT total_sales, total_payments, balance, advance_payment, status
FROM customer_balances
WHERE customer_id = $1 AND season_id = $2`, customerID, seasonID,
	).Scan(&b.TotalSales, &b.TotalPayments, &b.Balance, &b.AdvancePayment, &b.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return BalanceSnapshot{}, ErrBalanceNotFound
	}
	if err != nil {
		return BalanceSnapshot{}, fmt.Errorf("reports: customer balance: %w", err)
	}
	return b, nil
}

func (r *repository) StatementLines(ctx context.Context, customerID, seasonID int64) ([]StatementLine, error) {
	rows, err := r.pool.Query(ctx, `
SELECT transaction_date AS at, 'sale' AS kind, id, total_amount, notes
FROM transactions
WHERE customer_id = $1 AND season_id = $2
UNION ALL
SELECT payment_date AS at, 'payment' AS kind, id, amount, notes
FROM payments
WHERE customer_id = $1 AND season_id = $2
ORDER BY at, id`, customerID, seasonID)
	if err != nil {
		return nil, fmt.Errorf("reports: statement lines: %w", err)
	}
	defer rows.Close()

	var out []StatementLine
	for rows.Next() {
		var l StatementLine
		if err := rows.Scan(&l.Date, &l.Kind, &l.RefID, &l.Amount, &l.Notes); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
