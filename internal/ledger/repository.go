package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arotkhata/arotkhata/internal/platform/db"
	"github.com/arotkhata/arotkhata/internal/shared"
)

// Repository encapsulates DB operations for the ledger. Mutations are only
// reachable through WithTx so the primary record, derived-field updates and
// the balance upsert always share a transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	ListTransactionItems(ctx context.Context, transactionID int64) ([]TransactionItem, error)
	ListTransactions(ctx context.Context, req ListTransactionsRequest) ([]Transaction, int, error)
	ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error)
	GetCustomerBalance(ctx context.Context, customerID, seasonID int64) (*CustomerBalance, error)
	ListCustomerBalances(ctx context.Context, seasonID int64) ([]CustomerBalance, error)
	ListSeasonCustomerIDs(ctx context.Context, seasonID int64) ([]int64, error)
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	CustomerExists(ctx context.Context, id int64) (bool, error)
	GetSackTypePrice(ctx context.Context, id int64) (float64, error)
	InsertTransaction(ctx context.Context, t Transaction) (int64, error)
	InsertTransactionItems(ctx context.Context, transactionID int64, items []TransactionItem) error
	GetTransactionForUpdate(ctx context.Context, id int64) (*Transaction, error)
	UpdateTransactionAmounts(ctx context.Context, id int64, paid, due float64, status PaymentStatus) error
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	UpsertCustomerBalance(ctx context.Context, customerID, seasonID int64) error
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

const transactionCols = `id, customer_id, season_id, transaction_date, total_amount, paid_amount, due_amount, payment_status, notes, created_at, updated_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.CustomerID, &t.SeasonID, &t.TransactionDate,
		&t.TotalAmount, &t.PaidAmount, &t.DueAmount, &t.PaymentStatus,
		&t.Notes, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE id = $1`, id))
}

func (r *repository) ListTransactionItems(ctx context.Context, transactionID int64) ([]TransactionItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, transaction_id, sack_type_id, quantity, unit_price, total_price
FROM transaction_items WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list items: %w", err)
	}
	defer rows.Close()

	var items []TransactionItem
	for rows.Next() {
		var it TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.SackTypeID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListTransactions(ctx context.Context, req ListTransactionsRequest) ([]Transaction, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	if req.CustomerID > 0 {
		where += fmt.Sprintf(" AND customer_id = $%d", argNum)
		args = append(args, req.CustomerID)
		argNum++
	}
	if req.SeasonID > 0 {
		where += fmt.Sprintf(" AND season_id = $%d", argNum)
		args = append(args, req.SeasonID)
		argNum++
	}
	if req.Status != "" {
		where += fmt.Sprintf(" AND payment_status = $%d", argNum)
		args = append(args, string(req.Status))
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ledger: count transactions: %w", err)
	}

	query := `SELECT ` + transactionCols + ` FROM transactions` + where + ` ORDER BY transaction_date DESC, id DESC`
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
		return nil, 0, fmt.Errorf("ledger: list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.SeasonID, &t.TransactionDate,
			&t.TotalAmount, &t.PaidAmount, &t.DueAmount, &t.PaymentStatus,
			&t.Notes, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *repository) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	query := `SELECT id, reference, customer_id, transaction_id, season_id, payment_date, amount, notes, created_at
FROM payments WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.CustomerID > 0 {
		query += fmt.Sprintf(" AND customer_id = $%d", argNum)
		args = append(args, req.CustomerID)
		argNum++
	}
	if req.SeasonID > 0 {
		query += fmt.Sprintf(" AND season_id = $%d", argNum)
		args = append(args, req.SeasonID)
		argNum++
	}
	if req.TransactionID > 0 {
		query += fmt.Sprintf(" AND transaction_id = $%d", argNum)
		args = append(args, req.TransactionID)
		argNum++
	}

	query += " ORDER BY payment_date DESC, id DESC"
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
		return nil, fmt.Errorf("ledger: list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var txnID pgtype.Int8
		if err := rows.Scan(&p.ID, &p.Reference, &p.CustomerID, &txnID, &p.SeasonID,
			&p.PaymentDate, &p.Amount, &p.Notes, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.TransactionID = txnID.Int64
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const balanceCols = `customer_id, season_id, total_sales, total_payments, balance, advance_payment, last_transaction_date, last_payment_date, updated_at`

func scanBalance(row pgx.Row) (*CustomerBalance, error) {
	var b CustomerBalance
	var lastTxn, lastPay pgtype.Timestamptz
	err := row.Scan(&b.CustomerID, &b.SeasonID, &b.TotalSales, &b.TotalPayments,
		&b.Balance, &b.AdvancePayment, &lastTxn, &lastPay, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastTxn.Valid {
		b.LastTransactionDate = &lastTxn.Time
	}
	if lastPay.Valid {
		b.LastPaymentDate = &lastPay.Time
	}
	b.Status = DeriveBalanceStatus(b.Balance, b.AdvancePayment)
	return &b, nil
}

func (r *repository) GetCustomerBalance(ctx context.Context, customerID, seasonID int64) (*CustomerBalance, error) {
	b, err := scanBalance(r.pool.QueryRow(ctx,
		`SELECT `+balanceCols+` FROM customer_balances WHERE customer_id = $1 AND season_id = $2`,
		customerID, seasonID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("ledger: get balance: %w", err)
	}
	return b, nil
}

func (r *repository) ListCustomerBalances(ctx context.Context, seasonID int64) ([]CustomerBalance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+balanceCols+` FROM customer_balances WHERE season_id = $1 ORDER BY balance DESC`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list balances: %w", err)
	}
	defer rows.Close()

	var out []CustomerBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) ListSeasonCustomerIDs(ctx context.Context, seasonID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT customer_id FROM transactions WHERE season_id = $1
UNION
SELECT customer_id FROM payments WHERE season_id = $1`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list season customers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// --- transactional repository ---

type txRepo struct {
	tx pgx.Tx
}

func (t *txRepo) CustomerExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (t *txRepo) GetSackTypePrice(ctx context.Context, id int64) (float64, error) {
	var price float64
	err := t.tx.QueryRow(ctx, `SELECT unit_price FROM sack_types WHERE id = $1`, id).Scan(&price)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("ledger: sack type %d: %w", id, shared.ErrNotFound)
	}
	return price, err
}

func (t *txRepo) InsertTransaction(ctx context.Context, txn Transaction) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO transactions (customer_id, season_id, transaction_date, total_amount, paid_amount, due_amount, payment_status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW()) RETURNING id`,
		txn.CustomerID, txn.SeasonID, txn.TransactionDate, txn.TotalAmount,
		txn.PaidAmount, txn.DueAmount, txn.PaymentStatus, txn.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, ErrCustomerNotFound
		}
		return 0, fmt.Errorf("ledger: insert transaction: %w", err)
	}
	return id, nil
}

func (t *txRepo) InsertTransactionItems(ctx context.Context, transactionID int64, items []TransactionItem) error {
	for _, it := range items {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO transaction_items (transaction_id, sack_type_id, quantity, unit_price, total_price)
VALUES ($1, $2, $3, $4, $5)`,
			transactionID, it.SackTypeID, it.Quantity, it.UnitPrice, it.TotalPrice)
		if err != nil {
			return fmt.Errorf("ledger: insert item: %w", err)
		}
	}
	return nil
}

func (t *txRepo) GetTransactionForUpdate(ctx context.Context, id int64) (*Transaction, error) {
	return scanTransaction(t.tx.QueryRow(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE id = $1 FOR UPDATE`, id))
}

func (t *txRepo) UpdateTransactionAmounts(ctx context.Context, id int64, paid, due float64, status PaymentStatus) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE transactions SET paid_amount = $2, due_amount = $3, payment_status = $4, updated_at = NOW() WHERE id = $1`,
		id, paid, due, status)
	if err != nil {
		return fmt.Errorf("ledger: update amounts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (t *txRepo) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var txnID pgtype.Int8
	if p.TransactionID > 0 {
		txnID = pgtype.Int8{Int64: p.TransactionID, Valid: true}
	}
	var id int64
	err := t.tx.QueryRow(ctx,
		`INSERT INTO payments (reference, customer_id, transaction_id, season_id, payment_date, amount, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING id`,
		p.Reference, p.CustomerID, txnID, p.SeasonID, p.PaymentDate, p.Amount, p.Notes,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, ErrCustomerNotFound
		}
		return 0, fmt.Errorf("ledger: insert payment: %w", err)
	}
	return id, nil
}

// UpsertCustomerBalance recomputes the aggregate snapshot from source rows.
// Recomputation is self-correcting: any missed incremental update heals on
// the next mutation or reconcile pass.
func (t *txRepo) UpsertCustomerBalance(ctx context.Context, customerID, seasonID int64) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO customer_balances (
	customer_id, season_id, total_sales, total_payments, balance, advance_payment,
	status, last_transaction_date, last_payment_date, updated_at
)
SELECT $1, $2,
	COALESCE(t.total, 0),
	COALESCE(p.total, 0),
	GREATEST(COALESCE(t.total, 0) - COALESCE(p.total, 0), 0),
	GREATEST(COALESCE(p.total, 0) - COALESCE(t.total, 0), 0),
	CASE
		WHEN COALESCE(t.total, 0) > COALESCE(p.total, 0) THEN 'due'
		WHEN COALESCE(p.total, 0) > COALESCE(t.total, 0) THEN 'advance'
		ELSE 'clear'
	END,
	t.last_date, p.last_date, NOW()
FROM (SELECT SUM(total_amount) AS total, MAX(transaction_date) AS last_date
	FROM transactions WHERE customer_id = $1 AND season_id = $2) t,
	(SELECT SUM(amount) AS total, MAX(payment_date) AS last_date
	FROM payments WHERE customer_id = $1 AND season_id = $2) p
ON CONFLICT (customer_id, season_id) DO UPDATE SET
	total_sales = EXCLUDED.total_sales,
	total_payments = EXCLUDED.total_payments,
	balance = EXCLUDED.balance,
	advance_payment = EXCLUDED.advance_payment,
	status = EXCLUDED.status,
	last_transaction_date = EXCLUDED.last_transaction_date,
	last_payment_date = EXCLUDED.last_payment_date,
	updated_at = NOW()`,
		customerID, seasonID)
	if err != nil {
		return fmt.Errorf("ledger: upsert balance: %w", err)
	}
	return nil
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
		return fmt.Errorf("ledger: cash balance: %w", err)
	}
	return nil
}
