package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arotkhata/arotkhata/internal/season"
	"github.com/arotkhata/arotkhata/internal/shared"
)

var (
	// ErrCustomerNotFound indicates the referenced customer does not exist.
	ErrCustomerNotFound = errors.New("ledger: customer not found")
	// ErrTransactionNotFound indicates the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrCustomerMismatch indicates a payment references a transaction owned
	// by a different customer.
	ErrCustomerMismatch = errors.New("ledger: transaction belongs to another customer")
	// ErrNoItems indicates a transaction was submitted without line items.
	ErrNoItems = errors.New("ledger: at least one item required")
)

// SeasonResolver supplies the active season for a point in time.
type SeasonResolver interface {
	Resolve(ctx context.Context, at time.Time) (*season.Season, error)
}

// Service implements the ledger accounting core: transaction creation,
// payment recording with settlement propagation, and customer balance upkeep.
type Service struct {
	repo    Repository
	seasons SeasonResolver
	now     func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository, seasons SeasonResolver) *Service {
	return &Service{repo: repo, seasons: seasons, now: time.Now}
}

// WithNow overrides the clock. Used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateTransaction records a sale. Season and date default when omitted.
// The transaction row, its items and the customer balance upsert commit as
// one unit of work.
func (s *Service) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*Transaction, error) {
	if req.CustomerID <= 0 {
		return nil, ErrCustomerNotFound
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	seasonID := req.SeasonID
	if seasonID == 0 {
		sn, err := s.seasons.Resolve(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("resolve season: %w", err)
		}
		seasonID = sn.ID
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	txn := Transaction{
		CustomerID:      req.CustomerID,
		SeasonID:        seasonID,
		TransactionDate: date,
		PaymentStatus:   StatusDue,
		Notes:           req.Notes,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ok, err := tx.CustomerExists(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCustomerNotFound
		}

		items := make([]TransactionItem, 0, len(req.Items))
		var total float64
		for _, in := range req.Items {
			unitPrice := in.UnitPrice
			if unitPrice <= 0 {
				unitPrice, err = tx.GetSackTypePrice(ctx, in.SackTypeID)
				if err != nil {
					return err
				}
			}
			totalPrice := in.TotalPrice
			if totalPrice <= 0 {
				totalPrice = shared.Round2(unitPrice * in.Quantity)
			}
			total += totalPrice
			items = append(items, TransactionItem{
				SackTypeID: in.SackTypeID,
				Quantity:   in.Quantity,
				UnitPrice:  unitPrice,
				TotalPrice: totalPrice,
			})
		}

		txn.TotalAmount = shared.Round2(total)
		txn.PaidAmount = 0
		txn.DueAmount = txn.TotalAmount
		txn.PaymentStatus = StatusFor(txn.PaidAmount, txn.DueAmount)

		id, err := tx.InsertTransaction(ctx, txn)
		if err != nil {
			return err
		}
		txn.ID = id

		if err := tx.InsertTransactionItems(ctx, id, items); err != nil {
			return err
		}
		for i := range items {
			items[i].TransactionID = id
		}
		txn.Items = items

		return tx.UpsertCustomerBalance(ctx, txn.CustomerID, txn.SeasonID)
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// RecordPayment records a money receipt. When the payment is linked to a
// transaction, the transaction's paid/due amounts and status are recomputed
// inside the same unit of work; a payment is never orphaned from its effect.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	if req.CustomerID <= 0 {
		return nil, ErrCustomerNotFound
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("ledger: amount must be positive")
	}

	seasonID := req.SeasonID
	if seasonID == 0 {
		sn, err := s.seasons.Resolve(ctx, s.now())
		if err != nil {
			return nil, fmt.Errorf("resolve season: %w", err)
		}
		seasonID = sn.ID
	}
	date := req.Date
	if date.IsZero() {
		date = s.now()
	}

	payment := Payment{
		Reference:     uuid.NewString(),
		CustomerID:    req.CustomerID,
		TransactionID: req.TransactionID,
		SeasonID:      seasonID,
		PaymentDate:   date,
		Amount:        shared.Round2(req.Amount),
		Notes:         req.Notes,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ok, err := tx.CustomerExists(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCustomerNotFound
		}

		if req.TransactionID > 0 {
			// Locked read serialises concurrent payments against the same
			// transaction's read-modify-write.
			txn, err := tx.GetTransactionForUpdate(ctx, req.TransactionID)
			if err != nil {
				return err
			}
			if txn.CustomerID != req.CustomerID {
				return ErrCustomerMismatch
			}
			txn.ApplyPayment(payment.Amount)
			if err := tx.UpdateTransactionAmounts(ctx, txn.ID, txn.PaidAmount, txn.DueAmount, txn.PaymentStatus); err != nil {
				return err
			}
		}

		id, err := tx.InsertPayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = id

		if err := tx.UpsertCustomerBalance(ctx, payment.CustomerID, payment.SeasonID); err != nil {
			return err
		}
		return tx.AddToCashBalance(ctx, payment.SeasonID, payment.Amount, payment.PaymentDate)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetTransaction returns a transaction with its line items.
func (s *Service) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListTransactionItems(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.Items = items
	return txn, nil
}

// ListTransactions returns transactions matching the filter.
func (s *Service) ListTransactions(ctx context.Context, req ListTransactionsRequest) ([]Transaction, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.ListTransactions(ctx, req)
}

// ListPayments returns payments matching the filter.
func (s *Service) ListPayments(ctx context.Context, req ListPaymentsRequest) ([]Payment, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.ListPayments(ctx, req)
}

// GetCustomerBalance returns the aggregate snapshot for a customer and season.
func (s *Service) GetCustomerBalance(ctx context.Context, customerID, seasonID int64) (*CustomerBalance, error) {
	return s.repo.GetCustomerBalance(ctx, customerID, seasonID)
}

// ListCustomerBalances returns all balance snapshots for a season.
func (s *Service) ListCustomerBalances(ctx context.Context, seasonID int64) ([]CustomerBalance, error) {
	return s.repo.ListCustomerBalances(ctx, seasonID)
}

// ReconcileSeason recomputes every customer balance of a season from source
// rows. The per-mutation upserts keep balances current; this full pass is the
// self-correcting backstop run by the nightly job.
func (s *Service) ReconcileSeason(ctx context.Context, seasonID int64) (int, error) {
	customerIDs, err := s.repo.ListSeasonCustomerIDs(ctx, seasonID)
	if err != nil {
		return 0, err
	}
	for _, customerID := range customerIDs {
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.UpsertCustomerBalance(ctx, customerID, seasonID)
		})
		if err != nil {
			return 0, fmt.Errorf("reconcile customer %d: %w", customerID, err)
		}
	}
	return len(customerIDs), nil
}
