package ledger

import (
	"time"

	"github.com/arotkhata/arotkhata/internal/shared"
)

// PaymentStatus enumerates transaction settlement states.
type PaymentStatus string

const (
	StatusDue     PaymentStatus = "due"
	StatusPartial PaymentStatus = "partial"
	StatusPaid    PaymentStatus = "paid"
)

// BalanceStatus enumerates customer season-balance states.
type BalanceStatus string

const (
	BalanceDue     BalanceStatus = "due"
	BalanceAdvance BalanceStatus = "advance"
	BalanceClear   BalanceStatus = "clear"
)

// Transaction is a sale event against a customer and season.
type Transaction struct {
	ID              int64         `json:"id"`
	CustomerID      int64         `json:"customer_id"`
	SeasonID        int64         `json:"season_id"`
	TransactionDate time.Time     `json:"transaction_date"`
	TotalAmount     float64       `json:"total_amount"`
	PaidAmount      float64       `json:"paid_amount"`
	DueAmount       float64       `json:"due_amount"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	Notes           string        `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Items []TransactionItem `json:"items,omitempty"`
}

// TransactionItem is one sack-type line within a transaction. Immutable after
// creation.
type TransactionItem struct {
	ID            int64   `json:"id"`
	TransactionID int64   `json:"transaction_id"`
	SackTypeID    int64   `json:"sack_type_id"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	TotalPrice    float64 `json:"total_price"`
}

// Payment is a money receipt, optionally settling a transaction. Immutable
// after creation.
type Payment struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	CustomerID    int64     `json:"customer_id"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	SeasonID      int64     `json:"season_id"`
	PaymentDate   time.Time `json:"payment_date"`
	Amount        float64   `json:"amount"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomerBalance is the per (customer, season) aggregate snapshot. It always
// reflects the sums of that customer's transactions and payments within the
// season; the ledger service recomputes it inside every mutating transaction.
type CustomerBalance struct {
	CustomerID          int64         `json:"customer_id"`
	SeasonID            int64         `json:"season_id"`
	TotalSales          float64       `json:"total_sales"`
	TotalPayments       float64       `json:"total_payments"`
	Balance             float64       `json:"balance"`
	AdvancePayment      float64       `json:"advance_payment"`
	Status              BalanceStatus `json:"status"`
	LastTransactionDate *time.Time    `json:"last_transaction_date,omitempty"`
	LastPaymentDate     *time.Time    `json:"last_payment_date,omitempty"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// StatusFor derives the settlement status from the paid and due amounts. The
// rule is evaluated from scratch on every mutation rather than transitioned
// incrementally, so it stays correct under any future correction flow.
func StatusFor(paid, due float64) PaymentStatus {
	switch {
	case due <= 0:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusDue
	}
}

// ApplyPayment settles amount against the transaction: paid grows, due is
// recomputed from the total, and the status follows. Overpayment is accepted;
// due may go negative here while the customer-level aggregate exposes the
// surplus as advance.
func (t *Transaction) ApplyPayment(amount float64) {
	t.PaidAmount = shared.Round2(t.PaidAmount + amount)
	t.DueAmount = shared.Round2(t.TotalAmount - t.PaidAmount)
	t.PaymentStatus = StatusFor(t.PaidAmount, t.DueAmount)
}

// DeriveBalanceStatus classifies a season balance: owing, in advance, or clear.
func DeriveBalanceStatus(balance, advance float64) BalanceStatus {
	switch {
	case balance > 0:
		return BalanceDue
	case advance > 0:
		return BalanceAdvance
	default:
		return BalanceClear
	}
}
