package reports

import "time"

// TotalCount is a sum-and-count aggregate over ledger rows.
type TotalCount struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// DailySummary is the day book: everything that moved on one date within a
// season.
type DailySummary struct {
	SeasonID int64     `json:"season_id"`
	Date     time.Time `json:"date"`

	Sales    TotalCount `json:"sales"`
	Payments TotalCount `json:"payments"`
	Funds    TotalCount `json:"funds"`
	Incomes  TotalCount `json:"incomes"`
	Expenses TotalCount `json:"expenses"`

	NetCash        float64 `json:"net_cash"`
	NetCashDisplay string  `json:"net_cash_display"`
}

// SeasonSummary aggregates a whole season's books.
type SeasonSummary struct {
	SeasonID int64 `json:"season_id"`

	TotalSales    float64 `json:"total_sales"`
	TotalPayments float64 `json:"total_payments"`
	TotalFunds    float64 `json:"total_funds"`
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`

	CashInHand     float64 `json:"cash_in_hand"`
	OutstandingDue float64 `json:"outstanding_due"`
	AdvanceHeld    float64 `json:"advance_held"`
	Customers      int64   `json:"customers"`

	CashInHandDisplay     string `json:"cash_in_hand_display"`
	OutstandingDueDisplay string `json:"outstanding_due_display"`
}

// StatementLine is one row of a customer statement: either a sale or a
// payment, in date order.
type StatementLine struct {
	Date   time.Time `json:"date"`
	Kind   string    `json:"kind"` // "sale" or "payment"
	RefID  int64     `json:"ref_id"`
	Amount float64   `json:"amount"`
	Notes  string    `json:"notes,omitempty"`
}

// BalanceSnapshot is the customer's season position as carried by the
// balance aggregate.
type BalanceSnapshot struct {
	TotalSales     float64 `json:"total_sales"`
	TotalPayments  float64 `json:"total_payments"`
	Balance        float64 `json:"balance"`
	AdvancePayment float64 `json:"advance_payment"`
	Status         string  `json:"status"`
}

// CustomerStatement is the full per-customer season view.
type CustomerStatement struct {
	CustomerID int64           `json:"customer_id"`
	SeasonID   int64           `json:"season_id"`
	Balance    BalanceSnapshot `json:"balance"`
	Lines      []StatementLine `json:"lines"`

	BalanceDisplay string `json:"balance_display"`
}
