package cashbook

import "time"

// CashBalance is the running cash-on-hand total for a season. It is fed by
// customer payments, fund inputs and additional income, and drained by
// expenses. It is distinct from per-customer balances.
type CashBalance struct {
	SeasonID    int64     `json:"season_id"`
	Amount      float64   `json:"amount"`
	LastUpdated time.Time `json:"last_updated"`
}

// FundInput is owner capital injected into the season's cash.
type FundInput struct {
	ID        int64     `json:"id"`
	SeasonID  int64     `json:"season_id"`
	Source    string    `json:"source"`
	Amount    float64   `json:"amount"`
	InputDate time.Time `json:"input_date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AdditionalIncome is revenue outside the sack-sale ledger (e.g. transport
// charges, scrap sales).
type AdditionalIncome struct {
	ID         int64     `json:"id"`
	SeasonID   int64     `json:"season_id"`
	Source     string    `json:"source"`
	Amount     float64   `json:"amount"`
	IncomeDate time.Time `json:"income_date"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Expense is an operating cost taken out of the season's cash.
type Expense struct {
	ID          int64     `json:"id"`
	SeasonID    int64     `json:"season_id"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	ExpenseDate time.Time `json:"expense_date"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateFundInputRequest struct {
	SeasonID int64     `json:"season_id" validate:"omitempty,gt=0"`
	Source   string    `json:"source" validate:"required,max=150"`
	Amount   float64   `json:"amount" validate:"gt=0"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes" validate:"max=500"`
}

type CreateIncomeRequest struct {
	SeasonID int64     `json:"season_id" validate:"omitempty,gt=0"`
	Source   string    `json:"source" validate:"required,max=150"`
	Amount   float64   `json:"amount" validate:"gt=0"`
	Date     time.Time `json:"date"`
	Notes    string    `json:"notes" validate:"max=500"`
}

type CreateExpenseRequest struct {
	SeasonID    int64     `json:"season_id" validate:"omitempty,gt=0"`
	Category    string    `json:"category" validate:"required,max=150"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Date        time.Time `json:"date"`
	Description string    `json:"description" validate:"max=500"`
}
