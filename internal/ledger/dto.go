package ledger

import "time"

type TransactionItemInput struct {
	SackTypeID int64   `json:"sack_type_id" validate:"required,gt=0"`
	Quantity   float64 `json:"quantity" validate:"required,gt=0"`
	// UnitPrice overrides the sack type's current price when positive.
	UnitPrice float64 `json:"unit_price" validate:"gte=0"`
	// TotalPrice overrides unit_price x quantity when positive.
	TotalPrice float64 `json:"total_price" validate:"gte=0"`
}

type CreateTransactionRequest struct {
	CustomerID int64                  `json:"customer_id" validate:"required,gt=0"`
	SeasonID   int64                  `json:"season_id" validate:"gte=0"`
	Date       time.Time              `json:"date"`
	Items      []TransactionItemInput `json:"items" validate:"required,min=1,dive"`
	Notes      string                 `json:"notes"`
}

type RecordPaymentRequest struct {
	CustomerID    int64     `json:"customer_id" validate:"required,gt=0"`
	TransactionID int64     `json:"transaction_id" validate:"gte=0"`
	SeasonID      int64     `json:"season_id" validate:"gte=0"`
	Date          time.Time `json:"date"`
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	Notes         string    `json:"notes"`
}

type ListTransactionsRequest struct {
	CustomerID int64
	SeasonID   int64
	Status     PaymentStatus
	Limit      int
	Offset     int
}

type ListPaymentsRequest struct {
	CustomerID    int64
	SeasonID      int64
	TransactionID int64
	Limit         int
	Offset        int
}
