package sacktypes

import "time"

// SackType is a priced inventory category (e.g. "Feed", "Gom"). The current
// unit price is copied onto each transaction line at creation, so later price
// changes only affect future sales.
type SackType struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateSackTypeRequest struct {
	Name      string  `json:"name" validate:"required,max=100"`
	UnitPrice float64 `json:"unit_price" validate:"gt=0"`
}

type UpdateSackTypeRequest struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	UnitPrice *float64 `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	IsActive  *bool    `json:"is_active,omitempty"`
}
