package customers

import "time"

// Customer is a counterparty. It exclusively owns its transactions and
// payments; deleting a customer cascades to both at the schema level.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Area      string    `json:"area" db:"area"`
	Phone     string    `json:"phone" db:"phone"`
	ImageRef  *string   `json:"image_ref,omitempty" db:"image_ref"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
