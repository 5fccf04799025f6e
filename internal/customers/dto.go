package customers

type CreateCustomerRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Area     string  `json:"area" validate:"required,max=200"`
	Phone    string  `json:"phone" validate:"required,max=50"`
	ImageRef *string `json:"image_ref,omitempty" validate:"omitempty,max=500"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Area     *string `json:"area,omitempty" validate:"omitempty,max=200"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	ImageRef *string `json:"image_ref,omitempty" validate:"omitempty,max=500"`
}

type ListCustomersRequest struct {
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
