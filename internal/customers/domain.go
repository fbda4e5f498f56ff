package customers

import "time"

// Customer is a buyer tracked by the back office.
type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	NationalID string    `json:"nationalId"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Address    *string   `json:"address,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CreateCustomerRequest is the payload for registering a customer.
type CreateCustomerRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=200"`
	NationalID string  `json:"nationalId" validate:"required,max=50"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Notes      *string `json:"notes,omitempty"`
}

// UpdateCustomerRequest carries partial updates; nil fields stay untouched.
type UpdateCustomerRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	NationalID *string `json:"nationalId,omitempty" validate:"omitempty,max=50"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Notes      *string `json:"notes,omitempty"`
}

// ListCustomersRequest filters the listing. Search matches name or phone.
type ListCustomersRequest struct {
	Search string
	Limit  int
	Offset int
}
