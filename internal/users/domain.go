package users

import "time"

// Role scopes what a staff member may do. Enforcement lives at the gateway;
// the API stores and reports the role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
)

// User is a staff record.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CreateUserRequest is the payload for registering staff.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=200"`
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role" validate:"required,oneof=admin manager agent"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserRequest carries partial updates; nil fields stay untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Role     *Role   `json:"role,omitempty" validate:"omitempty,oneof=admin manager agent"`
	Active   *bool   `json:"active,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}
