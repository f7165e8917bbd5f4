package dto

import "time"

// RegisterRequest captures self-service registration payloads.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Company  string `json:"company,omitempty"`
}

// CreateUserRequest is used by administrators to create new users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Company  string `json:"company,omitempty"`
	Role     string `json:"role"`
	Plan     string `json:"plan,omitempty"`
	Credits  *int   `json:"credits,omitempty"`
}

// UpdateUserRequest captures administrator-triggered partial updates.
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Name     *string `json:"name,omitempty"`
	Company  *string `json:"company,omitempty"`
	Role     *string `json:"role,omitempty"`
	Plan     *string `json:"plan,omitempty"`
	Credits  *int    `json:"credits,omitempty"`
}

// UserResponse represents user data returned to clients.
type UserResponse struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Company   string     `json:"company,omitempty"`
	Role      string     `json:"role"`
	Plan      string     `json:"plan"`
	Credits   int        `json:"credits"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
