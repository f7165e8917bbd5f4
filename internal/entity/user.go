package entity

import (
	"time"

	"github.com/google/uuid"
)

// Plans a user can subscribe to.
const (
	PlanFree     = "free"
	PlanBronze   = "bronze"
	PlanSilver   = "silver"
	PlanGold     = "gold"
	PlanPlatinum = "platinum"
)

// Roles understood by the RBAC middleware.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultCredits is the balance granted on registration.
const DefaultCredits = 5

// User is an account holder with a credit balance.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Company      string     `json:"company,omitempty"`
	Plan         string     `json:"plan"`
	Credits      int        `json:"credits"`
	Role         string     `json:"role"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ValidPlan reports whether plan is one of the known plans.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanFree, PlanBronze, PlanSilver, PlanGold, PlanPlatinum:
		return true
	}
	return false
}
