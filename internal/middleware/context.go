package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyUserPlan  = "user_plan"
	ContextKeyRequestID = "request_id"
)

// UserIDFromContext returns the id of the authenticated caller.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ContextKeyUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// deny writes an error envelope without running the next handler.
func deny(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"status": "error", "message": message})
}
