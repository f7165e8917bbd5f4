package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/middleware"
	"github.com/octobees/leads-scraper/internal/repository"
	"github.com/octobees/leads-scraper/internal/service"
)

// UserAdminHandler serves the /admin/users endpoints: accounts, plans and credit balances.
type UserAdminHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

// NewUserAdminHandler constructs a handler instance.
func NewUserAdminHandler(users *service.UserService, logger *zap.Logger) *UserAdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserAdminHandler{users: users, logger: logger}
}

// List returns every account with its plan and remaining credits.
func (h *UserAdminHandler) List(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		return Error(c, http.StatusInternalServerError, "failed to list users")
	}
	return Success(c, http.StatusOK, "users retrieved", records)
}

// Create provisions a new user with an explicit plan and balance.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return h.failure(c, err, http.StatusBadRequest, err.Error())
	}

	h.audit(c, "user created", user.ID)
	return Success(c, http.StatusCreated, "user created", user)
}

// Update changes plan, credits, role, profile fields or password of a user.
func (h *UserAdminHandler) Update(c echo.Context) error {
	var req dto.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return h.failure(c, err, http.StatusBadRequest, err.Error())
	}

	h.audit(c, "user updated", user.ID)
	return Success(c, http.StatusOK, "user updated", user)
}

// Delete removes a user and, through the foreign key, their leads.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.users.DeleteUser(c.Request().Context(), id); err != nil {
		return h.failure(c, err, http.StatusInternalServerError, "failed to delete user")
	}

	h.audit(c, "user deleted", id)
	return Success(c, http.StatusOK, "user deleted", nil)
}

// failure maps service errors; anything unrecognised gets status and message.
func (h *UserAdminHandler) failure(c echo.Context, err error, status int, message string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return Error(c, http.StatusNotFound, "user not found")
	case errors.Is(err, repository.ErrEmailDuplicate):
		return Error(c, http.StatusConflict, "email already exists")
	case errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrNegativeCredits):
		return Error(c, http.StatusBadRequest, err.Error())
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("admin user operation failed", zap.Error(err))
	}
	return Error(c, status, message)
}

func (h *UserAdminHandler) audit(c echo.Context, msg string, target any) {
	actor, _ := middleware.UserIDFromContext(c)
	h.logger.Info(msg,
		zap.Stringer("admin_id", actor),
		zap.Any("user_id", target),
		zap.String("request_id", middleware.RequestIDFromContext(c)),
	)
}
