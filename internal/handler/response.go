package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-scraper/internal/middleware"
	"github.com/octobees/leads-scraper/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// CreditShortfall is the data of an insufficient credits response.
type CreditShortfall struct {
	Required  int `json:"required"`
	Available int `json:"available"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	payload := APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	return ErrorWithData(c, status, message, nil)
}

// ErrorWithData sends an error envelope that carries details for the caller.
func ErrorWithData(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	payload := APIResponse{
		Status:  "error",
		Message: message,
		Data:    data,
	}
	return c.JSON(status, payload)
}

// creditsError answers 400 with {required, available} when err is a credit shortfall.
func creditsError(c echo.Context, err error) (bool, error) {
	var short *service.InsufficientCreditsError
	if !errors.As(err, &short) {
		return false, nil
	}
	return true, ErrorWithData(c, http.StatusBadRequest, "Insufficient credits", CreditShortfall{
		Required:  short.Required,
		Available: short.Available,
	})
}

func currentUserID(c echo.Context) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromContext(c)
	if !ok {
		return uuid.Nil, errors.New("missing user")
	}
	return id, nil
}
