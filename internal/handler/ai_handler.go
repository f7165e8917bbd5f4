package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/service"
)

// AIHandler exposes the outreach generators.
type AIHandler struct {
	outreach *service.OutreachService
	logger   *zap.Logger
}

// NewAIHandler constructs an AIHandler.
func NewAIHandler(outreach *service.OutreachService, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{outreach: outreach, logger: logger}
}

// Email handles POST /ai/email.
func (h *AIHandler) Email(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.outreach.Email(c.Request().Context(), userID, req)
	if err != nil {
		return h.failure(c, err, "Failed to generate email")
	}
	return Success(c, http.StatusOK, "email generated", resp)
}

// Variations handles POST /ai/email/variations.
func (h *AIHandler) Variations(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req dto.EmailVariationsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.outreach.Variations(c.Request().Context(), userID, req)
	if err != nil {
		return h.failure(c, err, "Failed to generate email variations")
	}
	return Success(c, http.StatusOK, "email variations generated", resp)
}

// FollowUp handles POST /ai/email/followup.
func (h *AIHandler) FollowUp(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req dto.FollowUpRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.outreach.FollowUp(c.Request().Context(), userID, req)
	if err != nil {
		return h.failure(c, err, "Failed to generate follow-up email")
	}
	return Success(c, http.StatusOK, "follow-up generated", resp)
}

// LinkedIn handles POST /ai/linkedin.
func (h *AIHandler) LinkedIn(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}
	var req dto.LinkedInMessageRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.outreach.LinkedInMessage(c.Request().Context(), userID, req)
	if err != nil {
		return h.failure(c, err, "Failed to generate LinkedIn message")
	}
	return Success(c, http.StatusOK, "linkedin message generated", resp)
}

// RevenueEstimate handles POST /ai/revenue-estimate. It costs no credits.
func (h *AIHandler) RevenueEstimate(c echo.Context) error {
	var req dto.RevenueEstimateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	estimate, err := h.outreach.RevenueEstimate(c.Request().Context(), req)
	if err != nil {
		return h.failure(c, err, "Failed to estimate revenue")
	}
	return Success(c, http.StatusOK, "revenue estimated", estimate)
}

func (h *AIHandler) failure(c echo.Context, err error, message string) error {
	if handled, sent := creditsError(c, err); handled {
		return sent
	}
	switch {
	case errors.Is(err, service.ErrLeadDataRequired),
		errors.Is(err, service.ErrPreviousEmailRequired),
		errors.Is(err, service.ErrCompanyDataRequired),
		errors.Is(err, service.ErrInvalidVariationCount):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrOutreachUnavailable):
		return Error(c, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("ai generation failed", zap.String("path", c.Path()), zap.Error(err))
		return Error(c, http.StatusInternalServerError, message)
	}
}
