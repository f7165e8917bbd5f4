package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/repository"
	"github.com/octobees/leads-scraper/internal/service"
)

// LeadsHandler exposes the lead pipeline of the signed-in user.
type LeadsHandler struct {
	leads *service.LeadsService
}

// NewLeadsHandler creates a new handler instance.
func NewLeadsHandler(leads *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	filter := dto.LeadFilter{
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Industry: strings.TrimSpace(c.QueryParam("industry")),
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		Limit:    parseIntDefault(c.QueryParam("limit"), 50),
	}

	page, err := h.leads.List(c.Request().Context(), userID, filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}
	return Success(c, http.StatusOK, "leads retrieved", page)
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	userID, leadID, ok, err := h.ids(c)
	if !ok {
		return err
	}

	lead, err := h.leads.Get(c.Request().Context(), userID, leadID)
	if err != nil {
		return h.writeFailure(c, err, "failed to load lead")
	}
	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Create handles POST /leads requests.
func (h *LeadsHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var input dto.LeadInput
	if err := c.Bind(&input); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.Create(c.Request().Context(), userID, input)
	if err != nil {
		return h.writeFailure(c, err, "failed to create lead")
	}
	return Success(c, http.StatusCreated, "lead created", lead)
}

// Update handles PUT /leads/:id requests. Only the fields present in the body change.
func (h *LeadsHandler) Update(c echo.Context) error {
	userID, leadID, ok, err := h.ids(c)
	if !ok {
		return err
	}

	var input dto.LeadInput
	if err := c.Bind(&input); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.Update(c.Request().Context(), userID, leadID, input)
	if err != nil {
		return h.writeFailure(c, err, "failed to update lead")
	}
	return Success(c, http.StatusOK, "lead updated", lead)
}

// Delete handles DELETE /leads/:id requests.
func (h *LeadsHandler) Delete(c echo.Context) error {
	userID, leadID, ok, err := h.ids(c)
	if !ok {
		return err
	}

	if err := h.leads.Delete(c.Request().Context(), userID, leadID); err != nil {
		return h.writeFailure(c, err, "failed to delete lead")
	}
	return Success(c, http.StatusOK, "lead deleted", nil)
}

// Bulk handles POST /leads/bulk requests. Each created lead costs one credit.
func (h *LeadsHandler) Bulk(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.BulkLeadsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	resp, err := h.leads.BulkCreate(c.Request().Context(), userID, req.Leads)
	if err != nil {
		if handled, sent := creditsError(c, err); handled {
			return sent
		}
		return h.writeFailure(c, err, "failed to create leads")
	}
	return Success(c, http.StatusCreated, "leads created", resp)
}

// Import handles POST /leads/import. The CSV comes as the multipart field "file" or as the raw body.
func (h *LeadsHandler) Import(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var body io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return Error(c, http.StatusBadRequest, "missing csv file")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return Error(c, http.StatusBadRequest, "unable to open file")
		}
		defer file.Close()
		body = file
	}

	summary, err := h.leads.Import(c.Request().Context(), userID, body)
	if err != nil {
		var validationErr service.CSVValidationError
		if errors.As(err, &validationErr) {
			return Error(c, http.StatusBadRequest, validationErr.Error())
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}
	return Success(c, http.StatusOK, "leads CSV processed", summary)
}

// Stats handles GET /leads/stats/overview requests.
func (h *LeadsHandler) Stats(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	stats, err := h.leads.Stats(c.Request().Context(), userID)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load lead stats")
	}
	return Success(c, http.StatusOK, "lead stats retrieved", stats)
}

// ids reads the caller and the :id parameter. When ok is false the error response is already written.
func (h *LeadsHandler) ids(c echo.Context) (uuid.UUID, uuid.UUID, bool, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, false, Error(c, http.StatusUnauthorized, "unauthorized")
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false, Error(c, http.StatusBadRequest, "invalid lead id")
	}
	return userID, leadID, true, nil
}

func (h *LeadsHandler) writeFailure(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrLeadNotFound):
		return Error(c, http.StatusNotFound, "Lead not found")
	case errors.Is(err, service.ErrNoLeads),
		errors.Is(err, service.ErrCompanyRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidStatus):
		return Error(c, http.StatusBadRequest, err.Error())
	default:
		return Error(c, http.StatusInternalServerError, fallback)
	}
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
