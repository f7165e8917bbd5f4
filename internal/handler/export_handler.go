package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/export"
	"github.com/octobees/leads-scraper/internal/service"
)

// ExportHandler renders leads as downloadable CSV and Excel files.
type ExportHandler struct {
	leads  *service.LeadsService
	logger *zap.Logger
	now    func() time.Time
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(leads *service.LeadsService, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{leads: leads, logger: logger, now: time.Now}
}

// CSV handles POST /export/csv requests.
func (h *ExportHandler) CSV(c echo.Context) error {
	return h.leadsFile(c, "csv", export.ContentTypeCSV, export.WriteCSV)
}

// Excel handles POST /export/excel requests.
func (h *ExportHandler) Excel(c echo.Context) error {
	return h.leadsFile(c, "xlsx", export.ContentTypeExcel, export.WriteExcel)
}

// Analytics handles POST /export/analytics. The format is "excel" (default) or "csv".
func (h *ExportHandler) Analytics(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.AnalyticsRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	leads, err := h.leads.AnalyticsLeads(c.Request().Context(), userID, req.StartDate, req.EndDate)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load leads")
	}

	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "", "excel", "xlsx":
		return h.send(c, "lead-analytics", "xlsx", export.ContentTypeExcel, leads, export.WriteAnalyticsExcel)
	case "csv":
		return h.send(c, "lead-analytics", "csv", export.ContentTypeCSV, leads, export.WriteAnalyticsCSV)
	default:
		return Error(c, http.StatusBadRequest, "format must be csv or excel")
	}
}

func (h *ExportHandler) leadsFile(c echo.Context, ext, contentType string, write func(io.Writer, []entity.Lead) error) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.ExportRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	leads, err := h.leads.ExportLeads(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNothingToExport):
			return Error(c, http.StatusNotFound, "No leads found to export")
		case errors.Is(err, service.ErrInvalidLeadID):
			return Error(c, http.StatusBadRequest, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to load leads")
		}
	}
	return h.send(c, "leads", ext, contentType, leads, write)
}

func (h *ExportHandler) send(c echo.Context, prefix, ext, contentType string, leads []entity.Lead, write func(io.Writer, []entity.Lead) error) error {
	var buf bytes.Buffer
	if err := write(&buf, leads); err != nil {
		h.logger.Error("render export", zap.String("format", ext), zap.Int("leads", len(leads)), zap.Error(err))
		return Error(c, http.StatusInternalServerError, "Export failed")
	}

	filename := export.Filename(prefix, ext, h.now())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
