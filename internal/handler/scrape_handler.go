package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/scraper"
	"github.com/octobees/leads-scraper/internal/scraper/fetch"
	"github.com/octobees/leads-scraper/internal/service"
)

// ScrapeHandler serves the synchronous scrape endpoints and bills them in credits.
type ScrapeHandler struct {
	companies scraper.CompanyScraper
	bulk      *scraper.BulkRunner
	profiles  *scraper.ProfileScraper
	searcher  *scraper.Searcher
	credits   *service.CreditService
	logger    *zap.Logger
}

// NewScrapeHandler wires the scrape endpoints.
func NewScrapeHandler(companies scraper.CompanyScraper, bulk *scraper.BulkRunner, profiles *scraper.ProfileScraper, searcher *scraper.Searcher, credits *service.CreditService, logger *zap.Logger) *ScrapeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScrapeHandler{
		companies: companies,
		bulk:      bulk,
		profiles:  profiles,
		searcher:  searcher,
		credits:   credits,
		logger:    logger,
	}
}

// Company handles POST /scrape/company. The credit is taken only after a successful scrape.
func (h *ScrapeHandler) Company(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.ScrapeCompanyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Website) == "" {
		return Error(c, http.StatusBadRequest, "Website URL is required")
	}

	ctx := c.Request().Context()
	if _, err := h.credits.Require(ctx, userID, service.CostScrapeCompany); err != nil {
		return h.creditFailure(c, err)
	}

	record, err := h.companies.Scrape(ctx, req.Website, strings.TrimSpace(req.CompanyName))
	if err != nil {
		return h.scrapeFailure(c, err)
	}

	remaining, err := h.credits.Debit(ctx, userID, service.CostScrapeCompany)
	if err != nil {
		return h.creditFailure(c, err)
	}

	return Success(c, http.StatusOK, "company scraped", dto.ScrapeCompanyResponse{
		CompanyRecord:    record,
		CreditsUsed:      service.CostScrapeCompany,
		RemainingCredits: remaining,
	})
}

// Bulk handles POST /scrape/bulk. The balance must cover every website but only successes are charged.
func (h *ScrapeHandler) Bulk(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.BulkScrapeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.Websites) == 0 {
		return Error(c, http.StatusBadRequest, "Websites array is required")
	}

	ctx := c.Request().Context()
	if _, err := h.credits.Require(ctx, userID, len(req.Websites)*service.CostScrapeCompany); err != nil {
		return h.creditFailure(c, err)
	}

	result := h.bulk.Run(ctx, req.Websites)
	used := result.SuccessCount * service.CostScrapeCompany

	remaining, err := h.credits.Debit(ctx, userID, used)
	if err != nil {
		h.logger.Error("debit bulk scrape",
			zap.String("user_id", userID.String()),
			zap.Int("amount", used),
			zap.Error(err),
		)
		return h.creditFailure(c, err)
	}

	return Success(c, http.StatusOK, "bulk scrape finished", dto.BulkScrapeResponse{
		BulkResult:       result,
		CreditsUsed:      used,
		RemainingCredits: remaining,
	})
}

// LinkedIn handles POST /scrape/linkedin.
func (h *ScrapeHandler) LinkedIn(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.LinkedInRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	if _, err := h.credits.Require(ctx, userID, service.CostLinkedInProfile); err != nil {
		return h.creditFailure(c, err)
	}

	profile, err := h.profiles.Scrape(ctx, req.LinkedInURL)
	if err != nil {
		if errors.Is(err, scraper.ErrProfileURLRequired) || errors.Is(err, scraper.ErrNotLinkedInURL) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return h.scrapeFailure(c, err)
	}

	remaining, err := h.credits.Debit(ctx, userID, service.CostLinkedInProfile)
	if err != nil {
		return h.creditFailure(c, err)
	}

	return Success(c, http.StatusOK, "profile scraped", dto.LinkedInResponse{
		LinkedInProfile:  profile,
		CreditsUsed:      service.CostLinkedInProfile,
		RemainingCredits: remaining,
	})
}

// GoogleSearch handles POST /scrape/google-search. A prompt is used when no query is given.
func (h *ScrapeHandler) GoogleSearch(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return Error(c, http.StatusUnauthorized, "unauthorized")
	}

	var req dto.GoogleSearchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	query := scraper.SearchQuery{
		Query:    strings.TrimSpace(req.Query),
		Location: strings.TrimSpace(req.Location),
		Industry: strings.TrimSpace(req.Industry),
		Limit:    req.Limit,
	}
	if query.Query == "" && strings.TrimSpace(req.Prompt) != "" {
		parsed := scraper.ParseSearchPrompt(req.Prompt)
		query.Query = parsed.Query
		if query.Location == "" {
			query.Location = parsed.Location
		}
		if query.Limit <= 0 {
			query.Limit = parsed.Limit
		}
	}
	if query.Query == "" {
		return Error(c, http.StatusBadRequest, "Search query is required")
	}

	ctx := c.Request().Context()
	if _, err := h.credits.Require(ctx, userID, service.CostGoogleSearch); err != nil {
		return h.creditFailure(c, err)
	}

	result, err := h.searcher.Search(ctx, query)
	if err != nil {
		if errors.Is(err, scraper.ErrQueryRequired) {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		return Error(c, http.StatusInternalServerError, "search failed")
	}

	remaining, err := h.credits.Debit(ctx, userID, service.CostGoogleSearch)
	if err != nil {
		return h.creditFailure(c, err)
	}

	return Success(c, http.StatusOK, "search finished", dto.GoogleSearchResponse{
		SearchResult:     result,
		CreditsUsed:      service.CostGoogleSearch,
		RemainingCredits: remaining,
	})
}

// SampleCompanies handles GET /scrape/sample-companies.
func (h *ScrapeHandler) SampleCompanies(c echo.Context) error {
	return Success(c, http.StatusOK, "sample companies", h.searcher.Samples())
}

func (h *ScrapeHandler) creditFailure(c echo.Context, err error) error {
	if handled, resp := creditsError(c, err); handled {
		return resp
	}
	return Error(c, http.StatusInternalServerError, "unable to check credits")
}

func (h *ScrapeHandler) scrapeFailure(c echo.Context, err error) error {
	if errors.Is(err, scraper.ErrWebsiteRequired) {
		return Error(c, http.StatusBadRequest, "Website URL is required")
	}
	var fe *fetch.FetchError
	if errors.As(err, &fe) {
		return Error(c, http.StatusBadGateway, fe.Error())
	}
	return Error(c, http.StatusInternalServerError, err.Error())
}
