package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/repository"
	"github.com/octobees/leads-scraper/internal/scraper"
	"github.com/octobees/leads-scraper/internal/service/scoring"
)

const (
	defaultLeadsPageSize = 50
	maxLeadsPageSize     = 500
)

var (
	// ErrNoLeads is returned by bulk operations given nothing to write.
	ErrNoLeads = errors.New("leads must not be empty")
	// ErrNothingToExport is returned when an export selects no leads.
	ErrNothingToExport = errors.New("no leads found to export")
	ErrInvalidLeadID   = errors.New("invalid lead id")
)

// CSVValidationError indicates that the provided CSV payload is invalid.
type CSVValidationError struct {
	Message string
}

// Error implements the error interface.
func (e CSVValidationError) Error() string {
	return e.Message
}

// LeadsService owns the lead pipeline of each user.
type LeadsService struct {
	repo       repository.LeadsRepository
	credits    *CreditService
	normalizer *LeadNormalizer
	logger     *zap.Logger
}

// NewLeadsService creates a new instance of LeadsService.
func NewLeadsService(repo repository.LeadsRepository, credits *CreditService, normalizer *LeadNormalizer, logger *zap.Logger) *LeadsService {
	if normalizer == nil {
		normalizer = NewLeadNormalizer(defaultPhoneRegion)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadsService{repo: repo, credits: credits, normalizer: normalizer, logger: logger}
}

// List returns one page of leads, newest first.
func (s *LeadsService) List(ctx context.Context, userID uuid.UUID, filter dto.LeadFilter) (dto.LeadListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLeadsPageSize
	}
	if filter.Limit > maxLeadsPageSize {
		filter.Limit = maxLeadsPageSize
	}
	filter.Search = strings.TrimSpace(filter.Search)

	leads, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return dto.LeadListResponse{}, err
	}
	return dto.LeadListResponse{
		Leads:       leads,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		CurrentPage: filter.Page,
		Total:       total,
	}, nil
}

// Get returns one lead of userID.
func (s *LeadsService) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Lead, error) {
	return s.repo.Get(ctx, userID, id)
}

// Create normalises input and stores it as a new lead.
func (s *LeadsService) Create(ctx context.Context, userID uuid.UUID, input dto.LeadInput) (*entity.Lead, error) {
	lead, err := s.prepare(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, lead)
}

// Update normalises and applies the non-nil fields of input.
func (s *LeadsService) Update(ctx context.Context, userID, id uuid.UUID, input dto.LeadInput) (*entity.Lead, error) {
	if err := s.normalizer.Normalize(ctx, &input); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, userID, id, input)
}

// Delete removes one lead of userID.
func (s *LeadsService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.Delete(ctx, userID, id)
}

// BulkCreate stores every input in one transaction and charges one credit per lead.
// Credits are taken up front and given back if the insert fails.
func (s *LeadsService) BulkCreate(ctx context.Context, userID uuid.UUID, inputs []dto.LeadInput) (dto.BulkLeadsResponse, error) {
	if len(inputs) == 0 {
		return dto.BulkLeadsResponse{}, ErrNoLeads
	}
	leads := make([]entity.Lead, 0, len(inputs))
	for i, input := range inputs {
		lead, err := s.prepare(ctx, userID, input)
		if err != nil {
			return dto.BulkLeadsResponse{}, fmt.Errorf("lead %d: %w", i+1, err)
		}
		leads = append(leads, lead)
	}

	cost := len(leads)
	if _, err := s.credits.Debit(ctx, userID, cost); err != nil {
		return dto.BulkLeadsResponse{}, err
	}

	created, err := s.repo.BulkCreate(ctx, leads)
	if err != nil {
		if _, refundErr := s.credits.Refund(ctx, userID, cost); refundErr != nil {
			s.logger.Error("refund credits after failed bulk insert",
				zap.String("user_id", userID.String()),
				zap.Int("credits", cost),
				zap.Error(refundErr),
			)
		}
		return dto.BulkLeadsResponse{}, err
	}

	remaining, err := s.credits.Balance(ctx, userID)
	if err != nil {
		return dto.BulkLeadsResponse{}, err
	}
	s.logger.Info("bulk leads created", zap.String("user_id", userID.String()), zap.Int("count", len(created)))
	return dto.BulkLeadsResponse{Leads: created, CreditsUsed: cost, RemainingCredits: remaining}, nil
}

// Stats reports the status breakdown, the top industries and the mean lead score.
func (s *LeadsService) Stats(ctx context.Context, userID uuid.UUID) (dto.LeadStats, error) {
	stats, err := s.repo.Stats(ctx, userID)
	if err != nil {
		return dto.LeadStats{}, err
	}
	leads, err := s.repo.ListForExport(ctx, userID, repository.ExportQuery{})
	if err != nil {
		return dto.LeadStats{}, err
	}
	if len(leads) > 0 {
		sum := 0
		for _, lead := range leads {
			sum += scoring.ScoreLead(lead)
		}
		stats.AverageScore = math.Round(float64(sum)/float64(len(leads))*10) / 10
	}
	return stats, nil
}

// ExportLeads selects leads by id, or by the field filters when no ids are given, newest first.
func (s *LeadsService) ExportLeads(ctx context.Context, userID uuid.UUID, req dto.ExportRequest) ([]entity.Lead, error) {
	query := repository.ExportQuery{}
	if len(req.LeadIDs) > 0 {
		query.IDs = make([]uuid.UUID, 0, len(req.LeadIDs))
		for _, raw := range req.LeadIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidLeadID, raw)
			}
			query.IDs = append(query.IDs, id)
		}
	} else {
		query.Status = strings.TrimSpace(req.Filters.Status)
		query.Industry = strings.TrimSpace(req.Filters.Industry)
		query.City = strings.TrimSpace(req.Filters.City)
		query.State = strings.TrimSpace(req.Filters.State)
	}

	leads, err := s.repo.ListForExport(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrNothingToExport
	}
	return leads, nil
}

// AnalyticsLeads returns every lead created within the optional bounds. An empty result is not an error.
func (s *LeadsService) AnalyticsLeads(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]entity.Lead, error) {
	return s.repo.ListForExport(ctx, userID, repository.ExportQuery{From: from, To: to})
}

// Import reads leads from CSV. A company column is required; other columns are matched by name.
// Rows that fail validation are skipped and reported.
func (s *LeadsService) Import(ctx context.Context, userID uuid.UUID, r io.Reader) (dto.ImportLeadsResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportLeadsResponse{}, CSVValidationError{Message: "csv file is empty"}
		}
		return dto.ImportLeadsResponse{}, fmt.Errorf("read csv header: %w", err)
	}
	index, err := buildHeaderIndex(header)
	if err != nil {
		return dto.ImportLeadsResponse{}, err
	}

	var (
		resp   dto.ImportLeadsResponse
		leads  []entity.Lead
		rowNum = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.ImportLeadsResponse{}, fmt.Errorf("read csv row: %w", err)
		}
		rowNum++

		lead, err := s.prepare(ctx, userID, inputFromRow(index, row))
		if err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		leads = append(leads, lead)
	}

	if len(leads) == 0 {
		return resp, nil
	}
	created, err := s.repo.BulkCreate(ctx, leads)
	if err != nil {
		return dto.ImportLeadsResponse{}, err
	}
	resp.Imported = len(created)
	return resp, nil
}

func (s *LeadsService) prepare(ctx context.Context, userID uuid.UUID, input dto.LeadInput) (entity.Lead, error) {
	if input.Company == nil {
		return entity.Lead{}, ErrCompanyRequired
	}
	if err := s.normalizer.Normalize(ctx, &input); err != nil {
		return entity.Lead{}, err
	}
	return LeadFromInput(userID, input), nil
}

// LeadFromInput builds an unsaved lead from input; nil fields stay empty.
func LeadFromInput(userID uuid.UUID, input dto.LeadInput) entity.Lead {
	lead := entity.Lead{
		UserID:           userID,
		Company:          deref(input.Company),
		Website:          deref(input.Website),
		LinkedIn:         deref(input.LinkedIn),
		Email:            deref(input.Email),
		Phone:            deref(input.Phone),
		Industry:         deref(input.Industry),
		BusinessType:     deref(input.BusinessType),
		EmployeeCount:    deref(input.EmployeeCount),
		Revenue:          deref(input.Revenue),
		YearFounded:      deref(input.YearFounded),
		BBBRating:        deref(input.BBBRating),
		Street:           deref(input.Street),
		City:             deref(input.City),
		State:            deref(input.State),
		ZipCode:          deref(input.ZipCode),
		Country:          deref(input.Country),
		ProductsServices: []string{},
		Description:      deref(input.Description),
		Status:           deref(input.Status),
		Notes:            deref(input.Notes),
	}
	if input.ProductsServices != nil && *input.ProductsServices != nil {
		lead.ProductsServices = *input.ProductsServices
	}
	if lead.Country == "" {
		lead.Country = entity.DefaultCountry
	}
	if lead.Status == "" {
		lead.Status = entity.LeadStatusNew
	}
	return lead
}

// LeadInputFromRecord turns a scraped record into a lead input, contacts and socials included.
func LeadInputFromRecord(rec scraper.CompanyRecord) dto.LeadInput {
	products := append([]string{}, rec.ProductsServices...)
	contacts := rec.ContactInfo
	input := dto.LeadInput{
		Company:          &rec.Company,
		Website:          &rec.Website,
		Industry:         &rec.Industry,
		BusinessType:     &rec.BusinessType,
		EmployeeCount:    &rec.EmployeeCount,
		Revenue:          &rec.Revenue,
		YearFounded:      &rec.YearFounded,
		Street:           &rec.Street,
		City:             &rec.City,
		State:            &rec.State,
		ZipCode:          &rec.ZipCode,
		ProductsServices: &products,
		Description:      &rec.Description,
		ContactInfo:      &contacts,
		SocialLinks:      rec.SocialLinks,
	}
	if rec.Country != "" {
		input.Country = &rec.Country
	}
	if rec.BBBRating != "" {
		input.BBBRating = &rec.BBBRating
	}
	return input
}

// LeadFromRecord is the lead a scraped record would be stored as.
func (s *LeadsService) LeadFromRecord(ctx context.Context, userID uuid.UUID, rec scraper.CompanyRecord) (entity.Lead, error) {
	return s.prepare(ctx, userID, LeadInputFromRecord(rec))
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

var csvColumnAliases = map[string]string{
	"company":          "company",
	"companyname":      "company",
	"website":          "website",
	"linkedin":         "linkedin",
	"email":            "email",
	"phone":            "phone",
	"industry":         "industry",
	"businesstype":     "business_type",
	"employeecount":    "employee_count",
	"employees":        "employee_count",
	"revenue":          "revenue",
	"yearfounded":      "year_founded",
	"bbbrating":        "bbb_rating",
	"street":           "street",
	"address":          "street",
	"city":             "city",
	"state":            "state",
	"zipcode":          "zip_code",
	"zip":              "zip_code",
	"country":          "country",
	"productsservices": "products_services",
	"description":      "description",
	"status":           "status",
	"notes":            "notes",
}

func canonicalHeader(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return csvColumnAliases[b.String()]
}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		if key := canonicalHeader(col); key != "" {
			if _, dup := index[key]; !dup {
				index[key] = i
			}
		}
	}
	if _, ok := index["company"]; !ok {
		return nil, CSVValidationError{Message: "missing required columns: company"}
	}
	return index, nil
}

func inputFromRow(index map[string]int, row []string) dto.LeadInput {
	get := func(key string) *string {
		i, ok := index[key]
		if !ok || i >= len(row) {
			return nil
		}
		value := strings.TrimSpace(row[i])
		if value == "" {
			return nil
		}
		return &value
	}

	company := ""
	if v := get("company"); v != nil {
		company = *v
	}
	input := dto.LeadInput{
		Company:       &company,
		Website:       get("website"),
		LinkedIn:      get("linkedin"),
		Email:         get("email"),
		Phone:         get("phone"),
		Industry:      get("industry"),
		BusinessType:  get("business_type"),
		EmployeeCount: get("employee_count"),
		Revenue:       get("revenue"),
		YearFounded:   get("year_founded"),
		BBBRating:     get("bbb_rating"),
		Street:        get("street"),
		City:          get("city"),
		State:         get("state"),
		ZipCode:       get("zip_code"),
		Country:       get("country"),
		Description:   get("description"),
		Status:        get("status"),
		Notes:         get("notes"),
	}
	if v := get("products_services"); v != nil {
		products := make([]string, 0)
		for _, p := range strings.Split(*v, ";") {
			if p = strings.TrimSpace(p); p != "" {
				products = append(products, p)
			}
		}
		input.ProductsServices = &products
	}
	return input
}
