package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
)

// ErrLeadNotFound is returned when a lead does not exist or belongs to another user.
var ErrLeadNotFound = errors.New("lead not found")

// topIndustriesLimit caps the industries returned by Stats.
const topIndustriesLimit = 10

// ExportQuery selects leads for an export. IDs win over the field filters when present.
type ExportQuery struct {
	IDs      []uuid.UUID
	Status   string
	Industry string
	City     string
	State    string
	From     *time.Time
	To       *time.Time
}

// LeadsRepository describes persistence operations for leads. Every call is scoped to one owner.
type LeadsRepository interface {
	Create(ctx context.Context, lead entity.Lead) (*entity.Lead, error)
	BulkCreate(ctx context.Context, leads []entity.Lead) ([]entity.Lead, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*entity.Lead, error)
	Update(ctx context.Context, userID, id uuid.UUID, input dto.LeadInput) (*entity.Lead, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter dto.LeadFilter) ([]entity.Lead, int, error)
	Stats(ctx context.Context, userID uuid.UUID) (dto.LeadStats, error)
	ListForExport(ctx context.Context, userID uuid.UUID, query ExportQuery) ([]entity.Lead, error)
}

// PGXLeadsRepository implements LeadsRepository using pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

const leadColumns = `id, user_id, company, website, linkedin, email, phone, industry, business_type,
            employee_count, revenue, year_founded, bbb_rating, street, city, state, zip_code, country,
            products_services, description, status, notes, last_contacted, created_at, updated_at`

const insertLeadSQL = `
        INSERT INTO leads (
            user_id, company, website, linkedin, email, phone, industry, business_type,
            employee_count, revenue, year_founded, bbb_rating, street, city, state, zip_code, country,
            products_services, description, status, notes
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
        RETURNING ` + leadColumns

func scanLead(row scanner) (*entity.Lead, error) {
	var lead entity.Lead
	err := row.Scan(
		&lead.ID,
		&lead.UserID,
		&lead.Company,
		&lead.Website,
		&lead.LinkedIn,
		&lead.Email,
		&lead.Phone,
		&lead.Industry,
		&lead.BusinessType,
		&lead.EmployeeCount,
		&lead.Revenue,
		&lead.YearFounded,
		&lead.BBBRating,
		&lead.Street,
		&lead.City,
		&lead.State,
		&lead.ZipCode,
		&lead.Country,
		&lead.ProductsServices,
		&lead.Description,
		&lead.Status,
		&lead.Notes,
		&lead.LastContacted,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lead.ProductsServices == nil {
		lead.ProductsServices = []string{}
	}
	return &lead, nil
}

func insertArgs(lead entity.Lead) []any {
	products := lead.ProductsServices
	if products == nil {
		products = []string{}
	}
	status := lead.Status
	if status == "" {
		status = entity.LeadStatusNew
	}
	country := lead.Country
	if country == "" {
		country = entity.DefaultCountry
	}
	return []any{
		lead.UserID,
		lead.Company,
		lead.Website,
		lead.LinkedIn,
		lead.Email,
		lead.Phone,
		lead.Industry,
		lead.BusinessType,
		lead.EmployeeCount,
		lead.Revenue,
		lead.YearFounded,
		lead.BBBRating,
		lead.Street,
		lead.City,
		lead.State,
		lead.ZipCode,
		country,
		products,
		lead.Description,
		status,
		lead.Notes,
	}
}

// Create inserts one lead.
func (r *PGXLeadsRepository) Create(ctx context.Context, lead entity.Lead) (*entity.Lead, error) {
	created, err := scanLead(r.pool.QueryRow(ctx, insertLeadSQL, insertArgs(lead)...))
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return created, nil
}

// BulkCreate inserts all leads in one transaction; either every row lands or none does.
func (r *PGXLeadsRepository) BulkCreate(ctx context.Context, leads []entity.Lead) ([]entity.Lead, error) {
	created := make([]entity.Lead, 0, len(leads))
	if len(leads) == 0 {
		return created, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("start bulk insert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, lead := range leads {
		row, err := scanLead(tx.QueryRow(ctx, insertLeadSQL, insertArgs(lead)...))
		if err != nil {
			return nil, fmt.Errorf("bulk insert lead %q: %w", lead.Company, err)
		}
		created = append(created, *row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit bulk insert tx: %w", err)
	}
	return created, nil
}

// Get returns the lead with id owned by userID.
func (r *PGXLeadsRepository) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead: %w", err)
	}
	return lead, nil
}

// Update patches the non-nil fields of input.
func (r *PGXLeadsRepository) Update(ctx context.Context, userID, id uuid.UUID, input dto.LeadInput) (*entity.Lead, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	setString := func(column string, value *string) {
		if value == nil {
			return
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, *value)
		idx++
	}
	setString("company", input.Company)
	setString("website", input.Website)
	setString("linkedin", input.LinkedIn)
	setString("email", input.Email)
	setString("phone", input.Phone)
	setString("industry", input.Industry)
	setString("business_type", input.BusinessType)
	setString("employee_count", input.EmployeeCount)
	setString("revenue", input.Revenue)
	setString("year_founded", input.YearFounded)
	setString("bbb_rating", input.BBBRating)
	setString("street", input.Street)
	setString("city", input.City)
	setString("state", input.State)
	setString("zip_code", input.ZipCode)
	setString("country", input.Country)
	setString("description", input.Description)
	setString("status", input.Status)
	setString("notes", input.Notes)
	if input.ProductsServices != nil {
		products := *input.ProductsServices
		if products == nil {
			products = []string{}
		}
		setClauses = append(setClauses, fmt.Sprintf("products_services = $%d", idx))
		args = append(args, products)
		idx++
	}
	if input.Status != nil && *input.Status == entity.LeadStatusContacted {
		setClauses = append(setClauses, "last_contacted = NOW()")
	}

	if len(setClauses) == 0 {
		return r.Get(ctx, userID, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id, userID)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(setClauses, ", "), idx, idx+1, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// Delete removes a lead owned by userID.
func (r *PGXLeadsRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// List returns one page of leads, newest first, plus the total number of matches.
func (r *PGXLeadsRepository) List(ctx context.Context, userID uuid.UUID, filter dto.LeadFilter) ([]entity.Lead, int, error) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}
	idx := 2

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Industry != "" {
		clauses = append(clauses, fmt.Sprintf("industry = $%d", idx))
		args = append(args, filter.Industry)
		idx++
	}
	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(company ~* $%d OR email ~* $%d OR city ~* $%d OR state ~* $%d)", idx, idx, idx, idx))
		args = append(args, filter.Search)
		idx++
	}
	where := " WHERE " + strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	limit := filter.Limit
	page := filter.Page
	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, leadColumns, where, idx, idx+1)
	args = append(args, limit, (page-1)*limit)

	leads, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// Stats counts leads per status and returns the most common industries.
func (r *PGXLeadsRepository) Stats(ctx context.Context, userID uuid.UUID) (dto.LeadStats, error) {
	var stats dto.LeadStats
	b := &stats.StatusBreakdown
	err := r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*),
            COUNT(*) FILTER (WHERE status = 'new'),
            COUNT(*) FILTER (WHERE status = 'contacted'),
            COUNT(*) FILTER (WHERE status = 'qualified'),
            COUNT(*) FILTER (WHERE status = 'converted'),
            COUNT(*) FILTER (WHERE status = 'closed')
        FROM leads WHERE user_id = $1
    `, userID).Scan(&b.Total, &b.New, &b.Contacted, &b.Qualified, &b.Converted, &b.Closed)
	if err != nil {
		return stats, fmt.Errorf("count lead statuses: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
        SELECT industry, COUNT(*) AS count
        FROM leads WHERE user_id = $1
        GROUP BY industry
        ORDER BY count DESC, industry ASC
        LIMIT $2
    `, userID, topIndustriesLimit)
	if err != nil {
		return stats, fmt.Errorf("query top industries: %w", err)
	}
	defer rows.Close()

	stats.TopIndustries = make([]dto.IndustryCount, 0)
	for rows.Next() {
		var row dto.IndustryCount
		if err := rows.Scan(&row.Industry, &row.Count); err != nil {
			return stats, fmt.Errorf("scan industry row: %w", err)
		}
		stats.TopIndustries = append(stats.TopIndustries, row)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("iterate industries: %w", err)
	}
	return stats, nil
}

// ListForExport returns every lead matching query, newest first.
func (r *PGXLeadsRepository) ListForExport(ctx context.Context, userID uuid.UUID, q ExportQuery) ([]entity.Lead, error) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}
	idx := 2

	eq := func(column, value string) {
		if value == "" {
			return
		}
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}
	if len(q.IDs) > 0 {
		clauses = append(clauses, fmt.Sprintf("id = ANY($%d)", idx))
		args = append(args, q.IDs)
		idx++
	} else {
		eq("status", q.Status)
		eq("industry", q.Industry)
		eq("city", q.City)
		eq("state", q.State)
	}
	if q.From != nil {
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", idx))
		args = append(args, *q.From)
		idx++
	}
	if q.To != nil {
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", idx))
		args = append(args, *q.To)
	}

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC`, leadColumns, strings.Join(clauses, " AND "))
	return r.collect(ctx, query, args...)
}

func (r *PGXLeadsRepository) collect(ctx context.Context, query string, args ...any) ([]entity.Lead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]entity.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}
