package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
)

var testLeadID = uuid.MustParse("cccccccc-cccc-cccc-cccc-cccccccccccc")

func fillLead(dest []any, company, status string) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	*dest[0].(*uuid.UUID) = testLeadID
	*dest[1].(*uuid.UUID) = testUserID
	*dest[2].(*string) = company
	*dest[3].(*string) = "https://acme.com"
	*dest[4].(*string) = ""
	*dest[5].(*string) = "sales@acme.com"
	*dest[6].(*string) = "+15551234567"
	*dest[7].(*string) = "Technology"
	*dest[8].(*string) = "SaaS"
	*dest[9].(*string) = "50-200"
	*dest[10].(*string) = "Unknown"
	*dest[11].(*string) = "1999"
	*dest[12].(*string) = "N/A"
	*dest[13].(*string) = "100 Main Street"
	*dest[14].(*string) = "Springfield"
	*dest[15].(*string) = "IL"
	*dest[16].(*string) = "62701"
	*dest[17].(*string) = "USA"
	*dest[18].(*[]string) = nil
	*dest[19].(*string) = "Widgets"
	*dest[20].(*string) = status
	*dest[21].(*string) = ""
	*dest[22].(**time.Time) = nil
	*dest[23].(*time.Time) = created
	*dest[24].(*time.Time) = created
}

// stubTx only implements what BulkCreate touches.
type stubTx struct {
	pgx.Tx
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	committed    bool
	rolledBack   bool
}

func (s *stubTx) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return s.queryRowFunc(ctx, query, args...)
}

func (s *stubTx) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}

func (s *stubTx) Rollback(ctx context.Context) error {
	if !s.committed {
		s.rolledBack = true
	}
	return nil
}

func TestPGXLeadsRepository_CreateDefaults(t *testing.T) {
	var gotArgs []any
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotArgs = args
			return &stubRow{scan: func(dest ...any) error {
				fillLead(dest, "Acme Corp", "new")
				return nil
			}}
		},
	}}

	lead, err := repo.Create(context.Background(), entity.Lead{UserID: testUserID, Company: "Acme Corp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Company != "Acme Corp" || lead.ProductsServices == nil {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if gotArgs[16] != entity.DefaultCountry || gotArgs[19] != entity.LeadStatusNew {
		t.Fatalf("expected country and status defaults, got %v / %v", gotArgs[16], gotArgs[19])
	}
	if products, ok := gotArgs[17].([]string); !ok || products == nil {
		t.Fatalf("expected empty products slice, got %#v", gotArgs[17])
	}
}

func TestPGXLeadsRepository_GetNotFound(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}}
	if _, err := repo.Get(context.Background(), testUserID, testLeadID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_Update(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery, gotArgs = query, args
			return &stubRow{scan: func(dest ...any) error {
				fillLead(dest, "Acme Corp", "contacted")
				return nil
			}}
		},
	}}

	status := "contacted"
	notes := "called twice"
	lead, err := repo.Update(context.Background(), testUserID, testLeadID, dto.LeadInput{Status: &status, Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Status != "contacted" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if !strings.Contains(gotQuery, "status = $1, notes = $2, last_contacted = NOW(), updated_at = NOW() WHERE id = $3 AND user_id = $4") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if len(gotArgs) != 4 || gotArgs[2] != testLeadID || gotArgs[3] != testUserID {
		t.Fatalf("unexpected args: %v", gotArgs)
	}
}

func TestPGXLeadsRepository_Delete(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}}
	if err := repo.Delete(context.Background(), testUserID, testLeadID); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestPGXLeadsRepository_List(t *testing.T) {
	var countQuery, listQuery string
	var listArgs []any
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			countQuery = query
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*int) = 120
				return nil
			}}
		},
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			listQuery, listArgs = query, args
			return &stubRows{scans: []func(dest ...any) error{
				func(dest ...any) error { fillLead(dest, "Acme Corp", "new"); return nil },
				func(dest ...any) error { fillLead(dest, "Beta LLC", "new"); return nil },
			}}, nil
		},
	}}

	leads, total, err := repo.List(context.Background(), testUserID, dto.LeadFilter{Status: "new", Search: "acme", Page: 3, Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 120 || len(leads) != 2 {
		t.Fatalf("unexpected result: total=%d leads=%d", total, len(leads))
	}
	if !strings.Contains(countQuery, "WHERE user_id = $1 AND status = $2 AND (company ~* $3 OR email ~* $3 OR city ~* $3 OR state ~* $3)") {
		t.Fatalf("unexpected count query: %s", countQuery)
	}
	if !strings.Contains(listQuery, "ORDER BY created_at DESC LIMIT $4 OFFSET $5") {
		t.Fatalf("unexpected list query: %s", listQuery)
	}
	if listArgs[3] != 50 || listArgs[4] != 100 {
		t.Fatalf("unexpected paging args: %v", listArgs)
	}
}

func TestPGXLeadsRepository_BulkCreate(t *testing.T) {
	inserted := 0
	tx := &stubTx{queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
		inserted++
		company := args[1].(string)
		return &stubRow{scan: func(dest ...any) error {
			fillLead(dest, company, "new")
			return nil
		}}
	}}
	repo := &PGXLeadsRepository{pool: &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return tx, nil },
	}}

	leads, err := repo.BulkCreate(context.Background(), []entity.Lead{
		{UserID: testUserID, Company: "Acme Corp"},
		{UserID: testUserID, Company: "Beta LLC"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 2 || leads[1].Company != "Beta LLC" || inserted != 2 || !tx.committed {
		t.Fatalf("unexpected bulk result: %+v committed=%v", leads, tx.committed)
	}

	failing := &stubTx{queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
		return &stubRow{scan: func(dest ...any) error { return errors.New("boom") }}
	}}
	repo.pool = &stubPool{
		beginTxFunc: func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) { return failing, nil },
	}
	if _, err := repo.BulkCreate(context.Background(), []entity.Lead{{Company: "Acme Corp"}}); err == nil {
		t.Fatalf("expected error")
	}
	if failing.committed || !failing.rolledBack {
		t.Fatalf("expected rollback on failure")
	}
}

func TestPGXLeadsRepository_Stats(t *testing.T) {
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				for i, v := range []int{10, 4, 3, 1, 1, 1} {
					*dest[i].(*int) = v
				}
				return nil
			}}
		},
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			if args[1] != topIndustriesLimit {
				t.Fatalf("expected limit %d, got %v", topIndustriesLimit, args[1])
			}
			return &stubRows{scans: []func(dest ...any) error{
				func(dest ...any) error {
					*dest[0].(*string) = "Technology"
					*dest[1].(*int) = 7
					return nil
				},
			}}, nil
		},
	}}

	stats, err := repo.Stats(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.StatusBreakdown.Total != 10 || stats.StatusBreakdown.New != 4 || stats.StatusBreakdown.Closed != 1 {
		t.Fatalf("unexpected breakdown: %+v", stats.StatusBreakdown)
	}
	if len(stats.TopIndustries) != 1 || stats.TopIndustries[0].Count != 7 {
		t.Fatalf("unexpected industries: %+v", stats.TopIndustries)
	}
}

func TestPGXLeadsRepository_ListForExport(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXLeadsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			gotQuery, gotArgs = query, args
			return &stubRows{}, nil
		},
	}}

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := []uuid.UUID{testLeadID}
	leads, err := repo.ListForExport(context.Background(), testUserID, ExportQuery{IDs: ids, Status: "new", From: &from})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leads == nil || len(leads) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", leads)
	}
	if !strings.Contains(gotQuery, "user_id = $1 AND id = ANY($2) AND created_at >= $3") || strings.Contains(gotQuery, "status = ") {
		t.Fatalf("ids should take precedence over filters: %s", gotQuery)
	}
	if len(gotArgs) != 3 {
		t.Fatalf("unexpected args: %v", gotArgs)
	}

	if _, err := repo.ListForExport(context.Background(), testUserID, ExportQuery{Industry: "Retail", City: "Austin"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "user_id = $1 AND industry = $2 AND city = $3") {
		t.Fatalf("unexpected filter query: %s", gotQuery)
	}
}
