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

	"github.com/octobees/leads-scraper/internal/entity"
)

type stubPool struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	beginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (s *stubPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRowFunc != nil {
		return s.queryRowFunc(ctx, query, args...)
	}
	return &stubRow{scan: func(dest ...any) error { return nil }}
}

func (s *stubPool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.queryFunc != nil {
		return s.queryFunc(ctx, query, args...)
	}
	return nil, errors.New("query not implemented")
}

func (s *stubPool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.execFunc != nil {
		return s.execFunc(ctx, query, args...)
	}
	return pgconn.CommandTag{}, errors.New("exec not implemented")
}

func (s *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if s.beginTxFunc != nil {
		return s.beginTxFunc(ctx, txOptions)
	}
	return nil, errors.New("begin tx not implemented")
}

type stubRow struct {
	scan func(dest ...any) error
}

func (s *stubRow) Scan(dest ...any) error {
	if s.scan != nil {
		return s.scan(dest...)
	}
	return nil
}

type stubRows struct {
	scans []func(dest ...any) error
	idx   int
	err   error
}

func (s *stubRows) Close() {}

func (s *stubRows) Err() error { return s.err }

func (s *stubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (s *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (s *stubRows) Next() bool {
	if s.err != nil {
		return false
	}
	if s.idx < len(s.scans) {
		s.idx++
		return true
	}
	return false
}

func (s *stubRows) Scan(dest ...any) error {
	if s.idx == 0 || s.idx > len(s.scans) {
		return errors.New("scan called out of order")
	}
	return s.scans[s.idx-1](dest...)
}

func (s *stubRows) Values() ([]any, error) { return nil, nil }

func (s *stubRows) RawValues() [][]byte { return nil }

func (s *stubRows) Conn() *pgx.Conn { return nil }

var testUserID = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")

func fillUser(dest []any, email, role string, credits int) {
	created := time.Now()
	*dest[0].(*uuid.UUID) = testUserID
	*dest[1].(*string) = email
	*dest[2].(*string) = "hashed"
	*dest[3].(*string) = "Jane Doe"
	*dest[4].(*string) = "Octobees"
	*dest[5].(*string) = "free"
	*dest[6].(*int) = credits
	*dest[7].(*string) = role
	*dest[8].(**time.Time) = nil
	*dest[9].(*time.Time) = created
	*dest[10].(*time.Time) = created.Add(time.Minute)
}

func TestPGXUsersRepository_FindByEmail(t *testing.T) {
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				fillUser(dest, "user@example.com", "admin", 5)
				return nil
			}}
		},
	}}

	user, err := repo.FindByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "user@example.com" || user.Role != "admin" || user.Credits != 5 || user.Name != "Jane Doe" {
		t.Fatalf("unexpected user: %+v", user)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}
	if _, err := repo.FindByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXUsersRepository_Create(t *testing.T) {
	var gotArgs []any
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotArgs = args
			return &stubRow{scan: func(dest ...any) error {
				fillUser(dest, "user@example.com", "user", 5)
				return nil
			}}
		},
	}}

	user, err := repo.Create(context.Background(), entity.User{
		Email: "user@example.com", PasswordHash: "hashed", Name: "Jane Doe", Plan: "free", Credits: 5, Role: "user",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "user@example.com" {
		t.Fatalf("expected created user, got %+v", user)
	}
	if len(gotArgs) != 7 || gotArgs[5] != 5 {
		t.Fatalf("unexpected insert args: %v", gotArgs)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
			}}
		},
	}
	if _, err := repo.Create(context.Background(), entity.User{Email: "user@example.com"}); !errors.Is(err, ErrEmailDuplicate) {
		t.Fatalf("expected ErrEmailDuplicate, got %v", err)
	}
}

func TestPGXUsersRepository_List(t *testing.T) {
	repo := &PGXUsersRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{
				scans: []func(dest ...any) error{
					func(dest ...any) error {
						fillUser(dest, "admin@example.com", "admin", 100)
						return nil
					},
				},
			}, nil
		},
	}}

	rows, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Email != "admin@example.com" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestPGXUsersRepository_Update(t *testing.T) {
	var gotQuery string
	var gotArgs []any
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			gotQuery, gotArgs = query, args
			return &stubRow{scan: func(dest ...any) error {
				fillUser(dest, "updated@example.com", "admin", 50)
				return nil
			}}
		},
	}}

	plan := "gold"
	credits := 50
	user, err := repo.Update(context.Background(), testUserID, UserUpdate{Plan: &plan, Credits: &credits})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Credits != 50 {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !strings.Contains(gotQuery, "plan = $1, credits = $2, updated_at = NOW() WHERE id = $3") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if len(gotArgs) != 3 || gotArgs[2] != testUserID {
		t.Fatalf("unexpected args: %v", gotArgs)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}
	if _, err := repo.Update(context.Background(), uuid.New(), UserUpdate{Plan: &plan}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXUsersRepository_Delete(t *testing.T) {
	repo := &PGXUsersRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 1"), nil
		},
	}}

	if err := repo.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.pool = &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			return pgconn.NewCommandTag("DELETE 0"), nil
		},
	}
	if err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXUsersRepository_DebitCredits(t *testing.T) {
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*int) = 3
				return nil
			}}
		},
	}}
	remaining, err := repo.DebitCredits(context.Background(), testUserID, 2)
	if err != nil || remaining != 3 {
		t.Fatalf("expected 3 remaining, got %d, %v", remaining, err)
	}

	calls := 0
	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			calls++
			if calls == 1 {
				return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
			}
			return &stubRow{scan: func(dest ...any) error {
				*dest[0].(*int) = 1
				return nil
			}}
		},
	}
	available, err := repo.DebitCredits(context.Background(), testUserID, 2)
	if !errors.Is(err, ErrCreditsExhausted) || available != 1 {
		t.Fatalf("expected exhausted with 1 available, got %d, %v", available, err)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	if _, err := repo.DebitCredits(context.Background(), uuid.New(), 1); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXUsersRepository_TouchLastLogin(t *testing.T) {
	var gotQuery string
	repo := &PGXUsersRepository{pool: &stubPool{
		execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
			gotQuery = query
			return pgconn.NewCommandTag("UPDATE 1"), nil
		},
	}}
	if err := repo.TouchLastLogin(context.Background(), testUserID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotQuery, "last_login = NOW()") {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
}
