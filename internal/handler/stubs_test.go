package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/llm"
	"github.com/octobees/leads-scraper/internal/middleware"
	"github.com/octobees/leads-scraper/internal/repository"
)

type stubUsersRepo struct {
	findByEmail    func(ctx context.Context, email string) (*entity.User, error)
	findByID       func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	create         func(ctx context.Context, user entity.User) (*entity.User, error)
	list           func(ctx context.Context) ([]entity.User, error)
	update         func(ctx context.Context, id uuid.UUID, update repository.UserUpdate) (*entity.User, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	debitCredits   func(ctx context.Context, id uuid.UUID, amount int) (int, error)
	touchLastLogin func(ctx context.Context, id uuid.UUID) error
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.findByEmail != nil {
		return s.findByEmail(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if s.findByID != nil {
		return s.findByID(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Create(ctx context.Context, user entity.User) (*entity.User, error) {
	if s.create != nil {
		return s.create(ctx, user)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) List(ctx context.Context) ([]entity.User, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Update(ctx context.Context, id uuid.UUID, update repository.UserUpdate) (*entity.User, error) {
	if s.update != nil {
		return s.update(ctx, id, update)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

func (s *stubUsersRepo) DebitCredits(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	if s.debitCredits != nil {
		return s.debitCredits(ctx, id, amount)
	}
	return 0, errors.New("not implemented")
}

func (s *stubUsersRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if s.touchLastLogin != nil {
		return s.touchLastLogin(ctx, id)
	}
	return nil
}

// walletRepo keeps one user's balance in memory.
func walletRepo(balance *int) *stubUsersRepo {
	return &stubUsersRepo{
		findByID: func(ctx context.Context, id uuid.UUID) (*entity.User, error) {
			return &entity.User{ID: id, Credits: *balance}, nil
		},
		debitCredits: func(ctx context.Context, id uuid.UUID, amount int) (int, error) {
			if *balance < amount {
				return *balance, repository.ErrCreditsExhausted
			}
			*balance -= amount
			return *balance, nil
		},
	}
}

type stubLeadsRepo struct {
	create        func(ctx context.Context, lead entity.Lead) (*entity.Lead, error)
	bulkCreate    func(ctx context.Context, leads []entity.Lead) ([]entity.Lead, error)
	get           func(ctx context.Context, userID, id uuid.UUID) (*entity.Lead, error)
	update        func(ctx context.Context, userID, id uuid.UUID, input dto.LeadInput) (*entity.Lead, error)
	delete        func(ctx context.Context, userID, id uuid.UUID) error
	list          func(ctx context.Context, userID uuid.UUID, filter dto.LeadFilter) ([]entity.Lead, int, error)
	stats         func(ctx context.Context, userID uuid.UUID) (dto.LeadStats, error)
	listForExport func(ctx context.Context, userID uuid.UUID, query repository.ExportQuery) ([]entity.Lead, error)
}

func (s *stubLeadsRepo) Create(ctx context.Context, lead entity.Lead) (*entity.Lead, error) {
	if s.create != nil {
		return s.create(ctx, lead)
	}
	return nil, errors.New("not implemented")
}

func (s *stubLeadsRepo) BulkCreate(ctx context.Context, leads []entity.Lead) ([]entity.Lead, error) {
	if s.bulkCreate != nil {
		return s.bulkCreate(ctx, leads)
	}
	return nil, errors.New("not implemented")
}

func (s *stubLeadsRepo) Get(ctx context.Context, userID, id uuid.UUID) (*entity.Lead, error) {
	if s.get != nil {
		return s.get(ctx, userID, id)
	}
	return nil, errors.New("not implemented")
}

func (s *stubLeadsRepo) Update(ctx context.Context, userID, id uuid.UUID, input dto.LeadInput) (*entity.Lead, error) {
	if s.update != nil {
		return s.update(ctx, userID, id, input)
	}
	return nil, errors.New("not implemented")
}

func (s *stubLeadsRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, userID, id)
	}
	return errors.New("not implemented")
}

func (s *stubLeadsRepo) List(ctx context.Context, userID uuid.UUID, filter dto.LeadFilter) ([]entity.Lead, int, error) {
	if s.list != nil {
		return s.list(ctx, userID, filter)
	}
	return nil, 0, errors.New("not implemented")
}

func (s *stubLeadsRepo) Stats(ctx context.Context, userID uuid.UUID) (dto.LeadStats, error) {
	if s.stats != nil {
		return s.stats(ctx, userID)
	}
	return dto.LeadStats{}, errors.New("not implemented")
}

func (s *stubLeadsRepo) ListForExport(ctx context.Context, userID uuid.UUID, query repository.ExportQuery) ([]entity.Lead, error) {
	if s.listForExport != nil {
		return s.listForExport(ctx, userID, query)
	}
	return nil, errors.New("not implemented")
}

// stubFetcher serves canned HTML per URL; unknown URLs fail.
type stubFetcher struct {
	pages map[string]string
	err   error
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if html, ok := s.pages[url]; ok {
		return html, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", errors.New("unexpected url " + url)
}

type stubProvider struct {
	answer string
	err    error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (string, error) {
	return s.answer, s.err
}

// newJSONContext builds an echo context for a JSON request. A raw string body is sent as-is.
func newJSONContext(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		if payload, err = json.Marshal(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func asUser(c echo.Context, id uuid.UUID) echo.Context {
	c.Set(middleware.ContextKeyUserID, id)
	return c
}

// decodeData unmarshals the data member of an envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) APIResponse {
	t.Helper()
	var raw struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, strings.TrimSpace(rec.Body.String()))
	}
	if out != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, out); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return APIResponse{Status: raw.Status, Message: raw.Message}
}
