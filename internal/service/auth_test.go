package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-scraper/internal/auth"
	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/repository"
)

type mockUsersRepository struct {
	findByEmail    func(ctx context.Context, email string) (*entity.User, error)
	findByID       func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	create         func(ctx context.Context, user entity.User) (*entity.User, error)
	list           func(ctx context.Context) ([]entity.User, error)
	update         func(ctx context.Context, id uuid.UUID, update repository.UserUpdate) (*entity.User, error)
	delete         func(ctx context.Context, id uuid.UUID) error
	debitCredits   func(ctx context.Context, id uuid.UUID, amount int) (int, error)
	touchLastLogin func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, errors.New("findByEmail not implemented")
}

func (m *mockUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockUsersRepository) Create(ctx context.Context, user entity.User) (*entity.User, error) {
	if m.create != nil {
		return m.create(ctx, user)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	if m.list != nil {
		return m.list(ctx)
	}
	return nil, errors.New("List not implemented")
}

func (m *mockUsersRepository) Update(ctx context.Context, id uuid.UUID, update repository.UserUpdate) (*entity.User, error) {
	if m.update != nil {
		return m.update(ctx, id, update)
	}
	return nil, errors.New("Update not implemented")
}

func (m *mockUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.delete != nil {
		return m.delete(ctx, id)
	}
	return errors.New("Delete not implemented")
}

func (m *mockUsersRepository) DebitCredits(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	if m.debitCredits != nil {
		return m.debitCredits(ctx, id, amount)
	}
	return 0, errors.New("DebitCredits not implemented")
}

func (m *mockUsersRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	if m.touchLastLogin != nil {
		return m.touchLastLogin(ctx, id)
	}
	return nil
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected bcrypt error: %v", err)
	}

	touched := false
	tests := map[string]struct {
		email       string
		password    string
		repo        repository.UsersRepository
		expectError error
	}{
		"empty credentials": {
			repo:        &mockUsersRepository{},
			expectError: ErrMissingCredentials,
		},
		"user not found": {
			email:    "john@example.com",
			password: "whatever",
			repo: &mockUsersRepository{
				findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
					return nil, repository.ErrUserNotFound
				},
			},
			expectError: ErrInvalidCredentials,
		},
		"password mismatch": {
			email:    "john@example.com",
			password: "wrong",
			repo: &mockUsersRepository{
				findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
					return &entity.User{ID: uuid.New(), Email: email, PasswordHash: string(hashed), Role: "user"}, nil
				},
			},
			expectError: ErrInvalidCredentials,
		},
		"success": {
			email:    " John@Example.com ",
			password: "super-secret",
			repo: &mockUsersRepository{
				findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
					if email != "john@example.com" {
						t.Fatalf("expected normalised email, got %q", email)
					}
					return &entity.User{
						ID:           uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"),
						Email:        email,
						PasswordHash: string(hashed),
						Role:         "admin",
						Credits:      12,
					}, nil
				},
				touchLastLogin: func(ctx context.Context, id uuid.UUID) error {
					touched = true
					return errors.New("ignored")
				},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			jwtManager := auth.NewJWTManager("test-secret", 0)
			service := NewAuthService(tt.repo, jwtManager, nil)

			resp, err := service.Login(context.Background(), tt.email, tt.password)
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				if resp.AccessToken != "" {
					t.Fatalf("expected empty token on error, got %q", resp.AccessToken)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.AccessToken == "" || resp.User.Credits != 12 {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
	if !touched {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestAuthService_Register(t *testing.T) {
	tests := map[string]struct {
		req         dto.RegisterRequest
		repo        repository.UsersRepository
		expectError error
	}{
		"empty payload": {
			expectError: ErrMissingCredentials,
			repo:        &mockUsersRepository{},
		},
		"missing name": {
			req:         dto.RegisterRequest{Email: "john@example.com", Password: "password123"},
			expectError: ErrNameRequired,
			repo:        &mockUsersRepository{},
		},
		"duplicate email": {
			req: dto.RegisterRequest{Email: "john@example.com", Password: "password123", Name: "John"},
			repo: &mockUsersRepository{
				create: func(ctx context.Context, user entity.User) (*entity.User, error) {
					return nil, repository.ErrEmailDuplicate
				},
			},
			expectError: ErrEmailAlreadyExists,
		},
		"success": {
			req: dto.RegisterRequest{Email: "jane@example.com", Password: "password123", Name: " Jane ", Company: "Acme"},
			repo: &mockUsersRepository{
				create: func(ctx context.Context, user entity.User) (*entity.User, error) {
					if user.Plan != entity.PlanFree || user.Credits != entity.DefaultCredits || user.Role != entity.RoleUser || user.Name != "Jane" {
						t.Fatalf("unexpected defaults: %+v", user)
					}
					if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")) != nil {
						t.Fatalf("password was not hashed")
					}
					user.ID = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
					return &user, nil
				},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			jwtManager := auth.NewJWTManager("register-secret", 0)
			service := NewAuthService(tt.repo, jwtManager, nil)

			resp, err := service.Register(context.Background(), tt.req)
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.AccessToken == "" || resp.User.Plan != "free" || resp.User.Credits != 5 {
				t.Fatalf("unexpected response: %+v", resp)
			}
		})
	}
}

func TestAuthService_Me(t *testing.T) {
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	repo := &mockUsersRepository{
		findByID: func(ctx context.Context, got uuid.UUID) (*entity.User, error) {
			if got != id {
				return nil, repository.ErrUserNotFound
			}
			return &entity.User{ID: id, Email: "me@example.com", Name: "Me", Plan: "silver", Credits: 40}, nil
		},
	}
	service := NewAuthService(repo, auth.NewJWTManager("secret", 0), nil)

	me, err := service.Me(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if me.Email != "me@example.com" || me.Plan != "silver" || me.Credits != 40 {
		t.Fatalf("unexpected profile: %+v", me)
	}
	if _, err := service.Me(context.Background(), uuid.New()); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
