package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-scraper/internal/auth"
	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/repository"
)

var (
	// ErrEmailAlreadyExists is returned when registering an address that is taken.
	ErrEmailAlreadyExists = errors.New("email already registered")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingCredentials is returned when email or password is blank.
	ErrMissingCredentials = errors.New("email and password must not be empty")
	// ErrNameRequired is returned when registering without a name.
	ErrNameRequired = errors.New("name is required")
)

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	users  repository.UsersRepository
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{users: users, jwt: jwtManager, logger: logger}
}

// Register creates a free-plan account with the starting credit balance and signs it in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" || req.Password == "" {
		return dto.LoginResponse{}, ErrMissingCredentials
	}
	if name == "" {
		return dto.LoginResponse{}, ErrNameRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Company:      strings.TrimSpace(req.Company),
		Plan:         entity.PlanFree,
		Credits:      entity.DefaultCredits,
		Role:         entity.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return dto.LoginResponse{}, ErrEmailAlreadyExists
		}
		return dto.LoginResponse{}, err
	}

	return s.issue(*user)
}

// Login validates credentials, records the login time and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (dto.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return dto.LoginResponse{}, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	return s.issue(*user)
}

// Me returns the profile of the signed-in user.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, err
	}
	return toUserResponse(*user), nil
}

func (s *AuthService) issue(user entity.User) (dto.LoginResponse, error) {
	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return dto.LoginResponse{AccessToken: token, User: toUserResponse(user)}, nil
}

func toUserResponse(u entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Company:   u.Company,
		Role:      u.Role,
		Plan:      u.Plan,
		Credits:   u.Credits,
		LastLogin: u.LastLogin,
	}
}
