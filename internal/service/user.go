package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leads-scraper/internal/dto"
	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/repository"
)

var (
	// ErrInvalidUserID is returned for ids that are not UUIDs.
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidPlan is returned for plans outside the known tiers.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrNegativeCredits is returned when an admin sets a balance below zero.
	ErrNegativeCredits = errors.New("credits must not be negative")
)

// UserService encapsulates administrative operations for users.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

// ListUsers returns all users as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toUserResponse(u))
	}
	return responses, nil
}

// CreateUser creates a new user with the supplied role, plan and balance.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.TrimSpace(req.Role)
	plan := strings.ToLower(strings.TrimSpace(req.Plan))

	if email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}
	if role == "" {
		role = entity.RoleUser
	}
	if plan == "" {
		plan = entity.PlanFree
	}
	if !entity.ValidPlan(plan) {
		return nil, ErrInvalidPlan
	}
	credits := entity.DefaultCredits
	if req.Credits != nil {
		if *req.Credits < 0 {
			return nil, ErrNegativeCredits
		}
		credits = *req.Credits
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		Name:         name,
		Company:      strings.TrimSpace(req.Company),
		Plan:         plan,
		Credits:      credits,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, repository.ErrEmailDuplicate
		}
		return nil, err
	}

	resp := toUserResponse(*user)
	return &resp, nil
}

// UpdateUser mutates selected user fields.
func (s *UserService) UpdateUser(ctx context.Context, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	var update repository.UserUpdate
	if req.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*req.Email))
		if trimmed == "" {
			return nil, errors.New("email cannot be empty")
		}
		update.Email = &trimmed
	}
	if req.Role != nil {
		trimmed := strings.TrimSpace(*req.Role)
		if trimmed == "" {
			return nil, errors.New("role cannot be empty")
		}
		update.Role = &trimmed
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		update.Name = &trimmed
	}
	if req.Company != nil {
		trimmed := strings.TrimSpace(*req.Company)
		update.Company = &trimmed
	}
	if req.Plan != nil {
		plan := strings.ToLower(strings.TrimSpace(*req.Plan))
		if !entity.ValidPlan(plan) {
			return nil, ErrInvalidPlan
		}
		update.Plan = &plan
	}
	if req.Credits != nil {
		if *req.Credits < 0 {
			return nil, ErrNegativeCredits
		}
		update.Credits = req.Credits
	}
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, errors.New("password cannot be empty")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		update.PasswordHash = &pwd
	}

	user, err := s.repo.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(*user)
	return &resp, nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidUserID
	}
	return s.repo.Delete(ctx, userID)
}
