package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/octobees/leads-scraper/internal/repository"
)

// Credit costs per billable operation.
const (
	CostScrapeCompany   = 1
	CostLinkedInProfile = 1
	CostGoogleSearch    = 1
	CostEmail           = 1
	CostFollowUp        = 1
	CostLinkedInMessage = 1
)

// ErrInsufficientCredits is matched by every InsufficientCreditsError.
var ErrInsufficientCredits = errors.New("insufficient credits")

// InsufficientCreditsError reports how far short a balance is.
type InsufficientCreditsError struct {
	Required  int
	Available int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: required %d, available %d", e.Required, e.Available)
}

// Is lets errors.Is match ErrInsufficientCredits.
func (e *InsufficientCreditsError) Is(target error) bool {
	return target == ErrInsufficientCredits
}

// CreditService checks and moves user credit balances.
type CreditService struct {
	users repository.UsersRepository
}

// NewCreditService builds a CreditService.
func NewCreditService(users repository.UsersRepository) *CreditService {
	return &CreditService{users: users}
}

// Balance returns the current balance of userID.
func (s *CreditService) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}

// Require fails with *InsufficientCreditsError when the balance is below amount. Nothing is debited.
func (s *CreditService) Require(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	available, err := s.Balance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if available < amount {
		return available, &InsufficientCreditsError{Required: amount, Available: available}
	}
	return available, nil
}

// Debit subtracts amount and returns the remaining balance. A zero amount only reads the balance.
func (s *CreditService) Debit(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return s.Balance(ctx, userID)
	}
	remaining, err := s.users.DebitCredits(ctx, userID, amount)
	if errors.Is(err, repository.ErrCreditsExhausted) {
		return remaining, &InsufficientCreditsError{Required: amount, Available: remaining}
	}
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// Refund gives back credits reserved for work that did not happen.
func (s *CreditService) Refund(ctx context.Context, userID uuid.UUID, amount int) (int, error) {
	if amount <= 0 {
		return s.Balance(ctx, userID)
	}
	return s.users.DebitCredits(ctx, userID, -amount)
}
