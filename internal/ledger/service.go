// Package ledger is the single source of truth for spendable credits. All
// balance mutations go through atomic single-statement storage operations;
// callers never read-modify-write.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/theaivault/backend/internal/models"
)

const trialCredits = 1

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetBalance(ctx context.Context, userID string) (*models.Account, error) {
	return s.repo.GetAccount(ctx, userID)
}

// CreateAccount lazily provisions an account with one trial credit. Calling
// it for an existing account returns the existing row unchanged.
func (s *Service) CreateAccount(ctx context.Context, userID, email string) (*models.Account, error) {
	account := &models.Account{
		ID:                 userID,
		Email:              email,
		CreditsRemaining:   trialCredits,
		TotalCreations:     0,
		SubscriptionStatus: models.SubscriptionFree,
	}
	if err := s.repo.InsertAccountIfAbsent(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.repo.GetAccount(ctx, userID)
}

// DebitOne spends one credit, or fails with ErrInsufficientCredits leaving no
// partial state. The decrement itself is the entitlement check.
func (s *Service) DebitOne(ctx context.Context, userID string) (int, error) {
	ok, err := s.repo.DebitOne(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if !ok {
		// No row affected: either the account is missing or the balance
		// is already zero.
		if _, err := s.repo.GetAccount(ctx, userID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return 0, ErrNotFound
			}
			return 0, err
		}
		return 0, ErrInsufficientCredits
	}

	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.CreditsRemaining, nil
}

// Credit adds credits and relabels the subscription status as a side effect.
func (s *Service) Credit(ctx context.Context, userID string, amount int) (int, error) {
	ok, err := s.repo.Credit(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	if !ok {
		return 0, ErrNotFound
	}

	account, err := s.repo.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return account.CreditsRemaining, nil
}

// RecordCreation appends a creation record and bumps the account's creation
// counters. It runs independently of the debit.
func (s *Service) RecordCreation(ctx context.Context, creation *models.Creation) error {
	if creation.ID == "" {
		creation.ID = uuid.New().String()
	}
	if creation.CostCredits == 0 {
		creation.CostCredits = 1
	}
	if err := s.repo.InsertCreation(ctx, creation); err != nil {
		return fmt.Errorf("insert creation: %w", err)
	}
	return s.repo.BumpCreationStats(ctx, creation.UserID, time.Now())
}
