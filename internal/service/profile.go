package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/repository"
)

// ProfileService serves the player's own account surface.
type ProfileService struct {
	pool         *pgxpool.Pool
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
}

// NewProfileService creates a ProfileService.
func NewProfileService(pool *pgxpool.Pool, profiles repository.ProfileRepository, transactions repository.TransactionRepository) *ProfileService {
	return &ProfileService{pool: pool, profiles: profiles, transactions: transactions}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find profile", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("profile", userID.String())
	}
	return profile, nil
}

// UpdateUsername changes the display name.
func (s *ProfileService) UpdateUsername(ctx context.Context, userID uuid.UUID, username string) (*domain.Profile, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := s.profiles.UpdateUsername(ctx, s.pool, userID, username); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Transactions returns the user's points ledger history, newest first.
func (s *ProfileService) Transactions(ctx context.Context, userID uuid.UUID, cursor *string, limit int) ([]domain.Transaction, error) {
	entries, err := s.transactions.ListByUser(ctx, s.pool, userID, cursor, limit)
	if err != nil {
		return nil, domain.ErrInternal("list transactions", err)
	}
	return entries, nil
}
