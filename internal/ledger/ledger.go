package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/infra"
	"github.com/nextbet/platform/internal/repository"
)

// Engine provides the 3 foundational points-ledger operations:
//  1. LockProfileForUpdate — row-level pessimistic lock
//  2. FindExistingEntry — idempotency check
//  3. PostEntry — atomic balance update + append-only insert + outbox event
//
// Every balance mutation in the system goes through PostEntry, inside a
// database transaction opened by the caller.
type Engine struct {
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
}

// NewEngine creates a ledger engine with the given repositories.
func NewEngine(
	profiles repository.ProfileRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
) *Engine {
	return &Engine{
		profiles:     profiles,
		transactions: transactions,
		outbox:       outbox,
	}
}

// LockProfileForUpdate acquires a row-level lock and returns the profile.
// Must be called within a transaction.
func (e *Engine) LockProfileForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := e.profiles.LockForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("lock profile: %w", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("profile", userID.String())
	}
	return profile, nil
}

// FindExistingEntry checks if an entry with the same idempotency key exists.
// Returns nil if no duplicate found.
func (e *Engine) FindExistingEntry(ctx context.Context, tx pgx.Tx, key domain.IdempotencyKey) (*domain.Transaction, error) {
	existing, err := e.transactions.FindExisting(ctx, tx, key)
	if err != nil {
		return nil, fmt.Errorf("find existing entry: %w", err)
	}
	return existing, nil
}

// PostEntry atomically updates the points balance and inserts a ledger entry.
// This is the core write primitive, every command delegates to it.
//
// Steps:
//  1. Update points using server-side arithmetic
//  2. Insert the entry with the post-update balance snapshot
//  3. Insert the outbox event
//
// All 3 steps run within the caller's transaction.
func (e *Engine) PostEntry(ctx context.Context, tx pgx.Tx, params domain.PostEntryParams) (*domain.Transaction, *domain.Profile, error) {
	params.Metadata = ensureJSON(params.Metadata)

	updated, err := e.profiles.ApplyPointsDelta(ctx, tx, params.UserID, params.PointsDelta)
	if err != nil {
		return nil, nil, fmt.Errorf("apply points delta: %w", err)
	}

	entry, err := e.transactions.Insert(ctx, tx, params, updated.Points)
	if err != nil {
		return nil, nil, fmt.Errorf("insert entry: %w", err)
	}

	event := domain.NewTransactionPostedEvent(entry)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return nil, nil, fmt.Errorf("insert outbox event: %w", err)
	}

	infra.LedgerEntries.WithLabelValues(string(params.Type)).Inc()
	return entry, updated, nil
}
