package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nextbet/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ProfileRepository provides access to profiles (the points balance row).
type ProfileRepository interface {
	// FindByID returns a profile by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Profile, error)

	// LockForUpdate acquires a row-level lock (SELECT FOR UPDATE) and returns the profile.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Profile, error)

	// Create inserts a new profile.
	Create(ctx context.Context, db DBTX, profile *domain.Profile) error

	// ApplyPointsDelta updates the points balance with server-side arithmetic
	// and returns the post-update profile.
	ApplyPointsDelta(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Profile, error)

	// UpdateUsername changes the display name.
	UpdateUsername(ctx context.Context, db DBTX, id uuid.UUID, username string) error

	// SetBanned flips the ban flag.
	SetBanned(ctx context.Context, db DBTX, id uuid.UUID, banned bool) error

	// List returns all profiles, newest first.
	List(ctx context.Context, db DBTX) ([]domain.Profile, error)

	// Leaderboard returns the top profiles by points.
	Leaderboard(ctx context.Context, db DBTX, limit int) ([]domain.LeaderboardEntry, error)
}

// TournamentRepository provides access to tournaments.
type TournamentRepository interface {
	Create(ctx context.Context, db DBTX, name string) (*domain.Tournament, error)
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error
	List(ctx context.Context, db DBTX) ([]domain.Tournament, error)
}

// MatchRepository provides access to matches.
type MatchRepository interface {
	// FindByID returns a match by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error)

	// Create inserts a new match in PENDING state.
	Create(ctx context.Context, db DBTX, m *domain.Match) error

	// UpdateDetails edits the editable fields of a match.
	UpdateDetails(ctx context.Context, db DBTX, m *domain.Match) error

	// UpdateStatus transitions the match status and records the winner.
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.MatchStatus, winner *domain.Side) error

	// Delete removes a match; its legs cascade at the database level.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// ListUpcoming returns PENDING and LIVE matches ordered by start time.
	ListUpcoming(ctx context.Context, db DBTX) ([]domain.Match, error)

	// ListByTournament returns every match of a tournament.
	ListByTournament(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Match, error)
}

// CouponRepository provides access to coupons and their selections.
type CouponRepository interface {
	// Insert creates the coupon row and all of its legs.
	Insert(ctx context.Context, tx pgx.Tx, c *domain.Coupon, legs []domain.Leg) error

	// FindByID returns a coupon by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Coupon, error)

	// FindForUser returns a coupon only when owned by the given user.
	FindForUser(ctx context.Context, db DBTX, id, userID uuid.UUID) (*domain.Coupon, error)

	// ConditionalUpdateStatus transitions the coupon status only when the
	// current status matches expected, returning the number of affected rows.
	// This is the single concurrency-safety primitive for coupon closure.
	ConditionalUpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, expected, next domain.CouponStatus) (int64, error)

	// Delete hard-removes a coupon; legs cascade.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// ListByUser returns a user's coupons, newest first.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Coupon, error)

	// ListRecent returns the latest coupons across all users.
	ListRecent(ctx context.Context, db DBTX, limit int) ([]domain.Coupon, error)

	// ListLegsByCoupon returns every leg of one coupon.
	ListLegsByCoupon(ctx context.Context, db DBTX, couponID uuid.UUID) ([]domain.Leg, error)

	// ListLegsByMatch returns every leg referencing a match.
	ListLegsByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Leg, error)

	// UpdateLegStatus sets one leg's status.
	UpdateLegStatus(ctx context.Context, db DBTX, legID uuid.UUID, status domain.LegStatus) error
}

// TransactionRepository provides access to the append-only points ledger.
type TransactionRepository interface {
	// FindExisting checks the idempotency index for a duplicate entry.
	FindExisting(ctx context.Context, db DBTX, key domain.IdempotencyKey) (*domain.Transaction, error)

	// Insert creates a new ledger entry with the post-update balance snapshot.
	Insert(ctx context.Context, db DBTX, params domain.PostEntryParams, balanceAfter int64) (*domain.Transaction, error)

	// ListByUser returns entries for a user, newest first, cursor-paginated.
	ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, cursor *string, limit int) ([]domain.Transaction, error)

	// SumStakedSince returns the total points staked by the user since the
	// given time, for wagering limit checks.
	SumStakedSince(ctx context.Context, db DBTX, userID uuid.UUID, since time.Time) (int64, error)
}

// OutboxRepository writes outbox events. Draining and publishing is the
// infra poller's job; it reads event_outbox directly.
type OutboxRepository interface {
	// Insert writes an outbox event (within the same transaction as the state change).
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error
}

// AuthUserRepository provides access to auth_users.
type AuthUserRepository interface {
	// FindByEmail returns an auth user by email, or nil if not found.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error)

	// FindByID returns an auth user by ID, or nil if not found.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.AuthUser, error)

	// Create inserts a new auth user.
	Create(ctx context.Context, db DBTX, user *domain.AuthUser) error

	// UpdatePasswordHash updates the password hash for the given user.
	UpdatePasswordHash(ctx context.Context, db DBTX, id uuid.UUID, hash string) error
}
