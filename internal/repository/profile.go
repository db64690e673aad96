package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/infra"
)

type profileRepo struct{}

// NewProfileRepository returns a pgx-backed ProfileRepository.
func NewProfileRepository() ProfileRepository {
	return &profileRepo{}
}

func (r *profileRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Profile, error) {
	row := db.QueryRow(ctx, `
		SELECT id, username, points, is_banned, is_admin, created_at, updated_at
		FROM profiles WHERE id = $1`, id)
	return scanProfile(row)
}

func (r *profileRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Profile, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, username, points, is_banned, is_admin, created_at, updated_at
		FROM profiles WHERE id = $1 FOR UPDATE`, id)
	return scanProfile(row)
}

func (r *profileRepo) Create(ctx context.Context, db DBTX, profile *domain.Profile) error {
	_, err := db.Exec(ctx, `
		INSERT INTO profiles (id, username, points, is_banned, is_admin)
		VALUES ($1, $2, $3, $4, $5)`,
		profile.ID,
		profile.Username,
		infra.Int64ToNumeric(profile.Points),
		profile.IsBanned,
		profile.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// ApplyPointsDelta mutates the balance with server-side arithmetic so two
// concurrent transactions can never write a stale snapshot over each other.
func (r *profileRepo) ApplyPointsDelta(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int64) (*domain.Profile, error) {
	row := tx.QueryRow(ctx, `
		UPDATE profiles
		SET points = points + $2, updated_at = now()
		WHERE id = $1
		RETURNING id, username, points, is_banned, is_admin, created_at, updated_at`,
		id, infra.Int64ToNumeric(delta))
	return scanProfile(row)
}

func (r *profileRepo) UpdateUsername(ctx context.Context, db DBTX, id uuid.UUID, username string) error {
	tag, err := db.Exec(ctx, `
		UPDATE profiles SET username = $2, updated_at = now() WHERE id = $1`,
		id, username)
	if err != nil {
		return fmt.Errorf("update username: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("profile", id.String())
	}
	return nil
}

func (r *profileRepo) SetBanned(ctx context.Context, db DBTX, id uuid.UUID, banned bool) error {
	tag, err := db.Exec(ctx, `
		UPDATE profiles SET is_banned = $2, updated_at = now() WHERE id = $1`,
		id, banned)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("profile", id.String())
	}
	return nil
}

func (r *profileRepo) List(ctx context.Context, db DBTX) ([]domain.Profile, error) {
	rows, err := db.Query(ctx, `
		SELECT id, username, points, is_banned, is_admin, created_at, updated_at
		FROM profiles
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		var pointsNum pgtype.Numeric
		if err := rows.Scan(&p.ID, &p.Username, &pointsNum, &p.IsBanned, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		p.Points, err = infra.NumericToInt64(pointsNum)
		if err != nil {
			return nil, fmt.Errorf("convert points: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) Leaderboard(ctx context.Context, db DBTX, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := db.Query(ctx, `
		SELECT username, points
		FROM profiles
		WHERE is_banned = false
		ORDER BY points DESC, username ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		var pointsNum pgtype.Numeric
		if err := rows.Scan(&e.Username, &pointsNum); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		e.Points, err = infra.NumericToInt64(pointsNum)
		if err != nil {
			return nil, fmt.Errorf("convert points: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var pointsNum pgtype.Numeric
	err := row.Scan(&p.ID, &p.Username, &pointsNum, &p.IsBanned, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}

	p.Points, err = infra.NumericToInt64(pointsNum)
	if err != nil {
		return nil, fmt.Errorf("convert points: %w", err)
	}
	return &p, nil
}
