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

type couponRepo struct{}

// NewCouponRepository returns a pgx-backed CouponRepository.
func NewCouponRepository() CouponRepository {
	return &couponRepo{}
}

const couponColumns = `id, user_id, stake, total_odds, potential_win, status, created_at, settled_at`

func (r *couponRepo) Insert(ctx context.Context, tx pgx.Tx, c *domain.Coupon, legs []domain.Leg) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO coupons (id, user_id, stake, total_odds, potential_win, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.UserID,
		infra.Int64ToNumeric(c.Stake),
		c.TotalOdds,
		infra.Int64ToNumeric(c.PotentialWin),
		string(c.Status),
	)
	if err != nil {
		return fmt.Errorf("insert coupon: %w", err)
	}

	for i := range legs {
		leg := &legs[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO coupon_selections (id, coupon_id, match_id, prediction, odds_at_placement, status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			leg.ID, leg.CouponID, leg.MatchID,
			string(leg.Prediction), leg.OddsAtPlacement, string(leg.Status),
		)
		if err != nil {
			return fmt.Errorf("insert coupon selection: %w", err)
		}
	}
	return nil
}

func (r *couponRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Coupon, error) {
	row := db.QueryRow(ctx, `
		SELECT `+couponColumns+`
		FROM coupons WHERE id = $1`, id)
	return scanCoupon(row)
}

func (r *couponRepo) FindForUser(ctx context.Context, db DBTX, id, userID uuid.UUID) (*domain.Coupon, error) {
	row := db.QueryRow(ctx, `
		SELECT `+couponColumns+`
		FROM coupons WHERE id = $1 AND user_id = $2`, id, userID)
	return scanCoupon(row)
}

// ConditionalUpdateStatus is the atomic compare-and-set on coupon status.
// Zero affected rows means another writer settled the coupon first.
func (r *couponRepo) ConditionalUpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, expected, next domain.CouponStatus) (int64, error) {
	tag, err := db.Exec(ctx, `
		UPDATE coupons
		SET status = $3, settled_at = now()
		WHERE id = $1 AND status = $2`,
		id, string(expected), string(next))
	if err != nil {
		return 0, fmt.Errorf("conditional coupon update: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *couponRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("coupon", id.String())
	}
	return nil
}

func (r *couponRepo) ListByUser(ctx context.Context, db DBTX, userID uuid.UUID, limit int) ([]domain.Coupon, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query user coupons: %w", err)
	}
	defer rows.Close()
	return collectCoupons(rows)
}

func (r *couponRepo) ListRecent(ctx context.Context, db DBTX, limit int) ([]domain.Coupon, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Query(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent coupons: %w", err)
	}
	defer rows.Close()
	return collectCoupons(rows)
}

func (r *couponRepo) ListLegsByCoupon(ctx context.Context, db DBTX, couponID uuid.UUID) ([]domain.Leg, error) {
	rows, err := db.Query(ctx, `
		SELECT id, coupon_id, match_id, prediction, odds_at_placement, status
		FROM coupon_selections
		WHERE coupon_id = $1`, couponID)
	if err != nil {
		return nil, fmt.Errorf("query coupon selections: %w", err)
	}
	defer rows.Close()
	return collectLegs(rows)
}

func (r *couponRepo) ListLegsByMatch(ctx context.Context, db DBTX, matchID uuid.UUID) ([]domain.Leg, error) {
	rows, err := db.Query(ctx, `
		SELECT id, coupon_id, match_id, prediction, odds_at_placement, status
		FROM coupon_selections
		WHERE match_id = $1`, matchID)
	if err != nil {
		return nil, fmt.Errorf("query match selections: %w", err)
	}
	defer rows.Close()
	return collectLegs(rows)
}

func (r *couponRepo) UpdateLegStatus(ctx context.Context, db DBTX, legID uuid.UUID, status domain.LegStatus) error {
	tag, err := db.Exec(ctx, `
		UPDATE coupon_selections SET status = $2 WHERE id = $1`,
		legID, string(status))
	if err != nil {
		return fmt.Errorf("update selection status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("selection", legID.String())
	}
	return nil
}

func scanCoupon(row pgx.Row) (*domain.Coupon, error) {
	var c domain.Coupon
	var stakeNum, winNum pgtype.Numeric
	err := row.Scan(&c.ID, &c.UserID, &stakeNum, &c.TotalOdds, &winNum, &c.Status, &c.CreatedAt, &c.SettledAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan coupon: %w", err)
	}

	c.Stake, err = infra.NumericToInt64(stakeNum)
	if err != nil {
		return nil, fmt.Errorf("convert stake: %w", err)
	}
	c.PotentialWin, err = infra.NumericToInt64(winNum)
	if err != nil {
		return nil, fmt.Errorf("convert potential_win: %w", err)
	}
	return &c, nil
}

func collectCoupons(rows pgx.Rows) ([]domain.Coupon, error) {
	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		var stakeNum, winNum pgtype.Numeric
		err := rows.Scan(&c.ID, &c.UserID, &stakeNum, &c.TotalOdds, &winNum, &c.Status, &c.CreatedAt, &c.SettledAt)
		if err != nil {
			return nil, fmt.Errorf("scan coupon row: %w", err)
		}
		c.Stake, err = infra.NumericToInt64(stakeNum)
		if err != nil {
			return nil, err
		}
		c.PotentialWin, err = infra.NumericToInt64(winNum)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func collectLegs(rows pgx.Rows) ([]domain.Leg, error) {
	var legs []domain.Leg
	for rows.Next() {
		var l domain.Leg
		err := rows.Scan(&l.ID, &l.CouponID, &l.MatchID, &l.Prediction, &l.OddsAtPlacement, &l.Status)
		if err != nil {
			return nil, fmt.Errorf("scan selection row: %w", err)
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}
