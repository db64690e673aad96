package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nextbet/platform/internal/domain"
)

// ExecuteStake deducts a coupon stake from the user's points balance.
//
// Sequence: lock the profile row, check the idempotency index, verify
// the balance covers the stake, then post the negative entry. A repeated
// reference returns the original entry without touching the balance.
func (e *Engine) ExecuteStake(ctx context.Context, tx pgx.Tx, params domain.StakeParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	profile, err := e.LockProfileForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("stake: %w", err)
	}

	if params.Reference != "" {
		existing, err := e.FindExistingEntry(ctx, tx, domain.IdempotencyKey{
			UserID:    params.UserID,
			Reference: params.Reference,
		})
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &domain.CommandResult{Transaction: existing, Profile: profile, Idempotent: true}, nil
		}
	}

	if profile.Points < params.Amount {
		return nil, domain.ErrInsufficientBalance()
	}

	couponID := params.CouponID
	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:      params.UserID,
		Type:        domain.TxStake,
		Amount:      params.Amount,
		PointsDelta: -params.Amount,
		Reference:   strPtr(params.Reference),
		CouponID:    &couponID,
		Metadata:    params.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("stake post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Profile: updated}, nil
}
