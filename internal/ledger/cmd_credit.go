package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nextbet/platform/internal/domain"
)

// creditTypes are the entry types ExecuteCredit accepts. Payouts, refunds
// and cashouts all increase the balance; only their ledger label differs.
var creditTypes = map[domain.TransactionType]bool{
	domain.TxSignupBonus: true,
	domain.TxPayout:      true,
	domain.TxRefund:      true,
	domain.TxCashout:     true,
	domain.TxAdminPayout: true,
	domain.TxAdminRefund: true,
}

// ExecuteCredit adds points to the user's balance with the given entry type.
//
// Same discipline as ExecuteStake: lock, idempotency check, post. Credits
// never fail on balance, but the lock still serializes them against
// concurrent stakes on the same profile.
func (e *Engine) ExecuteCredit(ctx context.Context, tx pgx.Tx, params domain.CreditParams) (*domain.CommandResult, error) {
	if err := domain.ValidatePositiveAmount(params.Amount); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if !creditTypes[params.Type] {
		return nil, domain.ErrValidation(fmt.Sprintf("not a credit entry type: %s", params.Type))
	}

	profile, err := e.LockProfileForUpdate(ctx, tx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("credit: %w", err)
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

	var couponID *uuid.UUID
	if params.CouponID != uuid.Nil {
		id := params.CouponID
		couponID = &id
	}

	entry, updated, err := e.PostEntry(ctx, tx, domain.PostEntryParams{
		UserID:      params.UserID,
		Type:        params.Type,
		Amount:      params.Amount,
		PointsDelta: params.Amount,
		Reference:   strPtr(params.Reference),
		CouponID:    couponID,
		Metadata:    params.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("credit post: %w", err)
	}

	return &domain.CommandResult{Transaction: entry, Profile: updated}, nil
}
