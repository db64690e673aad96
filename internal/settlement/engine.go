package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/infra"
	"github.com/nextbet/platform/internal/ledger"
	"github.com/nextbet/platform/internal/repository"
)

// Engine settles every open coupon touched by a match outcome.
//
// Each coupon is processed in its own database transaction: resolve the
// coupon's legs for this match, re-read all legs, fold them into the
// coupon outcome, and close the coupon with a conditional status update.
// The conditional update is what makes concurrent settlement, cashout
// and admin override safe: whichever writer flips OPEN first wins, the
// others see zero affected rows and walk away.
type Engine struct {
	pool    *pgxpool.Pool
	ledger  *ledger.Engine
	coupons repository.CouponRepository
	matches repository.MatchRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
}

// NewEngine creates a settlement engine.
func NewEngine(
	pool *pgxpool.Pool,
	ledgerEngine *ledger.Engine,
	coupons repository.CouponRepository,
	matches repository.MatchRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		pool:    pool,
		ledger:  ledgerEngine,
		coupons: coupons,
		matches: matches,
		outbox:  outbox,
		logger:  logger,
	}
}

// Result summarizes one settlement run.
type Result struct {
	Settled int `json:"settled"`
	Won     int `json:"won"`
	Lost    int `json:"lost"`
	Voided  int `json:"voided"`
	Skipped int `json:"skipped"`
}

// SettleMatch settles all open coupons holding a selection on the given
// match. The match must already be in a terminal state; the stored status
// and winner drive leg resolution. Safe to call again after a partial
// failure, already-settled coupons are skipped.
func (e *Engine) SettleMatch(ctx context.Context, matchID uuid.UUID) (*Result, error) {
	match, err := e.matches.FindByID(ctx, e.pool, matchID)
	if err != nil {
		return nil, fmt.Errorf("settle match: %w", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", matchID.String())
	}
	if !match.Status.Terminal() {
		return nil, domain.ErrValidation(fmt.Sprintf("match %s is not finished or cancelled", matchID))
	}

	legs, err := e.coupons.ListLegsByMatch(ctx, e.pool, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match selections: %w", err)
	}

	// One coupon may hold several legs on the same match only in theory;
	// dedupe so each coupon is processed once.
	seen := make(map[uuid.UUID]bool)
	var couponIDs []uuid.UUID
	for _, leg := range legs {
		if !seen[leg.CouponID] {
			seen[leg.CouponID] = true
			couponIDs = append(couponIDs, leg.CouponID)
		}
	}

	result := &Result{}
	for _, couponID := range couponIDs {
		outcome, err := e.settleCoupon(ctx, couponID, match)
		if err != nil {
			return result, fmt.Errorf("settle coupon %s: %w", couponID, err)
		}
		switch outcome {
		case domain.CouponWon:
			result.Won++
			result.Settled++
		case domain.CouponLost:
			result.Lost++
			result.Settled++
		case domain.CouponVoided:
			result.Voided++
			result.Settled++
		default:
			result.Skipped++
		}
	}

	if err := e.outbox.Insert(ctx, e.pool, domain.NewMatchSettledEvent(matchID, match.Status, result.Settled)); err != nil {
		return result, fmt.Errorf("match settled event: %w", err)
	}

	e.logger.Info("match settled",
		"match_id", matchID, "status", match.Status,
		"settled", result.Settled, "skipped", result.Skipped)
	return result, nil
}

// settleCoupon runs the settlement of one coupon in its own transaction
// and returns the outcome, or CouponOpen when the coupon stays open or
// was already closed by another writer.
func (e *Engine) settleCoupon(ctx context.Context, couponID uuid.UUID, match *domain.Match) (domain.CouponStatus, error) {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return domain.CouponOpen, domain.ErrInternal("begin settle tx", err)
	}
	defer tx.Rollback(ctx)

	coupon, err := e.coupons.FindByID(ctx, tx, couponID)
	if err != nil {
		return domain.CouponOpen, err
	}
	if coupon == nil {
		e.logger.Warn("selection references missing coupon", "coupon_id", couponID)
		return domain.CouponOpen, nil
	}
	if coupon.Status != domain.CouponOpen {
		return domain.CouponOpen, nil
	}

	legs, err := e.coupons.ListLegsByCoupon(ctx, tx, couponID)
	if err != nil {
		return domain.CouponOpen, err
	}

	// Resolve this match's pending legs against the stored outcome.
	statuses := make([]domain.LegStatus, 0, len(legs))
	for i := range legs {
		leg := &legs[i]
		if leg.MatchID == match.ID && leg.Status == domain.LegPending {
			resolved := domain.ResolveLeg(match.Status, match.Winner, leg.Prediction)
			if resolved != leg.Status {
				if err := e.coupons.UpdateLegStatus(ctx, tx, leg.ID, resolved); err != nil {
					return domain.CouponOpen, err
				}
				leg.Status = resolved
			}
		}
		statuses = append(statuses, leg.Status)
	}

	outcome := domain.EvaluateCoupon(statuses)
	if outcome == domain.CouponOpen {
		// Legs updated, coupon waits for its remaining matches.
		if err := tx.Commit(ctx); err != nil {
			return domain.CouponOpen, domain.ErrInternal("commit settle tx", err)
		}
		return domain.CouponOpen, nil
	}

	affected, err := e.coupons.ConditionalUpdateStatus(ctx, tx, couponID, domain.CouponOpen, outcome)
	if err != nil {
		return domain.CouponOpen, err
	}
	if affected == 0 {
		// Lost the race to a cashout or admin override.
		e.logger.Info("coupon already closed, skipping", "coupon_id", couponID)
		return domain.CouponOpen, nil
	}

	credit := coupon.SettlementCredit(outcome)
	if credit > 0 {
		creditType := domain.TxPayout
		if outcome == domain.CouponVoided {
			creditType = domain.TxRefund
		}
		meta, _ := json.Marshal(map[string]interface{}{
			"settlement": string(outcome),
			"matchId":    match.ID.String(),
		})
		if _, err := e.ledger.ExecuteCredit(ctx, tx, domain.CreditParams{
			UserID:    coupon.UserID,
			Type:      creditType,
			Amount:    credit,
			Reference: fmt.Sprintf("settle-%s", couponID),
			CouponID:  couponID,
			Metadata:  meta,
		}); err != nil {
			return domain.CouponOpen, err
		}
	}

	event := domain.NewCouponSettledEvent(couponID, coupon.UserID, outcome, credit)
	if err := e.outbox.Insert(ctx, tx, event); err != nil {
		return domain.CouponOpen, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.CouponOpen, domain.ErrInternal("commit settle tx", err)
	}

	infra.CouponsSettled.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}
