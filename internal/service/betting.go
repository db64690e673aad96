package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/infra"
	"github.com/nextbet/platform/internal/ledger"
	"github.com/nextbet/platform/internal/policy"
	"github.com/nextbet/platform/internal/repository"
)

// MaxCouponLegs caps how many selections one coupon may carry.
const MaxCouponLegs = 10

// BettingService handles coupon placement, cashout and coupon queries.
type BettingService struct {
	pool         *pgxpool.Pool
	ledger       *ledger.Engine
	coupons      repository.CouponRepository
	matches      repository.MatchRepository
	profiles     repository.ProfileRepository
	transactions repository.TransactionRepository
	outbox       repository.OutboxRepository
	limits       policy.StakeLimitPolicy
	logger       *slog.Logger
}

// NewBettingService creates a BettingService.
func NewBettingService(
	pool *pgxpool.Pool,
	ledgerEngine *ledger.Engine,
	coupons repository.CouponRepository,
	matches repository.MatchRepository,
	profiles repository.ProfileRepository,
	transactions repository.TransactionRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *BettingService {
	return &BettingService{
		pool:         pool,
		ledger:       ledgerEngine,
		coupons:      coupons,
		matches:      matches,
		profiles:     profiles,
		transactions: transactions,
		outbox:       outbox,
		limits:       policy.DefaultStakeLimits(),
		logger:       logger,
	}
}

// SelectionInput is one requested leg of a coupon.
type SelectionInput struct {
	MatchID    uuid.UUID   `json:"match_id"`
	Prediction domain.Side `json:"prediction"`
}

// PlaceCouponInput holds the coupon placement request.
type PlaceCouponInput struct {
	Stake      int64            `json:"stake"`
	Selections []SelectionInput `json:"selections"`
}

// CouponDetail is a coupon together with its legs.
type CouponDetail struct {
	domain.Coupon
	Legs []domain.Leg `json:"selections"`
}

// PlaceCoupon validates the requested selections, freezes the current
// odds, and atomically deducts the stake while inserting the coupon.
// The whole placement is one database transaction: if the stake cannot
// be deducted the coupon never existed.
func (s *BettingService) PlaceCoupon(ctx context.Context, userID uuid.UUID, input PlaceCouponInput) (*CouponDetail, error) {
	if err := domain.ValidatePositiveAmount(input.Stake); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Selections) == 0 {
		return nil, domain.ErrValidation("coupon requires at least one selection")
	}
	if len(input.Selections) > MaxCouponLegs {
		return nil, domain.ErrValidation(fmt.Sprintf("coupon exceeds %d selections", MaxCouponLegs))
	}

	profile, err := s.profiles.FindByID(ctx, s.pool, userID)
	if err != nil {
		return nil, domain.ErrInternal("find profile", err)
	}
	if profile == nil {
		return nil, domain.ErrNotFound("profile", userID.String())
	}
	if profile.IsBanned {
		return nil, domain.ErrForbidden("account is banned")
	}

	// Wagering limits count stakes placed since midnight UTC.
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	staked, err := s.transactions.SumStakedSince(ctx, s.pool, userID, midnight)
	if err != nil {
		return nil, domain.ErrInternal("sum staked", err)
	}
	if eval := policy.EvaluateStakeLimits(s.limits, input.Stake, staked); !eval.Allowed {
		return nil, domain.ErrValidation(
			fmt.Sprintf("stake limit breached (%s): limit %d points", eval.BreachedLimit, eval.LimitValue))
	}

	// Resolve each selection against its match and freeze the odds.
	// One match may appear only once per coupon.
	seen := make(map[uuid.UUID]bool, len(input.Selections))
	couponID := uuid.New()
	legs := make([]domain.Leg, 0, len(input.Selections))
	legOdds := make([]int64, 0, len(input.Selections))
	for _, sel := range input.Selections {
		if err := domain.ValidatePrediction(sel.Prediction); err != nil {
			return nil, domain.ErrValidation(err.Error())
		}
		if seen[sel.MatchID] {
			return nil, domain.ErrValidation(fmt.Sprintf("duplicate selection for match %s", sel.MatchID))
		}
		seen[sel.MatchID] = true

		match, err := s.matches.FindByID(ctx, s.pool, sel.MatchID)
		if err != nil {
			return nil, domain.ErrInternal("find match", err)
		}
		if match == nil {
			return nil, domain.ErrNotFound("match", sel.MatchID.String())
		}
		if match.Status.Terminal() {
			return nil, domain.ErrValidation(fmt.Sprintf("match %s is no longer open for betting", sel.MatchID))
		}

		odds := match.OddsA
		if sel.Prediction == domain.SideB {
			odds = match.OddsB
		}
		legs = append(legs, domain.Leg{
			ID:              uuid.New(),
			CouponID:        couponID,
			MatchID:         sel.MatchID,
			Prediction:      sel.Prediction,
			OddsAtPlacement: odds,
			Status:          domain.LegPending,
		})
		legOdds = append(legOdds, odds)
	}

	totalOdds := domain.CombinedOdds(legOdds)
	coupon := &domain.Coupon{
		ID:           couponID,
		UserID:       userID,
		Stake:        input.Stake,
		TotalOdds:    totalOdds,
		PotentialWin: domain.PotentialWin(input.Stake, totalOdds),
		Status:       domain.CouponOpen,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.coupons.Insert(ctx, tx, coupon, legs); err != nil {
		return nil, domain.ErrInternal("insert coupon", err)
	}

	meta, _ := json.Marshal(map[string]interface{}{"legs": len(legs), "totalOdds": totalOdds})
	if _, err := s.ledger.ExecuteStake(ctx, tx, domain.StakeParams{
		UserID:    userID,
		Amount:    input.Stake,
		Reference: fmt.Sprintf("place-%s", couponID),
		CouponID:  couponID,
		Metadata:  meta,
	}); err != nil {
		return nil, err
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewCouponPlacedEvent(coupon, len(legs))); err != nil {
		return nil, domain.ErrInternal("coupon placed event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	infra.CouponsPlaced.Inc()
	s.logger.Info("coupon placed",
		"coupon_id", couponID, "user_id", userID,
		"stake", input.Stake, "total_odds", totalOdds, "legs", len(legs))

	return &CouponDetail{Coupon: *coupon, Legs: legs}, nil
}

// Cashout closes an open coupon early for a flat 90% of the stake.
// The conditional OPEN check and the points credit commit together, so
// a coupon can never be both cashed out and settled.
func (s *BettingService) Cashout(ctx context.Context, userID, couponID uuid.UUID) (*CouponDetail, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	coupon, err := s.coupons.FindForUser(ctx, tx, couponID, userID)
	if err != nil {
		return nil, domain.ErrInternal("find coupon", err)
	}
	if coupon == nil {
		return nil, domain.ErrNotFound("coupon", couponID.String())
	}
	if coupon.Status != domain.CouponOpen {
		return nil, domain.ErrConflict("coupon is already settled")
	}

	affected, err := s.coupons.ConditionalUpdateStatus(ctx, tx, couponID, domain.CouponOpen, domain.CouponCashouted)
	if err != nil {
		return nil, domain.ErrInternal("cashout update", err)
	}
	if affected == 0 {
		return nil, domain.ErrConflict("coupon was settled concurrently")
	}

	value := domain.CashoutValue(coupon.Stake)
	if value > 0 {
		if _, err := s.ledger.ExecuteCredit(ctx, tx, domain.CreditParams{
			UserID:    userID,
			Type:      domain.TxCashout,
			Amount:    value,
			Reference: fmt.Sprintf("cashout-%s", couponID),
			CouponID:  couponID,
		}); err != nil {
			return nil, err
		}
	}

	event := domain.NewCouponSettledEvent(couponID, userID, domain.CouponCashouted, value)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("coupon settled event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	infra.CashoutsExecuted.Inc()
	s.logger.Info("coupon cashed out",
		"coupon_id", couponID, "user_id", userID, "value", value)

	return s.GetCoupon(ctx, userID, couponID)
}

// GetCoupon returns one of the user's coupons with its legs.
func (s *BettingService) GetCoupon(ctx context.Context, userID, couponID uuid.UUID) (*CouponDetail, error) {
	coupon, err := s.coupons.FindForUser(ctx, s.pool, couponID, userID)
	if err != nil {
		return nil, domain.ErrInternal("find coupon", err)
	}
	if coupon == nil {
		return nil, domain.ErrNotFound("coupon", couponID.String())
	}
	legs, err := s.coupons.ListLegsByCoupon(ctx, s.pool, couponID)
	if err != nil {
		return nil, domain.ErrInternal("list selections", err)
	}
	return &CouponDetail{Coupon: *coupon, Legs: legs}, nil
}

// ListUserCoupons returns the user's coupons with legs, newest first.
func (s *BettingService) ListUserCoupons(ctx context.Context, userID uuid.UUID, limit int) ([]CouponDetail, error) {
	coupons, err := s.coupons.ListByUser(ctx, s.pool, userID, limit)
	if err != nil {
		return nil, domain.ErrInternal("list coupons", err)
	}

	details := make([]CouponDetail, 0, len(coupons))
	for _, c := range coupons {
		legs, err := s.coupons.ListLegsByCoupon(ctx, s.pool, c.ID)
		if err != nil {
			return nil, domain.ErrInternal("list selections", err)
		}
		details = append(details, CouponDetail{Coupon: c, Legs: legs})
	}
	return details, nil
}

// ListUpcomingMatches returns the bettable match board.
func (s *BettingService) ListUpcomingMatches(ctx context.Context) ([]domain.Match, error) {
	matches, err := s.matches.ListUpcoming(ctx, s.pool)
	if err != nil {
		return nil, domain.ErrInternal("list matches", err)
	}
	return matches, nil
}
