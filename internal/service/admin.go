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
	"github.com/nextbet/platform/internal/repository"
	"github.com/nextbet/platform/internal/settlement"
)

// OverrideAction enumerates the manual coupon resolutions an admin can apply.
type OverrideAction string

const (
	OverridePayOut OverrideAction = "PAY_OUT"
	OverrideVoid   OverrideAction = "VOID"
	OverrideReject OverrideAction = "REJECT"
)

// AdminService handles the back-office surface: tournaments, matches,
// coupon overrides and user management.
type AdminService struct {
	pool        *pgxpool.Pool
	ledger      *ledger.Engine
	settlement  *settlement.Engine
	tournaments repository.TournamentRepository
	matches     repository.MatchRepository
	coupons     repository.CouponRepository
	profiles    repository.ProfileRepository
	outbox      repository.OutboxRepository
	logger      *slog.Logger
}

// NewAdminService creates an AdminService.
func NewAdminService(
	pool *pgxpool.Pool,
	ledgerEngine *ledger.Engine,
	settlementEngine *settlement.Engine,
	tournaments repository.TournamentRepository,
	matches repository.MatchRepository,
	coupons repository.CouponRepository,
	profiles repository.ProfileRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		pool:        pool,
		ledger:      ledgerEngine,
		settlement:  settlementEngine,
		tournaments: tournaments,
		matches:     matches,
		coupons:     coupons,
		profiles:    profiles,
		outbox:      outbox,
		logger:      logger,
	}
}

// --- Tournaments ---

// CreateTournament adds a named tournament.
func (s *AdminService) CreateTournament(ctx context.Context, name string) (*domain.Tournament, error) {
	if name == "" {
		return nil, domain.ErrValidation("tournament name is required")
	}
	return s.tournaments.Create(ctx, s.pool, name)
}

// DeleteTournament removes a tournament. Matches must be removed first;
// the foreign key restricts the delete otherwise.
func (s *AdminService) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	matches, err := s.matches.ListByTournament(ctx, s.pool, id)
	if err != nil {
		return domain.ErrInternal("list tournament matches", err)
	}
	if len(matches) > 0 {
		return domain.ErrConflict("tournament still has matches")
	}
	return s.tournaments.Delete(ctx, s.pool, id)
}

// ListTournaments returns all tournaments.
func (s *AdminService) ListTournaments(ctx context.Context) ([]domain.Tournament, error) {
	return s.tournaments.List(ctx, s.pool)
}

// --- Matches ---

// CreateMatchInput holds the match creation request.
type CreateMatchInput struct {
	TournamentID uuid.UUID `json:"tournament_id"`
	GameName     string    `json:"game_name"`
	TeamA        string    `json:"team_a"`
	TeamB        string    `json:"team_b"`
	OddsA        int64     `json:"odds_a"`
	OddsB        int64     `json:"odds_b"`
	Handicap     *string   `json:"handicap,omitempty"`
	StartTime    time.Time `json:"start_time"`
}

// CreateMatch adds a match in PENDING state.
func (s *AdminService) CreateMatch(ctx context.Context, input CreateMatchInput) (*domain.Match, error) {
	if input.TeamA == "" || input.TeamB == "" {
		return nil, domain.ErrValidation("both team names are required")
	}
	if err := domain.ValidateOdds(input.OddsA); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateOdds(input.OddsB); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	m := &domain.Match{
		ID:           uuid.New(),
		TournamentID: input.TournamentID,
		GameName:     input.GameName,
		TeamA:        input.TeamA,
		TeamB:        input.TeamB,
		OddsA:        input.OddsA,
		OddsB:        input.OddsB,
		Handicap:     input.Handicap,
		StartTime:    input.StartTime,
		Status:       domain.MatchPending,
	}
	if err := s.matches.Create(ctx, s.pool, m); err != nil {
		return nil, domain.ErrInternal("create match", err)
	}
	return m, nil
}

// UpdateMatch edits the match details. Existing coupons keep the odds
// they froze at placement; edits only affect future placements.
func (s *AdminService) UpdateMatch(ctx context.Context, id uuid.UUID, input CreateMatchInput) (*domain.Match, error) {
	m, err := s.matches.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", id.String())
	}
	if m.Status.Terminal() {
		return nil, domain.ErrConflict("match is already settled")
	}
	if err := domain.ValidateOdds(input.OddsA); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateOdds(input.OddsB); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	m.GameName = input.GameName
	m.TeamA = input.TeamA
	m.TeamB = input.TeamB
	m.OddsA = input.OddsA
	m.OddsB = input.OddsB
	m.Handicap = input.Handicap
	m.StartTime = input.StartTime
	if err := s.matches.UpdateDetails(ctx, s.pool, m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetMatchStatus transitions the match lifecycle. Moving into FINISHED
// or CANCELLED records the outcome and runs settlement over every open
// coupon holding a leg on the match.
func (s *AdminService) SetMatchStatus(ctx context.Context, id uuid.UUID, status domain.MatchStatus, winner *domain.Side) (*settlement.Result, error) {
	if err := domain.ValidateMatchOutcome(status, winner); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	m, err := s.matches.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", id.String())
	}
	if m.Status.Terminal() {
		return nil, domain.ErrConflict("match is already settled")
	}

	if err := s.matches.UpdateStatus(ctx, s.pool, id, status, winner); err != nil {
		return nil, err
	}

	if !status.Terminal() {
		return &settlement.Result{}, nil
	}
	return s.settlement.SettleMatch(ctx, id)
}

// DeleteMatch removes a match. A non-terminal match is cancelled and
// settled first so every open coupon holding it is voided or refunded
// before the row disappears.
func (s *AdminService) DeleteMatch(ctx context.Context, id uuid.UUID) (*settlement.Result, error) {
	m, err := s.matches.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if m == nil {
		return nil, domain.ErrNotFound("match", id.String())
	}

	result := &settlement.Result{}
	if !m.Status.Terminal() {
		if err := s.matches.UpdateStatus(ctx, s.pool, id, domain.MatchCancelled, nil); err != nil {
			return nil, err
		}
		result, err = s.settlement.SettleMatch(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	if err := s.matches.Delete(ctx, s.pool, id); err != nil {
		return nil, err
	}
	s.logger.Info("match deleted", "match_id", id, "voided_coupons", result.Voided)
	return result, nil
}

// --- Coupon override ---

// OverrideCoupon manually resolves a disputed coupon. The conditional
// OPEN check makes the override lose cleanly against a concurrent
// settlement or cashout instead of double-crediting.
func (s *AdminService) OverrideCoupon(ctx context.Context, couponID uuid.UUID, action OverrideAction) (*domain.Coupon, error) {
	var next domain.CouponStatus
	switch action {
	case OverridePayOut:
		next = domain.CouponWon
	case OverrideVoid:
		next = domain.CouponVoided
	case OverrideReject:
		next = domain.CouponLost
	default:
		return nil, domain.ErrValidation(fmt.Sprintf("unknown override action: %s", action))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	coupon, err := s.coupons.FindByID(ctx, tx, couponID)
	if err != nil {
		return nil, domain.ErrInternal("find coupon", err)
	}
	if coupon == nil {
		return nil, domain.ErrNotFound("coupon", couponID.String())
	}
	if coupon.Status != domain.CouponOpen {
		return nil, domain.ErrConflict("coupon is already settled")
	}

	affected, err := s.coupons.ConditionalUpdateStatus(ctx, tx, couponID, domain.CouponOpen, next)
	if err != nil {
		return nil, domain.ErrInternal("override update", err)
	}
	if affected == 0 {
		return nil, domain.ErrConflict("coupon was settled concurrently")
	}

	credit := coupon.SettlementCredit(next)
	if credit > 0 {
		creditType := domain.TxAdminPayout
		if next == domain.CouponVoided {
			creditType = domain.TxAdminRefund
		}
		meta, _ := json.Marshal(map[string]interface{}{"override": string(action)})
		if _, err := s.ledger.ExecuteCredit(ctx, tx, domain.CreditParams{
			UserID:    coupon.UserID,
			Type:      creditType,
			Amount:    credit,
			Reference: fmt.Sprintf("override-%s", couponID),
			CouponID:  couponID,
			Metadata:  meta,
		}); err != nil {
			return nil, err
		}
	}

	event := domain.NewCouponSettledEvent(couponID, coupon.UserID, next, credit)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("coupon settled event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	infra.CouponsSettled.WithLabelValues(string(next)).Inc()
	s.logger.Info("coupon overridden",
		"coupon_id", couponID, "action", action, "credited", credit)

	coupon.Status = next
	return coupon, nil
}

// DeleteCoupon hard-removes a settled coupon from the books. Open
// coupons hold live liability and must be resolved first.
func (s *AdminService) DeleteCoupon(ctx context.Context, couponID uuid.UUID) error {
	coupon, err := s.coupons.FindByID(ctx, s.pool, couponID)
	if err != nil {
		return domain.ErrInternal("find coupon", err)
	}
	if coupon == nil {
		return domain.ErrNotFound("coupon", couponID.String())
	}
	if coupon.Status == domain.CouponOpen {
		return domain.ErrConflict("coupon is still open; resolve it before deleting")
	}
	return s.coupons.Delete(ctx, s.pool, couponID)
}

// ListRecentCoupons returns the latest coupons across all users.
func (s *AdminService) ListRecentCoupons(ctx context.Context, limit int) ([]domain.Coupon, error) {
	return s.coupons.ListRecent(ctx, s.pool, limit)
}

// --- Users ---

// ListUsers returns all profiles.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.List(ctx, s.pool)
}

// SetUserBanned flips the ban flag on a profile. Banned users keep
// their balance and open coupons but cannot log in or place bets.
// Admin profiles cannot be banned.
func (s *AdminService) SetUserBanned(ctx context.Context, userID uuid.UUID, banned bool) error {
	profile, err := s.profiles.FindByID(ctx, s.pool, userID)
	if err != nil {
		return domain.ErrInternal("find profile", err)
	}
	if profile == nil {
		return domain.ErrNotFound("profile", userID.String())
	}
	if banned && profile.IsAdmin {
		return domain.ErrForbidden("admin accounts cannot be banned")
	}

	if err := s.profiles.SetBanned(ctx, s.pool, userID, banned); err != nil {
		return err
	}
	s.logger.Info("user ban flag changed", "user_id", userID, "banned", banned)
	return nil
}
