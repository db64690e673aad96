package domain

import (
	"time"

	"github.com/google/uuid"
)

// CouponStatus enumerates the lifecycle states of a coupon.
// Every state other than OPEN is terminal.
type CouponStatus string

const (
	CouponOpen      CouponStatus = "OPEN"
	CouponWon       CouponStatus = "WON"
	CouponLost      CouponStatus = "LOST"
	CouponVoided    CouponStatus = "VOIDED"
	CouponCashouted CouponStatus = "CASHOUTED"
)

// Terminal reports whether the coupon can no longer change state.
func (s CouponStatus) Terminal() bool { return s != CouponOpen }

// LegStatus enumerates the lifecycle states of a single selection.
type LegStatus string

const (
	LegPending LegStatus = "PENDING"
	LegWon     LegStatus = "WON"
	LegLost    LegStatus = "LOST"
	LegVoid    LegStatus = "VOID"
)

// Coupon represents a coupons row: a multi-leg bet staked as a unit.
// Stake and PotentialWin are whole points; TotalOdds is the combined
// decimal odds scaled by 100.
type Coupon struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	Stake        int64        `json:"stake"`
	TotalOdds    int64        `json:"total_odds"`
	PotentialWin int64        `json:"potential_win"`
	Status       CouponStatus `json:"status"`
	CreatedAt    time.Time    `json:"created_at"`
	SettledAt    *time.Time   `json:"settled_at,omitempty"`
}

// Leg represents a coupon_selections row: one prediction on one match.
// OddsAtPlacement is frozen when the coupon is placed and never re-read
// from the match.
type Leg struct {
	ID              uuid.UUID `json:"id"`
	CouponID        uuid.UUID `json:"coupon_id"`
	MatchID         uuid.UUID `json:"match_id"`
	Prediction      Side      `json:"prediction"`
	OddsAtPlacement int64     `json:"odds_at_placement"`
	Status          LegStatus `json:"status"`
}

// CombinedOdds multiplies leg odds (scaled by 100) into the coupon's
// total odds, starting from 1.00. Each step floors at two decimals,
// matching how the payout itself floors.
func CombinedOdds(legOdds []int64) int64 {
	acc := int64(100)
	for _, o := range legOdds {
		acc = acc * o / 100
	}
	return acc
}

// PotentialWin computes floor(stake × combined odds) in whole points.
func PotentialWin(stake, totalOdds int64) int64 {
	return stake * totalOdds / 100
}

// CashoutValue is the flat-rate early-exit return: floor(stake × 0.9).
func CashoutValue(stake int64) int64 {
	return stake * 9 / 10
}

// ResolveLeg maps a match outcome onto a single leg.
// A cancelled match voids the leg; a finished match settles it against
// the winner; anything else leaves the leg pending.
func ResolveLeg(matchStatus MatchStatus, winner *Side, prediction Side) LegStatus {
	switch matchStatus {
	case MatchCancelled:
		return LegVoid
	case MatchFinished:
		if winner != nil && *winner == prediction {
			return LegWon
		}
		return LegLost
	}
	return LegPending
}

// EvaluateCoupon folds leg statuses into the coupon outcome:
//   - any LOST leg loses the coupon outright;
//   - any PENDING leg (and no LOST) keeps it OPEN;
//   - otherwise all legs are WON or VOID: a fully-won coupon is WON,
//     a coupon with at least one VOID leg is VOIDED (stake refund).
func EvaluateCoupon(legs []LegStatus) CouponStatus {
	var hasLost, hasPending, hasVoid bool
	for _, s := range legs {
		switch s {
		case LegLost:
			hasLost = true
		case LegPending:
			hasPending = true
		case LegVoid:
			hasVoid = true
		}
	}
	switch {
	case hasLost:
		return CouponLost
	case hasPending:
		return CouponOpen
	case hasVoid:
		return CouponVoided
	}
	return CouponWon
}

// SettlementCredit returns the amount credited to the owner when the
// coupon transitions into the given terminal state. WON pays the stored
// potential win, VOIDED refunds the stake, everything else pays nothing.
func (c *Coupon) SettlementCredit(status CouponStatus) int64 {
	switch status {
	case CouponWon:
		return c.PotentialWin
	case CouponVoided:
		return c.Stake
	}
	return 0
}
