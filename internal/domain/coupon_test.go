package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- Odds Math Tests ---

func TestCombinedOdds(t *testing.T) {
	tests := []struct {
		name string
		odds []int64
		want int64
	}{
		{"single leg", []int64{180}, 180},
		{"two legs 1.50 x 2.00", []int64{150, 200}, 300},
		{"three legs", []int64{150, 200, 110}, 330},
		{"evens", []int64{100, 100}, 100},
		{"no legs", nil, 100},
		{"floors at two decimals", []int64{133, 133}, 176}, // 1.33*1.33 = 1.7689
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CombinedOdds(tt.odds))
		})
	}
}

func TestPotentialWin(t *testing.T) {
	tests := []struct {
		name      string
		stake     int64
		totalOdds int64
		want      int64
	}{
		{"stake 100 at 3.00", 100, 300, 300},
		{"stake 200 at 1.80", 200, 180, 360},
		{"floors fractional points", 7, 150, 10}, // 7 * 1.5 = 10.5
		{"stake 1 at 1.01", 1, 101, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PotentialWin(tt.stake, tt.totalOdds))
		})
	}
}

func TestCashoutValue(t *testing.T) {
	tests := []struct {
		stake int64
		want  int64
	}{
		{100, 90},
		{200, 180},
		{1, 0},   // floor(0.9)
		{15, 13}, // floor(13.5)
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CashoutValue(tt.stake), "stake %d", tt.stake)
	}
}

// --- Leg Resolution Tests ---

func TestResolveLeg(t *testing.T) {
	winA := SideA

	tests := []struct {
		name       string
		status     MatchStatus
		winner     *Side
		prediction Side
		want       LegStatus
	}{
		{"cancelled match voids leg", MatchCancelled, nil, SideA, LegVoid},
		{"finished, predicted winner", MatchFinished, &winA, SideA, LegWon},
		{"finished, predicted loser", MatchFinished, &winA, SideB, LegLost},
		{"pending match untouched", MatchPending, nil, SideA, LegPending},
		{"live match untouched", MatchLive, nil, SideB, LegPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLeg(tt.status, tt.winner, tt.prediction))
		})
	}
}

// --- Coupon Fold Tests ---

func TestEvaluateCoupon(t *testing.T) {
	tests := []struct {
		name string
		legs []LegStatus
		want CouponStatus
	}{
		{"all won", []LegStatus{LegWon, LegWon}, CouponWon},
		{"single won", []LegStatus{LegWon}, CouponWon},
		{"any lost loses", []LegStatus{LegWon, LegLost, LegWon}, CouponLost},
		{"lost beats pending", []LegStatus{LegLost, LegPending}, CouponLost},
		{"lost beats void", []LegStatus{LegLost, LegVoid}, CouponLost},
		{"pending stays open", []LegStatus{LegWon, LegPending}, CouponOpen},
		{"all pending stays open", []LegStatus{LegPending, LegPending}, CouponOpen},
		{"all void voids", []LegStatus{LegVoid, LegVoid}, CouponVoided},
		{"void plus won voids", []LegStatus{LegWon, LegVoid}, CouponVoided},
		{"single void", []LegStatus{LegVoid}, CouponVoided},
		{"void plus pending stays open", []LegStatus{LegVoid, LegPending}, CouponOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCoupon(tt.legs))
		})
	}
}

func TestCouponStatusTerminal(t *testing.T) {
	assert.False(t, CouponOpen.Terminal())
	for _, s := range []CouponStatus{CouponWon, CouponLost, CouponVoided, CouponCashouted} {
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestSettlementCredit(t *testing.T) {
	c := &Coupon{Stake: 200, PotentialWin: 360}

	assert.Equal(t, int64(360), c.SettlementCredit(CouponWon))
	assert.Equal(t, int64(200), c.SettlementCredit(CouponVoided))
	assert.Equal(t, int64(0), c.SettlementCredit(CouponLost))
	assert.Equal(t, int64(0), c.SettlementCredit(CouponOpen))
}

// --- End-to-End Scenarios ---

func TestScenario_DoubleWins(t *testing.T) {
	// stake 100, legs 1.50 and 2.00 -> combined 3.00, potential 300
	odds := CombinedOdds([]int64{150, 200})
	assert.Equal(t, int64(300), odds)

	c := &Coupon{Stake: 100, TotalOdds: odds, PotentialWin: PotentialWin(100, odds)}
	assert.Equal(t, int64(300), c.PotentialWin)

	winA := SideA
	legs := []LegStatus{
		ResolveLeg(MatchFinished, &winA, SideA),
		ResolveLeg(MatchFinished, &winA, SideA),
	}
	status := EvaluateCoupon(legs)
	assert.Equal(t, CouponWon, status)
	assert.Equal(t, int64(300), c.SettlementCredit(status))
}

func TestScenario_CancelledMatchRefunds(t *testing.T) {
	// stake 200, one leg at 1.80; match cancelled -> VOIDED, refund 200
	odds := CombinedOdds([]int64{180})
	c := &Coupon{Stake: 200, TotalOdds: odds, PotentialWin: PotentialWin(200, odds)}
	assert.Equal(t, int64(360), c.PotentialWin)

	status := EvaluateCoupon([]LegStatus{ResolveLeg(MatchCancelled, nil, SideB)})
	assert.Equal(t, CouponVoided, status)
	assert.Equal(t, int64(200), c.SettlementCredit(status))
}

func TestScenario_OneLossKillsCombination(t *testing.T) {
	winB := SideB
	legs := []LegStatus{
		ResolveLeg(MatchFinished, &winB, SideB), // won
		ResolveLeg(MatchFinished, &winB, SideA), // lost
		ResolveLeg(MatchCancelled, nil, SideA),  // void
	}
	c := &Coupon{Stake: 50, PotentialWin: 500}
	status := EvaluateCoupon(legs)
	assert.Equal(t, CouponLost, status)
	assert.Equal(t, int64(0), c.SettlementCredit(status))
}
