//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/nextbet/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlement_WinningCoupon(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("winner@example.com", "winner_w", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 400)

	env.FinishMatch(matchID, "A")

	testutil.AssertCouponStatus(t, env, couponID, "WON")
	// 1000 - 400 stake + 600 payout (400 x 1.50).
	testutil.AssertPoints(t, env, userID, 1200)
	// Bonus, stake, payout.
	assert.Equal(t, 3, testutil.CountTransactions(t, env, userID))
}

func TestSettlement_LosingCoupon(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("loser@example.com", "loser_l", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 400)

	env.FinishMatch(matchID, "B")

	testutil.AssertCouponStatus(t, env, couponID, "LOST")
	// No credit on a loss.
	testutil.AssertPoints(t, env, userID, 600)
	assert.Equal(t, 2, testutil.CountTransactions(t, env, userID))
}

func TestSettlement_CancelledMatchRefunds(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("voided@example.com", "voided_v", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 400)

	resp := env.AuthPOST("/admin/matches/"+matchID.String()+"/status",
		map[string]string{"status": "CANCELLED"}, env.AdminToken("admin"))
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	testutil.AssertCouponStatus(t, env, couponID, "VOIDED")
	// Stake refunded in full.
	testutil.AssertPoints(t, env, userID, 1000)
	assert.Equal(t, 3, testutil.CountTransactions(t, env, userID))
}

func TestSettlement_MultiLegWaitsForAllMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("parlay2@example.com", "parlay_two", "supersecret")
	_, match1 := env.SeedMatch(150, 250)
	_, match2 := env.SeedMatch(150, 250)

	resp := env.AuthPOST("/coupons", map[string]interface{}{
		"stake": 400,
		"selections": []map[string]string{
			{"match_id": match1.String(), "prediction": "A"},
			{"match_id": match2.String(), "prediction": "A"},
		},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var coupon struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &coupon)
	couponID := mustUUID(t, coupon.ID)

	// First leg won, second still pending: the coupon stays open.
	env.FinishMatch(match1, "A")
	testutil.AssertCouponStatus(t, env, couponID, "OPEN")
	testutil.AssertPoints(t, env, userID, 600)

	// Second leg won: the coupon closes at combined odds 2.25.
	env.FinishMatch(match2, "A")
	testutil.AssertCouponStatus(t, env, couponID, "WON")
	testutil.AssertPoints(t, env, userID, 1500)
}

func TestSettlement_MultiLegLosesOnFirstLostLeg(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("parlay3@example.com", "parlay_three", "supersecret")
	_, match1 := env.SeedMatch(150, 250)
	_, match2 := env.SeedMatch(150, 250)

	resp := env.AuthPOST("/coupons", map[string]interface{}{
		"stake": 400,
		"selections": []map[string]string{
			{"match_id": match1.String(), "prediction": "A"},
			{"match_id": match2.String(), "prediction": "A"},
		},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var coupon struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &coupon)
	couponID := mustUUID(t, coupon.ID)

	// One lost leg sinks the coupon, no need to wait for the other match.
	env.FinishMatch(match1, "B")
	testutil.AssertCouponStatus(t, env, couponID, "LOST")
	testutil.AssertPoints(t, env, userID, 600)

	// Settling the remaining match does not revive it.
	env.FinishMatch(match2, "A")
	testutil.AssertCouponStatus(t, env, couponID, "LOST")
	testutil.AssertPoints(t, env, userID, 600)
}

func TestSettlement_SkipsCashedOutCoupon(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("early@example.com", "early_exit", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 400)

	resp := env.AuthPOST("/coupons/"+couponID.String()+"/cashout", nil, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()
	testutil.AssertPoints(t, env, userID, 960)

	// The winning outcome must not pay out on top of the cashout.
	env.FinishMatch(matchID, "A")
	testutil.AssertCouponStatus(t, env, couponID, "CASHOUTED")
	testutil.AssertPoints(t, env, userID, 960)
}

func TestSettlement_TerminalMatchCannotBeReFinished(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, matchID := env.SeedMatch(150, 250)

	env.FinishMatch(matchID, "A")

	resp := env.AuthPOST("/admin/matches/"+matchID.String()+"/status",
		map[string]string{"status": "FINISHED", "winner": "B"}, env.AdminToken("admin"))
	testutil.AssertStatus(t, resp, http.StatusConflict)
	testutil.AssertErrorCode(t, resp, "CONFLICT")
}

func TestSettlement_EmitsEvents(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, userID := env.RegisterPlayer("events@example.com", "events_e", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 400)

	env.FinishMatch(matchID, "A")

	// profile.created + transaction.posted x3 on the user key.
	assert.GreaterOrEqual(t, testutil.CountOutboxEvents(t, env, userID.String()), 4)
	// coupon.placed + coupon.settled on the coupon key.
	assert.Equal(t, 2, testutil.CountOutboxEvents(t, env, couponID.String()))
	require.Equal(t, 1, testutil.CountOutboxEvents(t, env, matchID.String()))
}
