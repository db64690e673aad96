//go:build integration

package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nextbet/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTournaments(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")

	resp := env.AuthPOST("/admin/tournaments", map[string]string{"name": "Spring Invitational"}, admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var tournament struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	testutil.DecodeJSON(t, resp, &tournament)
	assert.Equal(t, "Spring Invitational", tournament.Name)

	t.Run("empty name rejected", func(t *testing.T) {
		resp := env.AuthPOST("/admin/tournaments", map[string]string{"name": ""}, admin)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("list", func(t *testing.T) {
		resp := env.AuthGET("/admin/tournaments", admin)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var tournaments []struct {
			ID uuid.UUID `json:"id"`
		}
		testutil.DecodeJSON(t, resp, &tournaments)
		require.Len(t, tournaments, 1)
	})

	t.Run("delete refuses while matches exist", func(t *testing.T) {
		createMatch(t, env, admin, tournament.ID, 150, 250)

		resp := env.AuthDELETE("/admin/tournaments/"+tournament.ID.String(), admin)
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "CONFLICT")
	})
}

func TestAdminMatches(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	tournamentID, _ := env.SeedMatch(150, 250)

	t.Run("create rejects sub-evens odds", func(t *testing.T) {
		resp := env.AuthPOST("/admin/matches", map[string]interface{}{
			"tournament_id": tournamentID,
			"game_name":     "CS2",
			"team_a":        "Alpha",
			"team_b":        "Bravo",
			"odds_a":        99,
			"odds_b":        250,
			"start_time":    time.Now().Add(time.Hour),
		}, admin)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
	})

	matchID := createMatch(t, env, admin, tournamentID, 150, 250)

	t.Run("update odds", func(t *testing.T) {
		resp := env.AuthPUT("/admin/matches/"+matchID.String(), map[string]interface{}{
			"tournament_id": tournamentID,
			"game_name":     "CS2",
			"team_a":        "Alpha",
			"team_b":        "Bravo",
			"odds_a":        175,
			"odds_b":        210,
			"start_time":    time.Now().Add(time.Hour),
		}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var match struct {
			OddsA int64 `json:"odds_a"`
		}
		testutil.DecodeJSON(t, resp, &match)
		assert.Equal(t, int64(175), match.OddsA)
	})

	t.Run("finished requires winner", func(t *testing.T) {
		resp := env.AuthPOST("/admin/matches/"+matchID.String()+"/status",
			map[string]string{"status": "FINISHED"}, admin)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("winner only valid when finished", func(t *testing.T) {
		resp := env.AuthPOST("/admin/matches/"+matchID.String()+"/status",
			map[string]string{"status": "CANCELLED", "winner": "A"}, admin)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
	})

	t.Run("goes live", func(t *testing.T) {
		resp := env.AuthPOST("/admin/matches/"+matchID.String()+"/status",
			map[string]string{"status": "LIVE"}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)
	})
}

func TestAdminDeleteMatchVoidsOpenCoupons(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	token, userID := env.RegisterPlayer("voidme@example.com", "voidme_v", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 400)

	resp := env.AuthDELETE("/admin/matches/"+matchID.String(), admin)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Voided int `json:"voided"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.Equal(t, 1, result.Voided)

	testutil.AssertCouponStatus(t, env, couponID, "VOIDED")
	testutil.AssertPoints(t, env, userID, 1000)
}

func TestAdminOverride(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	token, userID := env.RegisterPlayer("dispute@example.com", "dispute_d", "supersecret")
	_, matchID := env.SeedMatch(150, 250)

	t.Run("pay out", func(t *testing.T) {
		couponID := env.PlaceCoupon(token, matchID, 100)

		resp := env.AuthPOST("/admin/coupons/"+couponID.String()+"/override",
			map[string]string{"action": "PAY_OUT"}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)

		testutil.AssertCouponStatus(t, env, couponID, "WON")
		// 1000 - 100 stake + 150 payout.
		testutil.AssertPoints(t, env, userID, 1050)
	})

	t.Run("void refunds stake", func(t *testing.T) {
		couponID := env.PlaceCoupon(token, matchID, 100)

		resp := env.AuthPOST("/admin/coupons/"+couponID.String()+"/override",
			map[string]string{"action": "VOID"}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)

		testutil.AssertCouponStatus(t, env, couponID, "VOIDED")
		testutil.AssertPoints(t, env, userID, 1050)
	})

	t.Run("reject pays nothing", func(t *testing.T) {
		couponID := env.PlaceCoupon(token, matchID, 100)

		resp := env.AuthPOST("/admin/coupons/"+couponID.String()+"/override",
			map[string]string{"action": "REJECT"}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)

		testutil.AssertCouponStatus(t, env, couponID, "LOST")
		testutil.AssertPoints(t, env, userID, 950)

		t.Run("second override conflicts", func(t *testing.T) {
			resp := env.AuthPOST("/admin/coupons/"+couponID.String()+"/override",
				map[string]string{"action": "PAY_OUT"}, admin)
			testutil.AssertStatus(t, resp, http.StatusConflict)
			testutil.AssertErrorCode(t, resp, "CONFLICT")
		})
	})

	t.Run("unknown action", func(t *testing.T) {
		couponID := env.PlaceCoupon(token, matchID, 100)

		resp := env.AuthPOST("/admin/coupons/"+couponID.String()+"/override",
			map[string]string{"action": "ESCALATE"}, admin)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
	})
}

func TestAdminDeleteCoupon(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	token, _ := env.RegisterPlayer("cleanup@example.com", "cleanup_c", "supersecret")
	_, matchID := env.SeedMatch(150, 250)
	couponID := env.PlaceCoupon(token, matchID, 100)

	t.Run("open coupon refuses", func(t *testing.T) {
		resp := env.AuthDELETE("/admin/coupons/"+couponID.String(), admin)
		testutil.AssertStatus(t, resp, http.StatusConflict)
	})

	t.Run("settled coupon deletes", func(t *testing.T) {
		resp := env.AuthPOST("/admin/coupons/"+couponID.String()+"/override",
			map[string]string{"action": "REJECT"}, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		resp = env.AuthDELETE("/admin/coupons/"+couponID.String(), admin)
		testutil.AssertStatus(t, resp, http.StatusNoContent)
	})
}

func TestAdminUsers(t *testing.T) {
	env := testutil.NewTestEnv(t)
	admin := env.AdminToken("admin")
	_, userID := env.RegisterPlayer("managed@example.com", "managed_m", "supersecret")

	t.Run("list", func(t *testing.T) {
		resp := env.AuthGET("/admin/users", admin)
		testutil.AssertStatus(t, resp, http.StatusOK)

		var users []struct {
			ID       uuid.UUID `json:"id"`
			IsBanned bool      `json:"is_banned"`
		}
		testutil.DecodeJSON(t, resp, &users)
		require.Len(t, users, 1)
		assert.False(t, users[0].IsBanned)
	})

	t.Run("ban then unban", func(t *testing.T) {
		resp := env.AuthPOST("/admin/users/"+userID.String()+"/ban", nil, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		loginResp := env.POST("/auth/login", map[string]string{
			"email":    "managed@example.com",
			"password": "supersecret",
		}, "")
		testutil.AssertStatus(t, loginResp, http.StatusForbidden)
		loginResp.Body.Close()

		resp = env.AuthPOST("/admin/users/"+userID.String()+"/unban", nil, admin)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		token := env.LoginPlayer("managed@example.com", "supersecret")
		assert.NotEmpty(t, token)
	})
}

func TestAdminAccessControl(t *testing.T) {
	env := testutil.NewTestEnv(t)
	playerToken, _ := env.RegisterPlayer("player@example.com", "just_a_player", "supersecret")

	t.Run("no token", func(t *testing.T) {
		resp := env.GET("/admin/tournaments")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("player token rejected", func(t *testing.T) {
		resp := env.AuthGET("/admin/tournaments", playerToken)
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})

	t.Run("viewer role cannot write", func(t *testing.T) {
		resp := env.AuthPOST("/admin/tournaments",
			map[string]string{"name": "Denied Cup"}, env.AdminToken("viewer"))
		testutil.AssertStatus(t, resp, http.StatusForbidden)
	})

	t.Run("superadmin allowed", func(t *testing.T) {
		resp := env.AuthPOST("/admin/tournaments",
			map[string]string{"name": "Super Cup"}, env.AdminToken("superadmin"))
		testutil.AssertStatus(t, resp, http.StatusCreated)
	})
}

func createMatch(t *testing.T, env *testutil.TestEnv, admin string, tournamentID uuid.UUID, oddsA, oddsB int64) uuid.UUID {
	t.Helper()
	resp := env.AuthPOST("/admin/matches", map[string]interface{}{
		"tournament_id": tournamentID,
		"game_name":     "CS2",
		"team_a":        "Alpha",
		"team_b":        "Bravo",
		"odds_a":        oddsA,
		"odds_b":        oddsB,
		"start_time":    time.Now().Add(time.Hour),
	}, admin)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var match struct {
		ID uuid.UUID `json:"id"`
	}
	testutil.DecodeJSON(t, resp, &match)
	return match.ID
}
