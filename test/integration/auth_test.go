//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/nextbet/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/auth/register", map[string]string{
		"email":    "alice@example.com",
		"username": "alice_01",
		"password": "supersecret",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var result struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Points   int64  `json:"points"`
	}
	testutil.DecodeJSON(t, resp, &result)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice_01", result.Username)
	assert.Equal(t, int64(1000), result.Points)
}

func TestRegister_SignupBonusLedgered(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, userID := env.RegisterPlayer("bob@example.com", "bob_the_bettor", "supersecret")

	testutil.AssertPoints(t, env, userID, 1000)
	require.Equal(t, 1, testutil.CountTransactions(t, env, userID))
	// profile.created plus the bonus transaction.posted.
	assert.Equal(t, 2, testutil.CountOutboxEvents(t, env, userID.String()))
}

func TestRegister_Rejections(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.RegisterPlayer("carol@example.com", "carol_plays", "supersecret")

	t.Run("duplicate email", func(t *testing.T) {
		resp := env.POST("/auth/register", map[string]string{
			"email":    "carol@example.com",
			"username": "carol_again",
			"password": "supersecret",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusConflict)
		testutil.AssertErrorCode(t, resp, "CONFLICT")
	})

	t.Run("invalid email", func(t *testing.T) {
		resp := env.POST("/auth/register", map[string]string{
			"email":    "not-an-email",
			"username": "someone",
			"password": "supersecret",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
	})

	t.Run("short password", func(t *testing.T) {
		resp := env.POST("/auth/register", map[string]string{
			"email":    "dave@example.com",
			"username": "dave_99",
			"password": "short",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
	})
}

func TestLogin(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.RegisterPlayer("erin@example.com", "erin_gg", "supersecret")

	t.Run("valid credentials", func(t *testing.T) {
		token := env.LoginPlayer("erin@example.com", "supersecret")
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := env.POST("/auth/login", map[string]string{
			"email":    "erin@example.com",
			"password": "wrongpassword",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
	})

	t.Run("unknown email", func(t *testing.T) {
		resp := env.POST("/auth/login", map[string]string{
			"email":    "nobody@example.com",
			"password": "supersecret",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		testutil.AssertErrorCode(t, resp, "UNAUTHORIZED")
	})
}

func TestChangePassword(t *testing.T) {
	env := testutil.NewTestEnv(t)

	token, _ := env.RegisterPlayer("heidi@example.com", "heidi_h", "supersecret")

	t.Run("wrong current password", func(t *testing.T) {
		resp := env.AuthPATCH("/me/password", map[string]string{
			"current_password": "nottherightone",
			"new_password":     "evenmoresecret",
		}, token)
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	})

	resp := env.AuthPATCH("/me/password", map[string]string{
		"current_password": "supersecret",
		"new_password":     "evenmoresecret",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	t.Run("old password rejected", func(t *testing.T) {
		resp := env.POST("/auth/login", map[string]string{
			"email":    "heidi@example.com",
			"password": "supersecret",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	})

	t.Run("new password accepted", func(t *testing.T) {
		newToken := env.LoginPlayer("heidi@example.com", "evenmoresecret")
		assert.NotEmpty(t, newToken)
	})
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)

	env.RegisterPlayer("frank@example.com", "frank_l", "supersecret")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email":    "frank@example.com",
			"password": "wrongpassword",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	}

	// Even the correct password is refused while locked.
	resp := env.POST("/auth/login", map[string]string{
		"email":    "frank@example.com",
		"password": "supersecret",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusTooManyRequests)
	testutil.AssertErrorCode(t, resp, "ACCOUNT_LOCKED")
}

func TestLogin_BannedAccount(t *testing.T) {
	env := testutil.NewTestEnv(t)

	_, userID := env.RegisterPlayer("grace@example.com", "grace_w", "supersecret")
	env.BanUser(userID)

	resp := env.POST("/auth/login", map[string]string{
		"email":    "grace@example.com",
		"password": "supersecret",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusForbidden)
	testutil.AssertErrorCode(t, resp, "FORBIDDEN")
}

func TestAuth_RateLimited(t *testing.T) {
	env := testutil.NewTestEnv(t)

	// Distinct emails keep the account lockout out of the picture; the
	// limiter keys on client IP.
	for i := 0; i < 10; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email":    fmt.Sprintf("ghost%d@example.com", i),
			"password": "supersecret",
		}, "")
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	}

	resp := env.POST("/auth/login", map[string]string{
		"email":    "ghost11@example.com",
		"password": "supersecret",
	}, "")
	testutil.AssertStatus(t, resp, http.StatusTooManyRequests)
	testutil.AssertErrorCode(t, resp, "RATE_LIMITED")
}
