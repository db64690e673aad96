//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nextbet/platform/internal/auth"
)

// RegisterPlayer creates a new player and returns the auth token and user ID.
func (env *TestEnv) RegisterPlayer(email, username, password string) (token string, userID uuid.UUID) {
	env.t.Helper()
	resp := env.POST("/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token  string    `json:"token"`
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterPlayer: decode: %v", err)
	}
	return result.Token, result.UserID
}

// LoginPlayer authenticates an existing player and returns the auth token.
func (env *TestEnv) LoginPlayer(email, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginPlayer: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginPlayer: decode: %v", err)
	}
	return result.Token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("GET", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.POST(path, body, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("PUT %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("PUT", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("PUT %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("PUT %s: %v", path, err)
	}
	return resp
}

// AuthPATCH performs an authenticated PATCH request.
func (env *TestEnv) AuthPATCH(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("PATCH %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("PATCH", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("PATCH %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("PATCH %s: %v", path, err)
	}
	return resp
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("DELETE", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("DELETE %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("DELETE %s: %v", path, err)
	}
	return resp
}

// AdminToken generates a JWT for an admin user with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmAdmin, uuid.New(), "admin@test.com", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// BanUser flips the ban flag directly in the database.
func (env *TestEnv) BanUser(userID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE profiles SET is_banned = TRUE WHERE id = $1", userID)
	if err != nil {
		env.t.Fatalf("BanUser: %v", err)
	}
}

// GrantPoints credits a balance directly, bypassing the ledger. Test
// setup only.
func (env *TestEnv) GrantPoints(userID uuid.UUID, amount int64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE profiles SET points = points + $2 WHERE id = $1", userID, amount)
	if err != nil {
		env.t.Fatalf("GrantPoints: %v", err)
	}
}

// SeedMatch inserts a tournament and a pending match, returning their IDs.
func (env *TestEnv) SeedMatch(oddsA, oddsB int64) (tournamentID, matchID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tournamentID = uuid.New()
	matchID = uuid.New()

	_, err := env.Pool.Exec(ctx, `
		INSERT INTO tournaments (id, name) VALUES ($1, $2)`,
		tournamentID, fmt.Sprintf("Test Cup %s", tournamentID.String()[:8]))
	if err != nil {
		env.t.Fatalf("SeedMatch: insert tournament: %v", err)
	}

	_, err = env.Pool.Exec(ctx, `
		INSERT INTO matches (id, tournament_id, game_name, team_a, team_b, odds_a, odds_b, start_time, status)
		VALUES ($1, $2, 'CS2', 'Alpha', 'Bravo', $3, $4, $5, 'PENDING')`,
		matchID, tournamentID, oddsA, oddsB, time.Now().Add(24*time.Hour))
	if err != nil {
		env.t.Fatalf("SeedMatch: insert match: %v", err)
	}

	return tournamentID, matchID
}

// PlaceCoupon places a single-leg coupon on side A of the given match and
// returns the coupon ID.
func (env *TestEnv) PlaceCoupon(token string, matchID uuid.UUID, stake int64) uuid.UUID {
	env.t.Helper()
	resp := env.AuthPOST("/coupons", map[string]interface{}{
		"stake": stake,
		"selections": []map[string]string{
			{"match_id": matchID.String(), "prediction": "A"},
		},
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("PlaceCoupon: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("PlaceCoupon: decode: %v", err)
	}
	return result.ID
}

// FinishMatch flips a match to FINISHED with the given winner via the admin
// API, which triggers settlement.
func (env *TestEnv) FinishMatch(matchID uuid.UUID, winner string) {
	env.t.Helper()
	resp := env.AuthPOST(fmt.Sprintf("/admin/matches/%s/status", matchID), map[string]string{
		"status": "FINISHED",
		"winner": winner,
	}, env.AdminToken("admin"))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("FinishMatch: expected 200, got %d", resp.StatusCode)
	}
}
