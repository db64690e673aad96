package domain

import (
	"time"

	"github.com/google/uuid"
)

// SignupBonusPoints is credited to every new profile at registration.
const SignupBonusPoints int64 = 1000

// Profile represents a profiles row: the player account and its points balance.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Points    int64     `json:"points"`
	IsBanned  bool      `json:"is_banned"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthUser holds credentials from auth_users.
type AuthUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Username string `json:"username"`
	Points   int64  `json:"points"`
}
