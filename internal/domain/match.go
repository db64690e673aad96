package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchStatus enumerates the lifecycle states of a match.
type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchLive      MatchStatus = "LIVE"
	MatchFinished  MatchStatus = "FINISHED"
	MatchCancelled MatchStatus = "CANCELLED"
)

// Terminal reports whether the match has reached an outcome that settles bets.
func (s MatchStatus) Terminal() bool {
	return s == MatchFinished || s == MatchCancelled
}

// Side identifies one of the two opposing teams of a match.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Tournament groups matches under a named event.
type Tournament struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Match represents a matches row. Odds are decimal odds scaled by 100
// (150 means 1.50); they are the offer at the time of display, coupons
// freeze their own copy at placement.
type Match struct {
	ID           uuid.UUID   `json:"id"`
	TournamentID uuid.UUID   `json:"tournament_id"`
	GameName     string      `json:"game_name"`
	TeamA        string      `json:"team_a"`
	TeamB        string      `json:"team_b"`
	OddsA        int64       `json:"odds_a"`
	OddsB        int64       `json:"odds_b"`
	Handicap     *string     `json:"handicap,omitempty"`
	StartTime    time.Time   `json:"start_time"`
	Status       MatchStatus `json:"status"`
	Winner       *Side       `json:"winner,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ValidateMatchStatus checks a status string against the known states.
func ValidateMatchStatus(s string) (MatchStatus, error) {
	switch MatchStatus(s) {
	case MatchPending, MatchLive, MatchFinished, MatchCancelled:
		return MatchStatus(s), nil
	}
	return "", fmt.Errorf("unknown match status: %s", s)
}

// ValidateMatchOutcome enforces the winner/status invariant:
// a winner is present iff the match is FINISHED.
func ValidateMatchOutcome(status MatchStatus, winner *Side) error {
	if status == MatchFinished {
		if winner == nil {
			return fmt.Errorf("finished match requires a winner")
		}
		if *winner != SideA && *winner != SideB {
			return fmt.Errorf("winner must be A or B, got %s", *winner)
		}
		return nil
	}
	if winner != nil {
		return fmt.Errorf("winner is only valid for finished matches")
	}
	return nil
}
