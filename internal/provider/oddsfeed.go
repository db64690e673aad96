package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Feed wire types (The Odds API v4).

type feedEvent struct {
	ID           string          `json:"id"`
	SportKey     string          `json:"sport_key"`
	SportTitle   string          `json:"sport_title"`
	CommenceTime string          `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []feedBookmaker `json:"bookmakers"`
}

type feedBookmaker struct {
	Key     string       `json:"key"`
	Markets []feedMarket `json:"markets"`
}

type feedMarket struct {
	Key      string        `json:"key"`
	Outcomes []feedOutcome `json:"outcomes"`
}

type feedOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OddsFeedConnector syncs upcoming fixtures and moneyline odds from an
// external odds feed into the tournaments and matches tables. Matches
// that already reached a terminal status are never touched; coupons keep
// the odds they froze at placement regardless of feed updates.
type OddsFeedConnector struct {
	pool    *pgxpool.Pool
	baseURL string
	apiKey  string
	logger  *slog.Logger
	client  *http.Client
	// Sports to sync (feed keys). If empty, nothing is synced.
	sportKeys []string
}

// NewOddsFeedConnector creates a new odds feed connector.
func NewOddsFeedConnector(pool *pgxpool.Pool, apiKey string, logger *slog.Logger) *OddsFeedConnector {
	return &OddsFeedConnector{
		pool:    pool,
		baseURL: "https://api.the-odds-api.com",
		apiKey:  apiKey,
		logger:  logger,
		client:  &http.Client{Timeout: 30 * time.Second},
		sportKeys: []string{
			"soccer_epl",
			"basketball_nba",
			"icehockey_nhl",
			"mma_mixed_martial_arts",
		},
	}
}

// StartSync begins periodic fixture syncing. Stops when ctx is cancelled.
func (c *OddsFeedConnector) StartSync(ctx context.Context) {
	c.logger.Info("odds feed connector starting", "sports", c.sportKeys)

	go func() {
		if err := c.syncAll(ctx); err != nil {
			c.logger.Error("odds feed initial sync error", "error", err)
		}

		// Re-sync every 10 minutes (conserve free-tier quota)
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("odds feed sync stopped")
				return
			case <-ticker.C:
				if err := c.syncAll(ctx); err != nil {
					c.logger.Error("odds feed sync error", "error", err)
				}
			}
		}
	}()
}

func (c *OddsFeedConnector) feedGet(ctx context.Context, path string) ([]byte, int, error) {
	url := c.baseURL + path
	if strings.Contains(path, "?") {
		url += "&apiKey=" + c.apiKey
	} else {
		url += "?apiKey=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	remaining := resp.Header.Get("x-requests-remaining")
	c.logger.Debug("odds feed request", "path", path, "status", resp.StatusCode, "remaining", remaining)

	if resp.StatusCode == 429 {
		return nil, resp.StatusCode, fmt.Errorf("odds feed quota exceeded")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("odds feed returned %d: %s", resp.StatusCode, string(body[:min(200, len(body))]))
	}

	return body, resp.StatusCode, nil
}

func (c *OddsFeedConnector) syncAll(ctx context.Context) error {
	total := 0
	for _, sportKey := range c.sportKeys {
		n, err := c.syncSport(ctx, sportKey)
		if err != nil {
			c.logger.Error("odds feed sync sport failed", "sport", sportKey, "error", err)
			continue
		}
		total += n
	}

	c.logger.Info("odds feed sync complete", "matches_synced", total)
	return nil
}

func (c *OddsFeedConnector) syncSport(ctx context.Context, sportKey string) (int, error) {
	path := fmt.Sprintf("/v4/sports/%s/odds/?regions=us&markets=h2h&oddsFormat=decimal&dateFormat=iso", sportKey)
	body, status, err := c.feedGet(ctx, path)
	if err != nil {
		if status == 429 {
			c.logger.Warn("odds feed quota exceeded, stopping sync")
			return 0, nil
		}
		return 0, err
	}

	var events []feedEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return 0, fmt.Errorf("decode events: %w", err)
	}

	synced := 0
	for _, event := range events {
		if err := c.upsertMatch(ctx, event); err != nil {
			c.logger.Warn("odds feed upsert match", "event_id", event.ID, "error", err)
			continue
		}
		synced++
	}

	return synced, nil
}

// upsertMatch writes one fixture. The league name becomes a tournament,
// the h2h outcomes of the first bookmaker become odds_a and odds_b.
func (c *OddsFeedConnector) upsertMatch(ctx context.Context, event feedEvent) error {
	startTime, err := time.Parse(time.RFC3339, event.CommenceTime)
	if err != nil {
		return fmt.Errorf("parse commence_time: %w", err)
	}

	oddsA, oddsB, ok := c.moneylineOdds(event)
	if !ok {
		return nil // no usable h2h market, skip silently
	}

	tournamentID, err := c.ensureTournament(ctx, event.SportTitle)
	if err != nil {
		return err
	}

	status := "PENDING"
	if time.Now().After(startTime) {
		status = "LIVE"
	}

	_, err = c.pool.Exec(ctx, `
		INSERT INTO matches
		  (id, tournament_id, game_name, team_a, team_b, odds_a, odds_b, start_time, status, external_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (external_ref) DO UPDATE SET
			team_a = EXCLUDED.team_a,
			team_b = EXCLUDED.team_b,
			odds_a = EXCLUDED.odds_a,
			odds_b = EXCLUDED.odds_b,
			start_time = EXCLUDED.start_time,
			status = CASE
				WHEN matches.status IN ('FINISHED', 'CANCELLED') THEN matches.status
				ELSE EXCLUDED.status
			END`,
		uuid.New(), tournamentID, event.SportTitle,
		event.HomeTeam, event.AwayTeam, oddsA, oddsB, startTime, status, event.ID)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

func (c *OddsFeedConnector) ensureTournament(ctx context.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := c.pool.QueryRow(ctx, `
		INSERT INTO tournaments (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, uuid.New(), name).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensure tournament %s: %w", name, err)
	}
	return id, nil
}

// moneylineOdds extracts home/away decimal odds from the first bookmaker
// carrying an h2h market, scaled by 100 (1.75 becomes 175).
func (c *OddsFeedConnector) moneylineOdds(event feedEvent) (int64, int64, bool) {
	for _, bk := range event.Bookmakers {
		for _, mkt := range bk.Markets {
			if mkt.Key != "h2h" {
				continue
			}
			var oddsA, oddsB int64
			for _, outcome := range mkt.Outcomes {
				price := int64(outcome.Price * 100)
				switch outcome.Name {
				case event.HomeTeam:
					oddsA = price
				case event.AwayTeam:
					oddsB = price
				}
			}
			if oddsA > 100 && oddsB > 100 {
				return oddsA, oddsB, true
			}
		}
	}
	return 0, 0, false
}
