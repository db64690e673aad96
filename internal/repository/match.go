package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nextbet/platform/internal/domain"
)

type tournamentRepo struct{}

// NewTournamentRepository returns a pgx-backed TournamentRepository.
func NewTournamentRepository() TournamentRepository {
	return &tournamentRepo{}
}

func (r *tournamentRepo) Create(ctx context.Context, db DBTX, name string) (*domain.Tournament, error) {
	row := db.QueryRow(ctx, `
		INSERT INTO tournaments (id, name) VALUES ($1, $2)
		RETURNING id, name, created_at`,
		uuid.New(), name)

	t := &domain.Tournament{}
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert tournament: %w", err)
	}
	return t, nil
}

func (r *tournamentRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("tournament", id.String())
	}
	return nil
}

func (r *tournamentRepo) List(ctx context.Context, db DBTX) ([]domain.Tournament, error) {
	rows, err := db.Query(ctx, `
		SELECT id, name, created_at FROM tournaments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []domain.Tournament
	for rows.Next() {
		var t domain.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

const matchColumns = `id, tournament_id, game_name, team_a, team_b, odds_a, odds_b,
       handicap, start_time, status, winner, created_at`

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error) {
	row := db.QueryRow(ctx, `
		SELECT `+matchColumns+`
		FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *matchRepo) Create(ctx context.Context, db DBTX, m *domain.Match) error {
	_, err := db.Exec(ctx, `
		INSERT INTO matches
		  (id, tournament_id, game_name, team_a, team_b, odds_a, odds_b, handicap, start_time, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.TournamentID, m.GameName, m.TeamA, m.TeamB,
		m.OddsA, m.OddsB, m.Handicap, m.StartTime, string(m.Status),
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *matchRepo) UpdateDetails(ctx context.Context, db DBTX, m *domain.Match) error {
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET game_name = $2, team_a = $3, team_b = $4, odds_a = $5, odds_b = $6,
		    handicap = $7, start_time = $8
		WHERE id = $1`,
		m.ID, m.GameName, m.TeamA, m.TeamB, m.OddsA, m.OddsB, m.Handicap, m.StartTime)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", m.ID.String())
	}
	return nil
}

func (r *matchRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.MatchStatus, winner *domain.Side) error {
	tag, err := db.Exec(ctx, `
		UPDATE matches SET status = $2, winner = $3 WHERE id = $1`,
		id, string(status), winner)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", id.String())
	}
	return nil
}

func (r *matchRepo) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("match", id.String())
	}
	return nil
}

func (r *matchRepo) ListUpcoming(ctx context.Context, db DBTX) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status IN ('PENDING', 'LIVE')
		ORDER BY start_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("query upcoming matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func (r *matchRepo) ListByTournament(ctx context.Context, db DBTX, tournamentID uuid.UUID) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE tournament_id = $1
		ORDER BY start_time ASC`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("query tournament matches: %w", err)
	}
	defer rows.Close()
	return collectMatches(rows)
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var m domain.Match
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.GameName, &m.TeamA, &m.TeamB,
		&m.OddsA, &m.OddsB, &m.Handicap, &m.StartTime, &m.Status, &m.Winner, &m.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	return &m, nil
}

func collectMatches(rows pgx.Rows) ([]domain.Match, error) {
	var matches []domain.Match
	for rows.Next() {
		var m domain.Match
		err := rows.Scan(
			&m.ID, &m.TournamentID, &m.GameName, &m.TeamA, &m.TeamB,
			&m.OddsA, &m.OddsB, &m.Handicap, &m.StartTime, &m.Status, &m.Winner, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
