package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okian/hooprate/internal/domain/model"
)

// Table DDL. The output tables are bootstrapped on first write so a fresh
// database needs no migration step; the input tables are owned by the
// ingestion system and only created by the seed tool.
const (
	createTeamRatingsSQL = `
CREATE TABLE IF NOT EXISTS team_season_ratings (
	team VARCHAR(10) NOT NULL,
	season VARCHAR(10) NOT NULL,
	adj_off NUMERIC(6,2) NOT NULL,
	adj_def NUMERIC(6,2) NOT NULL,
	net_rating NUMERIC(6,2) NOT NULL,
	games INTEGER NOT NULL,
	last_game_date DATE,
	calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (team, season)
)`

	createPlayerVORPSQL = `
CREATE TABLE IF NOT EXISTS player_season_vorp (
	player_id VARCHAR(50) NOT NULL,
	player_name VARCHAR(100),
	team VARCHAR(10) NOT NULL,
	season VARCHAR(10) NOT NULL,
	games_played INTEGER NOT NULL,
	total_minutes NUMERIC(8,1) NOT NULL,
	avg_impact NUMERIC(6,2) NOT NULL,
	pct_minutes NUMERIC(5,4) NOT NULL,
	team_games INTEGER NOT NULL,
	vorp NUMERIC(6,2),
	model_version VARCHAR(10),
	calculated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (player_id, team, season)
)`

	upsertTeamRatingSQL = `
INSERT INTO team_season_ratings
	(team, season, adj_off, adj_def, net_rating, games, last_game_date, calculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (team, season) DO UPDATE SET
	adj_off        = EXCLUDED.adj_off,
	adj_def        = EXCLUDED.adj_def,
	net_rating     = EXCLUDED.net_rating,
	games          = EXCLUDED.games,
	last_game_date = EXCLUDED.last_game_date,
	calculated_at  = NOW()`

	upsertPlayerVORPSQL = `
INSERT INTO player_season_vorp
	(player_id, player_name, team, season, games_played, total_minutes,
	 avg_impact, pct_minutes, team_games, vorp, model_version, calculated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
ON CONFLICT (player_id, team, season) DO UPDATE SET
	player_name   = EXCLUDED.player_name,
	games_played  = EXCLUDED.games_played,
	total_minutes = EXCLUDED.total_minutes,
	avg_impact    = EXCLUDED.avg_impact,
	pct_minutes   = EXCLUDED.pct_minutes,
	team_games    = EXCLUDED.team_games,
	vorp          = EXCLUDED.vorp,
	model_version = EXCLUDED.model_version,
	calculated_at = NOW()`

	// COALESCE coerces malformed or missing numerics to zero at the edge;
	// a bad stat value is a data-quality problem, not a fatal one.
	selectGameRecordsSQL = `
SELECT
	g.player_id,
	COALESCE(p.name, ''),
	COALESCE(p.position, ''),
	g.team, g.opponent, g.game_id, g.game_date,
	g.minutes_played,
	COALESCE(g.points, 0), COALESCE(g.rebounds, 0), COALESCE(g.assists, 0),
	COALESCE(g.steals, 0), COALESCE(g.blocks, 0), COALESCE(g.turnovers, 0),
	COALESCE(g.offensive_rebounds, 0), COALESCE(g.defensive_rebounds, 0),
	COALESCE(g.field_goal_attempts, 0), COALESCE(g.field_goals_made, 0),
	COALESCE(g.free_throw_attempts, 0), COALESCE(g.free_throws_made, 0),
	COALESCE(g.three_point_fg_made, 0), COALESCE(g.three_point_fg_attempts, 0),
	COALESCE(g.personal_fouls, 0), COALESCE(g.plus_minus, 0)
FROM player_game_stats g
LEFT JOIN players p USING (player_id)
WHERE g.minutes_played IS NOT NULL AND g.minutes_played > 0
ORDER BY g.game_date, g.game_id, g.player_id`

	selectTopTeamsSQL = `
SELECT team, season, adj_off, adj_def, net_rating, games, last_game_date
FROM team_season_ratings
WHERE season = $1
ORDER BY net_rating DESC
LIMIT $2`
)

// Postgres implements Store against a Postgres database via pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// GameRecords loads all qualifying records and filters by season label in
// process; the label derives from the game date, not a stored column.
func (p *Postgres) GameRecords(ctx context.Context, season string) ([]model.GameRecord, error) {
	rows, err := p.pool.Query(ctx, selectGameRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	var out []model.GameRecord
	for rows.Next() {
		var r model.GameRecord
		if err := rows.Scan(
			&r.PlayerID, &r.PlayerName, &r.Position,
			&r.Team, &r.Opponent, &r.GameID, &r.GameDate,
			&r.MinutesPlayed,
			&r.Points, &r.Rebounds, &r.Assists,
			&r.Steals, &r.Blocks, &r.Turnovers,
			&r.OffensiveRebounds, &r.DefensiveRebounds,
			&r.FieldGoalAttempts, &r.FieldGoalsMade,
			&r.FreeThrowAttempts, &r.FreeThrowsMade,
			&r.ThreePointMade, &r.ThreePointAttempts,
			&r.PersonalFouls, &r.PlusMinus,
		); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		if season != "" && model.SeasonOf(r.GameDate) != season {
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return out, nil
}

// UpsertRatings writes both output sets in one transaction. A failure rolls
// everything back; the caller retries the whole run.
func (p *Postgres) UpsertRatings(ctx context.Context, teams []model.TeamSeasonRating, players []model.PlayerSeasonVORP) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, createTeamRatingsSQL); err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	if _, err := tx.Exec(ctx, createPlayerVORPSQL); err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}

	for _, t := range teams {
		var lastGame *time.Time
		if !t.LastGameDate.IsZero() {
			lastGame = &t.LastGameDate
		}
		if _, err := tx.Exec(ctx, upsertTeamRatingSQL,
			t.Team, t.Season, t.AdjOff, t.AdjDef, t.NetRating, t.Games, lastGame,
		); err != nil {
			return fmt.Errorf("%w: team %s %s: %v", ErrUpsert, t.Team, t.Season, err)
		}
	}

	for _, v := range players {
		if _, err := tx.Exec(ctx, upsertPlayerVORPSQL,
			v.PlayerID, v.PlayerName, v.Team, v.Season,
			v.GamesPlayed, v.TotalMinutes, v.AvgImpact, v.PctMinutes,
			v.TeamGames, v.VORP, v.ModelVersion,
		); err != nil {
			return fmt.Errorf("%w: player %s %s %s: %v", ErrUpsert, v.PlayerID, v.Team, v.Season, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	return nil
}

// TopTeams reads back committed team ratings for verification logging.
func (p *Postgres) TopTeams(ctx context.Context, season string, n int) ([]model.TeamSeasonRating, error) {
	rows, err := p.pool.Query(ctx, selectTopTeamsSQL, season, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	var out []model.TeamSeasonRating
	for rows.Next() {
		var t model.TeamSeasonRating
		var lastGame *time.Time
		if err := rows.Scan(&t.Team, &t.Season, &t.AdjOff, &t.AdjDef, &t.NetRating, &t.Games, &lastGame); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQuery, err)
		}
		if lastGame != nil {
			t.LastGameDate = *lastGame
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	return out, nil
}
