package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/okian/hooprate/internal/domain/model"
)

// Input-table DDL, used only by the seed tool. In production these tables
// belong to the ingestion system.
const (
	createPlayersSQL = `
CREATE TABLE IF NOT EXISTS players (
	player_id VARCHAR(50) PRIMARY KEY,
	name VARCHAR(100),
	position VARCHAR(5)
)`

	createGameStatsSQL = `
CREATE TABLE IF NOT EXISTS player_game_stats (
	player_id VARCHAR(50) NOT NULL,
	team VARCHAR(10) NOT NULL,
	opponent VARCHAR(10) NOT NULL,
	game_id VARCHAR(50) NOT NULL,
	game_date DATE NOT NULL,
	minutes_played NUMERIC(5,1),
	points NUMERIC(5,1), rebounds NUMERIC(5,1), assists NUMERIC(5,1),
	steals NUMERIC(5,1), blocks NUMERIC(5,1), turnovers NUMERIC(5,1),
	offensive_rebounds NUMERIC(5,1), defensive_rebounds NUMERIC(5,1),
	field_goal_attempts NUMERIC(5,1), field_goals_made NUMERIC(5,1),
	free_throw_attempts NUMERIC(5,1), free_throws_made NUMERIC(5,1),
	three_point_fg_made NUMERIC(5,1), three_point_fg_attempts NUMERIC(5,1),
	personal_fouls NUMERIC(5,1), plus_minus NUMERIC(6,1),
	PRIMARY KEY (player_id, game_id)
)`

	upsertPlayerSQL = `
INSERT INTO players (player_id, name, position)
VALUES ($1, $2, $3)
ON CONFLICT (player_id) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position`
)

var gameStatsColumns = []string{
	"player_id", "team", "opponent", "game_id", "game_date", "minutes_played",
	"points", "rebounds", "assists", "steals", "blocks", "turnovers",
	"offensive_rebounds", "defensive_rebounds",
	"field_goal_attempts", "field_goals_made",
	"free_throw_attempts", "free_throws_made",
	"three_point_fg_made", "three_point_fg_attempts",
	"personal_fouls", "plus_minus",
}

// SeedGameRecords bootstraps the input tables and bulk-loads synthetic
// records via COPY. Intended for local development only.
func (p *Postgres) SeedGameRecords(ctx context.Context, records []model.GameRecord) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, ddl := range []string{createPlayersSQL, createGameStatsSQL} {
		if _, err := tx.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("%w: %v", ErrUpsert, err)
		}
	}

	seen := make(map[string]struct{}, len(records))
	rows := make([][]any, 0, len(records))
	for i := range records {
		r := &records[i]
		if _, ok := seen[r.PlayerID]; !ok {
			seen[r.PlayerID] = struct{}{}
			if _, err := tx.Exec(ctx, upsertPlayerSQL, r.PlayerID, r.PlayerName, r.Position); err != nil {
				return fmt.Errorf("%w: player %s: %v", ErrUpsert, r.PlayerID, err)
			}
		}
		rows = append(rows, []any{
			r.PlayerID, r.Team, r.Opponent, r.GameID, r.GameDate, r.MinutesPlayed,
			r.Points, r.Rebounds, r.Assists, r.Steals, r.Blocks, r.Turnovers,
			r.OffensiveRebounds, r.DefensiveRebounds,
			r.FieldGoalAttempts, r.FieldGoalsMade,
			r.FreeThrowAttempts, r.FreeThrowsMade,
			r.ThreePointMade, r.ThreePointAttempts,
			r.PersonalFouls, r.PlusMinus,
		})
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"player_game_stats"}, gameStatsColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUpsert, err)
	}
	return nil
}
