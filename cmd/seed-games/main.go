// Command seed-games loads synthetic box-score data into the store for
// local pipeline runs. It bootstraps the input tables that the ingestion
// system owns in production.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/hooprate/internal/adapters/repository"
	"github.com/okian/hooprate/internal/domain/model"
	"github.com/okian/hooprate/pkg/logger"
)

// Generation defaults tuned to look like plausible box scores.
const (
	defaultTeams          = 8
	defaultGamesPerTeam   = 20
	defaultPlayersPerTeam = 10
	defaultSeed           = 42

	gameMinutes    = 240.0 // 5 players x 48 minutes
	starterMinutes = 34.0
	benchMinutes   = 14.0
)

var positions = []string{"PG", "SG", "SF", "PF", "C"}

func main() {
	var (
		databaseURL  = flag.String("db", os.Getenv("HOOPRATE_DATABASE_URL"), "Postgres connection URL")
		teams        = flag.Int("teams", defaultTeams, "Number of teams in the synthetic league")
		gamesPerTeam = flag.Int("games", defaultGamesPerTeam, "Games per team")
		seed         = flag.Int64("seed", defaultSeed, "Random seed (fixed for reproducible data)")
		startDate    = flag.String("start", "2025-10-21", "First game date (YYYY-MM-DD)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	ctx := context.Background()

	_ = godotenv.Load()
	if *databaseURL == "" {
		*databaseURL = os.Getenv("HOOPRATE_DATABASE_URL")
	}
	if *databaseURL == "" {
		log.Error(ctx, "no database URL; pass -db or set HOOPRATE_DATABASE_URL")
		os.Exit(1)
	}

	first, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Error(ctx, "invalid start date", logger.String("start", *startDate), logger.Error(err))
		os.Exit(1)
	}

	records := generate(*teams, *gamesPerTeam, *seed, first)

	store, err := repository.NewPostgres(ctx, *databaseURL)
	if err != nil {
		log.Error(ctx, "failed to connect to store", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	if err := store.SeedGameRecords(ctx, records); err != nil {
		log.Error(ctx, "failed to seed game records", logger.Error(err))
		os.Exit(1)
	}
	log.Info(ctx, "seeded synthetic game records",
		logger.Int("records", len(records)),
		logger.Int("teams", *teams),
	)
}

// generate builds a round-robin style schedule and a full box score per
// game. The seed is fixed by default so repeated runs produce identical
// input data.
func generate(teamCount, gamesPerTeam int, seed int64, first time.Time) []model.GameRecord {
	rng := rand.New(rand.NewSource(seed))

	teamCodes := make([]string, teamCount)
	for i := range teamCodes {
		teamCodes[i] = fmt.Sprintf("T%02d", i+1)
	}

	var records []model.GameRecord
	gameNum := 0
	for round := 0; round < gamesPerTeam; round++ {
		date := first.AddDate(0, 0, round*2)
		// Pair teams off per round, rotating the matchups.
		for i := 0; i+1 < teamCount; i += 2 {
			home := teamCodes[(i+round)%teamCount]
			away := teamCodes[(i+1+round)%teamCount]
			if home == away {
				continue
			}
			gameNum++
			gameID := fmt.Sprintf("G%05d", gameNum)
			records = append(records, boxScore(rng, home, away, gameID, date)...)
			records = append(records, boxScore(rng, away, home, gameID, date)...)
		}
	}
	return records
}

// boxScore fabricates one team's player lines for one game.
func boxScore(rng *rand.Rand, team, opponent, gameID string, date time.Time) []model.GameRecord {
	lines := make([]model.GameRecord, 0, defaultPlayersPerTeam)
	remaining := gameMinutes
	for i := 0; i < defaultPlayersPerTeam; i++ {
		minutes := benchMinutes
		if i < len(positions) {
			minutes = starterMinutes
		}
		minutes += rng.Float64()*6 - 3
		if minutes > remaining {
			minutes = remaining
		}
		remaining -= minutes
		if minutes <= 0 {
			break
		}

		fga := rng.Float64() * minutes * 0.5
		fgm := fga * (0.35 + rng.Float64()*0.2)
		tpa := fga * (0.2 + rng.Float64()*0.3)
		tpm := tpa * (0.25 + rng.Float64()*0.2)
		fta := rng.Float64() * minutes * 0.15
		ftm := fta * (0.7 + rng.Float64()*0.2)
		orb := rng.Float64() * minutes * 0.06
		drb := rng.Float64() * minutes * 0.18

		lines = append(lines, model.GameRecord{
			PlayerID:           fmt.Sprintf("%s-P%02d", team, i+1),
			PlayerName:         fmt.Sprintf("%s Player %d", team, i+1),
			Team:               team,
			Opponent:           opponent,
			GameID:             gameID,
			GameDate:           date,
			Position:           positions[i%len(positions)],
			MinutesPlayed:      minutes,
			Points:             2*(fgm-tpm) + 3*tpm + ftm,
			Rebounds:           orb + drb,
			Assists:            rng.Float64() * minutes * 0.15,
			Steals:             rng.Float64() * minutes * 0.05,
			Blocks:             rng.Float64() * minutes * 0.04,
			Turnovers:          rng.Float64() * minutes * 0.08,
			OffensiveRebounds:  orb,
			DefensiveRebounds:  drb,
			FieldGoalAttempts:  fga,
			FieldGoalsMade:     fgm,
			FreeThrowAttempts:  fta,
			FreeThrowsMade:     ftm,
			ThreePointMade:     tpm,
			ThreePointAttempts: tpa,
			PersonalFouls:      rng.Float64() * 5,
			PlusMinus:          rng.Float64()*30 - 15,
		})
	}
	return lines
}
