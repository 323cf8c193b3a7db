// Package model contains domain models passed between pipeline stages.
package model

import (
	"math"
	"time"
)

// GameRecord is one box-score row: one player in one game.
// Records are immutable once loaded; the source store owns them.
type GameRecord struct {
	PlayerID   string
	PlayerName string
	Team       string // team code, e.g. "BOS"
	Opponent   string // opponent team code
	GameID     string
	GameDate   time.Time
	Position   string // "PG", "SG", "SF", "PF", "C", or "" when unknown

	MinutesPlayed float64

	Points             float64
	Rebounds           float64
	Assists            float64
	Steals             float64
	Blocks             float64
	Turnovers          float64
	OffensiveRebounds  float64
	DefensiveRebounds  float64
	FieldGoalAttempts  float64
	FieldGoalsMade     float64
	FreeThrowAttempts  float64
	FreeThrowsMade     float64
	ThreePointMade     float64
	ThreePointAttempts float64
	PersonalFouls      float64
	PlusMinus          float64
}

// Sanitize coerces NaN/Inf stat values to zero. Malformed numeric input is a
// data-quality problem, never a fatal one.
func (r *GameRecord) Sanitize() {
	for _, f := range []*float64{
		&r.MinutesPlayed,
		&r.Points, &r.Rebounds, &r.Assists, &r.Steals, &r.Blocks,
		&r.Turnovers, &r.OffensiveRebounds, &r.DefensiveRebounds,
		&r.FieldGoalAttempts, &r.FieldGoalsMade,
		&r.FreeThrowAttempts, &r.FreeThrowsMade,
		&r.ThreePointMade, &r.ThreePointAttempts,
		&r.PersonalFouls, &r.PlusMinus,
	} {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
}

// TeamGameAggregate sums one team's counting stats for one game and carries
// the estimated pace. Possessions and Minutes are floored at 1 by the
// possession normalizer.
type TeamGameAggregate struct {
	Team   string
	GameID string

	FieldGoalAttempts float64
	FreeThrowAttempts float64
	Turnovers         float64
	OffensiveRebounds float64
	Points            float64
	Minutes           float64

	Possessions float64
}

// Per100 holds a player's per-100-possession rates for the stat categories
// used by the impact model.
type Per100 struct {
	Points             float64
	FieldGoalAttempts  float64
	FieldGoalsMade     float64
	FreeThrowAttempts  float64
	FreeThrowsMade     float64
	ThreePointMade     float64
	ThreePointAttempts float64
	OffensiveRebounds  float64
	DefensiveRebounds  float64
	Assists            float64
	Steals             float64
	Blocks             float64
	Turnovers          float64
	PersonalFouls      float64
}

// PlayerGameLine is the possession normalizer's output: the raw record plus
// its per-100 rates and the team context for that game.
type PlayerGameLine struct {
	Record GameRecord
	Season string
	Rates  Per100

	TeamPossessions float64
	TeamMinutes     float64
	TeamPoints      float64
}

// TeamSeasonRating is the opponent adjustment solver's output row,
// overwritten wholesale on each run.
type TeamSeasonRating struct {
	Team   string
	Season string

	AdjOff    float64 // adjusted offensive rating, points per 100 possessions
	AdjDef    float64 // adjusted defensive rating, points allowed per 100 possessions
	NetRating float64 // AdjOff - AdjDef

	Games        int
	LastGameDate time.Time
}

// PlayerSeasonVORP is the season aggregator's output row. A player who
// changes teams mid-season produces one row per team. VORP is nil when no
// qualifying games exist: "no signal" is distinct from a replacement-level
// player.
type PlayerSeasonVORP struct {
	PlayerID   string
	PlayerName string
	Team       string
	Season     string

	GamesPlayed  int
	TotalMinutes float64
	AvgImpact    float64
	PctMinutes   float64
	TeamGames    int

	VORP         *float64
	ModelVersion string
}
