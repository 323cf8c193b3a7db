// Package pace converts raw box-score counting stats into pace-independent
// per-100-possession rates.
package pace

import (
	"github.com/okian/hooprate/internal/domain/model"
)

// Default normalization constants.
const (
	// ftaPossessionWeight is the standard free-throw share of a possession.
	ftaPossessionWeight = 0.44

	// rateScale converts a per-minute share into a per-100-possession rate:
	// five players on the floor over a 48-minute game, base 100.
	rateScale = 20.0

	defaultPossessionFloor = 1.0
	defaultMinutesFloor    = 1.0
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithPossessionFloor sets the minimum estimated possessions per team-game.
func WithPossessionFloor(floor float64) Option {
	return func(n *Normalizer) {
		if floor > 0 {
			n.possessionFloor = floor
		}
	}
}

// WithMinutesFloor sets the minimum total team minutes per team-game.
func WithMinutesFloor(floor float64) Option {
	return func(n *Normalizer) {
		if floor > 0 {
			n.minutesFloor = floor
		}
	}
}

// Normalizer groups game records by team-game, estimates possessions, and
// derives per-100 rates for every qualifying player line.
type Normalizer struct {
	possessionFloor float64
	minutesFloor    float64
}

// New creates a Normalizer with configuration options.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		possessionFloor: defaultPossessionFloor,
		minutesFloor:    defaultMinutesFloor,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type teamGameKey struct {
	team   string
	gameID string
}

// Possessions estimates a team's offensive opportunities in one game:
// field-goal attempts plus weighted free-throw attempts plus turnovers minus
// offensive rebounds, floored so degenerate input never divides by zero.
func (n *Normalizer) Possessions(agg model.TeamGameAggregate) float64 {
	poss := agg.FieldGoalAttempts +
		ftaPossessionWeight*agg.FreeThrowAttempts +
		agg.Turnovers -
		agg.OffensiveRebounds
	if poss < n.possessionFloor {
		poss = n.possessionFloor
	}
	return poss
}

// Aggregates sums counting stats per (team, game). Records with non-positive
// minutes are excluded before aggregation.
func (n *Normalizer) Aggregates(records []model.GameRecord) []model.TeamGameAggregate {
	aggs := n.aggregate(records)
	out := make([]model.TeamGameAggregate, 0, len(aggs))
	for _, a := range aggs {
		out = append(out, *a)
	}
	return out
}

func (n *Normalizer) aggregate(records []model.GameRecord) map[teamGameKey]*model.TeamGameAggregate {
	aggs := make(map[teamGameKey]*model.TeamGameAggregate)
	for i := range records {
		r := records[i]
		r.Sanitize()
		if r.MinutesPlayed <= 0 {
			continue
		}
		key := teamGameKey{team: r.Team, gameID: r.GameID}
		a, ok := aggs[key]
		if !ok {
			a = &model.TeamGameAggregate{Team: r.Team, GameID: r.GameID}
			aggs[key] = a
		}
		a.FieldGoalAttempts += r.FieldGoalAttempts
		a.FreeThrowAttempts += r.FreeThrowAttempts
		a.Turnovers += r.Turnovers
		a.OffensiveRebounds += r.OffensiveRebounds
		a.Points += r.Points
		a.Minutes += r.MinutesPlayed
	}
	for _, a := range aggs {
		a.Possessions = n.Possessions(*a)
		if a.Minutes < n.minutesFloor {
			a.Minutes = n.minutesFloor
		}
	}
	return aggs
}

// Normalize produces one PlayerGameLine per qualifying record, carrying the
// record's per-100 rates and its team-game context. Records with non-positive
// minutes are dropped; malformed numerics are coerced to zero.
func (n *Normalizer) Normalize(records []model.GameRecord) []model.PlayerGameLine {
	aggs := n.aggregate(records)

	lines := make([]model.PlayerGameLine, 0, len(records))
	for i := range records {
		r := records[i]
		r.Sanitize()
		if r.MinutesPlayed <= 0 {
			continue
		}

		a := aggs[teamGameKey{team: r.Team, gameID: r.GameID}]
		// Floors above guarantee a non-zero denominator.
		factor := rateScale * a.Minutes / (a.Possessions * r.MinutesPlayed)

		lines = append(lines, model.PlayerGameLine{
			Record: r,
			Season: model.SeasonOf(r.GameDate),
			Rates: model.Per100{
				Points:             r.Points * factor,
				FieldGoalAttempts:  r.FieldGoalAttempts * factor,
				FieldGoalsMade:     r.FieldGoalsMade * factor,
				FreeThrowAttempts:  r.FreeThrowAttempts * factor,
				FreeThrowsMade:     r.FreeThrowsMade * factor,
				ThreePointMade:     r.ThreePointMade * factor,
				ThreePointAttempts: r.ThreePointAttempts * factor,
				OffensiveRebounds:  r.OffensiveRebounds * factor,
				DefensiveRebounds:  r.DefensiveRebounds * factor,
				Assists:            r.Assists * factor,
				Steals:             r.Steals * factor,
				Blocks:             r.Blocks * factor,
				Turnovers:          r.Turnovers * factor,
				PersonalFouls:      r.PersonalFouls * factor,
			},
			TeamPossessions: a.Possessions,
			TeamMinutes:     a.Minutes,
			TeamPoints:      a.Points,
		})
	}
	return lines
}
