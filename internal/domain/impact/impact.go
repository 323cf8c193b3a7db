// Package impact maps a player's per-100 rate profile for one game into a
// single box-score impact estimate using a precomputed linear model.
package impact

import (
	"context"
	"sync"

	"github.com/okian/hooprate/internal/domain/model"
	"github.com/okian/hooprate/pkg/logger"
	"github.com/okian/hooprate/pkg/metrics"
)

// ftaTrueShotWeight is the free-throw share of a true-shooting attempt.
const ftaTrueShotWeight = 0.44

// bigPositions are the roles whose assist deviation carries the interaction
// term: playmaking from these spots is rarer and worth more.
var bigPositions = map[string]struct{}{
	"C":  {},
	"PF": {},
}

// TeamSeasonKey identifies one team's season.
type TeamSeasonKey struct {
	Team   string
	Season string
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithLogger sets a custom logger for the estimator.
func WithLogger(l logger.Logger) Option {
	return func(e *Estimator) {
		if l != nil {
			e.logger = l
		}
	}
}

// Estimator scores individual game lines against the trained coefficients.
// Safe for concurrent use across season computations.
type Estimator struct {
	coeffs Coefficients
	logger logger.Logger

	mu     sync.Mutex
	warned map[string]struct{}
}

// New creates an Estimator for one coefficient artifact.
func New(coeffs Coefficients, opts ...Option) *Estimator {
	e := &Estimator{
		coeffs: coeffs,
		warned: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get()
	}
	return e
}

// term returns weight*value for a feature, warning once per run when the
// artifact lacks a weight the model expects. Silent rating degradation is
// not acceptable.
func (e *Estimator) term(ctx context.Context, feature string, value float64) float64 {
	w, ok := e.coeffs.Weight(feature)
	if !ok {
		e.mu.Lock()
		_, seen := e.warned[feature]
		if !seen {
			e.warned[feature] = struct{}{}
		}
		e.mu.Unlock()
		if !seen {
			e.logger.Warn(ctx, "coefficient artifact is missing a model feature; treating as zero",
				logger.String("feature", feature),
				logger.String("model_version", e.coeffs.ModelVersion),
			)
			metrics.RecordMissingCoefficient(feature)
		}
		return 0
	}
	return w * value
}

// leagueTrueShotPct derives the league's points per true-shooting attempt
// from the artifact's league averages.
func (e *Estimator) leagueTrueShotPct() float64 {
	lg := e.coeffs.LeagueAverages
	tsa := lg.FieldGoalAttempts + ftaTrueShotWeight*lg.FreeThrowAttempts
	if tsa <= 0 {
		return fallbackTrueShotPct
	}
	return lg.Points / (2 * tsa)
}

// Score computes the per-game impact estimate for one normalized line.
// teamNet is the player's team-season context signal from TeamNetRatings;
// it enters only when the artifact carries a team-context weight.
func (e *Estimator) Score(ctx context.Context, line model.PlayerGameLine, teamNet float64) float64 {
	lg := e.coeffs.LeagueAverages
	r := line.Rates

	// Scoring efficiency isolated from volume: actual points minus the
	// points a league-average finisher would score on the same attempts.
	tsa := r.FieldGoalAttempts + ftaTrueShotWeight*r.FreeThrowAttempts
	lgTSA := lg.FieldGoalAttempts + ftaTrueShotWeight*lg.FreeThrowAttempts
	expectedPoints := 2 * tsa * e.leagueTrueShotPct()
	scoringEff := r.Points - expectedPoints
	volumeDev := tsa - lgTSA

	score := e.coeffs.Intercept
	score += e.term(ctx, FeatureScoringEff, scoringEff)
	score += e.term(ctx, FeatureVolumeDev, volumeDev)

	astDev := r.Assists - lg.Assists
	score += e.term(ctx, FeatureAssistDev, astDev)
	score += e.term(ctx, FeatureORebDev, r.OffensiveRebounds-lg.OffensiveRebounds)
	score += e.term(ctx, FeatureDRebDev, r.DefensiveRebounds-lg.DefensiveRebounds)
	score += e.term(ctx, FeatureStealDev, r.Steals-lg.Steals)
	score += e.term(ctx, FeatureBlockDev, r.Blocks-lg.Blocks)
	score += e.term(ctx, FeatureTurnoverDev, r.Turnovers-lg.Turnovers)
	score += e.term(ctx, FeatureFoulDev, r.PersonalFouls-lg.PersonalFouls)
	score += e.term(ctx, FeatureThreeDev, r.ThreePointMade-lg.ThreePointMade)

	// Interactions: big-role playmaking and efficient high-volume scoring.
	if _, big := bigPositions[line.Record.Position]; big {
		score += e.term(ctx, FeatureAssistBig, astDev)
	}
	if volumeDev > 0 {
		score += e.term(ctx, FeatureScoringVol, scoringEff*volumeDev)
	}

	score += e.coeffs.PositionOffset(line.Record.Position)

	if w, ok := e.coeffs.Weight(FeatureTeamNet); ok {
		score += w * teamNet
	}
	return score
}

// TeamNetRatings computes each team-season's context signal: the mean over
// its games of the team's point differential per 100 possessions, estimated
// from summed plus/minus. This is deliberately independent of the opponent
// adjustment solver's net rating; the two signals serve different purposes.
func TeamNetRatings(lines []model.PlayerGameLine) map[TeamSeasonKey]float64 {
	type gameKey struct {
		team   string
		gameID string
		season string
	}
	type gameAcc struct {
		sumPlusMinus float64
		possessions  float64
	}
	games := make(map[gameKey]*gameAcc)
	for i := range lines {
		l := &lines[i]
		key := gameKey{team: l.Record.Team, gameID: l.Record.GameID, season: l.Season}
		g, ok := games[key]
		if !ok {
			g = &gameAcc{possessions: l.TeamPossessions}
			games[key] = g
		}
		g.sumPlusMinus += l.Record.PlusMinus
	}

	sums := make(map[TeamSeasonKey]float64)
	counts := make(map[TeamSeasonKey]int)
	for key, g := range games {
		net := (g.sumPlusMinus / 5) * 100 / g.possessions
		k := TeamSeasonKey{Team: key.team, Season: key.season}
		sums[k] += net
		counts[k]++
	}

	out := make(map[TeamSeasonKey]float64, len(sums))
	for k, sum := range sums {
		out[k] = sum / float64(counts[k])
	}
	return out
}
