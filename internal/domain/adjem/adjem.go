// Package adjem computes schedule-adjusted efficiency-margin team ratings
// from per-game offensive and defensive efficiencies.
package adjem

import (
	"math"
	"sort"
	"time"

	"github.com/okian/hooprate/internal/domain/model"
)

// Default solver parameters. Five fixed passes are run; exact convergence
// is not the goal.
const (
	defaultHalfLifeDays  = 30.0
	defaultWeightFloor   = 0.10
	defaultIterations    = 5
	defaultMinGames      = 5
	defaultRegression    = 0.5
	defaultLeagueAverage = 110.0
	defaultRelaxation    = 0.5

	hoursPerDay = 24.0
)

// TeamGame is one team's side of one game: its offensive efficiency (points
// scored per 100 possessions) and defensive efficiency (points allowed per
// 100 possessions), plus the opponent it earned them against.
type TeamGame struct {
	Team     string
	Opponent string
	GameID   string
	Date     time.Time
	OffEff   float64
	DefEff   float64
}

// Option applies a configuration option to the Solver.
type Option func(*Solver)

// WithHalfLife sets the recency-weight half-life in days.
func WithHalfLife(days float64) Option {
	return func(s *Solver) {
		if days > 0 {
			s.halfLifeDays = days
		}
	}
}

// WithWeightFloor sets the minimum recency weight for past games.
func WithWeightFloor(floor float64) Option {
	return func(s *Solver) {
		if floor >= 0 {
			s.weightFloor = floor
		}
	}
}

// WithIterations sets the number of adjustment passes.
func WithIterations(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.iterations = n
		}
	}
}

// WithMinGames sets the small-sample threshold below which ratings are
// regressed toward the league average.
func WithMinGames(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.minGames = n
		}
	}
}

// WithRegression sets the small-sample regression factor.
func WithRegression(f float64) Option {
	return func(s *Solver) {
		if f > 0 {
			s.regression = f
		}
	}
}

// WithLeagueAverage sets the league-average efficiency prior.
func WithLeagueAverage(avg float64) Option {
	return func(s *Solver) {
		if avg > 0 {
			s.leagueAverage = avg
		}
	}
}

// WithRelaxation sets how far each pass moves a rating toward its newly
// accumulated weighted mean, in (0, 1]. A full step (1.0) oscillates with
// period two on symmetric schedules; the default half step settles on the
// same fixed point.
func WithRelaxation(f float64) Option {
	return func(s *Solver) {
		if f > 0 && f <= 1 {
			s.relaxation = f
		}
	}
}

// WithConvergenceTolerance enables an early exit once the largest rating
// change in a pass drops below tol. Disabled by default so output matches
// the fixed-pass behavior.
func WithConvergenceTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol > 0 {
			s.tolerance = tol
		}
	}
}

// Solver iterates opponent-adjusted team ratings to a fixed point.
type Solver struct {
	halfLifeDays  float64
	weightFloor   float64
	iterations    int
	minGames      int
	regression    float64
	leagueAverage float64
	relaxation    float64
	tolerance     float64 // 0 disables the early exit
}

// New creates a Solver with configuration options.
func New(opts ...Option) *Solver {
	s := &Solver{
		halfLifeDays:  defaultHalfLifeDays,
		weightFloor:   defaultWeightFloor,
		iterations:    defaultIterations,
		minGames:      defaultMinGames,
		regression:    defaultRegression,
		leagueAverage: defaultLeagueAverage,
		relaxation:    defaultRelaxation,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Iterations returns the configured number of adjustment passes.
func (s *Solver) Iterations() int {
	return s.iterations
}

// GameWeight returns the exponential recency weight of a game relative to
// the prediction date. Future games weigh zero; past games decay with the
// configured half-life down to the floor.
func (s *Solver) GameWeight(gameDate, asOf time.Time) float64 {
	days := asOf.Sub(gameDate).Hours() / hoursPerDay
	if days < 0 {
		return 0
	}
	return math.Max(math.Pow(0.5, days/s.halfLifeDays), s.weightFloor)
}

type accum struct {
	offSum float64
	defSum float64
	weight float64
}

// Rate computes adjusted offensive/defensive ratings for every team that
// appears in games, plus any extra teams (which rate at the league average
// when they have no games). Output is sorted descending by net rating;
// equal nets keep alphabetical team order.
func (s *Solver) Rate(season string, games []TeamGame, asOf time.Time, extraTeams ...string) []model.TeamSeasonRating {
	teamSet := make(map[string]struct{})
	for _, g := range games {
		teamSet[g.Team] = struct{}{}
		teamSet[g.Opponent] = struct{}{}
	}
	for _, t := range extraTeams {
		teamSet[t] = struct{}{}
	}
	teams := make([]string, 0, len(teamSet))
	for t := range teamSet {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	weights := make([]float64, len(games))
	for i, g := range games {
		weights[i] = s.GameWeight(g.Date, asOf)
	}

	// Initialize to recency-weighted raw averages, league average when a
	// team has no games.
	off := make(map[string]float64, len(teams))
	def := make(map[string]float64, len(teams))
	count := make(map[string]int, len(teams))
	var lastGame time.Time
	{
		init := make(map[string]*accum, len(teams))
		for _, t := range teams {
			init[t] = &accum{}
		}
		for i, g := range games {
			a := init[g.Team]
			a.offSum += g.OffEff * weights[i]
			a.defSum += g.DefEff * weights[i]
			a.weight += weights[i]
			count[g.Team]++
			if g.Date.After(lastGame) {
				lastGame = g.Date
			}
		}
		for _, t := range teams {
			a := init[t]
			if a.weight > 0 {
				off[t] = a.offSum / a.weight
				def[t] = a.defSum / a.weight
			} else {
				off[t] = s.leagueAverage
				def[t] = s.leagueAverage
			}
		}
	}

	// Fixed-point iteration: move each team's rating toward the weighted
	// mean of its per-game efficiencies corrected for opponent strength.
	for iter := 0; iter < s.iterations; iter++ {
		round := make(map[string]*accum, len(teams))
		for _, t := range teams {
			round[t] = &accum{}
		}
		for i, g := range games {
			w := weights[i]
			expected := s.leagueAverage + (def[g.Opponent] - s.leagueAverage)
			adjusted := g.OffEff - expected + s.leagueAverage
			round[g.Team].offSum += adjusted * w
			round[g.Team].weight += w
			round[g.Opponent].defSum += adjusted * w
		}
		var maxDelta float64
		for _, t := range teams {
			a := round[t]
			if a.weight <= 0 {
				continue
			}
			dOff := s.relaxation * (a.offSum/a.weight - off[t])
			dDef := s.relaxation * (a.defSum/a.weight - def[t])
			maxDelta = math.Max(maxDelta, math.Abs(dOff))
			maxDelta = math.Max(maxDelta, math.Abs(dDef))
			off[t] += dOff
			def[t] += dDef
		}
		if s.tolerance > 0 && maxDelta < s.tolerance {
			break
		}
	}

	// Small-sample shrinkage toward the league average.
	for _, t := range teams {
		g := count[t]
		if g > 0 && g < s.minGames {
			blend := s.regression * float64(g) / float64(s.minGames)
			off[t] = blend*off[t] + (1-blend)*s.leagueAverage
			def[t] = blend*def[t] + (1-blend)*s.leagueAverage
		}
	}

	out := make([]model.TeamSeasonRating, 0, len(teams))
	for _, t := range teams {
		out = append(out, model.TeamSeasonRating{
			Team:         t,
			Season:       season,
			AdjOff:       off[t],
			AdjDef:       def[t],
			NetRating:    off[t] - def[t],
			Games:        count[t],
			LastGameDate: lastGame,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NetRating > out[j].NetRating
	})
	return out
}

// BuildTeamGames derives one TeamGame per (team, game) from normalized
// player lines. The defensive efficiency comes from the opposing side of the
// same game; a side with no opposing rows (partial data) scores its
// defensive efficiency as the league average.
func (s *Solver) BuildTeamGames(lines []model.PlayerGameLine) []TeamGame {
	type sideKey struct {
		team   string
		gameID string
	}
	type side struct {
		team     string
		opponent string
		gameID   string
		date     time.Time
		offEff   float64
	}
	sides := make(map[sideKey]*side)
	order := make([]sideKey, 0)
	for i := range lines {
		l := &lines[i]
		key := sideKey{team: l.Record.Team, gameID: l.Record.GameID}
		if _, ok := sides[key]; ok {
			continue
		}
		sides[key] = &side{
			team:     l.Record.Team,
			opponent: l.Record.Opponent,
			gameID:   l.Record.GameID,
			date:     l.Record.GameDate,
			offEff:   l.TeamPoints * 100 / l.TeamPossessions,
		}
		order = append(order, key)
	}

	out := make([]TeamGame, 0, len(sides))
	for _, key := range order {
		sd := sides[key]
		defEff := s.leagueAverage
		if opp, ok := sides[sideKey{team: sd.opponent, gameID: sd.gameID}]; ok {
			defEff = opp.offEff
		}
		out = append(out, TeamGame{
			Team:     sd.team,
			Opponent: sd.opponent,
			GameID:   sd.gameID,
			Date:     sd.date,
			OffEff:   sd.offEff,
			DefEff:   defEff,
		})
	}
	return out
}
