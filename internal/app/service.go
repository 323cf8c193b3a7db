// Package app wires the rating stages into one batch pipeline run.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hooprate/internal/adapters/repository"
	"github.com/okian/hooprate/internal/domain/adjem"
	"github.com/okian/hooprate/internal/domain/impact"
	"github.com/okian/hooprate/internal/domain/model"
	"github.com/okian/hooprate/internal/domain/pace"
	"github.com/okian/hooprate/internal/domain/vorp"
	"github.com/okian/hooprate/pkg/logger"
	"github.com/okian/hooprate/pkg/metrics"
)

// defaultSeasonWorkers bounds parallel season computations. Seasons share no
// state, so the only cost of more workers is memory.
const defaultSeasonWorkers = 4

// verificationRows is how many committed team ratings are read back per
// season for the post-write log.
const verificationRows = 5

// Summary reports what one pipeline run did.
type Summary struct {
	RunID       string
	GamesLoaded int
	Seasons     []string
	TeamRows    int
	PlayerRows  int
	Duration    time.Duration
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the game-record source.
func WithSource(src repository.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithSink sets the ratings sink.
func WithSink(sink repository.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithCoefficients sets the impact-model artifact for this run.
func WithCoefficients(coeffs impact.Coefficients) Option {
	return func(s *Service) {
		s.coeffs = coeffs
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used for the prediction date and run
// timing. Fixing the clock makes a run fully deterministic.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSeasonWorkers bounds how many seasons compute in parallel.
func WithSeasonWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.seasonWorkers = n
		}
	}
}

// WithNormalizerOptions configures the possession normalizer.
func WithNormalizerOptions(opts ...pace.Option) Option {
	return func(s *Service) {
		s.paceOpts = opts
	}
}

// WithSolverOptions configures the opponent adjustment solver.
func WithSolverOptions(opts ...adjem.Option) Option {
	return func(s *Service) {
		s.solverOpts = opts
	}
}

// WithAggregatorOptions configures the season aggregator.
func WithAggregatorOptions(opts ...vorp.Option) Option {
	return func(s *Service) {
		s.vorpOpts = opts
	}
}

// Service runs the full rating pipeline: load, normalize, adjust, score,
// aggregate, and persist in one atomic write.
type Service struct {
	source repository.Source
	sink   repository.Sink
	coeffs impact.Coefficients

	paceOpts   []pace.Option
	solverOpts []adjem.Option
	vorpOpts   []vorp.Option

	seasonWorkers int
	clock         func() time.Time
	logger        logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		seasonWorkers: defaultSeasonWorkers,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

type seasonResult struct {
	teams   []model.TeamSeasonRating
	players []model.PlayerSeasonVORP
}

// Run executes one batch recomputation. An empty seasonFilter recomputes
// every season in the store. A filter matching zero games is a no-data
// condition, not an error: the run succeeds and writes nothing.
func (s *Service) Run(ctx context.Context, seasonFilter string) (Summary, error) {
	if s.source == nil || s.sink == nil {
		return Summary{}, ErrNotConfigured
	}

	runID := uuid.NewString()
	log := s.logger.With(logger.String("run_id", runID))
	start := s.clock()
	asOf := start

	summary := Summary{RunID: runID}

	log.Info(ctx, "ratings run starting",
		logger.String("season_filter", seasonFilter),
		logger.String("model_version", s.coeffs.ModelVersion),
	)

	records, err := s.source.GameRecords(ctx, seasonFilter)
	if err != nil {
		metrics.RecordRunFailure()
		return summary, fmt.Errorf("loading game records: %w", err)
	}
	summary.GamesLoaded = len(records)
	metrics.RecordGamesLoaded(len(records))

	if len(records) == 0 {
		log.Info(ctx, "no game records matched; nothing to write",
			logger.String("season_filter", seasonFilter),
		)
		metrics.RecordRunSuccess()
		return summary, nil
	}

	discarded := 0
	bySeason := make(map[string][]model.GameRecord)
	for _, r := range records {
		if r.MinutesPlayed <= 0 {
			discarded++
			continue
		}
		season := model.SeasonOf(r.GameDate)
		bySeason[season] = append(bySeason[season], r)
	}
	if discarded > 0 {
		metrics.RecordRecordsDiscarded(discarded)
		log.Warn(ctx, "discarded records with non-positive minutes",
			logger.Int("count", discarded),
		)
	}

	seasons := make([]string, 0, len(bySeason))
	for season := range bySeason {
		seasons = append(seasons, season)
	}
	sort.Strings(seasons)
	summary.Seasons = seasons

	// Each season's computation is independent; fan out bounded by the
	// worker budget. Iteration state never crosses season boundaries.
	estimator := impact.New(s.coeffs, impact.WithLogger(log))
	results := make(map[string]seasonResult, len(seasons))
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.seasonWorkers)
	)
	for _, season := range seasons {
		wg.Add(1)
		go func(season string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := s.computeSeason(ctx, log, estimator, season, bySeason[season], asOf)

			mu.Lock()
			results[season] = res
			mu.Unlock()
			metrics.RecordSeasonProcessed()
		}(season)
	}
	wg.Wait()

	var teams []model.TeamSeasonRating
	var players []model.PlayerSeasonVORP
	for _, season := range seasons {
		teams = append(teams, results[season].teams...)
		players = append(players, results[season].players...)
	}
	summary.TeamRows = len(teams)
	summary.PlayerRows = len(players)

	// Single atomic write; any failure leaves the sink untouched and the
	// caller retries the whole run.
	writeStart := s.clock()
	if err := s.sink.UpsertRatings(ctx, teams, players); err != nil {
		metrics.RecordRunFailure()
		return summary, fmt.Errorf("persisting ratings: %w", err)
	}
	metrics.RecordStageDuration("persist", s.clock().Sub(writeStart).Seconds())
	metrics.RecordTeamRowsUpserted(len(teams))
	metrics.RecordPlayerRowsUpserted(len(players))

	s.verify(ctx, log, seasons)

	summary.Duration = s.clock().Sub(start)
	metrics.RecordRunDuration(summary.Duration.Seconds())
	metrics.RecordRunSuccess()

	log.Info(ctx, "ratings run complete",
		logger.Int("games_loaded", summary.GamesLoaded),
		logger.Int("seasons", len(seasons)),
		logger.Int("team_rows", summary.TeamRows),
		logger.Int("player_rows", summary.PlayerRows),
		logger.Duration("duration", summary.Duration),
	)
	return summary, nil
}

// computeSeason runs the pure rating stages for one season partition.
func (s *Service) computeSeason(
	ctx context.Context,
	log logger.Logger,
	estimator *impact.Estimator,
	season string,
	records []model.GameRecord,
	asOf time.Time,
) seasonResult {
	stageStart := time.Now()
	normalizer := pace.New(s.paceOpts...)
	lines := normalizer.Normalize(records)
	metrics.RecordStageDuration("normalize", time.Since(stageStart).Seconds())

	stageStart = time.Now()
	solver := adjem.New(s.solverOpts...)
	teamGames := solver.BuildTeamGames(lines)
	ratings := solver.Rate(season, teamGames, asOf)
	metrics.RecordSolverPasses(solver.Iterations())
	metrics.RecordStageDuration("adjust", time.Since(stageStart).Seconds())

	stageStart = time.Now()
	nets := impact.TeamNetRatings(lines)
	scores := make([]vorp.GameScore, len(lines))
	for i, line := range lines {
		net := nets[impact.TeamSeasonKey{Team: line.Record.Team, Season: line.Season}]
		scores[i] = vorp.GameScore{
			Line:   line,
			Impact: estimator.Score(ctx, line, net),
		}
	}
	metrics.RecordStageDuration("impact", time.Since(stageStart).Seconds())

	stageStart = time.Now()
	aggOpts := append([]vorp.Option{vorp.WithModelVersion(s.coeffs.ModelVersion)}, s.vorpOpts...)
	aggregator := vorp.New(aggOpts...)
	rows := aggregator.Aggregate(scores)
	metrics.RecordStageDuration("aggregate", time.Since(stageStart).Seconds())

	log.Debug(ctx, "season computed",
		logger.String("season", season),
		logger.Int("lines", len(lines)),
		logger.Int("teams", len(ratings)),
		logger.Int("players", len(rows)),
	)
	return seasonResult{teams: ratings, players: rows}
}

// verify reads back a few committed rows per season. Failures here are
// logged, never fatal: the write already committed.
func (s *Service) verify(ctx context.Context, log logger.Logger, seasons []string) {
	for _, season := range seasons {
		top, err := s.sink.TopTeams(ctx, season, verificationRows)
		if err != nil {
			log.Warn(ctx, "post-write verification failed",
				logger.String("season", season),
				logger.Error(err),
			)
			continue
		}
		for _, t := range top {
			log.Info(ctx, "top team",
				logger.String("season", season),
				logger.String("team", t.Team),
				logger.Float64("net_rating", t.NetRating),
				logger.Int("games", t.Games),
			)
		}
	}
}
