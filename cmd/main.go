package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/hooprate/internal/adapters/artifact"
	"github.com/okian/hooprate/internal/adapters/repository"
	app "github.com/okian/hooprate/internal/app"
	"github.com/okian/hooprate/internal/config"
	"github.com/okian/hooprate/internal/domain/adjem"
	"github.com/okian/hooprate/internal/domain/pace"
	"github.com/okian/hooprate/internal/domain/vorp"
	"github.com/okian/hooprate/pkg/logger"
	"github.com/okian/hooprate/pkg/metrics"
)

// Metrics listener timeouts.
const (
	metricsReadTimeout       = 5 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

func main() {
	os.Exit(run())
}

func run() int {
	// Local runs keep credentials in .env; absence is fine.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// A --season flag overrides the configured filter for ad-hoc runs.
	seasonFlag := flag.String("season", "", `season to recompute, e.g. "2025-26"; empty recomputes all`)
	flag.Parse()
	season := cfg.Season
	if *seasonFlag != "" {
		season = *seasonFlag
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Optionally expose /metrics for scrape while the run is in flight.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	coeffs, err := artifact.Load(cfg.CoefficientsPath)
	if err != nil {
		log.Error(ctx, "failed to load coefficient artifact",
			logger.String("path", cfg.CoefficientsPath), logger.Error(err))
		return 1
	}

	var store repository.Store
	if cfg.DryRun {
		log.Info(ctx, "dry run: using in-memory store")
		store = repository.NewMemory()
	} else {
		pg, err := repository.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error(ctx, "failed to connect to store", logger.Error(err))
			return 1
		}
		defer pg.Close()
		store = pg
	}

	svc := app.New(
		app.WithSource(store),
		app.WithSink(store),
		app.WithCoefficients(coeffs),
		app.WithLogger(log),
		app.WithSeasonWorkers(cfg.SeasonWorkers),
		app.WithNormalizerOptions(
			pace.WithPossessionFloor(cfg.PossessionFloor),
		),
		app.WithSolverOptions(
			adjem.WithHalfLife(cfg.HalfLifeDays),
			adjem.WithWeightFloor(cfg.WeightFloor),
			adjem.WithIterations(cfg.Iterations),
			adjem.WithMinGames(cfg.MinGames),
			adjem.WithRegression(cfg.MinGamesRegression),
			adjem.WithLeagueAverage(cfg.LeagueAvgEff),
		),
		app.WithAggregatorOptions(
			vorp.WithReplacementLevel(cfg.ReplacementLevel),
			vorp.WithFullSeasonGames(cfg.FullSeasonGames),
		),
	)

	summary, err := svc.Run(ctx, season)
	if err != nil {
		log.Error(ctx, "ratings run failed",
			logger.String("run_id", summary.RunID), logger.Error(err))
		return 1
	}
	return 0
}

// serveMetrics exposes the custom registry until the run's context ends.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       metricsReadTimeout,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.Info(ctx, "metrics listener started", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}
