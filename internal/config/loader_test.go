package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/okian/hooprate/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"HOOPRATE_CONFIG",
	"HOOPRATE_LOG_LEVEL",
	"HOOPRATE_DATABASE_URL",
	"HOOPRATE_SEASON",
	"HOOPRATE_COEFFICIENTS_PATH",
	"HOOPRATE_METRICS_ADDR",
	"HOOPRATE_DRY_RUN",
	"HOOPRATE_SEASON_WORKERS",
	"HOOPRATE_HALF_LIFE_DAYS",
	"HOOPRATE_WEIGHT_FLOOR",
	"HOOPRATE_ITERATIONS",
	"HOOPRATE_MIN_GAMES",
	"HOOPRATE_MIN_GAMES_REGRESSION",
	"HOOPRATE_LEAGUE_AVG_EFFICIENCY",
	"HOOPRATE_REPLACEMENT_LEVEL",
	"HOOPRATE_FULL_SEASON_GAMES",
	"HOOPRATE_POSSESSION_FLOOR",
}

func clearConfigEnvVars() {
	for _, key := range configEnvVars {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "hooprate-*.yaml")
	if err != nil {
		t.Fatalf("temp config file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	_ = f.Close()
	return f.Name()
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOOPRATE_DRY_RUN", "true")
			_ = os.Setenv("HOOPRATE_COEFFICIENTS_PATH", "coefficients.json")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.SeasonWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.HalfLifeDays, convey.ShouldEqual, 30)
				convey.So(cfg.WeightFloor, convey.ShouldEqual, 0.10)
				convey.So(cfg.Iterations, convey.ShouldEqual, 5)
				convey.So(cfg.MinGames, convey.ShouldEqual, 5)
				convey.So(cfg.ReplacementLevel, convey.ShouldEqual, -2.0)
				convey.So(cfg.FullSeasonGames, convey.ShouldEqual, 82)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOOPRATE_DATABASE_URL", "postgres://localhost/hooprate")
			_ = os.Setenv("HOOPRATE_COEFFICIENTS_PATH", "/etc/hooprate/coefficients.json")
			_ = os.Setenv("HOOPRATE_SEASON", "2025-26")
			_ = os.Setenv("HOOPRATE_HALF_LIFE_DAYS", "45")
			_ = os.Setenv("HOOPRATE_SEASON_WORKERS", "2")
			_ = os.Setenv("HOOPRATE_LOG_LEVEL", "debug")
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://localhost/hooprate")
				convey.So(cfg.CoefficientsPath, convey.ShouldEqual, "/etc/hooprate/coefficients.json")
				convey.So(cfg.Season, convey.ShouldEqual, "2025-26")
				convey.So(cfg.HalfLifeDays, convey.ShouldEqual, 45)
				convey.So(cfg.SeasonWorkers, convey.ShouldEqual, 2)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			yamlContent := `
database_url: "postgres://file/hooprate"
coefficients_path: "file-coefficients.json"
iterations: 8
replacement_level: -1.5
`
			tmpFile := createTempConfigFile(t, yamlContent)
			_ = os.Setenv("HOOPRATE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load()

			convey.Convey("Then it should load from the YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DatabaseURL, convey.ShouldEqual, "postgres://file/hooprate")
				convey.So(cfg.Iterations, convey.ShouldEqual, 8)
				convey.So(cfg.ReplacementLevel, convey.ShouldEqual, -1.5)
			})

			convey.Convey("And env vars still win over the file", func() {
				_ = os.Setenv("HOOPRATE_ITERATIONS", "12")

				cfg, err := config.Load()

				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Iterations, convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When the database URL is missing without dry run", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOOPRATE_COEFFICIENTS_PATH", "coefficients.json")
			defer clearConfigEnvVars()

			_, err := config.Load()

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "database_url")
			})
		})

		convey.Convey("When the coefficients path is missing", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOOPRATE_DRY_RUN", "true")
			defer clearConfigEnvVars()

			_, err := config.Load()

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "coefficients_path")
			})
		})

		convey.Convey("When a numeric parameter is out of range", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOOPRATE_DRY_RUN", "true")
			_ = os.Setenv("HOOPRATE_COEFFICIENTS_PATH", "coefficients.json")
			_ = os.Setenv("HOOPRATE_ITERATIONS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load()

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "iterations")
			})
		})

		convey.Convey("When the config file path points nowhere", func() {
			clearConfigEnvVars()
			_ = os.Setenv("HOOPRATE_CONFIG", "/nonexistent/hooprate.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load()

			convey.Convey("Then loading fails with a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}
