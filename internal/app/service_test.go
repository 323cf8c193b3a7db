package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/hooprate/internal/adapters/repository"
	"github.com/okian/hooprate/internal/app"
	"github.com/okian/hooprate/internal/domain/impact"
	"github.com/okian/hooprate/internal/domain/model"
	"github.com/okian/hooprate/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func testCoefficients() impact.Coefficients {
	return impact.Coefficients{
		ModelVersion: "test-v1",
		Intercept:    1.0,
		Weights: map[string]float64{
			impact.FeatureScoringEff:  0.8,
			impact.FeatureVolumeDev:   0.2,
			impact.FeatureAssistDev:   0.5,
			impact.FeatureORebDev:     0.3,
			impact.FeatureDRebDev:     0.1,
			impact.FeatureStealDev:    1.1,
			impact.FeatureBlockDev:    0.9,
			impact.FeatureTurnoverDev: -0.7,
			impact.FeatureFoulDev:     -0.2,
			impact.FeatureThreeDev:    0.4,
			impact.FeatureAssistBig:   0.6,
			impact.FeatureScoringVol:  0.05,
			impact.FeatureTeamNet:     0.05,
			"pos_PG":                  0.4,
			"pos_SG":                  0.1,
			"pos_PF":                  -0.1,
			"pos_C":                   -0.3,
		},
		LeagueAverages: impact.LeagueAverages{
			Points:            110,
			FieldGoalAttempts: 88,
			FreeThrowAttempts: 22,
			ThreePointMade:    12,
			OffensiveRebounds: 10,
			DefensiveRebounds: 33,
			Assists:           24,
			Steals:            7,
			Blocks:            5,
			Turnovers:         13,
			PersonalFouls:     19,
		},
	}
}

var testPositions = [...]string{"PG", "SG", "SF", "PF", "C"}

// boxScore fabricates one team's five-man box score for one game, with the
// team total landing on the given points and margin.
func boxScore(team, opponent, gameID string, date time.Time, points, margin float64) []model.GameRecord {
	out := make([]model.GameRecord, 0, 5)
	for i := 0; i < 5; i++ {
		f := float64(i)
		out = append(out, model.GameRecord{
			PlayerID:           fmt.Sprintf("%s-p%d", team, i+1),
			PlayerName:         fmt.Sprintf("%s Player %d", team, i+1),
			Team:               team,
			Opponent:           opponent,
			GameID:             gameID,
			GameDate:           date,
			Position:           testPositions[i],
			MinutesPlayed:      48,
			Points:             points/5 + f - 2,
			FieldGoalAttempts:  16 + f,
			FieldGoalsMade:     7 + f/2,
			FreeThrowAttempts:  4,
			FreeThrowsMade:     3,
			ThreePointAttempts: 5,
			ThreePointMade:     2,
			OffensiveRebounds:  2,
			DefensiveRebounds:  6,
			Assists:            4 + f,
			Steals:             1,
			Blocks:             1,
			Turnovers:          2,
			PersonalFouls:      3,
			PlusMinus:          margin,
		})
	}
	return out
}

// seasonRecords builds a short two-team schedule where AAA keeps winning.
func seasonRecords(first time.Time, games int) []model.GameRecord {
	var out []model.GameRecord
	for g := 0; g < games; g++ {
		date := first.AddDate(0, 0, g*3)
		gameID := fmt.Sprintf("G%03d-%d", g+1, first.Year())
		out = append(out, boxScore("AAA", "BBB", gameID, date, 112, 8)...)
		out = append(out, boxScore("BBB", "AAA", gameID, date, 104, -8)...)
	}
	return out
}

type failingSink struct{}

func (failingSink) UpsertRatings(context.Context, []model.TeamSeasonRating, []model.PlayerSeasonVORP) error {
	return errors.New("sink unavailable")
}

func (failingSink) TopTeams(context.Context, string, int) ([]model.TeamSeasonRating, error) {
	return nil, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestService_Run(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	ctx := context.Background()
	nov := time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	Convey("Given a service without a source or sink", t, func() {
		svc := app.New(app.WithCoefficients(testCoefficients()))

		Convey("When running", func() {
			_, err := svc.Run(ctx, "")

			Convey("Then it refuses to start", func() {
				So(errors.Is(err, app.ErrNotConfigured), ShouldBeTrue)
			})
		})
	})

	Convey("Given a seeded store and a full pipeline", t, func() {
		store := repository.NewMemory()
		store.Seed(seasonRecords(nov, 8))
		svc := app.New(
			app.WithSource(store),
			app.WithSink(store),
			app.WithCoefficients(testCoefficients()),
			app.WithClock(fixedClock(asOf)),
		)

		Convey("When running without a filter", func() {
			summary, err := svc.Run(ctx, "")

			Convey("Then the run succeeds and reports its shape", func() {
				So(err, ShouldBeNil)
				So(summary.GamesLoaded, ShouldEqual, 8*2*5)
				So(summary.Seasons, ShouldResemble, []string{"2025-26"})
				So(summary.TeamRows, ShouldEqual, 2)
				So(summary.PlayerRows, ShouldEqual, 10)
				So(summary.RunID, ShouldNotBeEmpty)
			})

			Convey("Then the winning team rates above the losing team", func() {
				teams := store.TeamRatings()
				So(teams, ShouldHaveLength, 2)
				byTeam := map[string]model.TeamSeasonRating{}
				for _, r := range teams {
					byTeam[r.Team] = r
				}
				So(byTeam["AAA"].NetRating, ShouldBeGreaterThan, 0)
				So(byTeam["BBB"].NetRating, ShouldBeLessThan, 0)
				So(byTeam["AAA"].NetRating+byTeam["BBB"].NetRating, ShouldAlmostEqual, 0, 1e-9)
				So(byTeam["AAA"].Games, ShouldEqual, 8)
			})

			Convey("Then every player row carries a value and the model version", func() {
				players := store.PlayerVORPs()
				So(players, ShouldHaveLength, 10)
				for _, p := range players {
					So(p.VORP, ShouldNotBeNil)
					So(p.ModelVersion, ShouldEqual, "test-v1")
					So(p.GamesPlayed, ShouldEqual, 8)
					So(p.PctMinutes, ShouldBeLessThanOrEqualTo, 1.0)
				}
			})
		})

		Convey("When running twice with the same clock", func() {
			_, err1 := svc.Run(ctx, "")
			firstTeams := store.TeamRatings()
			firstPlayers := store.PlayerVORPs()

			_, err2 := svc.Run(ctx, "")

			Convey("Then the committed rows are identical", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(store.TeamRatings(), ShouldResemble, firstTeams)
				So(store.PlayerVORPs(), ShouldResemble, firstPlayers)
			})
		})

		Convey("When filtering to a season with no games", func() {
			summary, err := svc.Run(ctx, "1999-00")

			Convey("Then the run succeeds and writes nothing", func() {
				So(err, ShouldBeNil)
				So(summary.GamesLoaded, ShouldEqual, 0)
				So(summary.TeamRows, ShouldEqual, 0)
				So(store.TeamRatings(), ShouldBeEmpty)
				So(store.PlayerVORPs(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given records spanning two seasons", t, func() {
		store := repository.NewMemory()
		prior := time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC)
		store.Seed(append(seasonRecords(prior, 4), seasonRecords(nov, 4)...))
		svc := app.New(
			app.WithSource(store),
			app.WithSink(store),
			app.WithCoefficients(testCoefficients()),
			app.WithClock(fixedClock(asOf)),
			app.WithSeasonWorkers(2),
		)

		Convey("When running without a filter", func() {
			summary, err := svc.Run(ctx, "")

			Convey("Then both season partitions compute independently", func() {
				So(err, ShouldBeNil)
				So(summary.Seasons, ShouldResemble, []string{"2024-25", "2025-26"})
				So(summary.TeamRows, ShouldEqual, 4)

				teams := store.TeamRatings()
				So(teams, ShouldHaveLength, 4)
				So(teams[0].Season, ShouldEqual, "2024-25")
				So(teams[3].Season, ShouldEqual, "2025-26")
			})
		})

		Convey("When filtering to one season", func() {
			summary, err := svc.Run(ctx, "2025-26")

			Convey("Then only that season is recomputed", func() {
				So(err, ShouldBeNil)
				So(summary.Seasons, ShouldResemble, []string{"2025-26"})
				So(summary.GamesLoaded, ShouldEqual, 4*2*5)
			})
		})
	})

	Convey("Given a sink that rejects writes", t, func() {
		store := repository.NewMemory()
		store.Seed(seasonRecords(nov, 2))
		svc := app.New(
			app.WithSource(store),
			app.WithSink(failingSink{}),
			app.WithCoefficients(testCoefficients()),
			app.WithClock(fixedClock(asOf)),
		)

		Convey("When running", func() {
			_, err := svc.Run(ctx, "")

			Convey("Then the run fails after computing", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "persisting ratings")
			})
		})
	})
}
