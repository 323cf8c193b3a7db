package vorp_test

import (
	"fmt"
	"testing"

	"github.com/okian/hooprate/internal/domain/model"
	"github.com/okian/hooprate/internal/domain/vorp"
	. "github.com/smartystreets/goconvey/convey"
)

func score(playerID, team, gameID string, minutes, impact float64) vorp.GameScore {
	return vorp.GameScore{
		Line: model.PlayerGameLine{
			Record: model.GameRecord{
				PlayerID:      playerID,
				PlayerName:    playerID + " name",
				Team:          team,
				GameID:        gameID,
				MinutesPlayed: minutes,
			},
			Season: "2025-26",
		},
		Impact: impact,
	}
}

// teamScores pads a roster so one player's minutes form a known share of the
// team total.
func teamScores(team string, games int, starMinutes, starImpact float64) []vorp.GameScore {
	var out []vorp.GameScore
	for g := 1; g <= games; g++ {
		id := fmt.Sprintf("G%d", g)
		out = append(out, score("star", team, id, starMinutes, starImpact))
		// Four teammates fill the remaining floor time.
		rest := (240 - starMinutes) / 4
		for i := 1; i <= 4; i++ {
			out = append(out, score(fmt.Sprintf("bench%d", i), team, id, rest, 0))
		}
	}
	return out
}

func TestAggregator_Aggregate(t *testing.T) {
	Convey("Given a player whose average impact equals the replacement level", t, func() {
		a := vorp.New(vorp.WithModelVersion("test-v1"))
		scores := teamScores("BOS", 10, 36, -2.0)

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)
			var star model.PlayerSeasonVORP
			for _, r := range rows {
				if r.PlayerID == "star" {
					star = r
				}
			}

			Convey("Then value over replacement is exactly zero", func() {
				So(star.VORP, ShouldNotBeNil)
				So(*star.VORP, ShouldAlmostEqual, 0, 1e-12)
			})

			Convey("And the row carries the model version", func() {
				So(star.ModelVersion, ShouldEqual, "test-v1")
			})
		})
	})

	Convey("Given a star playing a fixed share of team minutes", t, func() {
		a := vorp.New()
		// 36 of 240 team minutes per game: share = 36/(240/5) = 0.75.
		scores := teamScores("BOS", 41, 36, 2.0)

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)
			var star model.PlayerSeasonVORP
			for _, r := range rows {
				if r.PlayerID == "star" {
					star = r
				}
			}

			Convey("Then share, games, and the final metric line up", func() {
				So(star.GamesPlayed, ShouldEqual, 41)
				So(star.TeamGames, ShouldEqual, 41)
				So(star.PctMinutes, ShouldAlmostEqual, 0.75, 1e-9)
				So(star.AvgImpact, ShouldAlmostEqual, 2.0, 1e-9)
				// (2 - (-2)) * 0.75 * 41/82 = 1.5
				So(*star.VORP, ShouldAlmostEqual, 1.5, 1e-9)
			})
		})
	})

	Convey("Given raw minutes exceeding the per-slot team capacity", t, func() {
		a := vorp.New()
		// A two-man box score: the star's minutes alone exceed a fifth of
		// the team total.
		scores := []vorp.GameScore{
			score("star", "BOS", "G1", 200, 1.0),
			score("bench1", "BOS", "G1", 40, 0),
		}

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)
			var star model.PlayerSeasonVORP
			for _, r := range rows {
				if r.PlayerID == "star" {
					star = r
				}
			}

			Convey("Then the playing-time share caps at one", func() {
				So(star.PctMinutes, ShouldEqual, 1.0)
			})
		})
	})

	Convey("Given uneven minutes across games", t, func() {
		a := vorp.New()
		scores := []vorp.GameScore{
			score("p1", "BOS", "G1", 30, 4.0),
			score("p1", "BOS", "G2", 10, 0.0),
		}

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)

			Convey("Then the average impact is minutes-weighted", func() {
				So(rows, ShouldHaveLength, 1)
				// (4*30 + 0*10) / 40 = 3
				So(rows[0].AvgImpact, ShouldAlmostEqual, 3.0, 1e-9)
				So(rows[0].TotalMinutes, ShouldEqual, 40)
			})
		})
	})

	Convey("Given a player with no qualifying minutes", t, func() {
		a := vorp.New()
		scores := []vorp.GameScore{
			score("ghost", "BOS", "G1", 0, 0),
			score("p1", "BOS", "G1", 40, 1.0),
		}

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)
			var ghost model.PlayerSeasonVORP
			for _, r := range rows {
				if r.PlayerID == "ghost" {
					ghost = r
				}
			}

			Convey("Then the row exists but carries no value", func() {
				So(ghost.PlayerID, ShouldEqual, "ghost")
				So(ghost.VORP, ShouldBeNil)
			})
		})
	})

	Convey("Given a player traded mid-season", t, func() {
		a := vorp.New()
		scores := []vorp.GameScore{
			score("p1", "BOS", "G1", 30, 2.0),
			score("p1", "NYK", "G9", 30, 2.0),
		}

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)

			Convey("Then each stop produces its own row, sorted by team", func() {
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Team, ShouldEqual, "BOS")
				So(rows[1].Team, ShouldEqual, "NYK")
			})
		})
	})

	Convey("Given custom replacement level and schedule length", t, func() {
		a := vorp.New(
			vorp.WithReplacementLevel(0),
			vorp.WithFullSeasonGames(10),
		)
		scores := []vorp.GameScore{
			score("p1", "BOS", "G1", 48, 5.0),
		}

		Convey("When aggregating", func() {
			rows := a.Aggregate(scores)

			Convey("Then the options flow through the formula", func() {
				// share = 48/(48/5) = 5, capped at 1; (5-0)*1*(1/10) = 0.5
				So(*rows[0].VORP, ShouldAlmostEqual, 0.5, 1e-9)
			})
		})
	})
}
