// Package vorp reduces per-game impact scores into season-level
// value-over-replacement metrics.
package vorp

import (
	"sort"

	"github.com/okian/hooprate/internal/domain/model"
)

// Default aggregation parameters.
const (
	defaultReplacementLevel = -2.0
	defaultFullSeasonGames  = 82.0

	// rosterSlots divides team minutes into per-slot capacity when deriving
	// a player's playing-time share.
	rosterSlots = 5.0
)

// GameScore pairs a normalized game line with its impact estimate.
type GameScore struct {
	Line   model.PlayerGameLine
	Impact float64
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithReplacementLevel sets the impact score of a freely available
// substitute player.
func WithReplacementLevel(level float64) Option {
	return func(a *Aggregator) {
		a.replacementLevel = level
	}
}

// WithFullSeasonGames sets the league's standard schedule length.
func WithFullSeasonGames(games float64) Option {
	return func(a *Aggregator) {
		if games > 0 {
			a.fullSeasonGames = games
		}
	}
}

// WithModelVersion stamps output rows with the coefficient artifact version.
func WithModelVersion(version string) Option {
	return func(a *Aggregator) {
		a.modelVersion = version
	}
}

// Aggregator computes minutes-weighted season averages and the final
// replacement-value metric.
type Aggregator struct {
	replacementLevel float64
	fullSeasonGames  float64
	modelVersion     string
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		replacementLevel: defaultReplacementLevel,
		fullSeasonGames:  defaultFullSeasonGames,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type playerKey struct {
	playerID string
	team     string
	season   string
}

type playerAcc struct {
	name          string
	games         int
	minutes       float64
	weightedSum   float64
	weightedTotal float64
}

type teamKey struct {
	team   string
	season string
}

type teamAcc struct {
	gameIDs map[string]struct{}
	minutes float64
}

// Aggregate reduces scored game lines into one PlayerSeasonVORP row per
// (player, team, season). Rows are sorted by season, team, then player for
// deterministic output.
func (a *Aggregator) Aggregate(scores []GameScore) []model.PlayerSeasonVORP {
	players := make(map[playerKey]*playerAcc)
	teams := make(map[teamKey]*teamAcc)

	for i := range scores {
		s := &scores[i]
		rec := &s.Line.Record

		pk := playerKey{playerID: rec.PlayerID, team: rec.Team, season: s.Line.Season}
		p, ok := players[pk]
		if !ok {
			p = &playerAcc{name: rec.PlayerName}
			players[pk] = p
		}
		p.games++
		p.minutes += rec.MinutesPlayed
		p.weightedSum += s.Impact * rec.MinutesPlayed
		p.weightedTotal += rec.MinutesPlayed

		tk := teamKey{team: rec.Team, season: s.Line.Season}
		t, ok := teams[tk]
		if !ok {
			t = &teamAcc{gameIDs: make(map[string]struct{})}
			teams[tk] = t
		}
		t.gameIDs[rec.GameID] = struct{}{}
		t.minutes += rec.MinutesPlayed
	}

	out := make([]model.PlayerSeasonVORP, 0, len(players))
	for pk, p := range players {
		t := teams[teamKey{team: pk.team, season: pk.season}]

		row := model.PlayerSeasonVORP{
			PlayerID:     pk.playerID,
			PlayerName:   p.name,
			Team:         pk.team,
			Season:       pk.season,
			GamesPlayed:  p.games,
			TotalMinutes: p.minutes,
			TeamGames:    len(t.gameIDs),
			ModelVersion: a.modelVersion,
		}

		if p.weightedTotal > 0 {
			row.AvgImpact = p.weightedSum / p.weightedTotal

			share := p.minutes / (t.minutes / rosterSlots)
			if share > 1.0 {
				share = 1.0
			}
			row.PctMinutes = share

			v := (row.AvgImpact - a.replacementLevel) * share *
				(float64(row.TeamGames) / a.fullSeasonGames)
			row.VORP = &v
		}
		// No qualifying minutes: VORP stays nil. "No signal" is not the
		// same as a replacement-level player.

		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
