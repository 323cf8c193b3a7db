package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/hooprate/internal/domain/model"
)

// Memory implements Store in process. It backs dry runs and tests; the
// upsert keeps the same keyed update-on-conflict semantics as Postgres.
type Memory struct {
	mu      sync.RWMutex
	records []model.GameRecord
	teams   map[teamRatingKey]model.TeamSeasonRating
	players map[playerVORPKey]model.PlayerSeasonVORP
}

type teamRatingKey struct {
	team   string
	season string
}

type playerVORPKey struct {
	playerID string
	team     string
	season   string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		teams:   make(map[teamRatingKey]model.TeamSeasonRating),
		players: make(map[playerVORPKey]model.PlayerSeasonVORP),
	}
}

// Seed replaces the stored game records.
func (m *Memory) Seed(records []model.GameRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([]model.GameRecord(nil), records...)
}

// GameRecords returns qualifying records, optionally scoped by season label.
func (m *Memory) GameRecords(_ context.Context, season string) ([]model.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.GameRecord, 0, len(m.records))
	for _, r := range m.records {
		if r.MinutesPlayed <= 0 {
			continue
		}
		if season != "" && model.SeasonOf(r.GameDate) != season {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// UpsertRatings stores both output sets under a single lock, mirroring the
// all-or-nothing transaction of the Postgres sink.
func (m *Memory) UpsertRatings(_ context.Context, teams []model.TeamSeasonRating, players []model.PlayerSeasonVORP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range teams {
		m.teams[teamRatingKey{team: t.Team, season: t.Season}] = t
	}
	for _, p := range players {
		m.players[playerVORPKey{playerID: p.PlayerID, team: p.Team, season: p.Season}] = p
	}
	return nil
}

// TopTeams returns up to n stored team ratings for a season by net rating
// descending.
func (m *Memory) TopTeams(_ context.Context, season string, n int) ([]model.TeamSeasonRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.TeamSeasonRating, 0)
	for key, t := range m.teams {
		if key.season == season {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NetRating != out[j].NetRating {
			return out[i].NetRating > out[j].NetRating
		}
		return out[i].Team < out[j].Team
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// TeamRatings returns all stored team rating rows, sorted for stable
// comparison in tests.
func (m *Memory) TeamRatings() []model.TeamSeasonRating {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.TeamSeasonRating, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].Team < out[j].Team
	})
	return out
}

// PlayerVORPs returns all stored player rows, sorted for stable comparison
// in tests.
func (m *Memory) PlayerVORPs() []model.PlayerSeasonVORP {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.PlayerSeasonVORP, 0, len(m.players))
	for _, p := range m.players {
		out = append(out, p)
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
