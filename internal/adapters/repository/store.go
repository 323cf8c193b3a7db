// Package repository defines the game-record source and ratings-sink
// contracts plus their Postgres and in-memory implementations.
package repository

import (
	"context"

	"github.com/okian/hooprate/internal/domain/model"
)

// Source provides read-only access to historical game records.
type Source interface {
	// GameRecords returns every record with positive minutes, optionally
	// scoped to one season label. An empty season returns all history.
	GameRecords(ctx context.Context, season string) ([]model.GameRecord, error)
}

// Sink receives the two output record sets. UpsertRatings must be atomic:
// either every row from the run is committed or none is, so readers never
// observe partial ratings.
type Sink interface {
	UpsertRatings(ctx context.Context, teams []model.TeamSeasonRating, players []model.PlayerSeasonVORP) error

	// TopTeams returns up to n committed team ratings for a season ordered
	// by net rating descending, used for post-write verification logging.
	TopTeams(ctx context.Context, season string, n int) ([]model.TeamSeasonRating, error)
}

// Store combines both sides of the data edge.
type Store interface {
	Source
	Sink
}
