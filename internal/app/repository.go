package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"blindmaze/internal/domain"
	"blindmaze/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// PlayerRecordKey is the per-player storage key of a round's record.
func PlayerRecordKey(seed domain.RoundSeed) string {
	return playerRecordKeyPrefix + strconv.FormatInt(int64(seed), 10)
}

// LeaderboardKey is the shared storage key of a round's leaderboard.
func LeaderboardKey(seed domain.RoundSeed) string {
	return leaderboardKeyPrefix + strconv.FormatInt(int64(seed), 10)
}

// Repository serializes records and leaderboards to the key-value store.
// Exported reads never fail: unavailable storage, absent keys and malformed
// values all yield the zero record or an empty leaderboard. Write paths use the
// unexported loaders, which report a failed read.
type Repository struct {
	store  ports.KVStore
	logger runtime.Logger

	attemptsPerMaze int
	steps           int
	leaderboardSize int
}

// NewRepository wraps store with the limits used to validate decoded values.
func NewRepository(store ports.KVStore, logger runtime.Logger, attemptsPerMaze, steps, leaderboardSize int) *Repository {
	return &Repository{
		store:           store,
		logger:          logger,
		attemptsPerMaze: attemptsPerMaze,
		steps:           steps,
		leaderboardSize: leaderboardSize,
	}
}

// LoadPlayerRecord returns the player's record for seed.
func (r *Repository) LoadPlayerRecord(ctx context.Context, seed domain.RoundSeed) domain.PlayerRecord {
	rec, _ := r.loadPlayerRecord(ctx, seed)
	return rec
}

// loadPlayerRecord also reports whether the store answered. A record built on
// a failed read must not be written back.
func (r *Repository) loadPlayerRecord(ctx context.Context, seed domain.RoundSeed) (domain.PlayerRecord, bool) {
	key := PlayerRecordKey(seed)
	raw, found, err := r.store.Get(ctx, key, false)
	if err != nil {
		r.logger.Warn("LoadPlayerRecord [%s]: storage unavailable, using defaults: %v", key, err)
		return domain.PlayerRecord{}, false
	}
	if !found || raw == "" {
		return domain.PlayerRecord{}, true
	}

	var rec domain.PlayerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		r.logger.Warn("LoadPlayerRecord [%s]: malformed value, using defaults: %v", key, err)
		return domain.PlayerRecord{}, true
	}
	if !rec.Valid(r.attemptsPerMaze, r.steps) {
		r.logger.Warn("LoadPlayerRecord [%s]: record violates invariants, using defaults", key)
		return domain.PlayerRecord{}, true
	}
	return rec, true
}

// SavePlayerRecord persists the player's record for seed.
func (r *Repository) SavePlayerRecord(ctx context.Context, seed domain.RoundSeed, rec domain.PlayerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal player record: %w", err)
	}
	if err := r.store.Set(ctx, PlayerRecordKey(seed), string(data), false); err != nil {
		return fmt.Errorf("failed to save player record: %w", err)
	}
	return nil
}

// LoadLeaderboard returns the shared leaderboard for seed.
func (r *Repository) LoadLeaderboard(ctx context.Context, seed domain.RoundSeed) domain.Leaderboard {
	lb, _ := r.loadLeaderboard(ctx, seed)
	return lb
}

// loadLeaderboard also reports whether the store answered.
func (r *Repository) loadLeaderboard(ctx context.Context, seed domain.RoundSeed) (domain.Leaderboard, bool) {
	key := LeaderboardKey(seed)
	raw, found, err := r.store.Get(ctx, key, true)
	if err != nil {
		r.logger.Warn("LoadLeaderboard [%s]: storage unavailable, using empty board: %v", key, err)
		return domain.Leaderboard{}, false
	}
	if !found || raw == "" {
		return domain.Leaderboard{}, true
	}

	var lb domain.Leaderboard
	if err := json.Unmarshal([]byte(raw), &lb); err != nil {
		r.logger.Warn("LoadLeaderboard [%s]: malformed value, using empty board: %v", key, err)
		return domain.Leaderboard{}, true
	}
	return lb.Normalize(r.leaderboardSize), true
}

// SaveLeaderboard persists the shared leaderboard for seed.
// The write is not conditional: concurrent updates of the same round race and the last one wins.
func (r *Repository) SaveLeaderboard(ctx context.Context, seed domain.RoundSeed, lb domain.Leaderboard) error {
	if lb == nil {
		lb = domain.Leaderboard{}
	}
	data, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("failed to marshal leaderboard: %w", err)
	}
	if err := r.store.Set(ctx, LeaderboardKey(seed), string(data), true); err != nil {
		return fmt.Errorf("failed to save leaderboard: %w", err)
	}
	return nil
}
