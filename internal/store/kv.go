package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blindmaze/internal/ports"
)

// sharedOwner is the owner of rows in the global scope.
const sharedOwner = ""

// PlayerKV is a ports.KVStore bound to one player.
type PlayerKV struct {
	store  *SQLiteStore
	userID string
}

// ForPlayer binds the key-value scopes to userID.
func (s *SQLiteStore) ForPlayer(userID string) *PlayerKV {
	return &PlayerKV{store: s, userID: userID}
}

func (kv *PlayerKV) owner(shared bool) string {
	if shared {
		return sharedOwner
	}
	return kv.userID
}

// Get reads key from the player or shared scope.
func (kv *PlayerKV) Get(ctx context.Context, key string, shared bool) (string, bool, error) {
	var value string
	err := kv.store.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE owner = ? AND key = ?`,
		kv.owner(shared), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// Set overwrites key in the player or shared scope.
func (kv *PlayerKV) Set(ctx context.Context, key, value string, shared bool) error {
	_, err := kv.store.db.ExecContext(ctx, `
INSERT INTO kv (owner, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (owner, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, kv.owner(shared), key, value, kv.store.nowMillis())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

var _ ports.KVStore = (*PlayerKV)(nil)
