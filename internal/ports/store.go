package ports

import "context"

// KVStore is the key-value collaborator holding per-round game state.
// An instance is bound to one player: shared=false addresses that player's own
// scope and shared=true addresses the global scope visible to everyone.
type KVStore interface {
	// Get returns the stored value; found is false when the key is absent.
	Get(ctx context.Context, key string, shared bool) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string, shared bool) error
}
