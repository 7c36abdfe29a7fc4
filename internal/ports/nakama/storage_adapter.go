package nakama

import (
	"context"
	"fmt"

	"blindmaze/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// storageAPI is the slice of runtime.NakamaModule used for game state.
type storageAPI interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaStorageAdapter implements ports.KVStore on Nakama storage for one player.
// Player scope objects are owned by the player and readable only by them;
// shared objects are owned by the system user and publicly readable.
type NakamaStorageAdapter struct {
	nk     storageAPI
	userID string
}

// NewNakamaStorageAdapter binds a storage adapter to userID.
func NewNakamaStorageAdapter(nk storageAPI, userID string) *NakamaStorageAdapter {
	return &NakamaStorageAdapter{nk: nk, userID: userID}
}

func (a *NakamaStorageAdapter) owner(shared bool) string {
	if shared {
		return ""
	}
	return a.userID
}

// Get reads key from the player or shared scope.
func (a *NakamaStorageAdapter) Get(ctx context.Context, key string, shared bool) (string, bool, error) {
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: StorageCollection,
		Key:        key,
		UserID:     a.owner(shared),
	}})
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	for _, obj := range objects {
		if obj.GetKey() == key {
			return obj.GetValue(), true, nil
		}
	}
	return "", false, nil
}

// Set overwrites key in the player or shared scope.
func (a *NakamaStorageAdapter) Set(ctx context.Context, key, value string, shared bool) error {
	read := runtime.STORAGE_PERMISSION_OWNER_READ
	if shared {
		read = runtime.STORAGE_PERMISSION_PUBLIC_READ
	}
	_, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      StorageCollection,
		Key:             key,
		UserID:          a.owner(shared),
		Value:           value,
		PermissionRead:  read,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

var _ ports.KVStore = (*NakamaStorageAdapter)(nil)
