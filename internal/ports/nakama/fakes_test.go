package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type storageID struct {
	userID string
	key    string
}

type notification struct {
	userID  string
	subject string
	code    int
	content map[string]interface{}
}

// mockNakama implements the slices of runtime.NakamaModule the adapters use.
// Wallet updates that would leave a negative balance are rejected like Nakama does.
type mockNakama struct {
	objects       map[storageID]*runtime.StorageWrite
	wallets       map[string]map[string]int64
	usernames     map[string]string
	displayNames  map[string]string
	markers       map[string]bool
	notifications []notification

	readErr   error
	writeErr  error
	walletErr error
}

func newMockNakama() *mockNakama {
	return &mockNakama{
		objects:      make(map[storageID]*runtime.StorageWrite),
		wallets:      make(map[string]map[string]int64),
		usernames:    make(map[string]string),
		displayNames: make(map[string]string),
		markers:      make(map[string]bool),
	}
}

func (m *mockNakama) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []*api.StorageObject
	for _, r := range reads {
		w, ok := m.objects[storageID{userID: r.UserID, key: r.Collection + "/" + r.Key}]
		if !ok {
			continue
		}
		out = append(out, &api.StorageObject{
			Collection:     w.Collection,
			Key:            w.Key,
			UserId:         w.UserID,
			Value:          w.Value,
			PermissionRead: int32(w.PermissionRead),
		})
	}
	return out, nil
}

func (m *mockNakama) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		cp := *w
		m.objects[storageID{userID: w.UserID, key: w.Collection + "/" + w.Key}] = &cp
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID})
	}
	return acks, nil
}

func (m *mockNakama) AccountGetId(ctx context.Context, userID string) (*api.Account, error) {
	wallet, err := json.Marshal(m.wallets[userID])
	if err != nil {
		return nil, err
	}
	return &api.Account{
		User: &api.User{
			Id:          userID,
			Username:    m.usernames[userID],
			DisplayName: m.displayNames[userID],
		},
		Wallet: string(wallet),
	}, nil
}

func (m *mockNakama) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	if username != "" {
		m.usernames[userID] = username
	}
	m.displayNames[userID] = displayName
	return nil
}

func (m *mockNakama) WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error) {
	if m.walletErr != nil {
		return nil, nil, m.walletErr
	}
	if m.wallets[userID] == nil {
		m.wallets[userID] = make(map[string]int64)
	}
	prev := make(map[string]int64)
	for k, v := range m.wallets[userID] {
		prev[k] = v
	}
	for k, v := range changeset {
		if prev[k]+v < 0 {
			return nil, nil, fmt.Errorf("wallet update rejected negative value at path '%s'", k)
		}
	}
	for k, v := range changeset {
		m.wallets[userID][k] += v
	}
	return m.wallets[userID], prev, nil
}

func (m *mockNakama) MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	for _, w := range storageWrites {
		if w.Version == "*" && m.markers[w.UserID+"/"+w.Key] {
			return nil, nil, runtime.ErrStorageRejectedVersion
		}
	}
	for _, w := range storageWrites {
		m.markers[w.UserID+"/"+w.Key] = true
	}
	for _, u := range walletUpdates {
		if _, _, err := m.WalletUpdate(ctx, u.UserID, u.Changeset, u.Metadata, updateLedger); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func (m *mockNakama) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	if persistent {
		return errors.New("unexpected persistent notification")
	}
	m.notifications = append(m.notifications, notification{userID: userID, subject: subject, code: code, content: content})
	return nil
}
