package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/shopspring/decimal"
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

var errStoreDown = errors.New("store down")

// memStore is an in-memory KVStore for one player with switchable failures.
type memStore struct {
	mu       sync.Mutex
	owned    map[string]string
	shared   map[string]string
	getErr   error
	setErr   error
	setCalls int

	// failGets maps a key prefix to how many of its next reads fail.
	failGets map[string]int
}

func newMemStore() *memStore {
	return &memStore{owned: map[string]string{}, shared: map[string]string{}}
}

func (m *memStore) Get(ctx context.Context, key string, shared bool) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	for prefix, n := range m.failGets {
		if n > 0 && strings.HasPrefix(key, prefix) {
			m.failGets[prefix] = n - 1
			return "", false, errStoreDown
		}
	}
	src := m.owned
	if shared {
		src = m.shared
	}
	v, ok := src[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string, shared bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.setErr != nil {
		return m.setErr
	}
	if shared {
		m.shared[key] = value
	} else {
		m.owned[key] = value
	}
	return nil
}

// failNextGets makes the next n reads of keys starting with prefix fail.
func (m *memStore) failNextGets(prefix string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGets == nil {
		m.failGets = map[string]int{}
	}
	m.failGets[prefix] = n
}

// withSharedFrom makes a second player's store that shares the global scope.
func (m *memStore) withSharedFrom(other *memStore) *memStore {
	m.shared = other.shared
	return m
}

type deductCall struct {
	userID   string
	amount   decimal.Decimal
	metadata map[string]interface{}
}

type fakeEconomy struct {
	balances   map[string]decimal.Decimal
	balanceErr error
	refuse     bool
	deductErr  error
	deducts    []deductCall
}

func (f *fakeEconomy) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balances[userID], nil
}

func (f *fakeEconomy) Deduct(ctx context.Context, userID string, amount decimal.Decimal, metadata map[string]interface{}) (bool, error) {
	f.deducts = append(f.deducts, deductCall{userID: userID, amount: amount, metadata: metadata})
	if f.deductErr != nil {
		return false, f.deductErr
	}
	if f.refuse || f.balances[userID].LessThan(amount) {
		return false, nil
	}
	f.balances[userID] = f.balances[userID].Sub(amount)
	return true, nil
}
