package sessionstorefakes

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jrsteele09/go-school-gateway/session"
)

var _ session.Store = (*MemoryStore)(nil)

// ErrInjected is returned by writes to names registered with FailWrites.
var ErrInjected = errors.New("injected store failure")

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory cookie jar for tests.
type MemoryStore struct {
	entries    map[string]entry
	failWrites map[string]bool
	writes     []string
	lock       sync.RWMutex

	// Now is the clock used for cookie expiry.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:    make(map[string]entry),
		failWrites: make(map[string]bool),
		Now:        time.Now,
	}
}

func (ms *MemoryStore) Get(_ context.Context, name string) (string, bool) {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	e, ok := ms.entries[name]
	if !ok || !ms.Now().Before(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (ms *MemoryStore) Set(_ context.Context, name, value string, ttl time.Duration) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	if ms.failWrites[name] {
		return ErrInjected
	}
	ms.entries[name] = entry{value: value, expiresAt: ms.Now().Add(ttl)}
	ms.writes = append(ms.writes, name)
	return nil
}

func (ms *MemoryStore) Delete(_ context.Context, name string) error {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	delete(ms.entries, name)
	return nil
}

// FailWrites makes every later Set of the named cookies fail.
func (ms *MemoryStore) FailWrites(names ...string) {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	for _, n := range names {
		ms.failWrites[n] = true
	}
}

// Put stores a value directly, bypassing failure injection.
func (ms *MemoryStore) Put(name, value string, ttl time.Duration) {
	ms.lock.Lock()
	defer ms.lock.Unlock()
	ms.entries[name] = entry{value: value, expiresAt: ms.Now().Add(ttl)}
}

// Names returns the live cookie names.
func (ms *MemoryStore) Names() []string {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	names := make([]string, 0, len(ms.entries))
	for n, e := range ms.entries {
		if ms.Now().Before(e.expiresAt) {
			names = append(names, n)
		}
	}
	return names
}

// Writes returns the names passed to successful Set calls, in order.
func (ms *MemoryStore) Writes() []string {
	ms.lock.RLock()
	defer ms.lock.RUnlock()
	return append([]string(nil), ms.writes...)
}
