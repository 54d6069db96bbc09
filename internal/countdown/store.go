package countdown

import (
	"context"
	"strings"
	"sync"
)

// StoragePrefix namespaces every persisted deadline entry.
const StoragePrefix = "cd_"

// Store persists raw deadline strings. Values are base-10 millisecond
// timestamps written by the Resolver; anything else found under a name is
// treated by the Resolver as if nothing were stored. There is deliberately no
// delete: an elapsed deadline is simply overwritten by the next resolution.
type Store interface {
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string) error
}

// Scoper hands out per-visitor views of a shared server-side store.
type Scoper interface {
	Scope(visitorID string) Store
}

// StorageName returns the entry name used for a timer key.
func StorageName(key string) string {
	return StoragePrefix + key
}

// MemoryStore keeps deadlines in process memory. Useful for tests and single
// instance deployments that don't want cookies.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore constructs an empty memory-backed store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, name string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[name]
	return v, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

// Scope implements Scoper.
func (s *MemoryStore) Scope(visitorID string) Store {
	return prefixedStore{inner: s, prefix: scopePrefix(visitorID)}
}

type prefixedStore struct {
	inner  Store
	prefix string
}

func (p prefixedStore) Get(ctx context.Context, name string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+name)
}

func (p prefixedStore) Set(ctx context.Context, name, value string) error {
	return p.inner.Set(ctx, p.prefix+name, value)
}

func scopePrefix(visitorID string) string {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		visitorID = "anonymous"
	}
	return visitorID + ":"
}
