package cache

import (
	"context"
	"sync"

	"budget/internal/log"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)

	// Size returns the current number of items in the cache
	Size() int
}

// Versioned tells cache writers whether their source data is still current.
// *Manager satisfies it.
type Versioned interface {
	Generation() uint64
	IfCurrent(gen uint64, fn func()) bool
}

// Purger is implemented by caches that can drop every entry at once.
type Purger interface {
	Purge()
}

// Manager invalidates a group of caches together, e.g. after a write makes
// every derived chart stale. Each invalidation bumps a generation so readers
// that computed a value before the write can tell it is stale.
type Manager struct {
	mu         sync.Mutex
	caches     []Purger
	generation uint64
	logger     *log.Logger
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		logger: log.FromContext(context.Background()).WithComponent(log.ComponentCache),
	}
}

// Register adds a cache to the manager
func (m *Manager) Register(c Purger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, c)
}

// InvalidateAll purges every registered cache.
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	for _, c := range m.caches {
		c.Purge()
	}
	m.logger.Debug("Caches invalidated", "caches", len(m.caches), "generation", m.generation)
}

// Generation returns the number of invalidations so far.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// IfCurrent runs fn only when no invalidation happened since gen was read.
// fn runs under the manager lock, so it cannot interleave with InvalidateAll.
func (m *Manager) IfCurrent(gen uint64, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return false
	}
	fn()
	return true
}
