package intents

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quorum-hq/cosigner/pkg/models"
)

// Store is the repository holding intent records. Implementations must
// serialize WithLock invocations per intent ID so signature acceptance and
// submission are atomic with respect to each other.
type Store interface {
	// Create persists a new intent; the ID must be unused
	Create(intent *models.Intent) error

	// Get returns a snapshot of the intent, or ErrIntentNotFound
	Get(id string) (*models.Intent, error)

	// WithLock runs fn with exclusive access to the live intent record.
	// Mutations made by fn are visible to subsequent calls. fn errors are
	// returned as-is.
	WithLock(id string, fn func(intent *models.Intent) error) error
}

// MemoryStore is an in-memory Store with a per-intent mutex table
type MemoryStore struct {
	mu      sync.RWMutex
	intents map[string]*models.Intent
	locks   map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		intents: make(map[string]*models.Intent),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Create persists a new intent
func (s *MemoryStore) Create(intent *models.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.intents[intent.ID]; exists {
		return fmt.Errorf("intent %s already exists", intent.ID)
	}
	s.intents[intent.ID] = intent
	s.locks[intent.ID] = &sync.Mutex{}
	return nil
}

// Get returns a snapshot of the intent
func (s *MemoryStore) Get(id string) (*models.Intent, error) {
	s.mu.RLock()
	intent, exists := s.intents[id]
	lock := s.locks[id]
	s.mu.RUnlock()

	if !exists {
		return nil, ErrIntentNotFound
	}

	// Snapshot under the intent lock so a concurrent mutation is never
	// observed half-applied.
	lock.Lock()
	defer lock.Unlock()
	return snapshot(intent), nil
}

// WithLock runs fn with exclusive access to the live intent record
func (s *MemoryStore) WithLock(id string, fn func(intent *models.Intent) error) error {
	s.mu.RLock()
	intent, exists := s.intents[id]
	lock := s.locks[id]
	s.mu.RUnlock()

	if !exists {
		return ErrIntentNotFound
	}

	lock.Lock()
	defer lock.Unlock()
	return fn(intent)
}

// Count returns the number of stored intents with the given status
func (s *MemoryStore) Count(status models.IntentStatus) int {
	type entry struct {
		intent *models.Intent
		lock   *sync.Mutex
	}

	s.mu.RLock()
	entries := make([]entry, 0, len(s.intents))
	for id, intent := range s.intents {
		entries = append(entries, entry{intent: intent, lock: s.locks[id]})
	}
	s.mu.RUnlock()

	// Status is guarded by the per-intent lock, not s.mu; read it under the
	// same lock WithLock writes it under.
	count := 0
	for _, e := range entries {
		e.lock.Lock()
		match := e.intent.Status == status
		e.lock.Unlock()
		if match {
			count++
		}
	}
	return count
}

// snapshot deep-copies the mutable parts of an intent record
func snapshot(intent *models.Intent) *models.Intent {
	copied := *intent
	copied.Signatures = make([]models.CollectedSignature, len(intent.Signatures))
	copy(copied.Signatures, intent.Signatures)
	copied.Owners = make([]common.Hash, len(intent.Owners))
	copy(copied.Owners, intent.Owners)
	copied.Calls = make([]models.Call, len(intent.Calls))
	copy(copied.Calls, intent.Calls)
	return &copied
}
