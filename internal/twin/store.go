package twin

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Record is one stored resource, keyed by underscore field names exactly as
// the API renders it.
type Record map[string]any

// Store is a thread-safe, insertion-ordered, in-memory store for objects of
// type T.
type Store[T any] struct {
	mu     sync.RWMutex
	items  map[string]T
	order  []string
	prefix string
}

// NewStore creates a store whose IDs start with prefix (e.g. "PN", "CA").
func NewStore[T any](prefix string) *Store[T] {
	return &Store[T]{
		items:  make(map[string]T),
		order:  make([]string, 0),
		prefix: prefix,
	}
}

// NextID generates a SID: the store prefix followed by 32 hex digits.
func (s *Store[T]) NextID() string {
	return s.prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Set stores an item. Overwriting keeps the original insertion position.
func (s *Store[T]) Set(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}

// Get retrieves an item by ID.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Delete removes an item by ID. Returns true if the item existed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Filter returns items matching predicate, in insertion order.
func (s *Store[T]) Filter(predicate func(id string, item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0)
	for _, id := range s.order {
		if predicate(id, s.items[id]) {
			result = append(result, s.items[id])
		}
	}
	return result
}

// Count returns the number of items.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Reset clears all items.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = make([]string, 0)
}

// Snapshot returns a copy of all items keyed by ID.
func (s *Store[T]) Snapshot() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]T, len(s.items))
	for k, v := range s.items {
		snapshot[k] = v
	}
	return snapshot
}

// page slices items into page number p (zero based) of size n.
func page[T any](items []T, p, n int) []T {
	start := p * n
	if start >= len(items) {
		return []T{}
	}
	end := start + n
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
