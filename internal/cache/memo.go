// Package cache memoizes idempotent upstream reads keyed on their request
// parameters.
package cache

import (
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultSize bounds a memo that was configured without a size
	DefaultSize = 1024
	// DefaultTTL is the lifetime of an entry unless configured otherwise
	DefaultTTL = time.Hour
)

// Stats is a snapshot of a memo's counters
type Stats struct {
	Name    string `json:"name"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Entries int    `json:"entries"`
}

// Memo is a bounded read-through cache. Concurrent misses on the same key
// may each run the producer; the last result stored wins.
type Memo[K comparable, V any] struct {
	name   string
	lru    *expirable.LRU[K, V]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewMemo creates a memo holding at most size entries for ttl each.
// A non-positive size falls back to DefaultSize; a zero ttl never expires.
func NewMemo[K comparable, V any](name string, size int, ttl time.Duration) *Memo[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Memo[K, V]{
		name: name,
		lru:  expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Do returns the value stored for key, or calls produce and stores its
// result. Errors from produce are returned and never stored.
func (m *Memo[K, V]) Do(key K, produce func() (V, error)) (V, error) {
	if v, ok := m.lru.Get(key); ok {
		m.hits.Add(1)
		return v, nil
	}
	m.misses.Add(1)

	v, err := produce()
	if err != nil {
		var zero V
		return zero, err
	}
	m.lru.Add(key, v)
	return v, nil
}

// Purge drops every entry
func (m *Memo[K, V]) Purge() {
	m.lru.Purge()
}

// Stats returns the current counters
func (m *Memo[K, V]) Stats() Stats {
	return Stats{
		Name:    m.name,
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Entries: m.lru.Len(),
	}
}
