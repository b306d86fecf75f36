// Package cache memoizes derived results keyed by their full parameter tuple.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/okian/tripmap/pkg/metrics"
)

const defaultMaxSize = 1024

// node is one entry of the insertion-ordered list.
type node[V any] struct {
	key        string
	value      V
	prev, next *node[V]
}

func (n *node[V]) reset() {
	var zero V
	n.key, n.value, n.prev, n.next = "", zero, nil, nil
}

// Memo is a concurrency-safe, optionally bounded key/value cache. Values are
// stored as given; callers store immutable values only.
type Memo[V any] struct {
	mu       sync.RWMutex
	entries  map[string]*node[V]
	head     *node[V] // newest
	tail     *node[V] // oldest
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// New creates a memo with a default bound of 1024 entries.
func New[V any](opts ...Option) *Memo[V] {
	c := config{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&c)
	}
	m := &Memo[V]{
		entries: make(map[string]*node[V]),
		maxSize: c.maxSize,
	}
	m.nodePool = sync.Pool{
		New: func() interface{} {
			return &node[V]{}
		},
	}
	return m
}

// kind is the metrics label of a key: its first "|" separated segment.
func kind(key string) string {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[:i]
	}
	return key
}

// Get returns the value stored under key.
func (m *Memo[V]) Get(_ context.Context, key string) (V, bool) {
	m.mu.RLock()
	n, ok := m.entries[key]
	var v V
	if ok {
		v = n.value
	}
	m.mu.RUnlock()

	if ok {
		metrics.RecordCacheHit(kind(key))
	} else {
		metrics.RecordCacheMiss(kind(key))
	}
	return v, ok
}

// Put stores value under key. Replacing a key keeps its age.
func (m *Memo[V]) Put(_ context.Context, key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, exists := m.entries[key]; exists {
		n.value = value
		return
	}
	if m.maxSize > 0 && len(m.entries) >= m.maxSize {
		m.evictOldest()
	}

	n := m.nodePool.Get().(*node[V])
	n.key, n.value = key, value
	n.next = m.head
	if m.head != nil {
		m.head.prev = n
	}
	m.head = n
	if m.tail == nil {
		m.tail = n
	}
	m.entries[key] = n
	metrics.UpdateCacheSize(int(m.size.Add(1)))
}

// Delete removes key if present.
func (m *Memo[V]) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, exists := m.entries[key]; exists {
		m.unlink(n)
		metrics.UpdateCacheSize(int(m.size.Load()))
	}
}

// Purge drops every entry.
func (m *Memo[V]) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for m.tail != nil {
		m.unlink(m.tail)
	}
	metrics.UpdateCacheSize(0)
}

// Size returns the current number of entries.
func (m *Memo[V]) Size() int64 {
	return m.size.Load()
}

// evictOldest removes the least recently added entry.
// Must be called with m.mu held.
func (m *Memo[V]) evictOldest() {
	if m.tail == nil {
		return
	}
	m.unlink(m.tail)
	metrics.RecordCacheEviction()
}

// unlink removes n from the list and the map and returns it to the pool.
// Must be called with m.mu held.
func (m *Memo[V]) unlink(n *node[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		m.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		m.tail = n.prev
	}
	delete(m.entries, n.key)
	n.reset()
	m.nodePool.Put(n)
	m.size.Add(-1)
}
