package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

// memoryEntry is a single in-memory cache slot
type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore is a thread-safe in-process TTL store, the default backend.
// Expired entries are dropped lazily on read and swept by a janitor.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	done    chan struct{}
	now     func() time.Time
}

// NewMemoryStore creates a memory store sweeping expired entries every
// cleanupInterval. cleanupInterval <= 0 disables the janitor.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		go s.janitor(cleanupInterval)
	}
	return s
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.RLock()
	entry, found := s.entries[key]
	s.mu.RUnlock()

	if !found || s.now().After(entry.expiresAt) {
		return false, nil
	}

	if err := json.Unmarshal(entry.data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return true, nil
}

// Set implements Store. The slot is replaced atomically under the lock;
// there is no partial write a concurrent reader could observe.
func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	s.mu.Lock()
	s.entries[key] = memoryEntry{
		data:      data,
		expiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Clear implements Store: evicts every key with the prefix regardless of TTL
func (s *MemoryStore) Clear(_ context.Context, prefix string) error {
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
	return nil
}

// Close stops the janitor goroutine
func (s *MemoryStore) Close() {
	close(s.done)
}

// Len returns the number of live (unexpired) entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	now := s.now()
	for _, entry := range s.entries {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}

// janitor periodically removes expired entries
func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	now := s.now()
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}
