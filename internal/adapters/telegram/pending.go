package telegram

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingStore keeps the titles behind inline keyboard buttons. Telegram
// callback data is capped at 64 bytes, too small for many article titles, so
// buttons carry a short key into this store instead. Entries expire after
// the configured TTL; a user tapping a stale button gets a fresh-search
// prompt.
type PendingStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]pendingEntry
}

type pendingEntry struct {
	title     string
	expiresAt time.Time
}

func NewPendingStore(ttl time.Duration) *PendingStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PendingStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]pendingEntry),
	}
}

// Put stores title and returns the key to embed in callback data.
func (s *PendingStore) Put(title string) string {
	key := uuid.NewString()
	s.mu.Lock()
	s.entries[key] = pendingEntry{
		title:     title,
		expiresAt: s.now().Add(s.ttl),
	}
	s.mu.Unlock()
	return key
}

// Get resolves a callback key back to its title. Expired and unknown keys
// report ok=false.
func (s *PendingStore) Get(key string) (title string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false
	}
	return entry.title, true
}

// Sweep drops every expired entry and returns how many were removed.
func (s *PendingStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, entry := range s.entries {
		if now.After(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
