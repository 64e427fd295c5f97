package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an idle session survives before eviction.
const DefaultTTL = time.Hour

type entry struct {
	state *State
	mu    sync.Mutex
}

// Store keeps per-session state with TTL eviction. Acquire hands out the
// state under a per-session mutex so the calling layer gets the
// one-turn-at-a-time guarantee the state relies on; different sessions
// proceed independently.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// Zero ttl uses DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{cache: cache.New(ttl, 10*time.Minute)}
}

// NewSessionID returns a fresh identifier for a conversation.
func NewSessionID() string {
	return uuid.NewString()
}

// Acquire returns the state for id, creating it on first use, and locks the
// session until release is called. Each access refreshes the TTL.
func (s *Store) Acquire(id string) (st *State, release func()) {
	e := s.entryFor(id)
	e.mu.Lock()
	return e.state, e.mu.Unlock
}

// Peek returns the state without locking, for inspection only.
func (s *Store) Peek(id string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(id); ok {
		return v.(*entry).state, true
	}
	return nil, false
}

// Drop removes a session immediately.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(id)
}

func (s *Store) entryFor(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache.Get(id); ok {
		e := v.(*entry)
		s.cache.Set(id, e, cache.DefaultExpiration)
		return e
	}
	e := &entry{state: NewState()}
	s.cache.Set(id, e, cache.DefaultExpiration)
	return e
}
