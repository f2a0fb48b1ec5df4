package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	state   *State
	expires time.Time
}

// Store keeps wizard sessions in memory, keyed by session id. Entries expire
// lazily: an expired entry is dropped the next time it is touched. Every
// touch extends the entry's lifetime by the store TTL.
type Store struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[uuid.UUID]*entry

	now func() time.Time
}

// NewStore builds a Store whose entries live for ttl after their last touch.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		panic("session: ttl must be positive")
	}
	return &Store{
		ttl:     ttl,
		entries: make(map[uuid.UUID]*entry),
		now:     time.Now,
	}
}

// Create registers a fresh session and returns its id.
func (s *Store) Create() uuid.UUID {
	id := uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry{state: &State{}, expires: s.now().Add(s.ttl)}

	return id
}

// Get returns a snapshot of the session state. The second return is false
// when the session does not exist or has expired.
func (s *Store) Get(id uuid.UUID) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.touch(id)
	if !ok {
		return State{}, false
	}
	return e.state.snapshot(), true
}

// Update mutates the session state under the store lock and returns a
// snapshot of the result. A missing or expired session is recreated empty, so
// check-and-set sequences inside fn are atomic per session.
func (s *Store) Update(id uuid.UUID, fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.touch(id)
	if !ok {
		e = &entry{state: &State{}, expires: s.now().Add(s.ttl)}
		s.entries[id] = e
	}
	fn(e.state)

	return e.state.snapshot()
}

// touch must be called with the lock held. It drops the entry when expired
// and otherwise extends its lifetime.
func (s *Store) touch(id uuid.UUID) (*entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expires) {
		delete(s.entries, id)
		return nil, false
	}
	e.expires = s.now().Add(s.ttl)
	return e, true
}
