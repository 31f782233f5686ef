package config

import "sync"

// Store is the process-wide configuration shared between the simulation
// (many readers) and an editor (one writer). Writes land between ticks
// because every tick works on its own Snapshot.
type Store struct {
	mu      sync.RWMutex
	params  Params
	version uint64
}

func NewStore(p Params) *Store {
	return &Store{params: p.Clamp()}
}

// Snapshot returns the current clamped parameters by value.
func (s *Store) Snapshot() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Version increases by one on every write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store) Set(p Params) {
	s.mu.Lock()
	s.params = p.Clamp()
	s.version++
	s.mu.Unlock()
}

// Update applies fn to a copy of the current parameters and stores the
// clamped result, which is also returned.
func (s *Store) Update(fn func(*Params)) Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.params
	fn(&p)
	s.params = p.Clamp()
	s.version++
	return s.params
}
