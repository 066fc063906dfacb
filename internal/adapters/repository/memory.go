package repository

import (
	"context"
	"sync"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// MemoryStore implements Store over in-process slices. It backs tests and
// the demo backend, where the service runs without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	players  []model.Player
	sessions []model.Session
	entries  []model.RawEntry
}

// MemoryOption applies a configuration option to the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithPlayers seeds the roster.
func WithPlayers(players []model.Player) MemoryOption {
	return func(s *MemoryStore) {
		s.players = append(s.players, players...)
	}
}

// WithSessions seeds the session records.
func WithSessions(sessions []model.Session) MemoryOption {
	return func(s *MemoryStore) {
		s.sessions = append(s.sessions, sessions...)
	}
}

// WithRawEntries seeds the RPE registrations.
func WithRawEntries(entries []model.RawEntry) MemoryOption {
	return func(s *MemoryStore) {
		s.entries = append(s.entries, entries...)
	}
}

// NewMemoryStore creates a memory store with the given seed data.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roster returns a copy of the seeded players.
func (s *MemoryStore) Roster(_ context.Context) ([]model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Player, len(s.players))
	copy(out, s.players)
	return out, nil
}

// Sessions returns a copy of the seeded sessions, filtered by team when
// one is given.
func (s *MemoryStore) Sessions(_ context.Context, team string) ([]model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if team != "" && sess.Team != team {
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}

// Entries returns a copy of the seeded registrations.
func (s *MemoryStore) Entries(_ context.Context) ([]model.RawEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RawEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}
