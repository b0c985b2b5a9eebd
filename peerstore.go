package harbor

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Entry is a single row of the membership table. LastSeen is excluded from
// entry equality so it can be refreshed without duplicating the entry.
type Entry struct {
	Identity Identity
	LastSeen time.Time
}

// Store is the membership table of known peers, shared by every connection
// worker. One mutex guards the whole table; critical sections are pure
// in-memory work, all I/O happens outside the lock.
type Store struct {
	mu      sync.Mutex
	self    Identity
	max     int
	clock   clock.Clock
	entries map[string]*Entry
}

// NewStore creates an empty membership table for the given local identity,
// bounded at max entries. The local identity itself can never be a member.
func NewStore(self Identity, max int) *Store {
	return newStoreWithClock(self, max, clock.New())
}

func newStoreWithClock(self Identity, max int, clk clock.Clock) *Store {
	return &Store{
		self:    self,
		max:     max,
		clock:   clk,
		entries: make(map[string]*Entry),
	}
}

// Add inserts a peer into the table and reports whether it is newly joined.
// It returns false without mutating when the identity is the local node's
// own, or when the table is full. A peer that is already present only gets
// its LastSeen refreshed.
func (s *Store) Add(id Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id.Equal(s.self) {
		return false
	}
	if entry, ok := s.entries[id.ID()]; ok {
		entry.LastSeen = s.clock.Now()
		return false
	}
	if len(s.entries) >= s.max {
		return false
	}
	s.entries[id.ID()] = &Entry{Identity: id, LastSeen: s.clock.Now()}
	return true
}

// Contains looks up a peer and returns the stored identity, which carries
// the dialable endpoint.
func (s *Store) Contains(id Identity) (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id.ID()]
	if !ok {
		return Identity{}, false
	}
	return entry.Identity, true
}

// Remove deletes a peer from the table. Removing an absent peer is a no-op.
func (s *Store) Remove(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id.ID())
}

// Snapshot copies the current membership under the lock and releases it
// before returning, so serializing the result to a slow requester never
// blocks other workers.
func (s *Store) Snapshot() []Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]Identity, 0, len(s.entries))
	for _, entry := range s.entries {
		ids = append(ids, entry.Identity)
	}
	return ids
}

// Entries copies the full table, timestamps included, for debug listings.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, *entry)
	}
	return entries
}

// Size returns the current number of known peers.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
