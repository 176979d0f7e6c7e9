package roster

import "sync"

// Sequencer numbers snapshots as they arrive and gates commits so that a
// slower, older join can never overwrite a newer result.
//
// Sequence numbers start at 1. Commit applies a result only while the
// sequencer is open and only if its number is greater than every number
// committed before it; commits are serialized under one lock.
type Sequencer struct {
	mu        sync.Mutex
	issued    uint64
	committed uint64
	closed    bool
}

// Next assigns the next sequence number.
func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Commit runs apply if seq is the newest result seen so far and the
// sequencer has not been closed. It reports whether apply ran.
func (s *Sequencer) Commit(seq uint64, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq <= s.committed || seq > s.issued {
		return false
	}
	s.committed = seq
	apply()
	return true
}

// Close rejects every later commit. A commit already running when Close is
// called finishes before Close returns.
func (s *Sequencer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
