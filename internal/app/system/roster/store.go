package roster

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/eventroster/internal/domain/models"
)

// Roster is an ordered participant list. Rosters handed out by this package
// are copies; callers may keep them but changes are not seen by anyone else.
type Roster []models.Participant

// Snapshot is one committed roster together with the sequence number of the
// snapshot it was built from.
type Snapshot struct {
	Seq         uint64
	Roster      Roster
	CommittedAt time.Time
}

// Store holds the current roster for one page. Replace swaps the whole
// roster in one step, so a reader sees either the old or the new list.
type Store struct {
	cur atomic.Pointer[Snapshot]

	mu        sync.Mutex
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore returns a Store holding an empty roster at sequence 0.
func NewStore() *Store {
	s := &Store{listeners: make(map[int]func(Snapshot))}
	s.cur.Store(&Snapshot{})
	return s
}

// Replace installs r as the current roster and notifies listeners
// synchronously. Listener order is unspecified.
func (s *Store) Replace(seq uint64, r Roster) {
	snap := &Snapshot{
		Seq:         seq,
		Roster:      slices.Clone(r),
		CommittedAt: time.Now().UTC(),
	}
	s.cur.Store(snap)

	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap.copy())
	}
}

// Current returns a copy of the current roster.
func (s *Store) Current() Roster {
	return slices.Clone(s.cur.Load().Roster)
}

// Snapshot returns a copy of the current committed snapshot.
func (s *Store) Snapshot() Snapshot {
	return s.cur.Load().copy()
}

// OnReplace registers fn to run after every Replace. The returned function
// removes the registration.
func (s *Store) OnReplace(fn func(Snapshot)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (sn *Snapshot) copy() Snapshot {
	return Snapshot{Seq: sn.Seq, Roster: slices.Clone(sn.Roster), CommittedAt: sn.CommittedAt}
}
