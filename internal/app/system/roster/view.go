package roster

import (
	"strings"
	"sync"

	"github.com/dalemusser/eventroster/internal/domain/models"
	"golang.org/x/text/cases"
)

// NormalizeTerm trims and case-folds a search term.
func NormalizeTerm(term string) string {
	return cases.Fold().String(strings.TrimSpace(term))
}

// Matches reports whether p matches an already-normalized term on its name
// (or username), phone, college, or token.
func Matches(p models.Participant, term string) bool {
	if term == "" {
		return true
	}
	fold := cases.Fold()
	for _, field := range [...]string{p.DisplayName(), p.Phone, p.College, p.Token} {
		if field != "" && strings.Contains(fold.String(field), term) {
			return true
		}
	}
	return false
}

// Filter returns the subsequence of r matching term, in roster order.
// An empty or whitespace-only term returns all of r. r is not modified.
func Filter(r Roster, term string) Roster {
	term = NormalizeTerm(term)
	out := make(Roster, 0, len(r))
	for _, p := range r {
		if Matches(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// View is a search-filtered window onto a Store. It keeps exactly one
// term/result pair and recomputes the result whenever the term changes or
// the Store's roster is replaced.
type View struct {
	store *Store

	mu       sync.Mutex
	term     string
	result   Roster
	base     Snapshot // the commit result was filtered from
	onChange func(Roster)

	detach func()
}

// NewView attaches a View with an empty search term to store.
func NewView(store *Store) *View {
	v := &View{store: store}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detach = store.OnReplace(v.rosterReplaced)
	v.base = store.Snapshot()
	v.result = Filter(v.base.Roster, "")
	return v
}

// SetSearchTerm normalizes term and recomputes the filtered roster against
// the store's current roster. It returns the new result.
func (v *View) SetSearchTerm(term string) Roster {
	v.mu.Lock()
	v.base = v.store.Snapshot()
	v.term = NormalizeTerm(term)
	v.result = Filter(v.base.Roster, v.term)
	out, fn := v.result, v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(clone(out))
	}
	return clone(out)
}

// Current returns the filtered roster for the current term.
func (v *View) Current() Roster {
	v.mu.Lock()
	defer v.mu.Unlock()
	return clone(v.result)
}

// Result is a View's term and filtered roster together with the commit
// they were computed from.
type Result struct {
	Term string
	Rows Roster
	Base Snapshot
}

// Result returns the current term, filtered roster, and base snapshot as
// one consistent value.
func (v *View) Result() Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Result{Term: v.term, Rows: clone(v.result), Base: v.base.copy()}
}

// Term returns the normalized search term.
func (v *View) Term() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.term
}

// OnChange sets a callback run after every recomputation.
func (v *View) OnChange(fn func(Roster)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Close detaches the View from its Store.
func (v *View) Close() {
	v.detach()
}

func (v *View) rosterReplaced(snap Snapshot) {
	v.mu.Lock()
	if snap.Seq < v.base.Seq {
		v.mu.Unlock()
		return
	}
	v.result = Filter(snap.Roster, v.term)
	v.base = snap
	out, fn := v.result, v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(clone(out))
	}
}

func clone(r Roster) Roster {
	out := make(Roster, len(r))
	copy(out, r)
	return out
}
