// Package roster keeps one event's participant list in step with the
// selections collection.
//
// Every change to the collection arrives as a full snapshot. A Page numbers
// each snapshot as it arrives (Sequencer), resolves the snapshot's
// selection records against the registrations store (Joiner), and commits
// the result to its Store only when no newer snapshot has already been
// committed. Views derive search-filtered subsequences from the Store, and
// Exporter renders a view as CSV.
//
//	feed ─▶ Sequencer ─▶ Joiner ─▶ commit gate ─▶ Store ─▶ View ─▶ Exporter
//
// The Store has exactly one writer, the commit gate, and never holds a mix
// of two snapshots. Snapshots are never diffed; each accepted one replaces
// the roster wholesale.
package roster
