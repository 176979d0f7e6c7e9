package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/dalemusser/eventroster/internal/domain/models"
	"go.uber.org/zap"
)

// ErrRegistryClosed is returned by Open after Close.
var ErrRegistryClosed = errors.New("roster registry closed")

// Catalog resolves event ids. An unknown id must return an error; the
// registry never opens a page for it.
type Catalog interface {
	Lookup(id string) (models.Event, error)
}

// Registry owns at most one live Page per event and stops them all on
// Close.
type Registry struct {
	ctx     context.Context
	catalog Catalog
	feed    Feed
	lookup  UserLookup
	opts    Options
	log     *zap.Logger

	mu     sync.Mutex
	pages  map[string]*Page
	closed bool
}

// NewRegistry creates a Registry. Pages it starts live until Close or
// Reopen; ctx bounds all of them.
func NewRegistry(ctx context.Context, catalog Catalog, feed Feed, lookup UserLookup, opts Options) *Registry {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		ctx:     ctx,
		catalog: catalog,
		feed:    feed,
		lookup:  lookup,
		opts:    opts,
		log:     log,
		pages:   make(map[string]*Page),
	}
}

// Open returns the page for eventID, creating and starting it on first use.
// Unknown ids return the catalog's error. A page whose feed failed is
// returned as-is in StatusError; use Reopen to replace it.
func (r *Registry) Open(eventID string) (*Page, error) {
	ev, err := r.catalog.Lookup(eventID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRegistryClosed
	}
	if p, ok := r.pages[ev.ID]; ok {
		r.mu.Unlock()
		return p, nil
	}
	p := NewPage(ev, r.feed, r.lookup, r.opts)
	r.pages[ev.ID] = p
	r.mu.Unlock()

	if err := p.Start(r.ctx); err != nil && !errors.Is(err, ErrPageStopped) {
		r.log.Warn("roster page failed to start", zap.String("event_id", ev.ID), zap.Error(err))
	}
	return p, nil
}

// Reopen stops the current page for eventID, if any, and opens a fresh one.
func (r *Registry) Reopen(eventID string) (*Page, error) {
	if _, err := r.catalog.Lookup(eventID); err != nil {
		return nil, err
	}

	r.mu.Lock()
	old := r.pages[eventID]
	delete(r.pages, eventID)
	r.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return r.Open(eventID)
}

// Get returns the live page for eventID without creating one.
func (r *Registry) Get(eventID string) (*Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[eventID]
	return p, ok
}

// Close stops every page exactly once and rejects later Opens.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	pages := make([]*Page, 0, len(r.pages))
	for _, p := range r.pages {
		pages = append(pages, p)
	}
	r.pages = map[string]*Page{}
	r.mu.Unlock()

	for _, p := range pages {
		p.Stop()
	}
	r.log.Info("roster pages stopped", zap.Int("count", len(pages)))
}

// Len returns the number of live pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}
