package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Feed delivers the full contents of the selections collection: once when
// the subscription opens and again after every change. onError is called at
// most once, when the feed can no longer deliver; the feed does not retry.
type Feed interface {
	Subscribe(ctx context.Context, onSnapshot func([]models.SelectionRecord), onError func(error)) (Subscription, error)
}

// Subscription is a live Feed subscription.
type Subscription interface {
	Close()
}

// Status is the externally visible state of a Page.
type Status string

const (
	StatusIdle    Status = "idle"    // not started
	StatusLoading Status = "loading" // waiting for the first snapshot's join
	StatusReady   Status = "ready"
	StatusError   Status = "error" // feed failed; terminal
	StatusStopped Status = "stopped"
)

// ErrPageStopped is returned by Start after Stop.
var ErrPageStopped = errors.New("roster page stopped")

// Options tunes a Page. Zero values use package defaults.
type Options struct {
	Concurrency   int
	LookupTimeout time.Duration
	Metrics       *Metrics
	Log           *zap.Logger
}

// State is a point-in-time description of a Page for presentation.
type State struct {
	PageID      string       `json:"page_id"`
	Event       models.Event `json:"event"`
	Status      Status       `json:"status"`
	Error       string       `json:"error,omitempty"`
	Seq         uint64       `json:"seq"`
	Count       int          `json:"count"`
	CommittedAt time.Time    `json:"committed_at"`
}

// Page owns the roster for one event: one feed subscription, one
// sequencer, and the Store the sequencer commits into.
type Page struct {
	id      string
	event   models.Event
	feed    Feed
	joiner  *Joiner
	seq     Sequencer
	store   *Store
	log     *zap.Logger
	metrics *Metrics

	wg sync.WaitGroup

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool
	sub     Subscription
	status  Status
	err     error
}

// NewPage builds an idle Page for event.
func NewPage(event models.Event, feed Feed, lookup UserLookup, opts Options) *Page {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	log = log.With(zap.String("event_id", event.ID), zap.String("page_id", id))

	return &Page{
		id:    id,
		event: event,
		feed:  feed,
		joiner: &Joiner{
			EventID:     event.ID,
			Lookup:      lookup,
			Concurrency: opts.Concurrency,
			Timeout:     opts.LookupTimeout,
			Log:         log,
			Metrics:     opts.Metrics,
		},
		store:   NewStore(),
		log:     log,
		metrics: opts.Metrics,
		status:  StatusIdle,
	}
}

// Start opens the feed subscription. Calling Start on a running page is a
// no-op; calling it after Stop returns ErrPageStopped. A subscription that
// cannot be opened puts the page in StatusError.
func (p *Page) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPageStopped
	}
	if p.started {
		p.mu.Unlock()
		return nil
	}
	p.started = true
	p.status = StatusLoading
	p.ctx, p.cancel = context.WithCancel(ctx)
	subCtx := p.ctx
	p.mu.Unlock()

	sub, err := p.feed.Subscribe(subCtx, p.handleSnapshot, p.handleChannelError)
	if err != nil {
		p.handleChannelError(err)
		return fmt.Errorf("subscribe to selections: %w", err)
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		sub.Close()
		return ErrPageStopped
	}
	p.sub = sub
	p.mu.Unlock()

	p.log.Info("roster page started")
	return nil
}

// Stop closes the subscription and discards every join still in flight.
// It is safe to call at any time, including before Start and more than
// once. When Stop returns nothing further will be committed.
func (p *Page) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.status = StatusStopped
	sub, cancel := p.sub, p.cancel
	p.sub = nil
	p.mu.Unlock()

	p.seq.Close()
	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Close()
	}
	p.wg.Wait()

	p.log.Info("roster page stopped")
}

func (p *Page) handleSnapshot(records []models.SelectionRecord) {
	p.mu.Lock()
	if p.stopped || !p.started {
		p.mu.Unlock()
		return
	}
	ctx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	seq := p.seq.Next()
	p.metrics.snapshotReceived(p.event.ID)
	p.log.Debug("snapshot received", zap.Uint64("seq", seq), zap.Int("records", len(records)))

	go p.join(ctx, seq, records)
}

func (p *Page) join(ctx context.Context, seq uint64, records []models.SelectionRecord) {
	defer p.wg.Done()

	r, err := p.joiner.Join(ctx, records)
	if err != nil {
		p.metrics.snapshotDiscarded(p.event.ID)
		p.log.Debug("join abandoned", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	committed := p.seq.Commit(seq, func() {
		p.store.Replace(seq, r)
	})
	if !committed {
		p.metrics.snapshotDiscarded(p.event.ID)
		p.log.Debug("stale snapshot discarded", zap.Uint64("seq", seq))
		return
	}

	p.metrics.snapshotCommitted(p.event.ID, len(r))
	p.log.Debug("snapshot committed", zap.Uint64("seq", seq), zap.Int("participants", len(r)))

	p.mu.Lock()
	if p.status == StatusLoading {
		p.status = StatusReady
	}
	p.mu.Unlock()
}

func (p *Page) handleChannelError(err error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.status = StatusError
	p.err = err
	p.mu.Unlock()

	p.metrics.channelFailure(p.event.ID)
	p.log.Error("selections feed failed", zap.Error(err))
}

// ID returns the page instance id.
func (p *Page) ID() string { return p.id }

// Event returns the event this page is bound to.
func (p *Page) Event() models.Event { return p.event }

// Store returns the page's roster store. Only the page writes to it.
func (p *Page) Store() *Store { return p.store }

// Roster returns a copy of the committed roster.
func (p *Page) Roster() Roster { return p.store.Current() }

// NewView attaches a search view to the page's roster. Close it when done.
func (p *Page) NewView() *View { return NewView(p.store) }

// Status returns the page status.
func (p *Page) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err returns the feed error that put the page into StatusError.
func (p *Page) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// State describes the page for presentation.
func (p *Page) State() State {
	return p.StateAt(p.store.Snapshot())
}

// StateAt describes the page with counts taken from snap, so a caller that
// also renders snap's roster reports one consistent commit.
func (p *Page) StateAt(snap Snapshot) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := State{
		PageID:      p.id,
		Event:       p.event,
		Status:      p.status,
		Seq:         snap.Seq,
		Count:       len(snap.Roster),
		CommittedAt: snap.CommittedAt,
	}
	if p.err != nil {
		st.Error = p.err.Error()
	}
	return st
}
