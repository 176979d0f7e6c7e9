package roster_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
)

var errTransport = errors.New("connection reset")

// fakeFeed records the callbacks of its single subscription and lets the
// test push snapshots or a failure through them.
type fakeFeed struct {
	mu         sync.Mutex
	onSnapshot func([]models.SelectionRecord)
	onError    func(error)
	subscribed int
	closed     int
	failOpen   error
}

type fakeSub struct{ f *fakeFeed }

func (s fakeSub) Close() {
	s.f.mu.Lock()
	s.f.closed++
	s.f.mu.Unlock()
}

func (f *fakeFeed) Subscribe(_ context.Context, onSnapshot func([]models.SelectionRecord), onError func(error)) (roster.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOpen != nil {
		return nil, f.failOpen
	}
	f.subscribed++
	f.onSnapshot = onSnapshot
	f.onError = onError
	return fakeSub{f: f}, nil
}

func (f *fakeFeed) emit(records ...models.SelectionRecord) {
	f.mu.Lock()
	fn := f.onSnapshot
	f.mu.Unlock()
	fn(records)
}

func (f *fakeFeed) fail(err error) {
	f.mu.Lock()
	fn := f.onError
	f.mu.Unlock()
	fn(err)
}

func (f *fakeFeed) counts() (subscribed, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed, f.closed
}

// fakeLookup resolves tokens from a map. Tokens listed in gates block until
// their channel is closed; if honorCancel is set a blocked lookup also ends
// when its context does.
type fakeLookup struct {
	mu          sync.Mutex
	users       map[string]models.Registration
	failures    map[string]error
	gates       map[string]chan struct{}
	honorCancel bool
	calls       []string
}

func newLookup(users ...models.Registration) *fakeLookup {
	l := &fakeLookup{
		users:       map[string]models.Registration{},
		failures:    map[string]error{},
		gates:       map[string]chan struct{}{},
		honorCancel: true,
	}
	for _, u := range users {
		l.users[u.ShortID] = u
	}
	return l
}

func (l *fakeLookup) gate(token string) chan struct{} {
	ch := make(chan struct{})
	l.mu.Lock()
	l.gates[token] = ch
	l.mu.Unlock()
	return ch
}

func (l *fakeLookup) Resolve(ctx context.Context, token string) (*models.Registration, error) {
	l.mu.Lock()
	l.calls = append(l.calls, token)
	gate := l.gates[token]
	honor := l.honorCancel
	l.mu.Unlock()

	if gate != nil {
		if honor {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		} else {
			<-gate
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.failures[token]; err != nil {
		return nil, err
	}
	u, ok := l.users[token]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func user(token, name string) models.Registration {
	return models.Registration{
		ShortID:   token,
		Name:      name,
		Phone:     "98450" + token,
		College:   "RV College",
		Course:    "BCA",
		CreatedAt: models.At(time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)),
	}
}

func selection(id, token string, events ...string) models.SelectionRecord {
	rec := models.SelectionRecord{
		ID:         id,
		OwnerToken: token,
		CreatedAt:  models.At(time.Date(2025, 9, 10, 14, 30, 0, 0, time.UTC)),
	}
	for _, ev := range events {
		rec.Selections = append(rec.Selections, models.Selection{EventID: ev})
	}
	return rec
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func tokens(r []models.Participant) []string {
	out := make([]string, len(r))
	for i, p := range r {
		out[i] = p.Token
	}
	return out
}
