package roster_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"
)

var coding = models.Event{ID: "coding", Title: "Coding (C)", Capacity: 2}

func newPage(t *testing.T, feed *fakeFeed, lookup *fakeLookup) (*roster.Page, *roster.Metrics) {
	t.Helper()
	m := roster.NewMetrics(prometheus.NewRegistry())
	p := roster.NewPage(coding, feed, lookup, roster.Options{Metrics: m})
	t.Cleanup(p.Stop)
	return p, m
}

func TestPage_FirstSnapshotMakesPageReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	p, _ := newPage(t, feed, newLookup(user("T1", "Asha")))
	if p.Status() != roster.StatusIdle {
		t.Fatalf("status before Start: got %q, want idle", p.Status())
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if p.Status() != roster.StatusLoading {
		t.Fatalf("status after Start: got %q, want loading", p.Status())
	}

	feed.emit(selection("sel-1", "T1", "coding"))
	eventually(t, "page ready", func() bool { return p.Status() == roster.StatusReady })

	if got := tokens(p.Roster()); fmt.Sprint(got) != "[T1]" {
		t.Errorf("roster: got %v, want [T1]", got)
	}
	st := p.State()
	if st.Seq != 1 || st.Count != 1 || st.PageID != p.ID() {
		t.Errorf("state: got %+v", st)
	}
	p.Stop()
}

func TestPage_StaleSnapshotNeverOverwritesNewer(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	lookup := newLookup(user("T1", "Asha"), user("T2", "Kiran"))
	release := lookup.gate("T1")
	p, m := newPage(t, feed, lookup)
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	feed.emit(selection("sel-1", "T1", "coding")) // S1, slow
	feed.emit(selection("sel-2", "T2", "coding")) // S2, fast
	eventually(t, "S2 committed", func() bool { return p.Store().Snapshot().Seq == 2 })

	close(release)
	eventually(t, "S1 discarded", func() bool { return testutil.ToFloat64(m.Discarded("coding")) == 1 })

	if got := tokens(p.Roster()); fmt.Sprint(got) != "[T2]" {
		t.Errorf("roster: got %v, want [T2]", got)
	}
	if seq := p.Store().Snapshot().Seq; seq != 2 {
		t.Errorf("committed seq: got %d, want 2", seq)
	}
	if n := testutil.ToFloat64(m.Committed("coding")); n != 1 {
		t.Errorf("committed metric: got %v, want 1", n)
	}
	p.Stop()
}

func TestPage_LaterSnapshotsReplaceRoster(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	p, _ := newPage(t, feed, newLookup(user("T1", "Asha"), user("T2", "Kiran")))
	_ = p.Start(context.Background())

	feed.emit(selection("sel-1", "T1", "coding"))
	eventually(t, "first commit", func() bool { return p.Store().Snapshot().Seq == 1 })
	feed.emit(selection("sel-1", "T1", "coding"), selection("sel-2", "T2", "coding"))
	eventually(t, "second commit", func() bool { return p.Store().Snapshot().Seq == 2 })

	if got := tokens(p.Roster()); fmt.Sprint(got) != "[T1 T2]" {
		t.Errorf("roster: got %v, want [T1 T2]", got)
	}
	p.Stop()
}

func TestPage_StopDiscardsInFlightJoin(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	lookup := newLookup(user("T1", "Asha"))
	lookup.gate("T1")
	p, m := newPage(t, feed, lookup)
	_ = p.Start(context.Background())

	feed.emit(selection("sel-1", "T1", "coding"))
	eventually(t, "lookup started", func() bool {
		lookup.mu.Lock()
		defer lookup.mu.Unlock()
		return len(lookup.calls) == 1
	})
	p.Stop()

	if got := p.Roster(); len(got) != 0 {
		t.Errorf("roster after Stop: got %v, want empty", tokens(got))
	}
	if p.Status() != roster.StatusStopped {
		t.Errorf("status: got %q, want stopped", p.Status())
	}
	if n := testutil.ToFloat64(m.Committed("coding")); n != 0 {
		t.Errorf("committed metric: got %v, want 0", n)
	}
}

func TestPage_StopDiscardsJoinThatIgnoresCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	lookup := newLookup(user("T1", "Asha"))
	lookup.honorCancel = false
	release := lookup.gate("T1")
	p, _ := newPage(t, feed, lookup)
	_ = p.Start(context.Background())

	feed.emit(selection("sel-1", "T1", "coding"))
	eventually(t, "lookup started", func() bool {
		lookup.mu.Lock()
		defer lookup.mu.Unlock()
		return len(lookup.calls) == 1
	})

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	p.Stop()

	if got := p.Roster(); len(got) != 0 {
		t.Errorf("roster after Stop: got %v, want empty", tokens(got))
	}
	if seq := p.Store().Snapshot().Seq; seq != 0 {
		t.Errorf("committed seq: got %d, want 0", seq)
	}
}

func TestPage_SnapshotsAfterStopAreIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	lookup := newLookup(user("T1", "Asha"))
	p, _ := newPage(t, feed, lookup)
	_ = p.Start(context.Background())
	p.Stop()

	feed.emit(selection("sel-1", "T1", "coding"))
	feed.fail(errTransport)

	if len(lookup.calls) != 0 {
		t.Errorf("lookups after Stop: %v", lookup.calls)
	}
	if p.Status() != roster.StatusStopped {
		t.Errorf("status: got %q, want stopped", p.Status())
	}
}

func TestPage_StartIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	p, _ := newPage(t, feed, newLookup())
	for i := 0; i < 3; i++ {
		if err := p.Start(context.Background()); err != nil {
			t.Fatalf("Start #%d failed: %v", i+1, err)
		}
	}
	if sub, _ := feed.counts(); sub != 1 {
		t.Errorf("subscriptions: got %d, want 1", sub)
	}

	p.Stop()
	p.Stop()
	if _, closed := feed.counts(); closed != 1 {
		t.Errorf("subscription closes: got %d, want 1", closed)
	}
	if err := p.Start(context.Background()); !errors.Is(err, roster.ErrPageStopped) {
		t.Errorf("Start after Stop: got %v, want ErrPageStopped", err)
	}
}

func TestPage_StopBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	p, _ := newPage(t, feed, newLookup())
	p.Stop()
	if sub, _ := feed.counts(); sub != 0 {
		t.Errorf("subscriptions: got %d, want 0", sub)
	}
	if p.Status() != roster.StatusStopped {
		t.Errorf("status: got %q, want stopped", p.Status())
	}
}

func TestPage_FeedFailureIsTerminal(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	lookup := newLookup(user("T1", "Asha"))
	p, _ := newPage(t, feed, lookup)
	_ = p.Start(context.Background())
	feed.emit(selection("sel-1", "T1", "coding"))
	eventually(t, "page ready", func() bool { return p.Status() == roster.StatusReady })

	feed.fail(errTransport)
	if p.Status() != roster.StatusError {
		t.Fatalf("status: got %q, want error", p.Status())
	}
	if !errors.Is(p.Err(), errTransport) {
		t.Errorf("Err: got %v, want %v", p.Err(), errTransport)
	}
	if st := p.State(); st.Error != errTransport.Error() {
		t.Errorf("State.Error: got %q", st.Error)
	}
	// the last committed roster is still readable
	if got := tokens(p.Roster()); fmt.Sprint(got) != "[T1]" {
		t.Errorf("roster: got %v, want [T1]", got)
	}
	p.Stop()
}

func TestPage_SubscribeFailurePutsPageInError(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{failOpen: errTransport}
	p, m := newPage(t, feed, newLookup())
	err := p.Start(context.Background())
	if !errors.Is(err, errTransport) {
		t.Fatalf("Start: got %v, want %v", err, errTransport)
	}
	if p.Status() != roster.StatusError {
		t.Errorf("status: got %q, want error", p.Status())
	}
	if n := testutil.ToFloat64(m.ChannelFailures("coding")); n != 1 {
		t.Errorf("channel failure metric: got %v, want 1", n)
	}
}

func TestPage_ViewFollowsCommits(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	p, _ := newPage(t, feed, newLookup(user("T1", "Asha"), user("T2", "Kiran")))
	_ = p.Start(context.Background())

	v := p.NewView()
	defer v.Close()
	v.SetSearchTerm("kiran")

	feed.emit(selection("sel-1", "T1", "coding"), selection("sel-2", "T2", "coding"))
	eventually(t, "view updated", func() bool { return len(v.Current()) == 1 })
	if got := tokens(v.Current()); fmt.Sprint(got) != "[T2]" {
		t.Errorf("view: got %v, want [T2]", got)
	}
	p.Stop()
}

func TestPage_StateAtUsesGivenSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	feed := &fakeFeed{}
	p, _ := newPage(t, feed, newLookup(user("T1", "Asha")))
	_ = p.Start(context.Background())
	defer p.Stop()

	feed.emit(selection("sel-1", "T1", "coding"))
	eventually(t, "first commit", func() bool { return p.State().Seq == 1 })

	st := p.StateAt(roster.Snapshot{Seq: 7, Roster: roster.Roster{{JoinID: "a"}, {JoinID: "b"}}})
	if st.Seq != 7 || st.Count != 2 {
		t.Errorf("StateAt: seq %d count %d, want 7 and 2", st.Seq, st.Count)
	}
	if st.PageID != p.ID() || st.Status != roster.StatusReady {
		t.Errorf("StateAt page fields: %+v", st)
	}
}
