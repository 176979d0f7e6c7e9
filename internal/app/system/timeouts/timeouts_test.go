package timeouts_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/eventroster/internal/app/system/timeouts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigure_IgnoresZeroValues(t *testing.T) {
	defer timeouts.Reset()

	timeouts.Configure(timeouts.Config{Lookup: 750 * time.Millisecond})

	got := timeouts.Current()
	if got.Lookup != 750*time.Millisecond {
		t.Errorf("Lookup: got %v, want 750ms", got.Lookup)
	}
	if got.Ping != timeouts.DefaultPing {
		t.Errorf("Ping: got %v, want %v", got.Ping, timeouts.DefaultPing)
	}
	if got.Snapshot != timeouts.DefaultSnapshot {
		t.Errorf("Snapshot: got %v, want %v", got.Snapshot, timeouts.DefaultSnapshot)
	}
}

func TestReset(t *testing.T) {
	timeouts.Configure(timeouts.Config{Ping: time.Minute})
	timeouts.Reset()
	if timeouts.Ping() != timeouts.DefaultPing {
		t.Errorf("Ping after Reset: got %v, want %v", timeouts.Ping(), timeouts.DefaultPing)
	}
}

func TestWithTimeout_LogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := timeouts.WithTimeout(context.Background(), time.Millisecond, log, "registration lookup")
	<-ctx.Done()
	cancel()

	if logs.FilterMessage("operation timed out").Len() != 1 {
		t.Errorf("expected one timeout warning, got %d", logs.Len())
	}
}

func TestWithTimeout_QuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	_, cancel := timeouts.WithTimeout(context.Background(), time.Hour, log, "registration lookup")
	cancel()

	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
