// Package timeouts provides centralized timeout values for store access.
//
// Guidelines for choosing a timeout:
//   - Ping: health checks and connectivity verification
//   - Lookup: one registration point lookup during a roster join
//   - Snapshot: reading the full selections collection for one snapshot
//
// Values are set once at startup with Configure; until then the defaults
// below apply.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing     = 2 * time.Second
	DefaultLookup   = 5 * time.Second
	DefaultSnapshot = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping     = DefaultPing
	lookup   = DefaultLookup
	snapshot = DefaultSnapshot
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Lookup returns the timeout for a single registration lookup.
func Lookup() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return lookup
}

// Snapshot returns the timeout for loading one full selections snapshot.
func Snapshot() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return snapshot
}

// Config holds timeout configuration values.
// Zero values are ignored (current values are kept).
type Config struct {
	Ping     time.Duration
	Lookup   time.Duration
	Snapshot time.Duration
}

// Configure sets custom timeout values. Call during startup, before any
// roster page is opened.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Lookup > 0 {
		lookup = cfg.Lookup
	}
	if cfg.Snapshot > 0 {
		snapshot = cfg.Snapshot
	}
}

// Reset restores the defaults. Useful for testing.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	lookup = DefaultLookup
	snapshot = DefaultSnapshot
}

// Current returns the active configuration, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Lookup: lookup, Snapshot: snapshot}
}

// WithTimeout creates a context with timeout and returns a cancel function
// that logs a warning if the deadline was exceeded.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Lookup(), j.Log, "registration lookup")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
