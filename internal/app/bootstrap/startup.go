// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	registrationstore "github.com/dalemusser/eventroster/internal/app/store/registrations"
	selectionstore "github.com/dalemusser/eventroster/internal/app/store/selections"
	"github.com/dalemusser/eventroster/internal/app/system/catalog"
	"github.com/dalemusser/eventroster/internal/app/system/ratelimit"
	"github.com/dalemusser/eventroster/internal/app/system/roster"
	"github.com/dalemusser/eventroster/internal/app/system/timeouts"
	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Runtime is everything Startup builds for the handlers and Shutdown
// tears down.
type Runtime struct {
	Catalog  *catalog.Catalog
	Registry *roster.Registry
	Metrics  *prometheus.Registry
	Exporter roster.Exporter
	Logins   *ratelimit.LoginLimiter // nil when throttling is disabled

	cancel context.CancelFunc
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: it sets
// the store timeouts, loads the event catalog, and creates the roster page
// registry. No page starts here; pages start on the first logged-in
// request for their event.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil {
		return fmt.Errorf("startup: runtime not allocated by ConnectDB")
	}

	timeouts.Configure(timeouts.Config{
		Lookup:   appCfg.LookupTimeout,
		Snapshot: appCfg.SnapshotTimeout,
	})

	cat, err := loadCatalog(appCfg, logger)
	if err != nil {
		return err
	}
	exporter, err := newExporter(appCfg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	feed := selectionFeed{store: selectionstore.New(deps.MongoDatabase, appCfg.SelectionsCollection, logger).WithMetrics(reg)}
	lookup := registrationstore.New(deps.MongoDatabase, appCfg.RegistrationsCollection)

	// Pages outlive the startup context; Shutdown cancels this one.
	pagesCtx, cancel := context.WithCancel(context.Background())

	rt := deps.Runtime
	rt.Catalog = cat
	rt.Metrics = reg
	rt.Exporter = exporter
	rt.cancel = cancel
	if appCfg.LoginAttempts > 0 {
		rt.Logins = ratelimit.NewLoginLimiter(appCfg.LoginAttempts, appCfg.LoginWindow)
	}
	rt.Registry = roster.NewRegistry(pagesCtx, cat, feed, lookup, roster.Options{
		Concurrency:   appCfg.LookupConcurrency,
		LookupTimeout: appCfg.LookupTimeout,
		Metrics:       roster.NewMetrics(reg),
		Log:           logger,
	})

	logger.Info("roster runtime ready",
		zap.Int("events", cat.Len()),
		zap.Int("lookup_concurrency", appCfg.LookupConcurrency),
		zap.String("display_timezone", appCfg.DisplayTimezone))
	return nil
}

// loadCatalog returns the built-in catalog, or the file at CatalogPath.
func loadCatalog(appCfg AppConfig, logger *zap.Logger) (*catalog.Catalog, error) {
	if appCfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(appCfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("event catalog loaded from file",
		zap.String("path", appCfg.CatalogPath),
		zap.Int("events", cat.Len()))
	return cat, nil
}

func newExporter(appCfg AppConfig) (roster.Exporter, error) {
	loc, err := time.LoadLocation(appCfg.DisplayTimezone)
	if err != nil {
		return roster.Exporter{}, fmt.Errorf("display timezone: %w", err)
	}
	return roster.Exporter{Location: loc, Layout: roster.DefaultDateLayout}, nil
}

// selectionFeed adapts the selections store to roster.Feed.
type selectionFeed struct {
	store *selectionstore.Store
}

func (f selectionFeed) Subscribe(ctx context.Context, onSnapshot func([]models.SelectionRecord), onError func(error)) (roster.Subscription, error) {
	sub, err := f.store.Subscribe(ctx, onSnapshot, onError)
	if err != nil {
		return nil, err
	}
	return sub, nil
}
