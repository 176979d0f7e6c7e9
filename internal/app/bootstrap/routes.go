// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	eventsfeature "github.com/dalemusser/eventroster/internal/app/features/events"
	healthfeature "github.com/dalemusser/eventroster/internal/app/features/health"
	loginfeature "github.com/dalemusser/eventroster/internal/app/features/login"
	logoutfeature "github.com/dalemusser/eventroster/internal/app/features/logout"
	"github.com/dalemusser/eventroster/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Public routes are /health, /metrics, and the
// login form; everything under /events needs a logged-in admin.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.Registry == nil {
		return nil, errors.New("build handler: Startup has not run")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure,
		auth.Secret{Hash: appCfg.AdminPasswordHash, Plain: appCfg.AdminPassword},
		logger,
	)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, rt.Registry, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", promhttp.HandlerFor(rt.Metrics, promhttp.HandlerOpts{}))

	// Authentication
	loginHandler := loginfeature.NewHandler(sessionMgr, rt.Logins, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Event admin
	eventsHandler := eventsfeature.NewHandler(rt.Catalog, rt.Registry, rt.Exporter, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/events", http.StatusSeeOther)
	})

	return r, nil
}
