// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the event roster.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: EVENTROSTER_MONGO_URI, EVENTROSTER_ADMIN_PASSWORD_HASH, etc.
//   - Command-line flags: --mongo_uri, --catalog_path, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "event_roster", Desc: "MongoDB database name"},
	{Name: "selections_collection", Default: "eventSelections", Desc: "Collection holding selection records"},
	{Name: "registrations_collection", Default: "registrations", Desc: "Collection holding registrations"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "eventroster-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "0s", Desc: "Session cookie lifetime (0 = until the browser closes)"},

	{Name: "admin_password_hash", Default: "", Desc: "bcrypt hash of the admin password"},
	{Name: "admin_password", Default: "", Desc: "Plain admin password (development only; ignored when a hash is set)"},
	{Name: "login_attempts", Default: 10, Desc: "Login attempts allowed per client IP per window (0 disables throttling)"},
	{Name: "login_window", Default: "1m", Desc: "Login throttle window"},

	{Name: "catalog_path", Default: "", Desc: "YAML event catalog replacing the built-in one"},
	{Name: "display_timezone", Default: "Asia/Kolkata", Desc: "Time zone for export timestamps"},
	{Name: "lookup_concurrency", Default: 8, Desc: "Concurrent registration lookups per snapshot"},
	{Name: "lookup_timeout", Default: "5s", Desc: "Timeout for one registration lookup (e.g., 5s, 500ms)"},
	{Name: "snapshot_timeout", Default: "30s", Desc: "Timeout for one full read of the selections collection"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, with precedence
// flags > env > files > defaults, the WAFFLE_* core keys and the
// EVENTROSTER_* app keys above.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "EVENTROSTER", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:                appValues.String("mongo_uri"),
		MongoDatabase:           appValues.String("mongo_database"),
		SelectionsCollection:    appValues.String("selections_collection"),
		RegistrationsCollection: appValues.String("registrations_collection"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 0),

		AdminPasswordHash: appValues.String("admin_password_hash"),
		AdminPassword:     appValues.String("admin_password"),
		LoginAttempts:     appValues.Int("login_attempts"),
		LoginWindow:       appValues.Duration("login_window", time.Minute),

		CatalogPath:       appValues.String("catalog_path"),
		DisplayTimezone:   appValues.String("display_timezone"),
		LookupConcurrency: appValues.Int("lookup_concurrency"),
		LookupTimeout:     appValues.Duration("lookup_timeout", 5*time.Second),
		SnapshotTimeout:   appValues.Duration("snapshot_timeout", 30*time.Second),
	}

	if appCfg.AdminPasswordHash == "" && appCfg.AdminPassword != "" {
		logger.Warn("admin gate uses a plain password; set admin_password_hash in production")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Every problem is reported together so one restart fixes them all.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
	}
	if appCfg.MongoDatabase == "" {
		errs = append(errs, errors.New("mongo_database is required"))
	}
	if appCfg.SelectionsCollection == "" || appCfg.RegistrationsCollection == "" {
		errs = append(errs, errors.New("selections_collection and registrations_collection are required"))
	}
	if appCfg.AdminPasswordHash == "" && appCfg.AdminPassword == "" {
		errs = append(errs, errors.New("set admin_password_hash (or admin_password in development)"))
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.AdminPasswordHash == "" {
		errs = append(errs, errors.New("admin_password_hash is required in prod"))
	}
	if _, err := time.LoadLocation(appCfg.DisplayTimezone); err != nil {
		errs = append(errs, fmt.Errorf("display_timezone %q: %w", appCfg.DisplayTimezone, err))
	}
	if appCfg.LookupConcurrency < 1 {
		errs = append(errs, fmt.Errorf("lookup_concurrency must be at least 1, got %d", appCfg.LookupConcurrency))
	}
	if appCfg.LoginAttempts < 0 || (appCfg.LoginAttempts > 0 && appCfg.LoginWindow <= 0) {
		errs = append(errs, errors.New("login_attempts must be non-negative with a positive login_window"))
	}
	if appCfg.LookupTimeout <= 0 || appCfg.SnapshotTimeout <= 0 {
		errs = append(errs, errors.New("lookup_timeout and snapshot_timeout must be positive"))
	}

	return errors.Join(errs...)
}
