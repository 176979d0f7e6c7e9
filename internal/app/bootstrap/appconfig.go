// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// timeouts). AppConfig carries everything specific to the event roster:
// where the selection and registration records live, how the admin gate is
// secured, and how rosters are joined and rendered.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI                string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase           string // Database name within MongoDB
	SelectionsCollection    string // Selection records written by the registration flow
	RegistrationsCollection string // Participant registrations keyed by shortId

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: eventroster-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime; 0 means a browser-session cookie

	// Admin gate
	AdminPasswordHash string        // bcrypt hash; wins over AdminPassword
	AdminPassword     string        // plain shared secret, for development
	LoginAttempts     int           // password attempts allowed per client IP per LoginWindow (0 disables)
	LoginWindow       time.Duration // throttle window for LoginAttempts

	// Roster behaviour
	CatalogPath       string        // optional YAML file replacing the built-in catalog
	DisplayTimezone   string        // IANA zone used for export timestamps and filenames
	LookupConcurrency int           // concurrent registration lookups per snapshot
	LookupTimeout     time.Duration // bound on each registration lookup
	SnapshotTimeout   time.Duration // bound on each full read of the selections collection
}
