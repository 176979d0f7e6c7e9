package auth

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Gate state                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// State is the admin gate state carried by the session cookie. There is
// exactly one transition in each direction: LogIn and LogOut.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

const loggedInKey = "admin_logged_in"

// ErrBadPassword is returned by LogIn when the password does not match.
var ErrBadPassword = errors.New("incorrect password")

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the admin session cookie and the shared-secret check.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	hash  []byte
	log   *zap.Logger
}

// Secret is the admin password. Hash is a bcrypt hash and wins when set;
// otherwise Plain is hashed once at construction.
type Secret struct {
	Hash  string
	Plain string
}

// NewSessionManager builds the cookie store and prepares the password check.
//
// In production (secure=true) cookies are Secure with SameSite=None; over
// plain http in dev use secure=false so browsers accept them.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, secret Secret, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	hash, err := secretHash(secret)
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, hash: hash, log: logger}, nil
}

func secretHash(s Secret) ([]byte, error) {
	if s.Hash != "" {
		if _, err := bcrypt.Cost([]byte(s.Hash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return []byte(s.Hash), nil
	}
	if s.Plain == "" {
		return nil, errors.New("no admin password configured")
	}
	return bcrypt.GenerateFromPassword([]byte(s.Plain), bcrypt.DefaultCost)
}

// Store exposes the cookie store so logout can mirror its options.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// GetSession returns the admin session. On a decode error a fresh session is
// returned together with the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// State reports whether r carries a logged-in session.
func (sm *SessionManager) State(r *http.Request) State {
	sess, err := sm.GetSession(r)
	if err != nil {
		return LoggedOut
	}
	if ok, _ := sess.Values[loggedInKey].(bool); ok {
		return LoggedIn
	}
	return LoggedOut
}

// LogIn checks password and, on success, moves the session to LoggedIn.
func (sm *SessionManager) LogIn(w http.ResponseWriter, r *http.Request, password string) error {
	if err := bcrypt.CompareHashAndPassword(sm.hash, []byte(password)); err != nil {
		return ErrBadPassword
	}
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logSessionError("discarding undecodable session", err)
	}
	sess.Values[loggedInKey] = true
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LogOut moves the session to LoggedOut by expiring the cookie.
func (sm *SessionManager) LogOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logSessionError("session decode failed during logout", err)
	}
	delete(sess.Values, loggedInKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// logSessionError logs a session load failure. A cookie signed with a
// rotated key is routine and logged at debug.
func (sm *SessionManager) logSessionError(msg string, err error) {
	var scErr securecookie.Error
	if errors.As(err, &scErr) && scErr.IsDecode() {
		sm.log.Debug(msg, zap.Error(err))
		return
	}
	sm.log.Warn(msg, zap.Error(err))
}

// RequireLoggedIn lets only LoggedIn requests through.
// If not logged in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireLoggedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm.State(r) == LoggedIn {
			next.ServeHTTP(w, r)
			return
		}

		ret := url.QueryEscape(r.URL.RequestURI())

		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", "/login?return="+ret)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if wantsHTML(r) {
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
