package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/eventroster/internal/app/features/login"
	"github.com/dalemusser/eventroster/internal/app/system/auth"
	"github.com/dalemusser/eventroster/internal/app/system/ratelimit"
	"github.com/dalemusser/eventroster/internal/testutil"
	"go.uber.org/zap"
)

const password = "festival-admin"

func newTestHandler(t *testing.T) (*login.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false,
		auth.Secret{Plain: password}, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return login.NewHandler(sessionMgr, nil, logger), sessionMgr
}

func postLogin(h *login.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleLoginPost(rec, req)
	return rec
}

func TestHandleLoginPost_Success(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postLogin(h, url.Values{"password": {password}})

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != login.DefaultReturn {
		t.Errorf("Location: got %q, want %q", loc, login.DefaultReturn)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}
}

func TestHandleLoginPost_HonorsLocalReturn(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postLogin(h, url.Values{"password": {password}, "return": {"/events/coding?q=rv"}})

	if loc := rec.Header().Get("Location"); loc != "/events/coding?q=rv" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestHandleLoginPost_RejectsForeignReturn(t *testing.T) {
	h, _ := newTestHandler(t)
	for _, ret := range []string{"https://evil.example", "//evil.example", "/\\evil.example", "events"} {
		rec := postLogin(h, url.Values{"password": {password}, "return": {ret}})
		if loc := rec.Header().Get("Location"); loc != login.DefaultReturn {
			t.Errorf("return %q: Location got %q, want %q", ret, loc, login.DefaultReturn)
		}
	}
}

func TestHandleLoginPost_WrongPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := postLogin(h, url.Values{"password": {"guess"}})

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect password.") {
		t.Errorf("expected error message in body")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a cookie")
	}
}

func TestServeLogin_ShowsForm(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/login?return=/events/coding", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="password"`) || !strings.Contains(body, `value="/events/coding"`) {
		t.Errorf("unexpected form: %s", body)
	}
}

func TestServeLogin_AlreadyLoggedInRedirects(t *testing.T) {
	h, sm := newTestHandler(t)
	req := testutil.NewLoggedInRequest(t, sm, password, "GET", "/login")
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
}

func TestHandleLoginPost_Throttled(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Limiter = ratelimit.NewLoginLimiter(2, time.Minute)
	defer h.Limiter.Stop()

	for i := 0; i < 2; i++ {
		if rec := postLogin(h, url.Values{"password": {"guess"}}); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got %d, want %d", i+1, rec.Code, http.StatusUnauthorized)
		}
	}
	rec := postLogin(h, url.Values{"password": {password}})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("a throttled attempt must not log in")
	}
}

func TestHandleLoginPost_SuccessResetsThrottle(t *testing.T) {
	h, _ := newTestHandler(t)
	h.Limiter = ratelimit.NewLoginLimiter(2, time.Minute)
	defer h.Limiter.Stop()

	postLogin(h, url.Values{"password": {"guess"}})
	if rec := postLogin(h, url.Values{"password": {password}}); rec.Code != http.StatusSeeOther {
		t.Fatalf("login: got %d", rec.Code)
	}
	postLogin(h, url.Values{"password": {"guess"}})
	if rec := postLogin(h, url.Values{"password": {"guess"}}); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected the window to restart after success, got %d", rec.Code)
	}
}
