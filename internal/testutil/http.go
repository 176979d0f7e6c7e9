package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/eventroster/internal/app/system/auth"
)

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewLoggedInRequest creates a request carrying a session cookie that sm
// accepts as LoggedIn.
func NewLoggedInRequest(t *testing.T, sm *auth.SessionManager, password, method, target string) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := sm.LogIn(rec, httptest.NewRequest(http.MethodPost, "/login", nil), password); err != nil {
		t.Fatalf("log in: %v", err)
	}
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}
