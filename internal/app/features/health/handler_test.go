package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/eventroster/internal/app/features/health"
	"github.com/dalemusser/eventroster/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context, *readpref.ReadPref) error { return p.err }

type fixedPages int

func (n fixedPages) Len() int { return int(n) }

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Pages    *int   `json:"pages"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

func TestServe_DatabaseConnected(t *testing.T) {
	rec, resp := serve(t, health.NewHandler(fakePinger{}, fixedPages(3), zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("got %+v", resp)
	}
	if resp.Pages == nil || *resp.Pages != 3 {
		t.Errorf("pages: got %v, want 3", resp.Pages)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	rec, resp := serve(t, health.NewHandler(fakePinger{err: errors.New("no reachable servers")}, nil, zap.NewNop()))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	if resp.Status != "error" || resp.Database != "disconnected" {
		t.Errorf("got %+v", resp)
	}
	if resp.Error != "no reachable servers" {
		t.Errorf("error: got %q", resp.Error)
	}
	if resp.Pages != nil {
		t.Errorf("pages should be omitted without a registry")
	}
}

func TestServe_RealDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec, resp := serve(t, health.NewHandler(db.Client(), nil, zap.NewNop()))

	if rec.Code != http.StatusOK || resp.Status != "ok" {
		t.Errorf("got %d %+v", rec.Code, resp)
	}
}
