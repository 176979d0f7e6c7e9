package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T

	Selections    string
	Registrations string
}

// NewFixtures creates a new Fixtures instance for the given test database,
// writing to the default collection names.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t, Selections: "eventSelections", Registrations: "registrations"}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateRegistration inserts a registration for token.
func (f *Fixtures) CreateRegistration(ctx context.Context, token, name, college string) models.Registration {
	f.t.Helper()

	reg := models.Registration{
		ShortID:   token,
		Name:      name,
		Phone:     "9845000000",
		College:   college,
		Course:    "BCA",
		CreatedAt: models.At(time.Now().UTC().Truncate(time.Millisecond)),
	}
	if _, err := f.db.Collection(f.Registrations).InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return reg
}

// CreateDeletedRegistration inserts a soft-deleted registration for token.
func (f *Fixtures) CreateDeletedRegistration(ctx context.Context, token, name string) models.Registration {
	f.t.Helper()

	reg := models.Registration{ShortID: token, Name: name, Deleted: true}
	if _, err := f.db.Collection(f.Registrations).InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create deleted registration: %v", err)
	}
	return reg
}

// CreateSelection inserts a selection record owned by token that selects
// the given events. The record id is a fresh ObjectID in hex.
func (f *Fixtures) CreateSelection(ctx context.Context, token string, eventIDs ...string) models.SelectionRecord {
	f.t.Helper()

	rec := models.SelectionRecord{
		ID:         primitive.NewObjectID().Hex(),
		OwnerToken: token,
		CreatedAt:  models.At(time.Now().UTC().Truncate(time.Millisecond)),
	}
	for _, id := range eventIDs {
		rec.Selections = append(rec.Selections, models.Selection{EventID: id})
	}
	if _, err := f.db.Collection(f.Selections).InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create test selection: %v", err)
	}
	return rec
}
