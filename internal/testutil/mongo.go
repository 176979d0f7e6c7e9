package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoURIEnv names the environment variable that points tests at a MongoDB
// server. Tests that need a database are skipped when it is unset.
const MongoURIEnv = "EVENTROSTER_TEST_MONGO_URI"

// TestContext returns a context bounded for a single test step.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to the test server and returns a fresh database that
// is dropped when the test ends.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := strings.TrimSpace(os.Getenv(MongoURIEnv))
	if uri == "" {
		t.Skipf("%s not set; skipping MongoDB test", MongoURIEnv)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect to test MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("test MongoDB unreachable: %v", err)
	}

	name := fmt.Sprintf("eventroster_test_%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// RequireChangeStreams skips the test unless db is served by a replica set
// or sharded cluster, which change streams need.
func RequireChangeStreams(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()

	cs, err := db.Collection("changestream_probe").Watch(ctx, mongo.Pipeline{})
	if err != nil {
		t.Skipf("change streams unavailable: %v", err)
	}
	_ = cs.Close(ctx)
}
