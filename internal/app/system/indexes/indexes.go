// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collections names the collections whose indexes EnsureAll manages.
type Collections struct {
	Selections    string
	Registrations string
}

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, colls Collections, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string

	if err := ensureRegistrations(ctx, db.Collection(colls.Registrations), logger); err != nil {
		problems = append(problems, colls.Registrations+": "+err.Error())
	}
	if err := ensureSelections(ctx, db.Collection(colls.Selections), logger); err != nil {
		problems = append(problems, colls.Selections+": "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Every selection lookup is an equality match on shortId. Duplicate tokens
// exist in the wild and are reported, not rejected, so the index is not
// unique.
func ensureRegistrations(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) error {
	return ensureIndexSet(ctx, coll, logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shortId", Value: 1}},
			Options: options.Index().SetName("idx_registrations_shortId"),
		},
	})
}

func ensureSelections(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) error {
	return ensureIndexSet(ctx, coll, logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "selections.eventId", Value: 1}},
			Options: options.Index().SetName("idx_selections_eventId"),
		},
		{
			Keys:    bson.D{{Key: "userToken", Value: 1}},
			Options: options.Index().SetName("idx_selections_userToken"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isTrue(b *bool) bool { return b != nil && *b }

func listIndexes(ctx context.Context, coll *mongo.Collection, logger *zap.Logger) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{} // sig -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			logger.Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

// ensureIndexSet creates each desired index unless one with the same key
// pattern and uniqueness already exists. An index with matching keys but a
// different name or uniqueness is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll, logger)
	if err != nil {
		// A missing collection lists as empty on modern servers; older ones
		// return NamespaceNotFound, which is the same thing.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isTrue(unique)))

		if ex, ok := existing[sig]; ok {
			if isTrue(ex.Unique) == isTrue(unique) && (name == "" || ex.Name == name) {
				log.Info("reusing existing index", zap.String("took", time.Since(start).String()))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			log.Info("dropped index to realign name or options", zap.String("existing", ex.Name))
		}

		created, err := coll.Indexes().CreateOne(ctx, m)
		if err != nil {
			log.Warn("index ensure failed", zap.String("took", time.Since(start).String()), zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured",
			zap.String("created_name", created),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
