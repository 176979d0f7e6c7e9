// internal/app/store/selections/selectionstore.go
package selectionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/eventroster/internal/app/system/timeouts"
	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// DefaultCollection is the collection the registration flow writes
// selection records into.
const DefaultCollection = "eventSelections"

// Store reads the selections collection.
type Store struct {
	c         *mongo.Collection
	log       *zap.Logger
	malformed prometheus.Counter
}

// New creates a selections store over the named collection.
func New(db *mongo.Database, collection string, logger *zap.Logger) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{c: db.Collection(collection), log: logger}
}

// WithMetrics registers the skipped-record counter with reg. Call it once
// per registry.
func (s *Store) WithMetrics(reg prometheus.Registerer) *Store {
	s.malformed = promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "eventroster_selections_malformed_total",
		Help: "Total number of selection documents skipped because they could not be decoded",
	})
	return s
}

// List returns every selection record in natural order. A document that
// does not decode as a selection record is logged and skipped; only cursor
// and transport errors fail the read.
func (s *Store) List(ctx context.Context) ([]models.SelectionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "$natural", Value: 1}})
	cur, err := s.c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find selections: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.SelectionRecord{}
	for cur.Next(ctx) {
		rec, err := DecodeRecord(cur.Current)
		if err != nil {
			s.log.Warn("skipping malformed selection record",
				zap.String("collection", s.c.Name()),
				zap.String("record_id", RecordID(cur.Current)),
				zap.Error(err))
			if s.malformed != nil {
				s.malformed.Inc()
			}
			continue
		}
		out = append(out, rec)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read selections: %w", err)
	}
	return out, nil
}

// DecodeRecord decodes one selections document.
func DecodeRecord(raw bson.Raw) (models.SelectionRecord, error) {
	var rec models.SelectionRecord
	if err := bson.Unmarshal(raw, &rec); err != nil {
		return models.SelectionRecord{}, err
	}
	return rec, nil
}

// RecordID renders a document's _id for logs: ObjectIDs as hex, strings
// as-is, anything else in extended JSON.
func RecordID(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	if str, ok := v.StringValueOK(); ok {
		return str
	}
	return v.String()
}

// Insert writes rec. It is used for seeding and tests; the registration
// flow owns the collection in production.
func (s *Store) Insert(ctx context.Context, rec models.SelectionRecord) error {
	if !rec.CreatedAt.Present() {
		rec.CreatedAt = models.At(time.Now().UTC())
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Subscription is a live change-stream subscription opened by Subscribe.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close ends the subscription and waits for its goroutine to exit. No
// callback runs after Close returns.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe watches the collection and calls onSnapshot with its full
// contents: once immediately and again after every change. Bursts of
// changes are coalesced into one reload. When the stream or a reload fails,
// onError is called once and the subscription ends; it does not reconnect.
//
// The change stream is opened before the initial read so no change between
// the two is missed. Change streams need a replica set or sharded cluster;
// on a standalone server Subscribe returns the open error.
func (s *Store) Subscribe(ctx context.Context, onSnapshot func([]models.SelectionRecord), onError func(error)) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)

	cs, err := s.c.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", s.c.Name(), err)
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), timeouts.Ping())
			defer closeCancel()
			_ = cs.Close(closeCtx)
		}()
		s.run(ctx, cs, onSnapshot, onError)
	}()
	return sub, nil
}

func (s *Store) run(ctx context.Context, cs *mongo.ChangeStream, onSnapshot func([]models.SelectionRecord), onError func(error)) {
	fail := func(err error) {
		if ctx.Err() != nil {
			return // closed by the subscriber
		}
		s.log.Error("selections subscription ended", zap.String("collection", s.c.Name()), zap.Error(err))
		onError(err)
	}

	reload := func() bool {
		lctx, cancel := context.WithTimeout(ctx, timeouts.Snapshot())
		defer cancel()
		recs, err := s.List(lctx)
		if err != nil {
			fail(err)
			return false
		}
		if ctx.Err() != nil {
			return false
		}
		onSnapshot(recs)
		return true
	}

	if !reload() {
		return
	}
	for cs.Next(ctx) {
		// coalesce whatever else is already queued
		for cs.TryNext(ctx) {
		}
		if err := cs.Err(); err != nil {
			fail(err)
			return
		}
		if !reload() {
			return
		}
	}
	if err := cs.Err(); err != nil {
		fail(err)
		return
	}
	if ctx.Err() == nil {
		fail(errors.New("change stream closed"))
	}
}
