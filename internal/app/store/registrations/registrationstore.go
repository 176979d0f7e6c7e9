// internal/app/store/registrations/registrationstore.go
package registrationstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/eventroster/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection holds one document per registered participant.
const DefaultCollection = "registrations"

// ErrNotFound is returned when no registration has the requested token.
var ErrNotFound = errors.New("registration not found")

// Store provides access to the registrations collection.
type Store struct {
	c *mongo.Collection
}

// New creates a registrations store over the named collection.
func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{c: db.Collection(collection)}
}

// FindByShortID returns the registration whose shortId equals token. If
// several match, the first in natural order wins.
func (s *Store) FindByShortID(ctx context.Context, token string) (models.Registration, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Registration{}, ErrNotFound
	}

	var reg models.Registration
	opts := options.FindOne().SetSort(bson.D{{Key: "$natural", Value: 1}})
	err := s.c.FindOne(ctx, bson.M{"shortId": token}, opts).Decode(&reg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Registration{}, ErrNotFound
	}
	if err != nil {
		return models.Registration{}, fmt.Errorf("find registration %q: %w", token, err)
	}
	return reg, nil
}

// Resolve looks up token for the roster joiner: a missing registration is
// (nil, nil), any other failure is returned as an error.
func (s *Store) Resolve(ctx context.Context, token string) (*models.Registration, error) {
	reg, err := s.FindByShortID(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Insert writes reg. It is used for seeding and tests; the registration
// flow owns the collection in production.
func (s *Store) Insert(ctx context.Context, reg models.Registration) error {
	if strings.TrimSpace(reg.ShortID) == "" {
		return errors.New("registration shortId is required")
	}
	_, err := s.c.InsertOne(ctx, reg)
	return err
}
