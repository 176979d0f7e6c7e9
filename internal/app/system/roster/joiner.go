package roster

import (
	"context"
	"time"

	"github.com/dalemusser/eventroster/internal/app/system/timeouts"
	"github.com/dalemusser/eventroster/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UserLookup resolves a selection record's owner token to its registration.
// It returns (nil, nil) when no registration has that token.
type UserLookup interface {
	Resolve(ctx context.Context, token string) (*models.Registration, error)
}

// DefaultConcurrency bounds the lookups one join runs at once.
const DefaultConcurrency = 8

// Joiner turns one snapshot of selection records into the roster for a
// single event.
type Joiner struct {
	EventID     string
	Lookup      UserLookup
	Concurrency int           // max in-flight lookups; <=0 means DefaultConcurrency
	Timeout     time.Duration // per lookup; <=0 means timeouts.Lookup()
	Log         *zap.Logger
	Metrics     *Metrics
}

// Join filters records to those selecting j.EventID, resolves each owner,
// and composes the participants in record order.
//
// A record whose owner is missing or whose lookup fails is dropped with a
// warning; a soft-deleted owner is dropped silently. Neither stops the rest
// of the snapshot. Join returns an error only when ctx ends before every
// lookup has settled, in which case the partial result must be discarded.
func (j *Joiner) Join(ctx context.Context, records []models.SelectionRecord) (Roster, error) {
	members := make([]models.SelectionRecord, 0, len(records))
	for _, rec := range records {
		if rec.Selects(j.EventID) {
			members = append(members, rec)
		}
	}

	slots := make([]*models.Participant, len(members))

	var g errgroup.Group
	g.SetLimit(j.concurrency())
	for i := range members {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			slots[i] = j.resolve(ctx, members[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(Roster, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, p := range slots {
		if p == nil {
			continue
		}
		if _, dup := seen[p.JoinID]; dup {
			continue
		}
		seen[p.JoinID] = struct{}{}
		out = append(out, *p)
	}
	return out, nil
}

func (j *Joiner) resolve(ctx context.Context, rec models.SelectionRecord) *models.Participant {
	if ctx.Err() != nil {
		return nil
	}

	lctx, cancel := timeouts.WithTimeout(ctx, j.timeout(), j.Log, "registration lookup")
	defer cancel()

	user, err := j.Lookup.Resolve(lctx, rec.OwnerToken)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil // stopping; not a lookup problem
		}
		j.logger().Warn("registration lookup failed; dropping selection",
			zap.String("event_id", j.EventID),
			zap.String("selection_id", rec.ID),
			zap.String("token", rec.OwnerToken),
			zap.Error(err))
		j.Metrics.lookupWarning(j.EventID, ReasonLookupFailed)
		return nil
	case user == nil:
		j.logger().Warn("no registration for token; dropping selection",
			zap.String("event_id", j.EventID),
			zap.String("selection_id", rec.ID),
			zap.String("token", rec.OwnerToken))
		j.Metrics.lookupWarning(j.EventID, ReasonMissing)
		return nil
	case user.Deleted:
		return nil
	}

	p := compose(rec, *user)
	return &p
}

func compose(rec models.SelectionRecord, u models.Registration) models.Participant {
	status := rec.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}
	return models.Participant{
		JoinID:           rec.ID,
		Token:            u.ShortID,
		Name:             u.Name,
		Username:         u.Username,
		Phone:            u.Phone,
		College:          u.College,
		Course:           u.Course,
		CreatedAt:        u.CreatedAt,
		Deleted:          u.Deleted,
		PaymentStatus:    status,
		RegistrationDate: rec.CreatedAt,
	}
}

func (j *Joiner) concurrency() int {
	if j.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return j.Concurrency
}

func (j *Joiner) timeout() time.Duration {
	if j.Timeout <= 0 {
		return timeouts.Lookup()
	}
	return j.Timeout
}

func (j *Joiner) logger() *zap.Logger {
	if j.Log == nil {
		return zap.NewNop()
	}
	return j.Log
}
