// Package catalog holds the static list of festival events that roster
// pages can be opened for.
//
// The built-in catalog mirrors the events offered on the public site. A YAML
// file can replace it at startup (catalog_path); descriptions from a file are
// sanitized to plain text because they are rendered next to the roster.
package catalog

import (
	"errors"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/dalemusser/eventroster/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

// ErrUnknownEvent is returned by Lookup when no event has the given id.
var ErrUnknownEvent = errors.New("event not found")

// Catalog is an immutable, ordered set of events keyed by id.
type Catalog struct {
	events []models.Event
	byID   map[string]int
}

// New builds a Catalog from events. Ids must be non-empty and unique.
func New(events []models.Event) (*Catalog, error) {
	c := &Catalog{
		events: make([]models.Event, 0, len(events)),
		byID:   make(map[string]int, len(events)),
	}
	for i, ev := range events {
		ev.ID = strings.TrimSpace(ev.ID)
		if ev.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: id is required", i)
		}
		if _, dup := c.byID[ev.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, ev.ID)
		}
		if ev.Capacity < 0 {
			return nil, fmt.Errorf("catalog entry %q: capacity must not be negative", ev.ID)
		}
		c.byID[ev.ID] = len(c.events)
		c.events = append(c.events, ev)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(builtin)
	if err != nil {
		panic(err) // builtin table is static
	}
	return c
}

// Lookup resolves an event by exact id match.
func (c *Catalog) Lookup(id string) (models.Event, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Event{}, fmt.Errorf("%w: %q", ErrUnknownEvent, id)
	}
	return c.events[i], nil
}

// All returns the events in catalog order.
func (c *Catalog) All() []models.Event {
	out := make([]models.Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of events.
func (c *Catalog) Len() int { return len(c.events) }

type catalogFile struct {
	Events []models.Event `yaml:"events"`
}

// Load reads a YAML catalog from path:
//
//	events:
//	  - id: coding
//	    title: Coding (C)
//	    description: Solve programming problems in C within the time limit.
//	    capacity: 2
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Events) == 0 {
		return nil, errors.New("parse catalog: no events defined")
	}

	policy := bluemonday.StrictPolicy()
	for i := range f.Events {
		f.Events[i].Title = plainText(policy, f.Events[i].Title)
		f.Events[i].Description = plainText(policy, f.Events[i].Description)
	}
	return New(f.Events)
}

// plainText strips markup; the sanitizer escapes entities, which are undone
// so titles like "Q&A" survive intact.
func plainText(p *bluemonday.Policy, s string) string {
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}
