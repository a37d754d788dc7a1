package store

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

// ID identifies a store for the lifetime of the in-memory catalog.
// It joins a store with its marker and its listing entry.
type ID uint64

// String renders the id as decimal.
func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ParseID parses a decimal store id.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid store id %q", s)
	}
	return ID(v), nil
}

// Input is a caller-supplied store before ingestion.
type Input struct {
	Name     string            `json:"name" yaml:"name"`
	Address  string            `json:"address" yaml:"address"`
	Phone    string            `json:"phone,omitempty" yaml:"phone"`
	URL      string            `json:"url,omitempty" yaml:"url"`
	Location geo.Location      `json:"location" yaml:"location"`
	Tags     []string          `json:"tags,omitempty" yaml:"tags"`
	Extra    map[string]string `json:"extra,omitempty" yaml:"extra"`
}

// Store is an ingested point of interest (immutable value object).
type Store struct {
	id       ID
	name     string
	address  string
	phone    string
	url      string
	location geo.Location
	tags     map[string]struct{}
	extra    map[string]string
}

// Reconstruct creates a Store without validation (tests and hydration).
func Reconstruct(id ID, name string, loc geo.Location, tags ...string) Store {
	return Store{id: id, name: name, location: loc, tags: tagSet(tags)}
}

// ID returns the stable store identifier.
func (s Store) ID() ID { return s.id }

// Name returns the display name.
func (s Store) Name() string { return s.name }

// Address returns the display address.
func (s Store) Address() string { return s.address }

// Phone returns the display phone number.
func (s Store) Phone() string { return s.phone }

// URL returns the store web page.
func (s Store) URL() string { return s.url }

// Location returns the store coordinates.
func (s Store) Location() geo.Location { return s.location }

// Extra returns a copy of the additional display fields.
func (s Store) Extra() map[string]string { return cloneStringMap(s.extra) }

// HasTag reports whether the store carries tag.
func (s Store) HasTag(tag string) bool {
	_, ok := s.tags[tag]
	return ok
}

// Tags returns the store tags in sorted order.
func (s Store) Tags() []string {
	out := make([]string, 0, len(s.tags))
	for t := range s.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func tagSet(tags []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t != "" {
			m[t] = struct{}{}
		}
	}
	return m
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
