package ranking

import (
	"slices"

	"github.com/kailas-cloud/storelocator/internal/domain/store"
)

// Source tells which phase produced the effective distance of an entry.
type Source string

// Distance sources.
const (
	SourceNone        Source = "none"
	SourceApproximate Source = "approximate"
	SourcePrecise     Source = "precise"
)

// Ranked is a working copy of a store annotated with computed fields.
// The wrapped store is never mutated; every With* returns a new value.
type Ranked struct {
	store        store.Store
	approximate  float64
	precise      float64
	source       Source
	distanceText string
	durationText string
	hidden       bool
}

// New wraps a store without any distance annotation.
func New(s store.Store) Ranked {
	return Ranked{store: s, source: SourceNone}
}

// FromStores wraps every store in input order.
func FromStores(stores []store.Store) []Ranked {
	out := make([]Ranked, len(stores))
	for i, s := range stores {
		out[i] = New(s)
	}
	return out
}

// Store returns the underlying store.
func (r Ranked) Store() store.Store { return r.store }

// ID returns the underlying store id.
func (r Ranked) ID() store.ID { return r.store.ID() }

// ApproximateDistance returns the great-circle distance in the active unit.
func (r Ranked) ApproximateDistance() float64 { return r.approximate }

// PreciseDistance returns the provider distance in the active unit, if known.
func (r Ranked) PreciseDistance() (float64, bool) {
	return r.precise, r.source == SourcePrecise
}

// Distance returns the precise distance when known, else the approximate one.
func (r Ranked) Distance() float64 {
	if r.source == SourcePrecise {
		return r.precise
	}
	return r.approximate
}

// Source reports which phase produced Distance.
func (r Ranked) Source() Source { return r.source }

// DistanceText returns the display distance.
func (r Ranked) DistanceText() string { return r.distanceText }

// DurationText returns the display travel duration, empty before refinement.
func (r Ranked) DurationText() string { return r.durationText }

// Hidden reports whether the active filters exclude this store.
func (r Ranked) Hidden() bool { return r.hidden }

// WithApproximate returns a copy carrying approximate-phase values.
func (r Ranked) WithApproximate(distance float64, text string) Ranked {
	r.approximate = distance
	r.precise = 0
	r.source = SourceApproximate
	r.distanceText = text
	r.durationText = ""
	return r
}

// WithPrecise returns a copy carrying precise-phase values.
func (r Ranked) WithPrecise(distance float64, distanceText, durationText string) Ranked {
	r.precise = distance
	r.source = SourcePrecise
	r.distanceText = distanceText
	r.durationText = durationText
	return r
}

// WithHidden returns a copy with the visibility flag set.
func (r Ranked) WithHidden(hidden bool) Ranked {
	r.hidden = hidden
	return r
}

// SortByDistance stable-sorts entries ascending by Distance; ties keep input order.
func SortByDistance(entries []Ranked) {
	slices.SortStableFunc(entries, func(a, b Ranked) int {
		da, db := a.Distance(), b.Distance()
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
}

// IDs returns the store ids in list order.
func IDs(entries []Ranked) []store.ID {
	out := make([]store.ID, len(entries))
	for i, e := range entries {
		out[i] = e.ID()
	}
	return out
}

// Visible counts entries that are not hidden.
func Visible(entries []Ranked) int {
	n := 0
	for _, e := range entries {
		if !e.hidden {
			n++
		}
	}
	return n
}
