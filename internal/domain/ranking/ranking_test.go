package ranking

import (
	"testing"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
)

func entry(id store.ID, approx float64) Ranked {
	return New(store.Reconstruct(id, "s", geo.Location{})).WithApproximate(approx, "")
}

func TestRanked_WithPreciseKeepsApproximate(t *testing.T) {
	r := entry(1, 10).WithPrecise(12, "12.0 km", "15 mins by car")

	if r.ApproximateDistance() != 10 {
		t.Errorf("approximate = %v, want 10", r.ApproximateDistance())
	}
	d, ok := r.PreciseDistance()
	if !ok || d != 12 {
		t.Errorf("precise = %v,%v", d, ok)
	}
	if r.Distance() != 12 || r.Source() != SourcePrecise {
		t.Errorf("Distance() = %v source %s", r.Distance(), r.Source())
	}
}

func TestRanked_WithDoesNotAlias(t *testing.T) {
	base := entry(1, 10)
	hidden := base.WithHidden(true)
	if base.Hidden() {
		t.Fatal("WithHidden mutated receiver")
	}
	if !hidden.Hidden() {
		t.Fatal("WithHidden did not set flag")
	}
}

func TestRanked_WithApproximateResetsPrecise(t *testing.T) {
	r := entry(1, 10).WithPrecise(3, "3.0 km", "5 mins").WithApproximate(20, "20.0 km")
	if _, ok := r.PreciseDistance(); ok {
		t.Fatal("stale precise distance survived a new approximate phase")
	}
	if r.DurationText() != "" {
		t.Errorf("duration = %q", r.DurationText())
	}
}

func TestSortByDistance_StableTies(t *testing.T) {
	entries := []Ranked{entry(1, 5), entry(2, 1), entry(3, 5), entry(4, 1), entry(5, 0)}
	SortByDistance(entries)

	want := []store.ID{5, 2, 4, 1, 3}
	got := IDs(entries)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortByDistance_MixedSources(t *testing.T) {
	entries := []Ranked{
		entry(1, 10).WithPrecise(45, "", ""),
		entry(2, 40).WithPrecise(12, "", ""),
		entry(3, 20), // fallback keeps approximate
	}
	SortByDistance(entries)

	want := []store.ID{2, 3, 1}
	got := IDs(entries)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestVisible(t *testing.T) {
	entries := []Ranked{entry(1, 0), entry(2, 0).WithHidden(true), entry(3, 0)}
	if n := Visible(entries); n != 2 {
		t.Errorf("Visible = %d, want 2", n)
	}
}
