package storelocator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

const kmPerDegree = geo.EarthRadiusKm * 3.141592653589793 / 180

func east(km float64) Location {
	return Location{Lat: 0, Lng: km / kmPerDegree}
}

// --- Fakes ---

type fakeGeocoder struct{}

func (fakeGeocoder) Geocode(_ context.Context, req GeocodeRequest) (GeocodeResponse, error) {
	if req.Location != nil {
		return GeocodeResponse{Status: StatusOK, Results: []GeocodeCandidate{
			{FormattedAddress: "Reverse", Location: *req.Location, PlaceTypes: []string{"premise"}},
		}}, nil
	}
	if req.Address == "home" {
		return GeocodeResponse{Status: StatusOK, Results: []GeocodeCandidate{
			{FormattedAddress: "Home", PlaceTypes: []string{"street_address"}},
		}}, nil
	}
	return GeocodeResponse{Status: "ZERO_RESULTS"}, nil
}

type fakeDistances struct{}

func (fakeDistances) Distance(_ context.Context, req DistanceRequest) (DistanceResult, error) {
	switch req.Destination {
	case east(10):
		return DistanceResult{Status: StatusOK, DistanceMeters: 45_000, DurationText: "40 mins"}, nil
	case east(40):
		return DistanceResult{Status: StatusOK, DistanceMeters: 12_000, DurationText: "14 mins"}, nil
	}
	return DistanceResult{Status: "NOT_FOUND"}, nil
}

func stores() []StoreInput {
	return []StoreInput{
		{Name: "A", Location: east(10), Tags: []string{"coffee"}},
		{Name: "B", Location: east(40), Tags: []string{"tea"}},
		{Name: "C", Location: east(60), Tags: []string{"coffee", "tea"}},
	}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithGeocoder(fakeGeocoder{}),
		WithDistanceProvider(fakeDistances{}),
		WithFilters("coffee", "tea"),
	}
	e, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(e.Close)
	if _, err := e.SetStores(stores()); err != nil {
		t.Fatalf("SetStores: %v", err)
	}
	return e
}

func ids(s Snapshot) []StoreID {
	out := make([]StoreID, len(s.Stores))
	for i, r := range s.Stores {
		out[i] = r.ID()
	}
	return out
}

// --- Construction ---

func TestNew_RequiresGeocoder(t *testing.T) {
	if _, err := New(WithDistanceProvider(fakeDistances{})); err == nil {
		t.Fatal("expected error without geocoder")
	}
}

func TestNew_RequiresDistanceProviderWhenRefining(t *testing.T) {
	if _, err := New(WithGeocoder(fakeGeocoder{})); err == nil {
		t.Fatal("expected error without distance provider")
	}
	if _, err := New(WithGeocoder(fakeGeocoder{}), WithShowStoreDistance(false)); err != nil {
		t.Fatalf("approximate-only engine: %v", err)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"radius", WithRadius(-1)},
		{"unit", WithUnitSystem("furlongs")},
		{"mode", WithTravelMode("teleport")},
		{"device", WithDevicePosition(Location{Lat: 100})},
		{"device mode", WithDeviceMode("gps", Location{})},
		{"initial address", WithInitialAddress("  ")},
		{"initial location", WithInitialLocation(Location{Lng: 200})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithGeocoder(fakeGeocoder{}), WithDistanceProvider(fakeDistances{}), tt.opt)
			if err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// --- Searching ---

func TestSearchAddress_RefinesAndCommits(t *testing.T) {
	e := newEngine(t)

	ch, cancel := e.Subscribe(8)
	defer cancel()

	res, err := e.SearchAddress(context.Background(), "home", 0)
	if err != nil {
		t.Fatalf("SearchAddress: %v", err)
	}
	if res.Outcome != OutcomeCommitted {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	got := ids(res.Snapshot)
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Fatalf("committed ids = %v, want [2 1]", got)
	}

	interim := <-ch
	if got := ids(interim); len(got) != 2 || got[0] != 1 {
		t.Errorf("interim ids = %v, want approximate order [1 2]", got)
	}
	committed := <-ch
	if committed.Version != e.State().Version {
		t.Errorf("committed version = %d, latest = %d", committed.Version, e.State().Version)
	}
}

func TestSearchAddress_NoResult(t *testing.T) {
	e := newEngine(t)
	before := e.State()

	res, err := e.SearchAddress(context.Background(), "atlantis", 0)
	if !errors.Is(err, ErrNoGeocodingResult) {
		t.Fatalf("want ErrNoGeocodingResult, got %v", err)
	}
	if res.Outcome != OutcomeFailed || e.State().Version != before.Version {
		t.Errorf("failed search changed state: %+v", res)
	}
}

func TestSearchCoordinates(t *testing.T) {
	e := newEngine(t, WithShowStoreDistance(false))

	res, err := e.SearchCoordinates(context.Background(), east(35), 10)
	if err != nil {
		t.Fatalf("SearchCoordinates: %v", err)
	}
	if got := ids(res.Snapshot); len(got) != 1 || got[0] != 2 {
		t.Errorf("ids = %v, want [2]", got)
	}

	if _, err := e.SearchCoordinates(context.Background(), Location{Lat: 91}, 0); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("want ErrInvalidLocation, got %v", err)
	}
}

func TestSearchDevice(t *testing.T) {
	e := newEngine(t, WithDevicePosition(east(0)), WithShowStoreDistance(false))
	res, err := e.SearchDevice(context.Background(), 0)
	if err != nil {
		t.Fatalf("SearchDevice: %v", err)
	}
	if res.Snapshot.Resolved == nil || res.Snapshot.Resolved.FormattedAddress != "Reverse" {
		t.Errorf("resolved = %+v", res.Snapshot.Resolved)
	}

	denied := newEngine(t, WithDeviceDenied())
	if _, err := denied.SearchDevice(context.Background(), 0); !errors.Is(err, ErrGeolocationDenied) {
		t.Errorf("want ErrGeolocationDenied, got %v", err)
	}

	absent := newEngine(t)
	if _, err := absent.SearchDevice(context.Background(), 0); !errors.Is(err, ErrGeolocationUnavailable) {
		t.Errorf("want ErrGeolocationUnavailable, got %v", err)
	}
}

func TestStart_InitialAddress(t *testing.T) {
	e := newEngine(t, WithInitialAddress("home"))
	res, err := e.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if res.Outcome != OutcomeCommitted || res.SessionID == 0 {
		t.Errorf("result = %+v", res)
	}
}

// --- Interaction ---

func TestFiltersSelectionReset(t *testing.T) {
	e := newEngine(t)

	snap, err := e.ToggleFilter("tea", false)
	if err != nil {
		t.Fatalf("ToggleFilter: %v", err)
	}
	if r, ok := snap.Find(2); !ok || !r.Hidden() {
		t.Error("tea-only store must be hidden")
	}
	if _, err := e.ToggleFilter("wine", true); !errors.Is(err, ErrUnknownFilter) {
		t.Errorf("want ErrUnknownFilter, got %v", err)
	}

	if _, err := e.Select(2); !errors.Is(err, ErrStoreNotFound) {
		t.Errorf("selecting a hidden store: want ErrStoreNotFound, got %v", err)
	}
	snap, err = e.Select(1)
	if err != nil || snap.Selected != 1 {
		t.Fatalf("Select: %v selected=%d", err, snap.Selected)
	}
	if snap = e.Deselect(); snap.Selected != 0 {
		t.Errorf("selected after Deselect = %d", snap.Selected)
	}

	snap = e.Reset()
	if len(snap.ActiveFilters) != 2 || len(e.Markers()) != 3 {
		t.Errorf("after reset: active = %v markers = %d", snap.ActiveFilters, len(e.Markers()))
	}
	if len(e.Stores()) != 3 {
		t.Errorf("stores = %d", len(e.Stores()))
	}
}

func TestSetStores_Invalid(t *testing.T) {
	e := newEngine(t)
	if _, err := e.SetStores([]StoreInput{{Name: "bad", Location: Location{Lat: 99}}}); err == nil {
		t.Fatal("expected error for out-of-range store")
	}
	if len(e.Stores()) != 3 {
		t.Error("failed replacement must keep the previous store set")
	}
}

func TestHealth(t *testing.T) {
	e := newEngine(t)
	if r := e.Health(context.Background()); r.Status != "ok" {
		t.Errorf("health = %+v", r)
	}
}

func TestHandler(t *testing.T) {
	e := newEngine(t)
	h := e.Handler("secret")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/state", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/state", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("with token: %d", rr.Code)
	}
}
