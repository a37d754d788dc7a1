package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
)

// --- Mocks ---

type mockGeocoder struct {
	resp  domain.GeocodeResponse
	err   error
	calls []domain.GeocodeRequest
}

func (m *mockGeocoder) Geocode(_ context.Context, req domain.GeocodeRequest) (domain.GeocodeResponse, error) {
	m.calls = append(m.calls, req)
	return m.resp, m.err
}

type mockDevice struct {
	pos   geo.Location
	err   error
	calls int
}

func (m *mockDevice) CurrentPosition(_ context.Context) (geo.Location, error) {
	m.calls++
	return m.pos, m.err
}

func okResponse(types ...string) domain.GeocodeResponse {
	return domain.GeocodeResponse{
		Status: domain.StatusOK,
		Results: []domain.GeocodeCandidate{
			{
				FormattedAddress: "1 Main St, Springfield",
				Location:         geo.Location{Lat: 10, Lng: 20},
				PlaceTypes:       types,
				Viewport: &geo.BoundingBox{
					SouthWest: geo.Location{Lat: 9, Lng: 19},
					NorthEast: geo.Location{Lat: 11, Lng: 21},
				},
			},
			{FormattedAddress: "second", Location: geo.Location{Lat: -1, Lng: -1}},
		},
	}
}

func mustAddress(t *testing.T, s string) location.Input {
	t.Helper()
	in, err := location.Address(s)
	if err != nil {
		t.Fatalf("location.Address: %v", err)
	}
	return in
}

// --- Address / coordinates ---

func TestResolve_AddressTakesFirstCandidate(t *testing.T) {
	g := &mockGeocoder{resp: okResponse("street_address")}
	svc := New(g, nil)

	res, err := svc.Resolve(context.Background(), mustAddress(t, "1 Main St"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FormattedAddress != "1 Main St, Springfield" || res.Location != (geo.Location{Lat: 10, Lng: 20}) {
		t.Errorf("got %+v", res)
	}
	if !res.IsSpecific {
		t.Error("street address must be specific")
	}
	if res.Viewport == nil {
		t.Error("viewport dropped")
	}
	if len(g.calls) != 1 || g.calls[0].Address != "1 Main St" || g.calls[0].Location != nil {
		t.Errorf("geocoder calls = %+v", g.calls)
	}
}

func TestResolve_AdministrativeIsNotSpecific(t *testing.T) {
	g := &mockGeocoder{resp: okResponse("locality", "political")}
	res, err := New(g, nil).Resolve(context.Background(), mustAddress(t, "Springfield"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsSpecific {
		t.Error("city must not be specific")
	}
}

func TestResolve_CoordinatesReverseGeocode(t *testing.T) {
	g := &mockGeocoder{resp: okResponse("premise")}
	in, _ := location.Coordinates(geo.Location{Lat: 10, Lng: 20})

	if _, err := New(g, nil).Resolve(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.calls) != 1 || g.calls[0].Location == nil || *g.calls[0].Location != in.Coordinates() {
		t.Errorf("geocoder calls = %+v", g.calls)
	}
}

func TestResolve_NoGeocodingResult(t *testing.T) {
	tests := []struct {
		name string
		g    *mockGeocoder
	}{
		{"zero results", &mockGeocoder{resp: domain.GeocodeResponse{Status: domain.StatusOK}}},
		{"zero results status", &mockGeocoder{resp: domain.GeocodeResponse{Status: "ZERO_RESULTS"}}},
		{"non-ok with results", &mockGeocoder{resp: domain.GeocodeResponse{
			Status: "OVER_QUERY_LIMIT", Results: okResponse().Results,
		}}},
		{"transport error", &mockGeocoder{err: errors.New("connection reset")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.g, nil).Resolve(context.Background(), mustAddress(t, "nowhere"))
			if !errors.Is(err, domain.ErrNoGeocodingResult) {
				t.Fatalf("want ErrNoGeocodingResult, got %v", err)
			}
		})
	}
}

func TestResolve_StatusErrorCarriesStatus(t *testing.T) {
	g := &mockGeocoder{resp: domain.GeocodeResponse{Status: "REQUEST_DENIED"}}
	_, err := New(g, nil).Resolve(context.Background(), mustAddress(t, "x"))

	var se *domain.GeocodeStatusError
	if !errors.As(err, &se) || se.Status != "REQUEST_DENIED" {
		t.Fatalf("want GeocodeStatusError(REQUEST_DENIED), got %v", err)
	}
}

// --- Device ---

func TestResolve_DeviceSuccessReverseGeocodes(t *testing.T) {
	g := &mockGeocoder{resp: okResponse("street_address")}
	d := &mockDevice{pos: geo.Location{Lat: 10.5, Lng: 20.5}}

	res, err := New(g, d).Resolve(context.Background(), location.Device())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.FormattedAddress == "" {
		t.Error("device result must carry a formatted address")
	}
	if len(g.calls) != 1 || *g.calls[0].Location != d.pos {
		t.Errorf("geocoder calls = %+v", g.calls)
	}
}

func TestResolve_DeviceAbsent(t *testing.T) {
	g := &mockGeocoder{resp: okResponse()}
	_, err := New(g, nil).Resolve(context.Background(), location.Device())
	if !errors.Is(err, domain.ErrGeolocationUnavailable) {
		t.Fatalf("want ErrGeolocationUnavailable, got %v", err)
	}
	if len(g.calls) != 0 {
		t.Error("geocoder must not be called when the device position is unknown")
	}
}

func TestResolve_DeviceFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"denied", domain.ErrGeolocationDenied, domain.ErrGeolocationDenied},
		{"unavailable", domain.ErrGeolocationUnavailable, domain.ErrGeolocationUnavailable},
		{"other", errors.New("sensor timeout"), domain.ErrGeolocationUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGeocoder{resp: okResponse()}
			d := &mockDevice{err: tt.err}
			_, err := New(g, d).Resolve(context.Background(), location.Device())
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
			if len(g.calls) != 0 {
				t.Error("reverse geocoding must only follow a successful position fix")
			}
		})
	}
}

func TestResolve_DeviceInvalidPosition(t *testing.T) {
	d := &mockDevice{pos: geo.Location{Lat: 200}}
	_, err := New(&mockGeocoder{}, d).Resolve(context.Background(), location.Device())
	if !errors.Is(err, domain.ErrInvalidLocation) {
		t.Fatalf("want ErrInvalidLocation, got %v", err)
	}
}
