package domain

import (
	"context"
	"time"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
)

// StatusOK is the success status shared by the geocoding and distance providers.
const StatusOK = "OK"

// GeocodeRequest asks for either a forward (Address) or reverse (Location) lookup.
type GeocodeRequest struct {
	Address  string
	Location *geo.Location
}

// GeocodeCandidate is one geocoder match.
type GeocodeCandidate struct {
	FormattedAddress string
	Location         geo.Location
	PlaceTypes       []string
	Viewport         *geo.BoundingBox
}

// GeocodeResponse is the raw geocoder answer; only Results[0] is used when Status is OK.
type GeocodeResponse struct {
	Status  string
	Results []GeocodeCandidate
}

// Geocoder is the external geocoding contract.
type Geocoder interface {
	Geocode(ctx context.Context, req GeocodeRequest) (GeocodeResponse, error)
}

// DistanceRequest asks for the travel distance between one origin and one destination.
type DistanceRequest struct {
	Origin      geo.Location
	Destination geo.Location
	Mode        travel.Mode
	Units       geo.Unit
}

// DistanceResult is the provider answer for one pair.
type DistanceResult struct {
	Status         string
	DistanceMeters int
	Duration       time.Duration
	DurationText   string
}

// DistanceProvider is the external precise distance/duration contract.
type DistanceProvider interface {
	Distance(ctx context.Context, req DistanceRequest) (DistanceResult, error)
}
