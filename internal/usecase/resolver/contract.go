package resolver

import (
	"context"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

// Geocoder resolves addresses and coordinates into place candidates.
type Geocoder interface {
	Geocode(ctx context.Context, req domain.GeocodeRequest) (domain.GeocodeResponse, error)
}

// DeviceLocator senses the device position.
type DeviceLocator interface {
	CurrentPosition(ctx context.Context) (geo.Location, error)
}
