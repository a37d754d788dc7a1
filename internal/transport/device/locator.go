package device

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

// Static reports a fixed position, e.g. the server's configured site.
type Static struct {
	pos geo.Location
}

// NewStatic creates a locator that always answers pos.
func NewStatic(pos geo.Location) (*Static, error) {
	if !geo.ValidateCoordinates(pos.Lat, pos.Lng) {
		return nil, fmt.Errorf("static device position %s: %w", pos, domain.ErrInvalidLocation)
	}
	return &Static{pos: pos}, nil
}

// CurrentPosition returns the configured position.
func (s *Static) CurrentPosition(ctx context.Context) (geo.Location, error) {
	if err := ctx.Err(); err != nil {
		return geo.Location{}, fmt.Errorf("device position: %w", err)
	}
	return s.pos, nil
}

// Denied refuses every position request.
type Denied struct{}

// CurrentPosition always fails with domain.ErrGeolocationDenied.
func (Denied) CurrentPosition(context.Context) (geo.Location, error) {
	return geo.Location{}, domain.ErrGeolocationDenied
}

// Unsupported models a platform without location sensing.
type Unsupported struct{}

// CurrentPosition always fails with domain.ErrGeolocationUnavailable.
func (Unsupported) CurrentPosition(context.Context) (geo.Location, error) {
	return geo.Location{}, domain.ErrGeolocationUnavailable
}

// Locator senses the device position.
type Locator interface {
	CurrentPosition(ctx context.Context) (geo.Location, error)
}

// FromMode builds the locator for a configured device mode: "static", "denied" or "none".
func FromMode(mode string, pos geo.Location) (Locator, error) {
	switch mode {
	case "static":
		return NewStatic(pos)
	case "denied":
		return Denied{}, nil
	case "", "none":
		return Unsupported{}, nil
	default:
		return nil, fmt.Errorf("unknown device mode %q", mode)
	}
}
