package resolver

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/logger"
)

// Service turns location inputs into canonical resolved locations.
// It has no side effects beyond the external calls.
type Service struct {
	geocoder Geocoder
	device   DeviceLocator
}

// New creates a resolver. device may be nil, in which case device inputs
// fail with domain.ErrGeolocationUnavailable.
func New(geocoder Geocoder, device DeviceLocator) *Service {
	return &Service{geocoder: geocoder, device: device}
}

// Resolve resolves an address, coordinates or the device position.
func (s *Service) Resolve(ctx context.Context, in location.Input) (location.Resolved, error) {
	log := logger.FromContext(ctx)

	var (
		res location.Resolved
		err error
	)
	switch in.Kind() {
	case location.KindAddress:
		res, err = s.geocode(ctx, domain.GeocodeRequest{Address: in.Address()})
	case location.KindCoordinates:
		c := in.Coordinates()
		res, err = s.geocode(ctx, domain.GeocodeRequest{Location: &c})
	case location.KindDevice:
		res, err = s.resolveDevice(ctx)
	default:
		return location.Resolved{}, fmt.Errorf("unsupported location input %q", in.Kind())
	}
	if err != nil {
		log.Warn("Location resolution failed", zap.Stringer("input", in), zap.Error(err))
		return location.Resolved{}, err
	}

	log.Debug("Location resolved",
		zap.Stringer("input", in),
		zap.String("address", res.FormattedAddress),
		zap.Bool("specific", res.IsSpecific),
	)
	return res, nil
}

// resolveDevice asks the device for its position, then reverse-geocodes it.
func (s *Service) resolveDevice(ctx context.Context) (location.Resolved, error) {
	if s.device == nil {
		return location.Resolved{}, domain.ErrGeolocationUnavailable
	}
	pos, err := s.device.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrGeolocationDenied) || errors.Is(err, domain.ErrGeolocationUnavailable) {
			return location.Resolved{}, fmt.Errorf("device position: %w", err)
		}
		return location.Resolved{}, fmt.Errorf("device position: %w: %w", domain.ErrGeolocationUnavailable, err)
	}
	if !geo.ValidateCoordinates(pos.Lat, pos.Lng) {
		return location.Resolved{}, fmt.Errorf("device position %s: %w", pos, domain.ErrInvalidLocation)
	}
	return s.geocode(ctx, domain.GeocodeRequest{Location: &pos})
}

func (s *Service) geocode(ctx context.Context, req domain.GeocodeRequest) (location.Resolved, error) {
	resp, err := s.geocoder.Geocode(ctx, req)
	if err != nil {
		return location.Resolved{}, fmt.Errorf("geocode: %w: %w", domain.ErrNoGeocodingResult, err)
	}
	if resp.Status != domain.StatusOK {
		return location.Resolved{}, fmt.Errorf("geocode: %w", domain.NewGeocodeStatus(resp.Status))
	}
	if len(resp.Results) == 0 {
		return location.Resolved{}, fmt.Errorf("geocode: %w", domain.ErrNoGeocodingResult)
	}

	first := resp.Results[0]
	return location.Resolved{
		Location:         first.Location,
		FormattedAddress: first.FormattedAddress,
		IsSpecific:       location.IsSpecificPlace(first.PlaceTypes),
		Viewport:         first.Viewport,
	}, nil
}
