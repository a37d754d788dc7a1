package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGeocodingResult signals that the geocoder returned no usable candidate.
	ErrNoGeocodingResult = errors.New("no geocoding result")
	// ErrGeolocationUnavailable signals that the platform cannot sense the device position.
	ErrGeolocationUnavailable = errors.New("geolocation unavailable")
	// ErrGeolocationDenied signals that the user or environment refused the position request.
	ErrGeolocationDenied = errors.New("geolocation denied")
	// ErrPreciseDistanceUnavailable signals a failed precise distance lookup for one store.
	// It never escapes the distance engine.
	ErrPreciseDistanceUnavailable = errors.New("precise distance unavailable")
	// ErrInvalidLocation signals coordinates outside the valid WGS84 range.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrStoreNotFound signals an unknown or hidden store id.
	ErrStoreNotFound = errors.New("store not found")
	// ErrUnknownFilter signals a tag that is not part of the configured filter set.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrProviderUnavailable signals that an external provider could not be loaded.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// GeocodeStatusError carries the non-success status reported by the geocoder.
type GeocodeStatusError struct {
	Status string
}

func (e *GeocodeStatusError) Error() string {
	return fmt.Sprintf("%s: status %s", ErrNoGeocodingResult.Error(), e.Status)
}

func (e *GeocodeStatusError) Unwrap() error { return ErrNoGeocodingResult }

// NewGeocodeStatus creates a geocoder status error.
func NewGeocodeStatus(status string) error {
	return &GeocodeStatusError{Status: status}
}
