package location

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

// Kind is the variant of a location input.
type Kind string

// Location input variants.
const (
	KindAddress     Kind = "address"
	KindCoordinates Kind = "coordinates"
	KindDevice      Kind = "device"
)

// Input is an ambiguous location request: free text, raw coordinates, or the device position.
type Input struct {
	kind        Kind
	address     string
	coordinates geo.Location
}

// Address creates a free-text address input.
func Address(text string) (Input, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Input{}, fmt.Errorf("address is required")
	}
	return Input{kind: KindAddress, address: text}, nil
}

// Coordinates creates a raw coordinate input.
func Coordinates(l geo.Location) (Input, error) {
	if !geo.ValidateCoordinates(l.Lat, l.Lng) {
		return Input{}, fmt.Errorf("lat=%f lng=%f out of range", l.Lat, l.Lng)
	}
	return Input{kind: KindCoordinates, coordinates: l}, nil
}

// Device creates an input resolved through the device geolocation capability.
func Device() Input { return Input{kind: KindDevice} }

// Kind returns the input variant.
func (i Input) Kind() Kind { return i.kind }

// Address returns the address text for KindAddress.
func (i Input) Address() string { return i.address }

// Coordinates returns the point for KindCoordinates.
func (i Input) Coordinates() geo.Location { return i.coordinates }

// String describes the input for logs.
func (i Input) String() string {
	switch i.kind {
	case KindAddress:
		return "address:" + i.address
	case KindCoordinates:
		return "coordinates:" + i.coordinates.String()
	default:
		return string(i.kind)
	}
}

// Resolved is the canonical result of a location resolution. Produced once, never mutated.
type Resolved struct {
	Location         geo.Location     `json:"location"`
	FormattedAddress string           `json:"formatted_address"`
	IsSpecific       bool             `json:"is_specific"`
	Viewport         *geo.BoundingBox `json:"viewport,omitempty"`
}

// IsSpecificPlace classifies provider place types. Administrative or political
// areas (countries, regions, cities) are not specific; everything else is.
func IsSpecificPlace(placeTypes []string) bool {
	for _, t := range placeTypes {
		if isAdministrative(t) {
			return false
		}
	}
	return true
}

func isAdministrative(placeType string) bool {
	switch placeType {
	case "political", "country", "locality", "colloquial_area", "postal_town":
		return true
	}
	return strings.HasPrefix(placeType, "administrative_area_level_") ||
		strings.HasPrefix(placeType, "sublocality")
}
