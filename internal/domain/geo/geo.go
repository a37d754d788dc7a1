package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for great-circle distance.
const EarthRadiusKm = 6371.0

// KmPerMile converts between metric and imperial distances.
const KmPerMile = 1.609

// coordinateEpsilon is the precision at which two coordinates are equal.
const coordinateEpsilon = 1e-9

// Location is an immutable WGS84 point in degrees.
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// NewLocation validates and creates a Location.
func NewLocation(lat, lng float64) (Location, error) {
	if !ValidateCoordinates(lat, lng) {
		return Location{}, fmt.Errorf("lat=%f lng=%f out of range", lat, lng)
	}
	return Location{Lat: lat, Lng: lng}, nil
}

// Equal reports whether both coordinates match within coordinateEpsilon.
func (l Location) Equal(o Location) bool {
	return math.Abs(l.Lat-o.Lat) < coordinateEpsilon && math.Abs(l.Lng-o.Lng) < coordinateEpsilon
}

// String formats the location as "lat,lng", the form geocoders accept.
func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lng)
}

// BoundingBox is a viewport spanned by its south-west and north-east corners.
type BoundingBox struct {
	SouthWest Location `json:"south_west"`
	NorthEast Location `json:"north_east"`
}

// Contains reports whether l lies inside the box. Boxes crossing the
// antimeridian have SouthWest.Lng > NorthEast.Lng.
func (b BoundingBox) Contains(l Location) bool {
	if l.Lat < b.SouthWest.Lat || l.Lat > b.NorthEast.Lat {
		return false
	}
	if b.SouthWest.Lng <= b.NorthEast.Lng {
		return l.Lng >= b.SouthWest.Lng && l.Lng <= b.NorthEast.Lng
	}
	return l.Lng >= b.SouthWest.Lng || l.Lng <= b.NorthEast.Lng
}

// HaversineDistance returns the great-circle distance in kilometers between a and b.
// Identical points yield exactly 0.
func HaversineDistance(a, b Location) float64 {
	if a.Equal(b) {
		return 0
	}
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	cosAngle := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLng)
	// Round-off can push the cosine just outside [-1, 1].
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return EarthRadiusKm * math.Acos(cosAngle)
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
