package chi

import (
	"errors"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	domsnap "github.com/kailas-cloud/storelocator/internal/domain/snapshot"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
	"github.com/kailas-cloud/storelocator/internal/usecase/marker"
)

// errorCode is the machine-readable error kind in error responses.
type errorCode string

const (
	codeBadRequest             errorCode = "bad_request"
	codeUnauthorized           errorCode = "unauthorized"
	codeStoreNotFound          errorCode = "store_not_found"
	codeFilterNotFound         errorCode = "filter_not_found"
	codeNoGeocodingResult      errorCode = "no_geocoding_result"
	codeInvalidLocation        errorCode = "invalid_location"
	codeGeolocationDenied      errorCode = "geolocation_denied"
	codeGeolocationUnavailable errorCode = "geolocation_unavailable"
	codeProviderUnavailable    errorCode = "provider_unavailable"
	codeInternalError          errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// locationRequest carries exactly one of address, lat+lng or device.
type locationRequest struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Device  bool     `json:"device,omitempty"`
	Radius  float64  `json:"radius,omitempty"`
}

func (r locationRequest) toInput() (location.Input, error) {
	variants := 0
	if r.Address != "" {
		variants++
	}
	if r.Lat != nil || r.Lng != nil {
		variants++
	}
	if r.Device {
		variants++
	}
	if variants != 1 {
		return location.Input{}, errors.New("exactly one of address, lat/lng or device is required")
	}
	if r.Radius < 0 {
		return location.Input{}, errors.New("radius must not be negative")
	}

	switch {
	case r.Device:
		return location.Device(), nil
	case r.Address != "":
		return location.Address(r.Address)
	default:
		if r.Lat == nil || r.Lng == nil {
			return location.Input{}, errors.New("lat and lng must be given together")
		}
		return location.Coordinates(geo.Location{Lat: *r.Lat, Lng: *r.Lng})
	}
}

type filterRequest struct {
	On *bool `json:"on"`
}

type storeResponse struct {
	ID             store.ID          `json:"id"`
	Name           string            `json:"name"`
	Address        string            `json:"address,omitempty"`
	Phone          string            `json:"phone,omitempty"`
	URL            string            `json:"url,omitempty"`
	Location       geo.Location      `json:"location"`
	Tags           []string          `json:"tags,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
	Distance       *float64          `json:"distance,omitempty"`
	DistanceSource ranking.Source    `json:"distance_source"`
	DistanceText   string            `json:"distance_text,omitempty"`
	DurationText   string            `json:"duration_text,omitempty"`
	Hidden         bool              `json:"hidden"`
}

type stateResponse struct {
	Version       uint64             `json:"version"`
	SessionID     uint64             `json:"session_id"`
	Phase         string             `json:"phase"`
	Outcome       string             `json:"outcome,omitempty"`
	Stores        []storeResponse    `json:"stores"`
	Selected      *store.ID          `json:"selected,omitempty"`
	Resolved      *location.Resolved `json:"resolved,omitempty"`
	Position      *geo.Location      `json:"position,omitempty"`
	Viewport      *geo.BoundingBox   `json:"viewport,omitempty"`
	ActiveFilters []string           `json:"active_filters"`
	Empty         bool               `json:"empty"`
}

type markersResponse struct {
	Markers  []marker.Marker `json:"markers"`
	Selected *store.ID       `json:"selected,omitempty"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func snapshotToResponse(s domsnap.Snapshot) stateResponse {
	resp := stateResponse{
		Version:       s.Version,
		SessionID:     s.SessionID,
		Phase:         string(s.Phase),
		Stores:        make([]storeResponse, len(s.Stores)),
		Resolved:      s.Resolved,
		Position:      s.Position,
		Viewport:      s.Viewport,
		ActiveFilters: s.ActiveFilters,
		Empty:         s.Empty,
	}
	if resp.ActiveFilters == nil {
		resp.ActiveFilters = []string{}
	}
	if s.Selected != 0 {
		id := s.Selected
		resp.Selected = &id
	}
	for i, e := range s.Stores {
		resp.Stores[i] = rankedToResponse(e)
	}
	return resp
}

func rankedToResponse(e ranking.Ranked) storeResponse {
	st := e.Store()
	resp := storeResponse{
		ID:             st.ID(),
		Name:           st.Name(),
		Address:        st.Address(),
		Phone:          st.Phone(),
		URL:            st.URL(),
		Location:       st.Location(),
		Tags:           st.Tags(),
		Extra:          st.Extra(),
		DistanceSource: e.Source(),
		DistanceText:   e.DistanceText(),
		DurationText:   e.DurationText(),
		Hidden:         e.Hidden(),
	}
	if e.Source() != ranking.SourceNone {
		d := e.Distance()
		resp.Distance = &d
	}
	return resp
}
