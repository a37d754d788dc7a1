package googlemaps

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
	"github.com/kailas-cloud/storelocator/internal/metrics"
)

// Config holds the Google Maps Platform settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Client implements domain.Geocoder and domain.DistanceProvider on top of
// the Geocoding and Distance Matrix APIs.
type Client struct {
	maps     *maps.Client
	language string
	region   string
	logger   *zap.Logger
}

var (
	_ domain.Geocoder         = (*Client)(nil)
	_ domain.DistanceProvider = (*Client)(nil)
)

// New creates a Maps client. Failures wrap domain.ErrProviderUnavailable.
func New(cfg Config) (*Client, error) {
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, maps.WithBaseURL(cfg.BaseURL))
	}

	c, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w: %w", domain.ErrProviderUnavailable, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{maps: c, language: cfg.Language, region: cfg.Region, logger: logger}, nil
}

// Geocode runs a forward lookup for req.Address or a reverse lookup for req.Location.
// Provider statuses other than OK come back in the response, not as errors.
func (c *Client) Geocode(ctx context.Context, req domain.GeocodeRequest) (domain.GeocodeResponse, error) {
	kind := "forward"
	var (
		results []maps.GeocodingResult
		err     error
	)
	if req.Location != nil {
		kind = "reverse"
		results, err = c.maps.ReverseGeocode(ctx, &maps.GeocodingRequest{
			LatLng:   &maps.LatLng{Lat: req.Location.Lat, Lng: req.Location.Lng},
			Language: c.language,
		})
	} else {
		results, err = c.maps.Geocode(ctx, &maps.GeocodingRequest{
			Address:  req.Address,
			Region:   c.region,
			Language: c.language,
		})
	}

	if err != nil {
		status, ok := statusFromError(err)
		if !ok {
			metrics.GeocodeRequestsTotal.WithLabelValues(kind, "error").Inc()
			c.logger.Warn("Geocoding request failed", zap.String("kind", kind), zap.Error(err))
			return domain.GeocodeResponse{}, fmt.Errorf("geocode %s: %w", kind, err)
		}
		metrics.GeocodeRequestsTotal.WithLabelValues(kind, status).Inc()
		return domain.GeocodeResponse{Status: status}, nil
	}

	metrics.GeocodeRequestsTotal.WithLabelValues(kind, domain.StatusOK).Inc()
	resp := domain.GeocodeResponse{Status: domain.StatusOK, Results: make([]domain.GeocodeCandidate, len(results))}
	for i, r := range results {
		resp.Results[i] = toCandidate(r)
	}
	return resp, nil
}

// Distance asks the Distance Matrix API for a single origin/destination pair.
func (c *Client) Distance(ctx context.Context, req domain.DistanceRequest) (domain.DistanceResult, error) {
	resp, err := c.maps.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{req.Origin.String()},
		Destinations: []string{req.Destination.String()},
		Mode:         travelMode(req.Mode),
		Units:        units(req.Units),
		Language:     c.language,
	})
	if err != nil {
		if status, ok := statusFromError(err); ok {
			return domain.DistanceResult{Status: status}, nil
		}
		return domain.DistanceResult{}, fmt.Errorf("distance matrix: %w", err)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 || resp.Rows[0].Elements[0] == nil {
		return domain.DistanceResult{Status: "ZERO_RESULTS"}, nil
	}

	el := resp.Rows[0].Elements[0]
	if el.Status != domain.StatusOK {
		return domain.DistanceResult{Status: el.Status}, nil
	}
	return domain.DistanceResult{
		Status:         domain.StatusOK,
		DistanceMeters: el.Distance.Meters,
		Duration:       el.Duration,
	}, nil
}

func toCandidate(r maps.GeocodingResult) domain.GeocodeCandidate {
	c := domain.GeocodeCandidate{
		FormattedAddress: r.FormattedAddress,
		Location:         geo.Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		PlaceTypes:       r.Types,
	}
	vp := r.Geometry.Viewport
	if vp.NorthEast != (maps.LatLng{}) || vp.SouthWest != (maps.LatLng{}) {
		c.Viewport = &geo.BoundingBox{
			SouthWest: geo.Location{Lat: vp.SouthWest.Lat, Lng: vp.SouthWest.Lng},
			NorthEast: geo.Location{Lat: vp.NorthEast.Lat, Lng: vp.NorthEast.Lng},
		}
	}
	return c
}

// statusFromError extracts the API status from errors of the form
// "maps: ZERO_RESULTS - message" that the client returns for non-OK responses.
func statusFromError(err error) (string, bool) {
	msg, ok := strings.CutPrefix(err.Error(), "maps: ")
	if !ok {
		return "", false
	}
	status, _, _ := strings.Cut(msg, " ")
	if status == "" || strings.ToUpper(status) != status || strings.ContainsAny(status, ":/") {
		return "", false
	}
	return status, true
}

func travelMode(m travel.Mode) maps.Mode {
	switch m {
	case travel.Walking:
		return maps.TravelModeWalking
	case travel.Bicycling:
		return maps.TravelModeBicycling
	case travel.Transit:
		return maps.TravelModeTransit
	default:
		return maps.TravelModeDriving
	}
}

func units(u geo.Unit) maps.Units {
	if u == geo.Imperial {
		return maps.UnitsImperial
	}
	return maps.UnitsMetric
}
