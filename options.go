package storelocator

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
	"github.com/kailas-cloud/storelocator/internal/transport/device"
)

// Option configures the Engine.
type Option interface {
	apply(*engineConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*engineConfig)

func (f optionFunc) apply(c *engineConfig) { f(c) }

type engineConfig struct {
	maps      *MapsConfig
	geocoder  Geocoder
	distances DistanceProvider
	device    device.Locator

	settings domain.Settings
	filters  []string
	initial  *location.Input

	cacheAddrs     []string
	cachePassword  string
	cacheTTL       time.Duration
	cacheReadiness time.Duration

	logger *zap.Logger
	err    error
}

func defaultConfig() *engineConfig {
	return &engineConfig{
		settings:       domain.DefaultSettings(),
		device:         device.Unsupported{},
		cacheTTL:       24 * time.Hour,
		cacheReadiness: 10 * time.Second,
		logger:         zap.NewNop(),
	}
}

func (c *engineConfig) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// MapsConfig configures the Google Maps geocoding and distance provider.
type MapsConfig struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string
	Timeout  time.Duration
}

// WithGoogleMaps uses Google Maps for both geocoding and precise distances.
// Providers set with WithGeocoder or WithDistanceProvider take precedence.
func WithGoogleMaps(cfg MapsConfig) Option {
	return optionFunc(func(c *engineConfig) {
		c.maps = &cfg
	})
}

// WithGeocoder sets the geocoding provider.
func WithGeocoder(g Geocoder) Option {
	return optionFunc(func(c *engineConfig) {
		c.geocoder = g
	})
}

// WithDistanceProvider sets the precise distance provider.
func WithDistanceProvider(p DistanceProvider) Option {
	return optionFunc(func(c *engineConfig) {
		c.distances = p
	})
}

// WithDeviceMode selects how device location inputs resolve: "static" answers
// pos, "denied" fails with ErrGeolocationDenied, "none" or "" fails with
// ErrGeolocationUnavailable.
func WithDeviceMode(mode string, pos Location) Option {
	return optionFunc(func(c *engineConfig) {
		l, err := device.FromMode(mode, pos)
		if err != nil {
			c.fail(err)
			return
		}
		c.device = l
	})
}

// WithDevicePosition makes device location inputs resolve to a fixed position.
func WithDevicePosition(pos Location) Option {
	return WithDeviceMode("static", pos)
}

// WithDeviceDenied makes device location inputs fail with ErrGeolocationDenied.
func WithDeviceDenied() Option {
	return WithDeviceMode("denied", Location{})
}

// WithRadius sets the search radius in the active unit system. Defaults to 50.
func WithRadius(r float64) Option {
	return optionFunc(func(c *engineConfig) {
		if r <= 0 {
			c.fail(fmt.Errorf("radius must be positive, got %v", r))
			return
		}
		c.settings.Radius = r
	})
}

// WithUnitSystem selects metric (km) or imperial (mi) distances.
func WithUnitSystem(u UnitSystem) Option {
	return optionFunc(func(c *engineConfig) {
		parsed, err := geo.ParseUnit(string(u))
		if err != nil {
			c.fail(err)
			return
		}
		c.settings.Unit = parsed
	})
}

// WithTravelMode sets the mode used for precise distances.
func WithTravelMode(m TravelMode) Option {
	return optionFunc(func(c *engineConfig) {
		parsed, err := travel.ParseMode(string(m))
		if err != nil {
			c.fail(err)
			return
		}
		c.settings.Mode = parsed
	})
}

// WithOrderByDistance toggles nearest-first ordering. Enabled by default.
func WithOrderByDistance(on bool) Option {
	return optionFunc(func(c *engineConfig) {
		c.settings.OrderByDistance = on
	})
}

// WithShowStoreDistance toggles precise refinement. Enabled by default.
func WithShowStoreDistance(on bool) Option {
	return optionFunc(func(c *engineConfig) {
		c.settings.ShowStoreDistance = on
	})
}

// WithPreciseConcurrency caps in-flight precise distance requests per search.
func WithPreciseConcurrency(n int) Option {
	return optionFunc(func(c *engineConfig) {
		c.settings.PreciseConcurrency = n
	})
}

// WithFilters sets the filter tags offered to the user. All start active.
func WithFilters(tags ...string) Option {
	return optionFunc(func(c *engineConfig) {
		c.filters = tags
	})
}

// WithInitialAddress makes Start search from address.
func WithInitialAddress(address string) Option {
	return optionFunc(func(c *engineConfig) {
		in, err := location.Address(address)
		if err != nil {
			c.fail(fmt.Errorf("initial address: %w", err))
			return
		}
		c.initial = &in
	})
}

// WithInitialLocation makes Start search from pos.
func WithInitialLocation(pos Location) Option {
	return optionFunc(func(c *engineConfig) {
		in, err := location.Coordinates(pos)
		if err != nil {
			c.fail(fmt.Errorf("initial location: %w", err))
			return
		}
		c.initial = &in
	})
}

// WithDistanceCache caches precise distances in Redis or Valkey.
// ttl <= 0 keeps the 24h default.
func WithDistanceCache(addrs []string, password string, ttl time.Duration) Option {
	return optionFunc(func(c *engineConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
		if ttl > 0 {
			c.cacheTTL = ttl
		}
	})
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	})
}
