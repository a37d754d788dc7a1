// Package storelocator ranks a fixed set of stores around a searched location
// and keeps the published list, filters and map markers consistent while
// searches overlap.
package storelocator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/storelocator/internal/db"
	dbRedis "github.com/kailas-cloud/storelocator/internal/db/redis"
	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	domsnap "github.com/kailas-cloud/storelocator/internal/domain/snapshot"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
	logpkg "github.com/kailas-cloud/storelocator/internal/logger"
	"github.com/kailas-cloud/storelocator/internal/metrics"
	"github.com/kailas-cloud/storelocator/internal/repository/distcache"
	snaphub "github.com/kailas-cloud/storelocator/internal/repository/snapshot"
	chiTransport "github.com/kailas-cloud/storelocator/internal/transport/chi"
	"github.com/kailas-cloud/storelocator/internal/transport/googlemaps"
	"github.com/kailas-cloud/storelocator/internal/usecase/distance"
	healthuc "github.com/kailas-cloud/storelocator/internal/usecase/health"
	"github.com/kailas-cloud/storelocator/internal/usecase/marker"
	"github.com/kailas-cloud/storelocator/internal/usecase/resolver"
	sessionuc "github.com/kailas-cloud/storelocator/internal/usecase/session"
)

// Public names for the engine's value types.
type (
	Location     = geo.Location
	BoundingBox  = geo.BoundingBox
	UnitSystem   = geo.Unit
	TravelMode   = travel.Mode
	StoreID      = store.ID
	StoreInput   = store.Input
	Store        = store.Store
	Ranked       = ranking.Ranked
	Snapshot     = domsnap.Snapshot
	Marker       = marker.Marker
	Result       = sessionuc.Result
	Outcome      = sessionuc.Outcome
	HealthReport = healthuc.Report

	Geocoder         = domain.Geocoder
	GeocodeRequest   = domain.GeocodeRequest
	GeocodeResponse  = domain.GeocodeResponse
	GeocodeCandidate = domain.GeocodeCandidate
	DistanceProvider = domain.DistanceProvider
	DistanceRequest  = domain.DistanceRequest
	DistanceResult   = domain.DistanceResult
)

// Search outcomes.
const (
	OutcomeCommitted = sessionuc.OutcomeCommitted
	OutcomeAborted   = sessionuc.OutcomeAborted
	OutcomeFailed    = sessionuc.OutcomeFailed
	OutcomeViewport  = sessionuc.OutcomeViewport
)

// Unit systems and travel modes.
const (
	Metric   = geo.Metric
	Imperial = geo.Imperial

	Driving   = travel.Driving
	Walking   = travel.Walking
	Bicycling = travel.Bicycling
	Transit   = travel.Transit
)

// StatusOK is the provider status of a usable geocoding or distance answer.
const StatusOK = domain.StatusOK

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNoGeocodingResult      = domain.ErrNoGeocodingResult
	ErrGeolocationUnavailable = domain.ErrGeolocationUnavailable
	ErrGeolocationDenied      = domain.ErrGeolocationDenied
	ErrInvalidLocation        = domain.ErrInvalidLocation
	ErrStoreNotFound          = domain.ErrStoreNotFound
	ErrUnknownFilter          = domain.ErrUnknownFilter
	ErrProviderUnavailable    = domain.ErrProviderUnavailable
)

// Engine is the store locator entry point.
type Engine struct {
	sessions *sessionuc.Service
	markers  *marker.Engine
	hub      *snaphub.Hub
	health   *healthuc.Service
	cache    db.Store
	cfg      *engineConfig
}

// New wires an Engine. A geocoder is required: use WithGoogleMaps or WithGeocoder.
// The Maps client is only built when it has to fill in a missing provider.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.err != nil {
		return nil, fmt.Errorf("storelocator: %w", cfg.err)
	}

	if cfg.maps != nil && (cfg.geocoder == nil || cfg.distances == nil) {
		client, err := googlemaps.New(googlemaps.Config{
			APIKey:   cfg.maps.APIKey,
			BaseURL:  cfg.maps.BaseURL,
			Language: cfg.maps.Language,
			Region:   cfg.maps.Region,
			Timeout:  cfg.maps.Timeout,
			Logger:   cfg.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("storelocator: %w", err)
		}
		if cfg.geocoder == nil {
			cfg.geocoder = client
		}
		if cfg.distances == nil {
			cfg.distances = client
		}
	}
	if cfg.geocoder == nil {
		return nil, errors.New("storelocator: geocoder required (use WithGoogleMaps or WithGeocoder)")
	}
	if cfg.distances == nil && cfg.settings.ShowStoreDistance {
		return nil, errors.New("storelocator: distance provider required (use WithGoogleMaps or WithDistanceProvider)")
	}

	e := &Engine{cfg: cfg}
	if len(cfg.cacheAddrs) > 0 {
		s, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.cacheAddrs, Password: cfg.cachePassword})
		if err != nil {
			return nil, fmt.Errorf("storelocator: create cache store: %w", err)
		}
		if err := s.WaitForReady(context.Background(), cfg.cacheReadiness); err != nil {
			s.Close()
			return nil, fmt.Errorf("storelocator: cache not ready: %w", err)
		}
		e.cache = s
	}

	e.wire()
	return e, nil
}

// wire assembles the provider chain: provider -> cache -> instrumented.
func (e *Engine) wire() {
	cfg := e.cfg

	var provider distance.Provider = cfg.distances
	if provider != nil {
		if e.cache != nil {
			provider = distcache.New(provider, e.cache, cfg.cacheTTL, metrics.DistanceCacheTotal, cfg.logger)
		}
		provider = distance.NewInstrumentedProvider(
			provider, metrics.PreciseRequestsTotal, metrics.PreciseRequestDuration, cfg.logger,
		)
	}

	ranker := distance.New(provider, cfg.settings).WithFallbackCounter(metrics.PreciseFallbacksTotal)
	e.markers = marker.New()
	e.hub = snaphub.NewHub()
	e.sessions = sessionuc.New(
		resolver.New(cfg.geocoder, cfg.device),
		ranker,
		e.markers,
		e.hub,
		cfg.settings,
		cfg.filters,
	)
	if cfg.initial != nil {
		e.sessions.WithInitialLocation(*cfg.initial)
	}

	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var pinger healthuc.CachePinger
	if e.cache != nil {
		pinger = e.cache
	}
	e.health = healthuc.New(e.sessions, pinger)
}

// withLogger keeps a caller's context logger and falls back to the engine logger.
func (e *Engine) withLogger(ctx context.Context) context.Context {
	return logpkg.WithFields(ctx, e.cfg.logger)
}

// Close releases the cache connection, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// SetStores replaces the store set. In-flight searches are discarded.
func (e *Engine) SetStores(inputs []StoreInput) (Snapshot, error) {
	snap, err := e.sessions.ReplaceStores(inputs)
	if err != nil {
		return Snapshot{}, fmt.Errorf("storelocator: %w", err)
	}
	return snap, nil
}

// Stores returns the current store set in input order.
func (e *Engine) Stores() []Store {
	return e.sessions.Stores()
}

// Start publishes the initial state and runs the initial search, if configured.
func (e *Engine) Start(ctx context.Context) (Result, error) {
	return e.sessions.Start(e.withLogger(ctx))
}

// SearchAddress searches around a free-text address. radius <= 0 uses the configured radius.
func (e *Engine) SearchAddress(ctx context.Context, address string, radius float64) (Result, error) {
	in, err := location.Address(address)
	if err != nil {
		return Result{}, fmt.Errorf("storelocator: %w: %w", ErrInvalidLocation, err)
	}
	return e.sessions.OnLocationInput(e.withLogger(ctx), in, radius)
}

// SearchCoordinates searches around a point.
func (e *Engine) SearchCoordinates(ctx context.Context, pos Location, radius float64) (Result, error) {
	in, err := location.Coordinates(pos)
	if err != nil {
		return Result{}, fmt.Errorf("storelocator: %w: %w", ErrInvalidLocation, err)
	}
	return e.sessions.OnLocationInput(e.withLogger(ctx), in, radius)
}

// SearchDevice searches around the device position.
func (e *Engine) SearchDevice(ctx context.Context, radius float64) (Result, error) {
	return e.sessions.OnLocationInput(e.withLogger(ctx), location.Device(), radius)
}

// ToggleFilter turns a filter tag on or off.
func (e *Engine) ToggleFilter(tag string, on bool) (Snapshot, error) {
	return e.sessions.OnFilterToggle(tag, on)
}

// Select makes id the only selected store.
func (e *Engine) Select(id StoreID) (Snapshot, error) {
	return e.sessions.OnStoreSelect(id)
}

// Deselect clears the selection.
func (e *Engine) Deselect() Snapshot {
	return e.sessions.OnDeselect()
}

// Reset returns to the unranked full store set with every filter active.
func (e *Engine) Reset() Snapshot {
	return e.sessions.OnReset()
}

// State returns the latest published snapshot.
func (e *Engine) State() Snapshot {
	return e.hub.Latest()
}

// Markers returns the marker states ordered by store id.
func (e *Engine) Markers() []Marker {
	return e.markers.Markers()
}

// Subscribe streams every published snapshot. Call cancel to unsubscribe.
// A slow subscriber loses the oldest queued snapshots, never the newest.
func (e *Engine) Subscribe(buffer int) (<-chan Snapshot, func()) {
	return e.hub.Subscribe(buffer)
}

// Health reports the store set and cache status.
func (e *Engine) Health(ctx context.Context) HealthReport {
	return e.health.Check(ctx)
}

// Handler returns the HTTP API. Non-empty apiKeys enable bearer auth on /v1.
func (e *Engine) Handler(apiKeys ...string) http.Handler {
	srv := chiTransport.NewServer(e.sessions, e.markers, e.hub, e.health, e.cfg.logger)
	return srv.Router(apiKeys)
}
