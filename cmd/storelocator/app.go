package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator"
	"github.com/kailas-cloud/storelocator/internal/config"
	logpkg "github.com/kailas-cloud/storelocator/internal/logger"
	"github.com/kailas-cloud/storelocator/internal/repository/storefile"
)

// app is the composition root shared by serve and search.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	engine *storelocator.Engine
}

func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	engine, err := storelocator.New(engineOptions(cfg, logger)...)
	if err != nil {
		return nil, err
	}

	inputs, err := storefile.Load(cfg.Locator.StoresFile)
	if err != nil {
		engine.Close()
		return nil, err
	}
	if _, err := engine.SetStores(inputs); err != nil {
		engine.Close()
		return nil, err
	}
	logger.Info("Stores loaded",
		zap.String("file", cfg.Locator.StoresFile),
		zap.Int("count", len(inputs)),
	)

	return &app{cfg: cfg, logger: logger, engine: engine}, nil
}

func (a *app) Close() {
	a.engine.Close()
	_ = a.logger.Sync()
}

// engineOptions maps a validated config onto engine options.
func engineOptions(cfg config.Config, logger *zap.Logger) []storelocator.Option {
	settings := cfg.Settings()
	opts := []storelocator.Option{
		storelocator.WithLogger(logger),
		storelocator.WithGoogleMaps(storelocator.MapsConfig{
			APIKey:   cfg.Maps.APIKey,
			BaseURL:  cfg.Maps.BaseURL,
			Language: cfg.Maps.Language,
			Region:   cfg.Maps.Region,
			Timeout:  time.Duration(cfg.Maps.TimeoutSec) * time.Second,
		}),
		storelocator.WithRadius(settings.Radius),
		storelocator.WithUnitSystem(settings.Unit),
		storelocator.WithTravelMode(settings.Mode),
		storelocator.WithOrderByDistance(settings.OrderByDistance),
		storelocator.WithShowStoreDistance(settings.ShowStoreDistance),
		storelocator.WithPreciseConcurrency(settings.PreciseConcurrency),
		storelocator.WithFilters(cfg.Locator.Filters...),
		storelocator.WithDeviceMode(
			cfg.Device.Mode,
			storelocator.Location{Lat: cfg.Device.Lat, Lng: cfg.Device.Lng},
		),
	}

	switch {
	case cfg.Locator.InitialLocation != nil:
		opts = append(opts, storelocator.WithInitialLocation(*cfg.Locator.InitialLocation))
	case cfg.Locator.InitialAddress != "":
		opts = append(opts, storelocator.WithInitialAddress(cfg.Locator.InitialAddress))
	}

	if cfg.Cache.Enabled {
		opts = append(opts, storelocator.WithDistanceCache(
			cfg.Cache.Addrs,
			cfg.Cache.Password,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
		))
	}
	return opts
}
