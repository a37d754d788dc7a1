package domain

import (
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
)

// KeyPrefix namespaces every key this engine writes to a shared KV store.
const KeyPrefix = "storelocator:"

// DefaultPreciseConcurrency caps in-flight precise distance requests per session.
const DefaultPreciseConcurrency = 4

// DefaultRadius is the search radius in the active unit when none is configured.
const DefaultRadius = 50

// Settings holds the ranking behavior consumed once at engine construction.
type Settings struct {
	Radius             float64
	Unit               geo.Unit
	Mode               travel.Mode
	OrderByDistance    bool
	ShowStoreDistance  bool
	PreciseConcurrency int
}

// DefaultSettings returns metric driving settings with sorting and precise refinement enabled.
func DefaultSettings() Settings {
	return Settings{
		Radius:             DefaultRadius,
		Unit:               geo.Metric,
		Mode:               travel.Driving,
		OrderByDistance:    true,
		ShowStoreDistance:  true,
		PreciseConcurrency: DefaultPreciseConcurrency,
	}
}
