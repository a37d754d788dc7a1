package session

import (
	"context"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	domsnap "github.com/kailas-cloud/storelocator/internal/domain/snapshot"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
	"github.com/kailas-cloud/storelocator/internal/usecase/marker"
)

// Resolver turns a location input into a canonical location.
type Resolver interface {
	Resolve(ctx context.Context, in location.Input) (location.Resolved, error)
}

// Ranker runs the approximate and precise distance phases.
type Ranker interface {
	Approximate(ref geo.Location, stores []store.Store, radius float64) []ranking.Ranked
	Precise(ctx context.Context, ref geo.Location, entries []ranking.Ranked) []ranking.Ranked
}

// Markers owns marker display state and the exclusive selection.
type Markers interface {
	Sync(known []store.Store, published []ranking.Ranked) marker.SyncResult
	Select(id store.ID) error
	Deselect()
	ResetToFullSet(stores []store.Store)
	Selected() store.ID
}

// Publisher receives every whole-state replacement.
type Publisher interface {
	Publish(s domsnap.Snapshot) domsnap.Snapshot
	Latest() domsnap.Snapshot
}
