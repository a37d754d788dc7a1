package snapshot

import (
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	"github.com/kailas-cloud/storelocator/internal/domain/session"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
)

// Snapshot is the published state consumed by the rendering layer.
// It is always replaced as a whole, never patched.
type Snapshot struct {
	// Version increases with every publish.
	Version uint64
	// SessionID is the session that produced Stores; 0 before the first search.
	SessionID uint64
	Phase     session.Phase
	Stores    []ranking.Ranked
	// Selected is 0 when nothing is selected.
	Selected store.ID
	Resolved *location.Resolved
	// Position drives the "current position" marker; nil for non-specific places.
	Position      *geo.Location
	Viewport      *geo.BoundingBox
	ActiveFilters []string
	// Empty marks a committed search with no visible store.
	Empty bool
}

// Find returns the entry for id.
func (s Snapshot) Find(id store.ID) (ranking.Ranked, bool) {
	for _, e := range s.Stores {
		if e.ID() == id {
			return e, true
		}
	}
	return ranking.Ranked{}, false
}
