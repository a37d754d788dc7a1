package marker

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
)

// Marker is the display state of one store on the map.
type Marker struct {
	StoreID  store.ID     `json:"store_id"`
	Name     string       `json:"name"`
	Location geo.Location `json:"location"`
	Visible  bool         `json:"visible"`
	Opacity  float64      `json:"opacity"`
	Selected bool         `json:"selected"`
}

// SyncResult summarizes one Sync call.
type SyncResult struct {
	Created int
	Removed int
	// Deselected is true when the selected store was hidden or removed.
	Deselected bool
}

// Engine owns the store id to marker mapping and the exclusive selection.
// It is the only writer of marker state.
type Engine struct {
	mu       sync.RWMutex
	markers  map[store.ID]*Marker
	selected store.ID
}

// New creates an engine with no markers.
func New() *Engine {
	return &Engine{markers: make(map[store.ID]*Marker)}
}

// Sync reconciles markers with the known store set and the published list.
// Every known store keeps exactly one marker: stores in published follow their
// hidden flag, stores outside it are hidden. Markers of ids that left the
// store set are removed.
func (e *Engine) Sync(known []store.Store, published []ranking.Ranked) SyncResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	var res SyncResult
	visible := make(map[store.ID]bool, len(published))
	for _, r := range published {
		visible[r.ID()] = !r.Hidden()
	}

	ids := make(map[store.ID]struct{}, len(known))
	for _, s := range known {
		ids[s.ID()] = struct{}{}
		m, ok := e.markers[s.ID()]
		if !ok {
			m = &Marker{StoreID: s.ID(), Name: s.Name(), Location: s.Location()}
			e.markers[s.ID()] = m
			res.Created++
		}
		setVisible(m, visible[s.ID()])
	}

	for id := range e.markers {
		if _, ok := ids[id]; !ok {
			delete(e.markers, id)
			res.Removed++
		}
	}

	if e.selected != 0 {
		m, ok := e.markers[e.selected]
		if !ok || !m.Visible {
			if ok {
				m.Selected = false
			}
			e.selected = 0
			res.Deselected = true
		}
	}
	return res
}

// Select makes id the only selected marker. Unknown or hidden stores
// yield domain.ErrStoreNotFound and leave the selection unchanged.
func (e *Engine) Select(id store.ID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.markers[id]
	if !ok || !m.Visible {
		return fmt.Errorf("select %s: %w", id, domain.ErrStoreNotFound)
	}
	if prev, ok := e.markers[e.selected]; ok {
		prev.Selected = false
	}
	m.Selected = true
	e.selected = id
	return nil
}

// Deselect closes the open info surface, if any.
func (e *Engine) Deselect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if m, ok := e.markers[e.selected]; ok {
		m.Selected = false
	}
	e.selected = 0
}

// ResetToFullSet recreates one visible marker per store and clears the selection.
func (e *Engine) ResetToFullSet(stores []store.Store) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.markers = make(map[store.ID]*Marker, len(stores))
	for _, s := range stores {
		m := &Marker{StoreID: s.ID(), Name: s.Name(), Location: s.Location()}
		setVisible(m, true)
		e.markers[s.ID()] = m
	}
	e.selected = 0
}

// Selected returns the selected store id, 0 when none.
func (e *Engine) Selected() store.ID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected
}

// Markers returns a copy of every marker ordered by store id.
func (e *Engine) Markers() []Marker {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Marker, 0, len(e.markers))
	for _, m := range e.markers {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Marker) int {
		switch {
		case a.StoreID < b.StoreID:
			return -1
		case a.StoreID > b.StoreID:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Get returns the marker for id.
func (e *Engine) Get(id store.ID) (Marker, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.markers[id]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

func setVisible(m *Marker, visible bool) {
	m.Visible = visible
	if visible {
		m.Opacity = 1
	} else {
		m.Opacity = 0
	}
}
