package store

import (
	"fmt"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

// Catalog assigns ids to ingested stores. Ids are monotonically increasing
// and never reused, even after the store set is replaced wholesale.
type Catalog struct {
	next ID
}

// NewCatalog creates an empty catalog whose first id is 1.
func NewCatalog() *Catalog {
	return &Catalog{next: 1}
}

// Ingest validates inputs and returns stores with freshly assigned ids, in input order.
// A single invalid input rejects the whole set and consumes no ids.
func (c *Catalog) Ingest(inputs []Input) ([]Store, error) {
	for i, in := range inputs {
		if !geo.ValidateCoordinates(in.Location.Lat, in.Location.Lng) {
			return nil, fmt.Errorf("store %d (%q): lat=%f lng=%f out of range",
				i, in.Name, in.Location.Lat, in.Location.Lng)
		}
	}

	out := make([]Store, len(inputs))
	for i, in := range inputs {
		out[i] = Store{
			id:       c.next,
			name:     in.Name,
			address:  in.Address,
			phone:    in.Phone,
			url:      in.URL,
			location: in.Location,
			tags:     tagSet(in.Tags),
			extra:    cloneStringMap(in.Extra),
		}
		c.next++
	}
	return out, nil
}
