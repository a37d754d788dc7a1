package health

import "context"

// CachePinger checks the precise distance cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// StoreCounter reports how many stores are loaded.
type StoreCounter interface {
	StoreCount() int
}
