package distance

import (
	"context"

	"github.com/kailas-cloud/storelocator/internal/domain"
)

// Provider computes the precise travel distance for one origin/destination pair.
type Provider interface {
	Distance(ctx context.Context, req domain.DistanceRequest) (domain.DistanceResult, error)
}

// FallbackCounter counts stores that kept their approximate distance.
type FallbackCounter interface {
	Inc()
}
