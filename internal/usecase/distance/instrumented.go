package distance

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/domain"
)

// InstrumentedProvider wraps a Provider with request metrics and logging.
type InstrumentedProvider struct {
	inner    Provider
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	logger   *zap.Logger
}

// NewInstrumentedProvider wraps inner. requests is labeled (mode, status) and
// duration (mode); either may be nil.
func NewInstrumentedProvider(
	inner Provider,
	requests *prometheus.CounterVec,
	duration *prometheus.HistogramVec,
	logger *zap.Logger,
) *InstrumentedProvider {
	return &InstrumentedProvider{inner: inner, requests: requests, duration: duration, logger: logger}
}

// Distance delegates to the inner provider and records the outcome.
func (p *InstrumentedProvider) Distance(
	ctx context.Context, req domain.DistanceRequest,
) (domain.DistanceResult, error) {
	mode := string(req.Mode)
	start := time.Now()

	res, err := p.inner.Distance(ctx, req)

	elapsed := time.Since(start)
	if p.duration != nil {
		p.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
	}

	if err != nil {
		p.count(mode, "error")
		p.logger.Warn("Precise distance request failed",
			zap.String("mode", mode),
			zap.Stringer("origin", req.Origin),
			zap.Stringer("destination", req.Destination),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return domain.DistanceResult{}, fmt.Errorf("distance: %w", err)
	}

	p.count(mode, res.Status)
	p.logger.Debug("Precise distance request completed",
		zap.String("mode", mode),
		zap.String("status", res.Status),
		zap.Int("meters", res.DistanceMeters),
		zap.Duration("duration", elapsed),
	)
	return res, nil
}

func (p *InstrumentedProvider) count(mode, status string) {
	if p.requests != nil {
		p.requests.WithLabelValues(mode, status).Inc()
	}
}
