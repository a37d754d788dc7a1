package distance

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
	"github.com/kailas-cloud/storelocator/internal/logger"
)

// Engine ranks stores in two phases: a cheap local great-circle pass and a
// bounded fan-out to the precise distance provider over the survivors.
type Engine struct {
	provider    Provider
	settings    domain.Settings
	concurrency int
	fallbacks   FallbackCounter
}

// New creates a distance engine. A non-positive PreciseConcurrency falls back
// to domain.DefaultPreciseConcurrency.
func New(provider Provider, settings domain.Settings) *Engine {
	concurrency := settings.PreciseConcurrency
	if concurrency <= 0 {
		concurrency = domain.DefaultPreciseConcurrency
	}
	return &Engine{provider: provider, settings: settings, concurrency: concurrency}
}

// WithFallbackCounter records every per-store fallback in c.
func (e *Engine) WithFallbackCounter(c FallbackCounter) *Engine {
	e.fallbacks = c
	return e
}

// Approximate annotates every store with its great-circle distance from ref in
// the configured unit and keeps only stores strictly closer than radius.
// With OrderByDistance the survivors are stable-sorted ascending.
func (e *Engine) Approximate(ref geo.Location, stores []store.Store, radius float64) []ranking.Ranked {
	unit := e.settings.Unit
	out := make([]ranking.Ranked, 0, len(stores))
	for _, s := range stores {
		d := geo.Convert(geo.HaversineDistance(ref, s.Location()), unit)
		if d >= radius {
			continue
		}
		out = append(out, ranking.New(s).WithApproximate(d, geo.FormatDistance(d, unit)))
	}
	if e.settings.OrderByDistance {
		ranking.SortByDistance(out)
	}
	return out
}

// Precise asks the provider for the travel distance of every entry, at most
// concurrency requests at a time. An entry whose lookup fails keeps its
// approximate values; Precise itself never fails. The input slice is not modified.
func (e *Engine) Precise(ctx context.Context, ref geo.Location, entries []ranking.Ranked) []ranking.Ranked {
	out := make([]ranking.Ranked, len(entries))
	copy(out, entries)

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i := range out {
		g.Go(func() error {
			refined, err := e.refine(ctx, ref, out[i])
			if err != nil {
				logger.FromContext(ctx).Debug("Precise distance fallback",
					zap.Stringer("store_id", out[i].ID()),
					zap.Error(err),
				)
				if e.fallbacks != nil {
					e.fallbacks.Inc()
				}
				return nil
			}
			out[i] = refined
			return nil
		})
	}
	_ = g.Wait() // workers never return an error

	if e.settings.OrderByDistance {
		ranking.SortByDistance(out)
	}
	return out
}

func (e *Engine) refine(ctx context.Context, ref geo.Location, entry ranking.Ranked) (ranking.Ranked, error) {
	res, err := e.provider.Distance(ctx, domain.DistanceRequest{
		Origin:      ref,
		Destination: entry.Store().Location(),
		Mode:        e.settings.Mode,
		Units:       e.settings.Unit,
	})
	if err != nil {
		return entry, fmt.Errorf("%w: %w", domain.ErrPreciseDistanceUnavailable, err)
	}
	if res.Status != domain.StatusOK {
		return entry, fmt.Errorf("%w: status %s", domain.ErrPreciseDistanceUnavailable, res.Status)
	}

	unit := e.settings.Unit
	d := geo.Convert(float64(res.DistanceMeters)/1000, unit)
	duration := res.DurationText
	if duration == "" {
		duration = FormatDuration(res.Duration)
	}
	return entry.WithPrecise(d, geo.FormatDistance(d, unit), duration+" "+e.settings.Mode.Label()), nil
}

// FormatDuration renders d the way map providers do: "45 mins", "1 hour 5 mins".
func FormatDuration(d time.Duration) string {
	mins := int((d + 30*time.Second) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	hours, mins := mins/60, mins%60
	switch {
	case hours == 0:
		return plural(mins, "min")
	case mins == 0:
		return plural(hours, "hour")
	default:
		return plural(hours, "hour") + " " + plural(mins, "min")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
