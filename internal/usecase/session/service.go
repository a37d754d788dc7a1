package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/filter"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
	"github.com/kailas-cloud/storelocator/internal/domain/location"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
	domsess "github.com/kailas-cloud/storelocator/internal/domain/session"
	domsnap "github.com/kailas-cloud/storelocator/internal/domain/snapshot"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
	"github.com/kailas-cloud/storelocator/internal/logger"
	"github.com/kailas-cloud/storelocator/internal/metrics"
)

// Outcome is how a search session ended.
type Outcome string

// Session outcomes, also used as metric labels.
const (
	OutcomeCommitted Outcome = "committed"
	OutcomeAborted   Outcome = "aborted"
	OutcomeFailed    Outcome = "failed"
	OutcomeViewport  Outcome = "viewport"
)

// Result is the end of one OnLocationInput call.
type Result struct {
	SessionID uint64
	Outcome   Outcome
	// Snapshot is the latest published state when the call returned.
	Snapshot domsnap.Snapshot
}

// Service drives search sessions and is the single writer of published state.
// Only the most recently started session may commit; work of a superseded
// session runs to completion and is discarded.
type Service struct {
	resolver  Resolver
	ranker    Ranker
	markers   Markers
	publisher Publisher
	settings  domain.Settings
	catalog   *store.Catalog
	initial   *location.Input

	mu       sync.Mutex
	current  uint64
	stores   []store.Store
	filters  filter.State
	base     []ranking.Ranked
	producer uint64
	phase    domsess.Phase
	resolved *location.Resolved
	position *geo.Location
	viewport *geo.BoundingBox
}

// New creates a controller with an empty store set and every filter tag active.
func New(
	resolver Resolver,
	ranker Ranker,
	markers Markers,
	publisher Publisher,
	settings domain.Settings,
	filterTags []string,
) *Service {
	if settings.Radius <= 0 {
		settings.Radius = domain.DefaultRadius
	}
	return &Service{
		resolver:  resolver,
		ranker:    ranker,
		markers:   markers,
		publisher: publisher,
		settings:  settings,
		catalog:   store.NewCatalog(),
		filters:   filter.NewState(filterTags),
		phase:     domsess.Idle,
	}
}

// WithInitialLocation sets the input Start searches from.
func (s *Service) WithInitialLocation(in location.Input) *Service {
	s.initial = &in
	return s
}

// Start publishes the current store set and, if an initial location is
// configured, runs the first session.
func (s *Service) Start(ctx context.Context) (Result, error) {
	s.mu.Lock()
	snap := s.publishLocked()
	s.mu.Unlock()

	if s.initial == nil {
		return Result{Outcome: OutcomeCommitted, Snapshot: snap}, nil
	}
	return s.OnLocationInput(ctx, *s.initial, 0)
}

// ReplaceStores swaps the whole store set. New ids never reuse old ones,
// in-flight sessions become stale and the unranked set is published.
func (s *Service) ReplaceStores(inputs []store.Input) (domsnap.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stores, err := s.catalog.Ingest(inputs)
	if err != nil {
		return domsnap.Snapshot{}, fmt.Errorf("replace stores: %w", err)
	}
	s.current++
	s.stores = stores
	s.base = ranking.FromStores(stores)
	s.producer = 0
	s.phase = domsess.Idle
	s.resolved, s.position, s.viewport = nil, nil, nil
	return s.publishLocked(), nil
}

// Stores returns the current store set.
func (s *Service) Stores() []store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Store, len(s.stores))
	copy(out, s.stores)
	return out
}

// StoreCount returns the size of the current store set.
func (s *Service) StoreCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Filters returns the configured tags and the active ones.
func (s *Service) Filters() filter.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// OnLocationInput runs one session: resolve, publish the approximate ranking,
// refine it and publish the result if the session is still current.
// radius <= 0 uses the configured radius. Resolution failures are returned
// and leave the published list untouched; a pending refinement of a session
// they supersede is committed as it stands.
func (s *Service) OnLocationInput(ctx context.Context, in location.Input, radius float64) (Result, error) {
	if radius <= 0 {
		radius = s.settings.Radius
	}
	started := time.Now()

	s.mu.Lock()
	s.current++
	sess := domsess.New(s.current, radius)
	s.mu.Unlock()

	log := logger.FromContext(ctx).With(zap.Uint64("session_id", sess.ID()))
	ctx = logger.ContextWithLogger(ctx, log)
	log.Debug("Session started", zap.Stringer("input", in), zap.Float64("radius", radius))

	resolved, err := s.resolver.Resolve(ctx, in)
	if err != nil {
		advance(log, sess, domsess.Idle)
		log.Warn("Location resolution failed", zap.Error(err))
		s.mu.Lock()
		if sess.ID() == s.current {
			s.settleLocked(log)
		}
		snap := s.publisher.Latest()
		s.mu.Unlock()
		s.finish(log, sess, OutcomeFailed, started)
		return Result{SessionID: sess.ID(), Outcome: OutcomeFailed, Snapshot: snap}, fmt.Errorf("resolve location: %w", err)
	}

	s.mu.Lock()
	if sess.ID() != s.current {
		advance(log, sess, domsess.Aborted)
		s.mu.Unlock()
		return s.abort(log, sess, started), nil
	}

	if !resolved.IsSpecific {
		// No reference point: publish the unranked set so no distance
		// from an earlier position outlives the position itself.
		advance(log, sess, domsess.Committed)
		s.base = ranking.FromStores(s.stores)
		s.producer = sess.ID()
		s.phase = domsess.Committed
		s.resolved = &resolved
		s.position = nil
		s.viewport = resolved.Viewport
		snap := s.publishLocked()
		s.mu.Unlock()
		s.finish(log, sess, OutcomeViewport, started)
		return Result{SessionID: sess.ID(), Outcome: OutcomeViewport, Snapshot: snap}, nil
	}

	ref := resolved.Location
	sess.SetReference(ref)
	advance(log, sess, domsess.RankingApprox)
	approx := s.ranker.Approximate(ref, s.stores, radius)

	refine := s.settings.ShowStoreDistance && len(approx) > 0
	next := domsess.Committed
	if refine {
		next = domsess.RefiningPrecise
	}
	s.base = approx
	s.producer = sess.ID()
	s.phase = domsess.RankingApprox
	if !refine {
		s.phase = domsess.Committed
	}
	s.resolved = &resolved
	s.position = &ref
	s.viewport = resolved.Viewport
	snap := s.publishLocked()
	s.mu.Unlock()
	advance(log, sess, next)

	log.Debug("Approximate ranking published",
		zap.Int("stores", len(approx)),
		zap.Uint64("version", snap.Version),
	)
	if !refine {
		s.finish(log, sess, OutcomeCommitted, started)
		return Result{SessionID: sess.ID(), Outcome: OutcomeCommitted, Snapshot: snap}, nil
	}

	refined := s.ranker.Precise(ctx, ref, approx)

	s.mu.Lock()
	if sess.ID() != s.current {
		advance(log, sess, domsess.Aborted)
		s.mu.Unlock()
		return s.abort(log, sess, started), nil
	}
	advance(log, sess, domsess.Committed)
	s.base = refined
	s.phase = domsess.Committed
	snap = s.publishLocked()
	s.mu.Unlock()

	s.finish(log, sess, OutcomeCommitted, started)
	return Result{SessionID: sess.ID(), Outcome: OutcomeCommitted, Snapshot: snap}, nil
}

// OnFilterToggle sets tag to the intended state and republishes the current list.
func (s *Service) OnFilterToggle(tag string, on bool) (domsnap.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.filters.Toggle(tag, on)
	if err != nil {
		return domsnap.Snapshot{}, fmt.Errorf("toggle filter: %w", err)
	}
	s.filters = next
	return s.publishLocked(), nil
}

// OnStoreSelect selects a visible store, closing any other selection.
func (s *Service) OnStoreSelect(id store.ID) (domsnap.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.markers.Select(id); err != nil {
		return domsnap.Snapshot{}, fmt.Errorf("select store: %w", err)
	}
	return s.publishLocked(), nil
}

// OnDeselect clears the selection.
func (s *Service) OnDeselect() domsnap.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers.Deselect()
	return s.publishLocked()
}

// OnReset restores the full store set with every filter on and nothing
// selected, regardless of prior search or filter state. In-flight sessions
// become stale.
func (s *Service) OnReset() domsnap.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current++
	s.filters = s.filters.Reset()
	s.base = ranking.FromStores(s.stores)
	s.producer = 0
	s.phase = domsess.Idle
	s.resolved, s.position, s.viewport = nil, nil, nil
	s.markers.ResetToFullSet(s.stores)
	return s.publishLocked()
}

// publishLocked applies the filters to the base list, syncs markers and
// publishes the whole state. Callers hold s.mu.
func (s *Service) publishLocked() domsnap.Snapshot {
	published := filter.Apply(s.base, s.filters)
	s.markers.Sync(s.stores, published)

	return s.publisher.Publish(domsnap.Snapshot{
		SessionID:     s.producer,
		Phase:         s.phase,
		Stores:        published,
		Selected:      s.markers.Selected(),
		Resolved:      s.resolved,
		Position:      s.position,
		Viewport:      s.viewport,
		ActiveFilters: s.filters.Active(),
		Empty:         s.producer != 0 && s.phase == domsess.Committed && ranking.Visible(published) == 0,
	})
}

// settleLocked commits a pending approximate ranking whose producer was
// superseded by a session that publishes no ranking of its own. Callers hold s.mu.
func (s *Service) settleLocked(log *zap.Logger) {
	if s.phase != domsess.RankingApprox {
		return
	}
	s.phase = domsess.Committed
	snap := s.publishLocked()
	log.Debug("Pending refinement settled",
		zap.Uint64("producer", s.producer),
		zap.Uint64("version", snap.Version),
	)
}

func (s *Service) abort(log *zap.Logger, sess *domsess.Session, started time.Time) Result {
	s.finish(log, sess, OutcomeAborted, started)
	return Result{SessionID: sess.ID(), Outcome: OutcomeAborted, Snapshot: s.publisher.Latest()}
}

func (s *Service) finish(log *zap.Logger, sess *domsess.Session, outcome Outcome, started time.Time) {
	metrics.SessionsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.SessionDuration.WithLabelValues(string(outcome)).Observe(time.Since(started).Seconds())
	log.Info("Session finished",
		zap.String("outcome", string(outcome)),
		zap.String("phase", string(sess.Phase())),
		zap.Duration("elapsed", time.Since(started)),
	)
}

func advance(log *zap.Logger, sess *domsess.Session, next domsess.Phase) {
	if err := sess.Advance(next); err != nil {
		log.Error("Session transition rejected", zap.Error(err))
	}
}
