package session

import (
	"fmt"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

// Phase is the lifecycle state of one search session.
type Phase string

// Session phases. Committed and Aborted are terminal.
const (
	Idle            Phase = "idle"
	Resolving       Phase = "resolving"
	RankingApprox   Phase = "ranking_approx"
	RefiningPrecise Phase = "refining_precise"
	Committed       Phase = "committed"
	Aborted         Phase = "aborted"
)

var transitions = map[Phase][]Phase{
	Idle:            {Resolving},
	Resolving:       {RankingApprox, Committed, Aborted, Idle},
	RankingApprox:   {RefiningPrecise, Committed},
	RefiningPrecise: {Committed, Aborted},
}

// CanTransition reports whether the state machine allows p -> next.
// Resolving -> Committed covers the viewport-only path for non-specific places;
// Resolving -> Idle covers a failed resolution.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool { return p == Committed || p == Aborted }

// Session is one resolve -> rank -> refine cycle.
type Session struct {
	id        uint64
	reference geo.Location
	radius    float64
	phase     Phase
}

// New creates a session in Resolving. The reference location is set once resolution completes.
func New(id uint64, radius float64) *Session {
	return &Session{id: id, radius: radius, phase: Resolving}
}

// ID returns the monotonic session id.
func (s *Session) ID() uint64 { return s.id }

// Reference returns the resolved reference location.
func (s *Session) Reference() geo.Location { return s.reference }

// Radius returns the search radius in the active unit.
func (s *Session) Radius() float64 { return s.radius }

// Phase returns the current lifecycle state.
func (s *Session) Phase() Phase { return s.phase }

// SetReference records the resolved reference location.
func (s *Session) SetReference(l geo.Location) { s.reference = l }

// Advance moves the session to next, rejecting transitions the state machine forbids.
func (s *Session) Advance(next Phase) error {
	if !s.phase.CanTransition(next) {
		return fmt.Errorf("session %d: illegal transition %s -> %s", s.id, s.phase, next)
	}
	s.phase = next
	return nil
}
