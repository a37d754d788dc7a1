package filter

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/ranking"
)

// State is the immutable set of active tag filters.
// Every toggle returns a new State; the configured tag universe never changes.
type State struct {
	configured map[string]struct{}
	active     map[string]struct{}
}

// NewState creates a State with every configured tag active.
func NewState(tags []string) State {
	configured := make(map[string]struct{}, len(tags))
	active := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		configured[t] = struct{}{}
		active[t] = struct{}{}
	}
	return State{configured: configured, active: active}
}

// Toggle sets tag on or off according to the caller's intent.
// It is idempotent: turning on an active tag leaves the state unchanged.
func (s State) Toggle(tag string, on bool) (State, error) {
	if _, ok := s.configured[tag]; !ok {
		return s, fmt.Errorf("tag %q: %w", tag, domain.ErrUnknownFilter)
	}
	active := make(map[string]struct{}, len(s.active)+1)
	for t := range s.active {
		active[t] = struct{}{}
	}
	if on {
		active[tag] = struct{}{}
	} else {
		delete(active, tag)
	}
	return State{configured: s.configured, active: active}, nil
}

// Reset returns a State with every configured tag active again.
func (s State) Reset() State {
	active := make(map[string]struct{}, len(s.configured))
	for t := range s.configured {
		active[t] = struct{}{}
	}
	return State{configured: s.configured, active: active}
}

// Enabled reports whether filtering is configured at all.
func (s State) Enabled() bool { return len(s.configured) > 0 }

// IsActive reports whether tag is currently on.
func (s State) IsActive(tag string) bool {
	_, ok := s.active[tag]
	return ok
}

// Active returns the active tags in sorted order.
func (s State) Active() []string { return sortedKeys(s.active) }

// Configured returns every configured tag in sorted order.
func (s State) Configured() []string { return sortedKeys(s.configured) }

// Apply recomputes Hidden for every entry: an entry is hidden iff none of its
// tags is active. Order and length are preserved. With no configured filters
// nothing is ever hidden.
func Apply(entries []ranking.Ranked, s State) []ranking.Ranked {
	out := make([]ranking.Ranked, len(entries))
	for i, e := range entries {
		out[i] = e.WithHidden(s.Enabled() && !s.matches(e))
	}
	return out
}

func (s State) matches(e ranking.Ranked) bool {
	st := e.Store()
	for t := range s.active {
		if st.HasTag(t) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
