package session

import (
	"testing"

	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

func TestAdvance_HappyPath(t *testing.T) {
	s := New(1, 50)
	for _, next := range []Phase{RankingApprox, RefiningPrecise, Committed} {
		if err := s.Advance(next); err != nil {
			t.Fatalf("Advance(%s): %v", next, err)
		}
	}
	if !s.Phase().Terminal() {
		t.Errorf("phase %s should be terminal", s.Phase())
	}
}

func TestAdvance_Illegal(t *testing.T) {
	tests := []struct {
		name string
		path []Phase
	}{
		{"approx cannot abort", []Phase{RankingApprox, Aborted}},
		{"committed is terminal", []Phase{Committed, Resolving}},
		{"aborted is terminal", []Phase{Aborted, Committed}},
		{"skip approx", []Phase{RefiningPrecise}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(1, 50)
			var err error
			for _, p := range tt.path {
				if err = s.Advance(p); err != nil {
					break
				}
			}
			if err == nil {
				t.Fatalf("expected illegal transition along %v", tt.path)
			}
		})
	}
}

func TestAdvance_ResolvingBranches(t *testing.T) {
	for _, next := range []Phase{Committed, Aborted, Idle} {
		s := New(2, 10)
		if err := s.Advance(next); err != nil {
			t.Errorf("Resolving -> %s: %v", next, err)
		}
	}
}

func TestSession_Accessors(t *testing.T) {
	s := New(9, 25)
	s.SetReference(geo.Location{Lat: 1, Lng: 2})
	if s.ID() != 9 || s.Radius() != 25 || s.Reference() != (geo.Location{Lat: 1, Lng: 2}) {
		t.Errorf("accessors mismatch: %d %v %v", s.ID(), s.Radius(), s.Reference())
	}
	if s.Phase() != Resolving {
		t.Errorf("new session phase = %s", s.Phase())
	}
}
