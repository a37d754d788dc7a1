package device

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/geo"
)

func TestStatic(t *testing.T) {
	pos := geo.Location{Lat: 51.5, Lng: -0.12}
	s, err := NewStatic(pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := s.CurrentPosition(context.Background())
	if err != nil || got != pos {
		t.Fatalf("got %v, %v", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.CurrentPosition(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestNewStatic_Invalid(t *testing.T) {
	if _, err := NewStatic(geo.Location{Lat: 95}); !errors.Is(err, domain.ErrInvalidLocation) {
		t.Fatalf("want ErrInvalidLocation, got %v", err)
	}
}

func TestFromMode(t *testing.T) {
	tests := []struct {
		mode    string
		wantErr error
	}{
		{"denied", domain.ErrGeolocationDenied},
		{"none", domain.ErrGeolocationUnavailable},
		{"", domain.ErrGeolocationUnavailable},
		{"static", nil},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			loc, err := FromMode(tt.mode, geo.Location{Lat: 1, Lng: 2})
			if err != nil {
				t.Fatalf("FromMode: %v", err)
			}
			_, err = loc.CurrentPosition(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("want %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := FromMode("gps", geo.Location{}); err == nil {
		t.Error("expected error for unknown mode")
	}
}
