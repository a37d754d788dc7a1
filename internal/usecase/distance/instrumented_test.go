package distance

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/travel"
)

type stubProvider struct {
	res domain.DistanceResult
	err error
}

func (s *stubProvider) Distance(_ context.Context, _ domain.DistanceRequest) (domain.DistanceResult, error) {
	return s.res, s.err
}

func newCollectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"mode", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_duration_seconds"}, []string{"mode"})
	return requests, duration
}

func TestInstrumentedProvider_Success(t *testing.T) {
	requests, duration := newCollectors()
	inner := &stubProvider{res: domain.DistanceResult{Status: domain.StatusOK, DistanceMeters: 1200}}
	p := NewInstrumentedProvider(inner, requests, duration, zap.NewNop())

	res, err := p.Distance(context.Background(), domain.DistanceRequest{Mode: travel.Walking})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DistanceMeters != 1200 {
		t.Errorf("meters = %d", res.DistanceMeters)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("walking", "OK")); v != 1 {
		t.Errorf("requests{walking,OK} = %v", v)
	}
	if testutil.CollectAndCount(duration) != 1 {
		t.Error("expected one duration series")
	}
}

func TestInstrumentedProvider_NonOKStatusIsNotAnError(t *testing.T) {
	requests, _ := newCollectors()
	inner := &stubProvider{res: domain.DistanceResult{Status: "ZERO_RESULTS"}}
	p := NewInstrumentedProvider(inner, requests, nil, zap.NewNop())

	res, err := p.Distance(context.Background(), domain.DistanceRequest{Mode: travel.Driving})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != "ZERO_RESULTS" {
		t.Errorf("status = %q", res.Status)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("driving", "ZERO_RESULTS")); v != 1 {
		t.Errorf("requests{driving,ZERO_RESULTS} = %v", v)
	}
}

func TestInstrumentedProvider_Error(t *testing.T) {
	requests, _ := newCollectors()
	cause := errors.New("timeout")
	p := NewInstrumentedProvider(&stubProvider{err: cause}, requests, nil, zap.NewNop())

	_, err := p.Distance(context.Background(), domain.DistanceRequest{Mode: travel.Transit})
	if !errors.Is(err, cause) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
	if v := testutil.ToFloat64(requests.WithLabelValues("transit", "error")); v != 1 {
		t.Errorf("requests{transit,error} = %v", v)
	}
}

func TestInstrumentedProvider_NilCollectors(t *testing.T) {
	p := NewInstrumentedProvider(&stubProvider{err: errors.New("x")}, nil, nil, zap.NewNop())
	if _, err := p.Distance(context.Background(), domain.DistanceRequest{}); err == nil {
		t.Fatal("expected error")
	}
}
