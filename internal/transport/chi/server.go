package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storelocator/internal/domain"
	"github.com/kailas-cloud/storelocator/internal/domain/store"
	"github.com/kailas-cloud/storelocator/internal/metrics"
	snaphub "github.com/kailas-cloud/storelocator/internal/repository/snapshot"
	healthuc "github.com/kailas-cloud/storelocator/internal/usecase/health"
	"github.com/kailas-cloud/storelocator/internal/usecase/marker"
	sessionuc "github.com/kailas-cloud/storelocator/internal/usecase/session"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP shell around the search session controller.
type Server struct {
	sessions      *sessionuc.Service
	markers       *marker.Engine
	hub           *snaphub.Hub
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	sessions *sessionuc.Service,
	markers *marker.Engine,
	hub *snaphub.Hub,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		sessions: sessions,
		markers:  markers,
		hub:      hub,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrStoreNotFound, http.StatusNotFound, codeStoreNotFound),
		sentinelHandler(domain.ErrUnknownFilter, http.StatusNotFound, codeFilterNotFound),
		sentinelHandler(domain.ErrInvalidLocation, http.StatusUnprocessableEntity, codeInvalidLocation),
		sentinelHandler(domain.ErrGeolocationDenied, http.StatusForbidden, codeGeolocationDenied),
		sentinelHandler(domain.ErrGeolocationUnavailable,
			http.StatusServiceUnavailable, codeGeolocationUnavailable),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, codeProviderUnavailable),
		sentinelHandler(domain.ErrNoGeocodingResult, http.StatusUnprocessableEntity, codeNoGeocodingResult),
	}
	return s
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.Get("/healthz", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiKeys))
		r.Post("/location", s.SetLocation)
		r.Post("/filters/{tag}", s.ToggleFilter)
		r.Post("/stores/{id}/select", s.SelectStore)
		r.Delete("/selection", s.Deselect)
		r.Post("/reset", s.Reset)
		r.Get("/state", s.GetState)
		r.Get("/markers", s.GetMarkers)
		r.Get("/events", s.StreamEvents)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	return r
}

// SetLocation handles POST /v1/location. It blocks until the session ends.
// The session outlives a disconnecting client: superseded work is discarded
// at commit time, never cancelled.
func (s *Server) SetLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	res, err := s.sessions.OnLocationInput(context.WithoutCancel(r.Context()), in, req.Radius)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	resp := snapshotToResponse(res.Snapshot)
	resp.Outcome = string(res.Outcome)
	writeJSON(w, http.StatusOK, resp)
}

// ToggleFilter handles POST /v1/filters/{tag}.
func (s *Server) ToggleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.On == nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "on is required")
		return
	}

	snap, err := s.sessions.OnFilterToggle(chi.URLParam(r, "tag"), *req.On)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap))
}

// SelectStore handles POST /v1/stores/{id}/select.
func (s *Server) SelectStore(w http.ResponseWriter, r *http.Request) {
	id, err := store.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	snap, err := s.sessions.OnStoreSelect(id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToResponse(snap))
}

// Deselect handles DELETE /v1/selection.
func (s *Server) Deselect(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotToResponse(s.sessions.OnDeselect()))
}

// Reset handles POST /v1/reset.
func (s *Server) Reset(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotToResponse(s.sessions.OnReset()))
}

// GetState handles GET /v1/state.
func (s *Server) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, snapshotToResponse(s.hub.Latest()))
}

// GetMarkers handles GET /v1/markers.
func (s *Server) GetMarkers(w http.ResponseWriter, _ *http.Request) {
	resp := markersResponse{Markers: s.markers.Markers()}
	if id := s.markers.Selected(); id != 0 {
		resp.Selected = &id
	}
	writeJSON(w, http.StatusOK, resp)
}

// StreamEvents handles GET /v1/events: a server-sent event per published
// snapshot, starting with the latest one.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	ch, cancel := s.hub.Subscribe(8)
	defer cancel()
	defer metrics.TrackStream()()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	send := func(v stateResponse) bool {
		data, err := json.Marshal(v)
		if err != nil {
			s.logger.Error("Failed to encode snapshot", zap.Error(err))
			return false
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", v.Version, data); err != nil {
			return false
		}
		return rc.Flush() == nil
	}

	if !send(snapshotToResponse(s.hub.Latest())) {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-ch:
			if !ok || !send(snapshotToResponse(snap)) {
				return
			}
		}
	}
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrStoreNotFound,
		domain.ErrUnknownFilter,
		domain.ErrInvalidLocation,
		domain.ErrGeolocationDenied,
		domain.ErrGeolocationUnavailable,
		domain.ErrProviderUnavailable,
		domain.ErrNoGeocodingResult,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
