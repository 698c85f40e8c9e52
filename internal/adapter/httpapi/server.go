// Package httpapi exposes the service surface: health, readiness, and
// metrics endpoints, the report/stats JSON API, a live snapshot stream,
// and the composer flow endpoints that stand in for the browser's UI
// events (add-report button, map click, form submit/cancel).
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/safespot-sync/internal/compose"
	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget/memwidget"
	"github.com/couchcryptid/safespot-sync/internal/observability"
	"github.com/couchcryptid/safespot-sync/internal/render"
	"github.com/couchcryptid/safespot-sync/internal/store"
	"github.com/couchcryptid/safespot-sync/internal/syncer"
)

// User-facing notices mirrored from the original product copy.
const (
	noticeSubmitted    = "Report submitted successfully! Everyone can now see it."
	noticeSavedLocally = "Report saved locally. Will sync when connection is restored."
)

// Server exposes the HTTP surface over the synchronizer/renderer pair.
type Server struct {
	httpServer *http.Server
	sync       *syncer.Synchronizer
	renderer   *render.Renderer
	widget     *memwidget.Widget
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the HTTP server and its routes.
func NewServer(addr string, sy *syncer.Synchronizer, rd *render.Renderer, w *memwidget.Widget, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 60 * time.Second,
			// No WriteTimeout: the snapshot stream is long-lived.
		},
		sync:     sy,
		renderer: rd,
		widget:   w,
		logger:   logger,
		metrics:  metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/reports", s.handleReports)
	mux.HandleFunc("POST /api/reports", s.handleSubmitReport)
	mux.HandleFunc("GET /api/reports/stream", s.handleStream)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)

	mux.HandleFunc("POST /api/compose/arm", s.handleComposeArm)
	mux.HandleFunc("POST /api/compose/place", s.handleComposePlace)
	mux.HandleFunc("POST /api/compose/submit", s.handleComposeSubmit)
	mux.HandleFunc("POST /api/compose/cancel", s.handleComposeCancel)
	mux.HandleFunc("GET /api/filter", s.handleGetFilter)
	mux.HandleFunc("PUT /api/filter", s.handleSetFilter)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("POST /api/view/recenter", s.handleRecenter)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.sync.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type reportsResponse struct {
	Reports  []domain.Report `json:"reports"`
	Degraded bool            `json:"degraded"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	filter := domain.Category(r.URL.Query().Get("category"))

	reports := s.sync.Reports()
	if filter != "" && filter != render.FilterAll {
		filtered := reports[:0]
		for _, rep := range reports {
			if rep.Category == filter {
				filtered = append(filtered, rep)
			}
		}
		reports = filtered
	}
	if reports == nil {
		reports = []domain.Report{}
	}

	writeJSON(w, http.StatusOK, reportsResponse{Reports: reports, Degraded: s.sync.Degraded()})
}

type submitRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	compose.Form
}

// handleSubmitReport is the direct (formless) submit path used by API
// clients that manage their own placement UI.
func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	report, err := compose.Build(req.Form, &mapwidget.LatLng{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.submit(w, r, report)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sync.Stats())
}

type markersResponse struct {
	Markers []memwidget.MarkerView `json:"markers"`
	Mode    string                 `json:"mode"`
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, markersResponse{
		Markers: s.widget.Markers(),
		Mode:    s.renderer.Mode().String(),
	})
}

func (s *Server) handleGetFilter(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"category": string(s.renderer.Filter())})
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category domain.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	s.renderer.SetFilter(req.Category)
	writeJSON(w, http.StatusOK, map[string]string{"category": string(s.renderer.Filter())})
}

type viewResponse struct {
	Center mapwidget.LatLng `json:"center"`
	Zoom   int              `json:"zoom"`
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	center, zoom := s.widget.View()
	writeJSON(w, http.StatusOK, viewResponse{Center: center, Zoom: zoom})
}

// handleRecenter is the "my location" button. Without an acquired user
// position it reports unavailability instead of moving the view.
func (s *Server) handleRecenter(w http.ResponseWriter, _ *http.Request) {
	if !s.renderer.RecenterUser() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "location not available"})
		return
	}
	center, zoom := s.widget.View()
	writeJSON(w, http.StatusOK, viewResponse{Center: center, Zoom: zoom})
}

func (s *Server) handleComposeArm(w http.ResponseWriter, _ *http.Request) {
	s.renderer.Arm()
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.renderer.Mode().String()})
}

// handleComposePlace is the map-click event. It dispatches through the
// widget so the renderer's click handler sees it exactly as a real map
// click; a click while Idle stays a no-op.
func (s *Server) handleComposePlace(w http.ResponseWriter, r *http.Request) {
	var pos mapwidget.LatLng
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	if pos.Lat < -90 || pos.Lat > 90 || pos.Lng < -180 || pos.Lng > 180 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coordinates out of range"})
		return
	}

	s.widget.Click(pos)
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.renderer.Mode().String()})
}

func (s *Server) handleComposeSubmit(w http.ResponseWriter, r *http.Request) {
	var form compose.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	placement, ok := s.renderer.Placement()
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": compose.ErrNoPlacement.Error()})
		return
	}

	report, err := compose.Build(form, &placement)
	if err != nil {
		// Invalid form input keeps the flow in Placing so the user can fix it.
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.submit(w, r, report)
}

// submit persists a report and, when a placement flow is open, closes it.
// Both outcomes are terminal for the flow: the provisional marker is
// removed and the state machine returns to Idle.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, report domain.Report) {
	id, err := s.sync.Submit(r.Context(), report)
	if err != nil {
		s.renderer.Complete(noticeSavedLocally)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error":  store.ErrUnavailable.Error(),
			"notice": noticeSavedLocally,
		})
		return
	}

	s.renderer.Complete(noticeSubmitted)
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     id,
		"notice": noticeSubmitted,
	})
}

func (s *Server) handleComposeCancel(w http.ResponseWriter, _ *http.Request) {
	s.renderer.Dismiss()
	writeJSON(w, http.StatusOK, map[string]string{"mode": s.renderer.Mode().String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
