// Package render owns the deterministic mapping from (report list, active
// category filter) to the set of visible markers, and the add-report
// placement flow.
package render

import (
	"log/slog"
	"sync"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget"
	"github.com/couchcryptid/safespot-sync/internal/observability"
)

// FilterAll is the wildcard category filter: every report renders.
const FilterAll = domain.Category("all")

const (
	reportMarkerSize      = 30
	provisionalMarkerSize = 40
	userMarkerSize        = 30

	armedPrompt         = "Click anywhere on the map to place your report"
	locationUnavailable = "Location not available. Please enable location access."
)

// Hooks are the upward-facing UI callbacks. Any of them may be nil.
type Hooks struct {
	// Notify surfaces a user-visible notice (prompt, confirmation).
	Notify func(msg string)
	// OpenDetail opens the full detail view for a clicked marker.
	OpenDetail func(r domain.Report)
	// OpenForm opens the composition form bound to the captured location.
	OpenForm func(pos mapwidget.LatLng)
	// CloseForm closes the composition form.
	CloseForm func()
}

// Renderer drives the map widget. All state is mutated under one mutex;
// events (snapshot refresh, clicks, form actions) serialize through it.
type Renderer struct {
	mapw    mapwidget.Map
	hooks   Hooks
	logger  *slog.Logger
	metrics *observability.Metrics

	mu          sync.Mutex
	mode        Mode
	filter      domain.Category
	lastReports []domain.Report
	markers     []mapwidget.Marker
	provisional mapwidget.Marker
	placement   mapwidget.LatLng
	userMarker  mapwidget.Marker
	userPos     *mapwidget.LatLng
}

// New creates a renderer on the given widget and registers the map click
// handler. The filter starts at the wildcard.
func New(mapw mapwidget.Map, hooks Hooks, logger *slog.Logger, metrics *observability.Metrics) *Renderer {
	r := &Renderer{
		mapw:    mapw,
		hooks:   hooks,
		logger:  logger,
		metrics: metrics,
		filter:  FilterAll,
	}
	mapw.OnClick(r.handleMapClick)
	return r
}

// Refresh replaces the rendered report list and runs a full render pass.
func (r *Renderer) Refresh(reports []domain.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastReports = reports
	r.renderLocked()
}

// SetFilter changes the active category filter and re-renders the last
// known list. An empty filter means the wildcard.
func (r *Renderer) SetFilter(filter domain.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if filter == "" {
		filter = FilterAll
	}
	r.filter = filter
	r.renderLocked()
}

// Filter returns the active category filter.
func (r *Renderer) Filter() domain.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter
}

// renderLocked destroys every report marker and recreates exactly one per
// report passing the filter. Destroy-and-recreate keeps the pass
// idempotent: no marker from a previous pass can leak.
func (r *Renderer) renderLocked() {
	for _, m := range r.markers {
		r.mapw.RemoveMarker(m)
	}
	r.markers = r.markers[:0]

	for _, report := range r.lastReports {
		if r.filter != FilterAll && report.Category != r.filter {
			continue
		}

		m := r.mapw.AddMarker(
			mapwidget.LatLng{Lat: report.Lat, Lng: report.Lng},
			mapwidget.IconSpec{
				Glyph: report.Category.Glyph(),
				Color: report.Category.Color(),
				Size:  reportMarkerSize,
			},
		)
		m.BindPopup(domain.PopupHTML(report))

		m.OnClick(func() {
			if r.hooks.OpenDetail != nil {
				r.hooks.OpenDetail(report)
			}
		})

		r.markers = append(r.markers, m)
	}

	r.metrics.RenderPasses.Inc()
	r.metrics.MarkersRendered.Set(float64(len(r.markers)))
	r.logger.Debug("render pass complete",
		"reports", len(r.lastReports), "markers", len(r.markers), "filter", r.filter)
}

// Mode returns the current add-report flow state.
func (r *Renderer) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Arm starts the add-report flow. Only effective from Idle; while Placing
// the form owns the interaction and the request is ignored.
func (r *Renderer) Arm() {
	r.mu.Lock()
	if r.mode != ModeIdle {
		r.mu.Unlock()
		return
	}
	r.mode = ModeArmed
	r.mu.Unlock()

	r.notify(armedPrompt)
}

// handleMapClick is the map-background click handler. A click while Idle
// is a no-op; while Armed it captures the placement; while Placing the
// open form owns the interaction.
func (r *Renderer) handleMapClick(pos mapwidget.LatLng) {
	r.mu.Lock()
	if r.mode != ModeArmed {
		r.mu.Unlock()
		return
	}

	if r.provisional != nil {
		r.mapw.RemoveMarker(r.provisional)
	}
	r.provisional = r.mapw.AddMarker(pos, mapwidget.IconSpec{
		Glyph: "📍",
		Size:  provisionalMarkerSize,
	})
	r.placement = pos
	r.mode = ModePlacing
	r.mu.Unlock()

	if r.hooks.OpenForm != nil {
		r.hooks.OpenForm(pos)
	}
}

// Placement returns the captured coordinates while Placing.
func (r *Renderer) Placement() (mapwidget.LatLng, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode != ModePlacing {
		return mapwidget.LatLng{}, false
	}
	return r.placement, true
}

// Dismiss ends the flow without a submission: cancel, form close, and
// click-outside all land here. The provisional marker is removed and the
// captured coordinates discarded.
func (r *Renderer) Dismiss() {
	r.resetFlow()
	if r.hooks.CloseForm != nil {
		r.hooks.CloseForm()
	}
}

// Complete ends the flow after a submission attempt and surfaces the
// outcome notice. The now-persisted report renders as a normal marker
// when the next snapshot arrives.
func (r *Renderer) Complete(notice string) {
	r.resetFlow()
	if r.hooks.CloseForm != nil {
		r.hooks.CloseForm()
	}
	r.notify(notice)
}

// resetFlow returns the state machine to Idle from any state, cleaning up
// the provisional marker. Terminal events must never leave one orphaned.
func (r *Renderer) resetFlow() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.provisional != nil {
		r.mapw.RemoveMarker(r.provisional)
		r.provisional = nil
	}
	r.placement = mapwidget.LatLng{}
	r.mode = ModeIdle
}

// SetUserLocation drops the "You are here" pin and recenters on it.
func (r *Renderer) SetUserLocation(pos mapwidget.LatLng) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.userMarker != nil {
		r.mapw.RemoveMarker(r.userMarker)
	}
	r.userMarker = r.mapw.AddMarker(pos, mapwidget.IconSpec{Glyph: "📍", Size: userMarkerSize})
	r.userMarker.BindPopup("You are here")
	r.userPos = &pos
	r.mapw.SetView(pos, 14)
}

// RecenterUser pans back to the user's position, if one was acquired.
func (r *Renderer) RecenterUser() bool {
	r.mu.Lock()
	pos := r.userPos
	r.mu.Unlock()

	if pos == nil {
		r.notify(locationUnavailable)
		return false
	}
	r.mapw.SetView(*pos, 15)
	return true
}

func (r *Renderer) notify(msg string) {
	if r.hooks.Notify != nil {
		r.hooks.Notify(msg)
	}
}
