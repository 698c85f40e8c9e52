// Package memwidget is a headless in-memory mapwidget.Map. It backs the
// HTTP marker view (the server-side mirror of what a browser would draw)
// and every renderer test. Click dispatch is synchronous: Click and
// ClickMarker invoke the registered handlers before returning.
package memwidget

import (
	"sync"

	"github.com/couchcryptid/safespot-sync/internal/mapwidget"
)

// MarkerView is the externally visible state of one marker.
type MarkerView struct {
	Position mapwidget.LatLng   `json:"position"`
	Icon     mapwidget.IconSpec `json:"icon"`
	Popup    string             `json:"popup,omitempty"`
}

// Widget implements mapwidget.Map in memory.
type Widget struct {
	mu      sync.Mutex
	seq     int
	markers map[int]*marker
	order   []int
	center  mapwidget.LatLng
	zoom    int
	tileURL string
	onClick func(mapwidget.LatLng)
}

type marker struct {
	id      int
	w       *Widget
	pos     mapwidget.LatLng
	icon    mapwidget.IconSpec
	popup   string
	onClick func()
}

// New creates an empty widget centered on pos.
func New(center mapwidget.LatLng, zoom int) *Widget {
	return &Widget{
		markers: make(map[int]*marker),
		center:  center,
		zoom:    zoom,
	}
}

func (w *Widget) AddTileLayer(urlTemplate, _ string, _ int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tileURL = urlTemplate
}

func (w *Widget) AddMarker(pos mapwidget.LatLng, icon mapwidget.IconSpec) mapwidget.Marker {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	m := &marker{id: w.seq, w: w, pos: pos, icon: icon}
	w.markers[m.id] = m
	w.order = append(w.order, m.id)
	return m
}

func (w *Widget) RemoveMarker(mk mapwidget.Marker) {
	m, ok := mk.(*marker)
	if !ok || m == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.markers[m.id]; !exists {
		return
	}
	delete(w.markers, m.id)
	for i, id := range w.order {
		if id == m.id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

func (w *Widget) SetView(pos mapwidget.LatLng, zoom int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.center = pos
	w.zoom = zoom
}

func (w *Widget) OnClick(fn func(pos mapwidget.LatLng)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onClick = fn
}

func (m *marker) BindPopup(html string) {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	m.popup = html
}

func (m *marker) OnClick(fn func()) {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	m.onClick = fn
}

func (m *marker) Position() mapwidget.LatLng {
	return m.pos
}

// Click simulates a map-background click at pos.
func (w *Widget) Click(pos mapwidget.LatLng) {
	w.mu.Lock()
	fn := w.onClick
	w.mu.Unlock()

	if fn != nil {
		fn(pos)
	}
}

// ClickMarker simulates a click on the i-th marker in insertion order.
func (w *Widget) ClickMarker(i int) {
	w.mu.Lock()
	var fn func()
	if i >= 0 && i < len(w.order) {
		fn = w.markers[w.order[i]].onClick
	}
	w.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Markers returns the current marker set in insertion order.
func (w *Widget) Markers() []MarkerView {
	w.mu.Lock()
	defer w.mu.Unlock()

	views := make([]MarkerView, 0, len(w.order))
	for _, id := range w.order {
		m := w.markers[id]
		views = append(views, MarkerView{Position: m.pos, Icon: m.icon, Popup: m.popup})
	}
	return views
}

// MarkerCount returns the number of markers currently placed.
func (w *Widget) MarkerCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.markers)
}

// View returns the current center and zoom.
func (w *Widget) View() (mapwidget.LatLng, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.center, w.zoom
}
