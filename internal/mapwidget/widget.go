// Package mapwidget is the boundary to the slippy-map widget. The real
// widget lives in the browser; this side only needs the marker and view
// primitives the renderer drives. Implementations must be safe for use
// from a single event goroutine; they are not required to be reentrant.
package mapwidget

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IconSpec describes a marker's visual: a glyph rendered at Size pixels
// with Color as its accent.
type IconSpec struct {
	Glyph string `json:"glyph"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Marker is a handle to one placed marker.
type Marker interface {
	// BindPopup attaches summary HTML shown when the marker is opened.
	BindPopup(html string)
	// OnClick registers the marker click handler.
	OnClick(fn func())
	// Position returns where the marker sits.
	Position() LatLng
}

// Map is a handle to the widget itself.
type Map interface {
	// AddTileLayer configures the tile source. Called once at startup.
	AddTileLayer(urlTemplate, attribution string, maxZoom int)
	// AddMarker places a marker and returns its handle.
	AddMarker(pos LatLng, icon IconSpec) Marker
	// RemoveMarker destroys a previously added marker. Unknown handles
	// are ignored.
	RemoveMarker(m Marker)
	// SetView recenters the viewport.
	SetView(pos LatLng, zoom int)
	// OnClick registers the map-background click handler.
	OnClick(fn func(pos LatLng))
}
