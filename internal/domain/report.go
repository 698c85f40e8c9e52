package domain

import (
	"errors"
	"fmt"
)

// Category classifies a hazard report. The zero value is not valid.
type Category string

const (
	CategoryLighting       Category = "lighting"
	CategoryFlooding       Category = "flooding"
	CategoryUnsafeCrossing Category = "unsafe-crossing"
	CategoryDebris         Category = "debris"
	CategoryExtremeWeather Category = "extreme-weather"
	CategoryOther          Category = "other"
)

// Severity is display styling only; no computation depends on it.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Report is a single hazard pin. ID is empty until the store assigns one.
// Timestamp is epoch milliseconds, set client-side at composition time and
// preserved verbatim through the storage round trip.
type Report struct {
	ID          string   `json:"id,omitempty"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Anonymous   bool     `json:"anonymous"`
	Timestamp   int64    `json:"timestamp"`
}

// Categories lists the valid category keys in display order.
func Categories() []Category {
	return []Category{
		CategoryLighting,
		CategoryFlooding,
		CategoryUnsafeCrossing,
		CategoryDebris,
		CategoryExtremeWeather,
		CategoryOther,
	}
}

var categoryGlyphs = map[Category]string{
	CategoryLighting:       "💡",
	CategoryFlooding:       "🌊",
	CategoryUnsafeCrossing: "⚠️",
	CategoryDebris:         "🚧",
	CategoryExtremeWeather: "🌡️",
	CategoryOther:          "📌",
}

var categoryColors = map[Category]string{
	CategoryLighting:       "#ffd54f",
	CategoryFlooding:       "#4fc3f7",
	CategoryUnsafeCrossing: "#ff5252",
	CategoryDebris:         "#ff9800",
	CategoryExtremeWeather: "#9c27b0",
	CategoryOther:          "#78909c",
}

var categoryNames = map[Category]string{
	CategoryLighting:       "Broken Lighting",
	CategoryFlooding:       "Flooding",
	CategoryUnsafeCrossing: "Unsafe Crossing",
	CategoryDebris:         "Debris/Obstruction",
	CategoryExtremeWeather: "Extreme Weather",
	CategoryOther:          "Other",
}

// Glyph returns the marker glyph for c, falling back to the pin glyph for
// unrecognized keys so rendering degrades instead of crashing.
func (c Category) Glyph() string {
	if g, ok := categoryGlyphs[c]; ok {
		return g
	}
	return categoryGlyphs[CategoryOther]
}

// Color returns the marker accent color for c, with a neutral fallback.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[CategoryOther]
}

// DisplayName returns the human-readable category label. Unrecognized
// keys render as their raw string.
func (c Category) DisplayName() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

// Valid reports whether c is one of the fixed category keys.
func (c Category) Valid() bool {
	_, ok := categoryGlyphs[c]
	return ok
}

// Valid reports whether s is one of the fixed severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

var (
	ErrInvalidCoordinates = errors.New("coordinates out of range")
	ErrInvalidCategory    = errors.New("unknown category")
	ErrInvalidSeverity    = errors.New("unknown severity")
	ErrEmptyDescription   = errors.New("description is empty")
)

// Validate checks a candidate report before it is handed to the store.
// Rendering of already-persisted reports does not validate; unknown
// categories from old data degrade via the table fallbacks instead.
func (r Report) Validate() error {
	if r.Lat < -90 || r.Lat > 90 || r.Lng < -180 || r.Lng > 180 {
		return fmt.Errorf("%w: %f,%f", ErrInvalidCoordinates, r.Lat, r.Lng)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, r.Category)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, r.Severity)
	}
	if r.Description == "" {
		return ErrEmptyDescription
	}
	return nil
}
