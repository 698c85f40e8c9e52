// Package compose builds candidate reports from form input and a captured
// placement. It never touches the store; the synchronizer owns submission.
package compose

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget"
)

// ErrNoPlacement means the form was submitted without a captured map
// location. Rejected before any store call is attempted.
var ErrNoPlacement = errors.New("no placement captured")

// Form carries the composition form fields.
type Form struct {
	Category    domain.Category `json:"category"`
	Severity    domain.Severity `json:"severity"`
	Description string          `json:"description"`
	Anonymous   bool            `json:"anonymous"`
}

// Build validates the form against the captured placement and produces a
// candidate report stamped with the current instant. The report has no ID
// until the store assigns one.
func Build(form Form, placement *mapwidget.LatLng) (domain.Report, error) {
	if placement == nil {
		return domain.Report{}, ErrNoPlacement
	}

	r := domain.Report{
		Lat:         placement.Lat,
		Lng:         placement.Lng,
		Category:    form.Category,
		Severity:    form.Severity,
		Description: form.Description,
		Anonymous:   form.Anonymous,
		Timestamp:   domain.NowMillis(),
	}
	if err := r.Validate(); err != nil {
		return domain.Report{}, fmt.Errorf("invalid report: %w", err)
	}
	return r, nil
}
