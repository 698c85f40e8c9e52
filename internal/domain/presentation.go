package domain

import (
	"fmt"
	"html"
	"strings"
)

// Badge returns the severity badge text.
func (s Severity) Badge() string {
	return strings.ToUpper(string(s))
}

// PopupHTML renders the marker popup summary: glyph, category name,
// severity badge, description, and relative age. Description is escaped;
// everything else comes from fixed tables.
func PopupHTML(r Report) string {
	return fmt.Sprintf(`<div class="popup-content">
	<h3>%s %s</h3>
	<span class="popup-badge severity-%s">%s</span>
	<p><strong>%s</strong></p>
	<p class="popup-time">%s</p>
</div>`,
		r.Category.Glyph(), html.EscapeString(r.Category.DisplayName()),
		r.Severity, r.Severity.Badge(),
		html.EscapeString(r.Description),
		TimeAgo(r.Timestamp),
	)
}

// DetailHTML renders the full detail view opened by a marker click.
// Coordinates are rounded to 4 decimal digits, roughly 11 m of precision,
// enough to find the spot without implying survey accuracy.
func DetailHTML(r Report) string {
	return fmt.Sprintf(`<div class="report-detail">
	<h3>%s %s</h3>
	<div class="detail-row"><span class="detail-label">Severity:</span> <span class="popup-badge severity-%s">%s</span></div>
	<div class="detail-row"><span class="detail-label">Description:</span> <span class="detail-value">%s</span></div>
	<div class="detail-row"><span class="detail-label">Reported:</span> <span class="detail-value">%s</span></div>
	<div class="detail-row"><span class="detail-label">Location:</span> <span class="detail-value">%.4f, %.4f</span></div>
</div>`,
		r.Category.Glyph(), html.EscapeString(r.Category.DisplayName()),
		r.Severity, r.Severity.Badge(),
		html.EscapeString(r.Description),
		TimeAgo(r.Timestamp),
		r.Lat, r.Lng,
	)
}
