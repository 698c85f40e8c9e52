package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/safespot-sync/internal/domain"
)

func TestDocConversion_RoundTrip(t *testing.T) {
	r := domain.Report{
		Lat:         33.5,
		Lng:         -117.8,
		Category:    domain.CategoryFlooding,
		Severity:    domain.SeverityHigh,
		Description: "Street flooded",
		Anonymous:   false,
		Timestamp:   1714140123456,
	}

	got := docToReport("doc-1", reportToDoc(r))

	r.ID = "doc-1"
	assert.Equal(t, r, got, "timestamp must survive the native-type round trip verbatim")
}

func TestReportToDoc_TimestampIsUTC(t *testing.T) {
	d := reportToDoc(domain.Report{Timestamp: 1714140123456})

	assert.Equal(t, time.UTC, d.Timestamp.Location())
	assert.Equal(t, int64(1714140123456), d.Timestamp.UnixMilli())
}

func TestDocToReport_UnknownCategoryPreserved(t *testing.T) {
	// Old documents may carry categories this build does not know.
	// The raw key passes through; rendering degrades via table fallbacks.
	got := docToReport("doc-2", reportDoc{Category: "sinkhole", Timestamp: time.UnixMilli(0)})

	assert.Equal(t, domain.Category("sinkhole"), got.Category)
	assert.False(t, got.Category.Valid())
}
