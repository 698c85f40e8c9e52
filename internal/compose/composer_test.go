package compose

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/safespot-sync/internal/domain"
	"github.com/couchcryptid/safespot-sync/internal/mapwidget"
)

func validForm() Form {
	return Form{
		Category:    domain.CategoryFlooding,
		Severity:    domain.SeverityHigh,
		Description: "Street flooded",
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, time.April, 27, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })

	placement := &mapwidget.LatLng{Lat: 33.5, Lng: -117.8}

	t.Run("stamps placement and current instant", func(t *testing.T) {
		r, err := Build(validForm(), placement)
		require.NoError(t, err)

		assert.Empty(t, r.ID, "ID is assigned by the store, not the composer")
		assert.Equal(t, 33.5, r.Lat)
		assert.Equal(t, -117.8, r.Lng)
		assert.Equal(t, now.UnixMilli(), r.Timestamp)
		assert.Equal(t, domain.CategoryFlooding, r.Category)
	})

	t.Run("no placement is rejected before any store call", func(t *testing.T) {
		_, err := Build(validForm(), nil)
		assert.ErrorIs(t, err, ErrNoPlacement)
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		f := validForm()
		f.Description = ""
		_, err := Build(f, placement)
		assert.ErrorIs(t, err, domain.ErrEmptyDescription)
	})

	t.Run("unknown category is rejected", func(t *testing.T) {
		f := validForm()
		f.Category = "potholes"
		_, err := Build(f, placement)
		assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	})
}
