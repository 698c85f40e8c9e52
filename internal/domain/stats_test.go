package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	freezeClock(t)
	now := frozenNow.UnixMilli()

	reportAt := func(ageMs int64) Report {
		r := validReport()
		r.Timestamp = now - ageMs
		return r
	}

	t.Run("rolling 24h window", func(t *testing.T) {
		reports := []Report{
			reportAt(1 * hourMillis),
			reportAt(23 * hourMillis),
			reportAt(25 * hourMillis),
			reportAt(48 * hourMillis),
		}

		s := ComputeStats(reports)
		assert.Equal(t, 4, s.Total)
		assert.Equal(t, 2, s.Last24)
	})

	t.Run("empty list", func(t *testing.T) {
		assert.Equal(t, Stats{}, ComputeStats(nil))
	})

	t.Run("exactly 24h old falls outside the window", func(t *testing.T) {
		s := ComputeStats([]Report{reportAt(dayMillis)})
		assert.Equal(t, 1, s.Total)
		assert.Equal(t, 0, s.Last24)
	})
}
