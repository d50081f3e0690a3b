package fine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// day returns a fixed base date shifted by n days. The base is a
// Monday so weekend-aware expectations are easy to reason about.
func day(n int) time.Time {
	base := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC) // Monday
	return base.AddDate(0, 0, n)
}

func TestOnTimeReturnCostsNothing(t *testing.T) {
	strategies := map[string]Strategy{
		"simple":      Simple{},
		"progressive": Progressive{},
		"weekend":     WeekendAware{},
	}
	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			assert.Zero(t, s.Calculate(day(0), day(0), 50))     // exactly on time
			assert.Zero(t, s.Calculate(day(5), day(2), 50))     // early
			assert.Zero(t, s.Calculate(day(0), day(-1), 50))    // well early
		})
	}
}

func TestSimpleChargesLinearly(t *testing.T) {
	s := Simple{}
	assert.Equal(t, 250.0, s.Calculate(day(0), day(5), 50))
	assert.Equal(t, 2000.0, s.Calculate(day(0), day(40), 50))
}

func TestProgressiveTiers(t *testing.T) {
	s := Progressive{}

	// 5 days overdue: base tier, 5 * 50 * 1.0.
	assert.Equal(t, 250.0, s.Calculate(day(0), day(5), 50))

	// 20 days overdue: middle tier applies to the whole span, 20 * 50 * 1.5.
	assert.Equal(t, 1500.0, s.Calculate(day(0), day(20), 50))

	// 40 days overdue: top tier, 40 * 50 * 2.0.
	assert.Equal(t, 4000.0, s.Calculate(day(0), day(40), 50))

	// Tier boundaries.
	assert.Equal(t, 350.0, s.Calculate(day(0), day(7), 50))   // 7 * 50 * 1.0
	assert.Equal(t, 600.0, s.Calculate(day(0), day(8), 50))   // 8 * 50 * 1.5
	assert.Equal(t, 2250.0, s.Calculate(day(0), day(30), 50)) // 30 * 50 * 1.5
	assert.Equal(t, 3100.0, s.Calculate(day(0), day(31), 50)) // 31 * 50 * 2.0
}

func TestProgressiveTruncatesPartialDays(t *testing.T) {
	s := Progressive{}
	// 5 days minus one hour is only 4 whole days overdue.
	actual := day(5).Add(-time.Hour)
	assert.Equal(t, 200.0, s.Calculate(day(0), actual, 50))
}

func TestWeekendAwareSkipsWeekends(t *testing.T) {
	s := WeekendAware{}
	// Monday noon to next Monday noon: 7 day-steps, two fall on the weekend.
	assert.Equal(t, 250.0, s.Calculate(day(0), day(7), 50))
	// Monday to Friday: all business days.
	assert.Equal(t, 200.0, s.Calculate(day(0), day(4), 50))
}

func TestStrategiesArePure(t *testing.T) {
	for _, s := range []Strategy{Simple{}, Progressive{}, WeekendAware{}} {
		first := s.Calculate(day(0), day(20), 50)
		second := s.Calculate(day(0), day(20), 50)
		assert.Equal(t, first, second)
	}
}

func TestByName(t *testing.T) {
	s, ok := ByName("progressive")
	require.True(t, ok)
	assert.IsType(t, Progressive{}, s)

	_, ok = ByName("calendar")
	assert.False(t, ok)
}
