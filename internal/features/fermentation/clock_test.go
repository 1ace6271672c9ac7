package fermentation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
)

func TestClockInactive(t *testing.T) {
	c := NewClock(nil)
	now := time.Now()

	assert.False(t, c.IsActive())
	assert.Equal(t, TotalDays, c.DaysRemaining(now))
	assert.Equal(t, 0, c.DaysCompleted(now))
	assert.Equal(t, 0, c.ProgressPercent(now))
	_, ok := c.Harvest()
	assert.False(t, ok)
}

func TestClockAtStart(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := ClockFromStart(&start)

	require.True(t, c.IsActive())
	assert.Equal(t, 90, c.DaysRemaining(start))
	assert.Equal(t, 0, c.DaysCompleted(start))
	assert.Equal(t, 0, c.ProgressPercent(start))
}

func TestClockPartialDayRoundsUp(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := ClockFromStart(&start)

	now := start.Add(time.Hour)
	assert.Equal(t, 90, c.DaysRemaining(now))

	now = start.Add(common.Day + time.Minute)
	assert.Equal(t, 89, c.DaysRemaining(now))
	assert.Equal(t, 1, c.DaysCompleted(now))
}

func TestClockAfterHarvest(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := ClockFromStart(&start)
	harvest, _ := c.Harvest()

	for _, now := range []time.Time{harvest, harvest.Add(time.Second), harvest.Add(400 * common.Day)} {
		assert.Equal(t, 0, c.DaysRemaining(now))
		assert.Equal(t, 90, c.DaysCompleted(now))
		assert.Equal(t, 100, c.ProgressPercent(now))
	}
}

func TestClockBeforeStartClamps(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := ClockFromStart(&start)

	now := start.Add(-10 * common.Day)
	assert.Equal(t, 100, c.DaysRemaining(now))
	assert.Equal(t, 0, c.DaysCompleted(now))
	assert.Equal(t, 0, c.ProgressPercent(now))
}

func TestClockInvariants(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := ClockFromStart(&start)

	prev := -1
	for h := 0; h <= 24*95; h += 7 {
		now := start.Add(time.Duration(h) * time.Hour)
		remaining := c.DaysRemaining(now)
		completed := c.DaysCompleted(now)
		percent := c.ProgressPercent(now)

		assert.GreaterOrEqual(t, remaining, 0)
		assert.Equal(t, TotalDays, remaining+completed, "час %d", h)
		assert.GreaterOrEqual(t, percent, prev, "прогресс не должен убывать")
		prev = percent
	}
}

func TestNewClockCopiesHarvest(t *testing.T) {
	h := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	c := NewClock(&h)
	h = h.Add(1000 * time.Hour)

	got, ok := c.Harvest()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), got)
}
