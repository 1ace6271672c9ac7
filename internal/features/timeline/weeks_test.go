package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, DayRoutine, KindOf(1))
	assert.Equal(t, DayGasRelease, KindOf(7))
	assert.Equal(t, DayGasRelease, KindOf(14))
	assert.Equal(t, DayPhoto, KindOf(30))
	assert.Equal(t, DayPhoto, KindOf(60))
	assert.Equal(t, DayPhoto, KindOf(90))
	assert.Equal(t, "сброс газа", DayGasRelease.String())
}

func TestWeeks(t *testing.T) {
	weeks := Weeks()
	require.Len(t, weeks, 13)

	total := 0
	for i, w := range weeks {
		assert.Equal(t, i+1, w.Number)
		assert.Len(t, w.Kinds, len(w.Days))
		total += len(w.Days)
	}
	assert.Equal(t, 90, total)

	last := weeks[12]
	assert.Equal(t, 85, last.From)
	assert.Equal(t, 90, last.To)
	assert.Equal(t, 3, last.Month)
	assert.Equal(t, DayPhoto, last.Kinds[len(last.Kinds)-1])

	assert.Equal(t, 2, weeks[4].Month)
}

func TestWeekOf(t *testing.T) {
	_, ok := WeekOf(0)
	assert.False(t, ok)
	_, ok = WeekOf(14)
	assert.False(t, ok)

	assert.Equal(t, 1, WeekOfDay(1))
	assert.Equal(t, 2, WeekOfDay(8))
	assert.Equal(t, 13, WeekOfDay(90))
}

func TestWeekOfDayBounds(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{day: -3, want: 1},
		{day: 0, want: 1},
		{day: 7, want: 1},
		{day: 84, want: 12},
		{day: 85, want: 13},
		{day: 91, want: 13},
		{day: 200, want: 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WeekOfDay(tt.day), "day %d", tt.day)
	}
}
