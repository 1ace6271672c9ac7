package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizePoints(t *testing.T) {
	cases := map[int64]string{
		0:   "баллов",
		1:   "балл",
		2:   "балла",
		4:   "балла",
		5:   "баллов",
		11:  "баллов",
		12:  "баллов",
		21:  "балл",
		22:  "балла",
		111: "баллов",
		150: "баллов",
		-1:  "балл",
	}
	for n, want := range cases {
		assert.Equal(t, want, PluralizePoints(n), "n=%d", n)
	}
}

func TestFormatDays(t *testing.T) {
	assert.Equal(t, "1 день", FormatDays(1))
	assert.Equal(t, "3 дня", FormatDays(3))
	assert.Equal(t, "90 дней", FormatDays(90))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.0, Round2(3))
	assert.Equal(t, 0.67, Round2(2.0/3.0))
	assert.Equal(t, 16.67, Round2(5.0/3.0*10))
	assert.Equal(t, 0.0, Round2(0))
}

func TestMidnightAndDaysBetween(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	ts := time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC) // 11 марта 05:30 по UTC+7
	m := Midnight(ts, loc)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), m)

	assert.Equal(t, 0, DaysBetween(m, ts, loc))
	assert.Equal(t, 1, DaysBetween(m, m.Add(Day), loc))
	assert.Equal(t, -1, DaysBetween(m, m.Add(-time.Minute), loc))
}

func TestDaysBetweenIgnoresDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata недоступна")
	}
	// 29 марта 2026 - переход на летнее время, сутки длятся 23 часа
	from := time.Date(2026, 3, 28, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 30, 0, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(from, to, loc))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "+150 баллов", FormatPointsAmount(150))
	assert.Equal(t, "-1 балл", FormatPointsAmount(-1))
	assert.Equal(t, "2 350", FormatNumber(2350))
	assert.Equal(t, "1 000 000", FormatNumber(1000000))
	assert.Equal(t, "2,50 кг", FormatKg(2.5))
	assert.Equal(t, "30,00 л", FormatLiters(30))
	assert.Equal(t, "▓▓▓▓▓░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(-5, 10))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", ProgressBar(140, 10))
}
