package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
)

func allChecked() Checkins {
	c := make(Checkins, TotalDays)
	for d := 1; d <= TotalDays; d++ {
		c[d] = Checkin{Day: d, Checked: true}
	}
	return c
}

func allPhotos() Photos {
	return Photos{
		1: {Month: 1, Ref: "p1"},
		2: {Month: 2, Ref: "p2"},
		3: {Month: 3, Ref: "p3"},
	}
}

func TestStartDateAndCurrentDay(t *testing.T) {
	loc := time.UTC
	started := time.Date(2026, 2, 1, 15, 30, 0, 0, loc)
	harvest := started.Add(90 * common.Day)

	start := StartDate(harvest, loc)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, loc), start)

	assert.Equal(t, 0, CurrentDayIndex(start, start.Add(-time.Minute), loc))
	assert.Equal(t, 1, CurrentDayIndex(start, started, loc))
	assert.Equal(t, 1, CurrentDayIndex(start, start.Add(23*time.Hour+59*time.Minute), loc))
	assert.Equal(t, 2, CurrentDayIndex(start, start.Add(common.Day), loc))
	assert.Equal(t, 90, CurrentDayIndex(start, start.Add(89*common.Day), loc))
	assert.Equal(t, 90, CurrentDayIndex(start, start.Add(500*common.Day), loc))
}

func TestCurrentDayAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata недоступна")
	}
	start := time.Date(2026, 3, 20, 0, 0, 0, 0, loc)
	// 29 марта переход на летнее время; 10 апреля в 00:30 - 22-й день
	now := time.Date(2026, 4, 10, 0, 30, 0, 0, loc)
	assert.Equal(t, 22, CurrentDayIndex(start, now, loc))
}

func TestIsDayUnlocked(t *testing.T) {
	current := 10
	for d := 1; d <= TotalDays; d++ {
		assert.Equal(t, d <= current, IsDayUnlocked(d, current), "день %d", d)
	}
	assert.False(t, IsDayUnlocked(1, 0))
	assert.False(t, IsDayUnlocked(0, 5))
}

func TestMonthOfAndRange(t *testing.T) {
	assert.Equal(t, 1, MonthOf(1))
	assert.Equal(t, 1, MonthOf(30))
	assert.Equal(t, 2, MonthOf(31))
	assert.Equal(t, 2, MonthOf(60))
	assert.Equal(t, 3, MonthOf(61))
	assert.Equal(t, 3, MonthOf(90))
	assert.Equal(t, 3, MonthOf(120))

	from, to := MonthRange(1)
	assert.Equal(t, [2]int{1, 30}, [2]int{from, to})
	from, to = MonthRange(3)
	assert.Equal(t, [2]int{61, 90}, [2]int{from, to})
}

func TestDominantMonth(t *testing.T) {
	assert.Equal(t, 1, DominantMonth(1, 7))
	assert.Equal(t, 2, DominantMonth(29, 35))
	assert.Equal(t, 1, DominantMonth(27, 33))
	assert.Equal(t, 3, DominantMonth(85, 90))
	// равное пересечение: побеждает более ранний месяц
	assert.Equal(t, 1, DominantMonth(28, 33))
	// окно вне таймлайна
	assert.Equal(t, 1, DominantMonth(100, 107))
}

func TestSummarizeMonth(t *testing.T) {
	c := Checkins{}
	for d := 1; d <= 15; d++ {
		c[d] = Checkin{Day: d, Checked: true}
	}
	c[16] = Checkin{Day: 16, Checked: false}

	s := SummarizeMonth(c, Photos{1: {Month: 1, Ref: "ph"}}, 1)
	assert.Equal(t, MonthSummary{Month: 1, Done: 15, Total: 30, Percent: 50, Photo: "ph"}, s)

	s = SummarizeMonth(c, nil, 2)
	assert.Equal(t, 0, s.Percent)
	assert.Equal(t, 30, s.Total)

	c[1] = Checkin{Day: 1, Checked: true}
	assert.Equal(t, 15, SummarizeMonth(c, nil, 1).Done, "повторная отметка не считается дважды")
}

func TestStreak(t *testing.T) {
	assert.Equal(t, 0, Streak(nil))

	c := Checkins{}
	for _, d := range []int{1, 2, 3, 5, 6, 7, 8} {
		c[d] = Checkin{Day: d, Checked: true}
	}
	assert.Equal(t, 4, Streak(c))

	c[9] = Checkin{Day: 9, Checked: false}
	assert.Equal(t, 4, Streak(c))

	c[4] = Checkin{Day: 4, Checked: true}
	assert.Equal(t, 8, Streak(c))

	assert.Equal(t, 90, Streak(allChecked()))
}

func TestOverallPercent(t *testing.T) {
	assert.Equal(t, 0, OverallPercent(nil))
	assert.Equal(t, 100, OverallPercent(allChecked()))

	c := Checkins{}
	for d := 1; d <= 45; d++ {
		c[d] = Checkin{Day: d, Checked: true}
	}
	assert.Equal(t, 50, OverallPercent(c))
	c[46] = Checkin{Day: 46, Checked: true}
	assert.Equal(t, 51, OverallPercent(c))
}

func TestCheckEligibility(t *testing.T) {
	e := CheckEligibility(allChecked(), allPhotos(), false)
	assert.Equal(t, Eligibility{AllCheckinsDone: true, AllPhotosUploaded: true, IsReady: true}, e)

	c := allChecked()
	delete(c, 45)
	e = CheckEligibility(c, allPhotos(), false)
	assert.False(t, e.AllCheckinsDone)
	assert.False(t, e.IsReady)

	p := allPhotos()
	p[2] = Photo{Month: 2}
	e = CheckEligibility(allChecked(), p, true)
	assert.False(t, e.AllPhotosUploaded)
	assert.False(t, e.IsReady)
	assert.True(t, e.IsClaimed)
}

func TestIndexHelpers(t *testing.T) {
	now := time.Now()
	c := IndexCheckins([]Checkin{
		{Day: 3, Checked: true},
		{Day: 3, Checked: false},
	})
	assert.True(t, c.IsChecked(3))

	p := IndexPhotos([]Photo{
		{Month: 1, Ref: "new", UploadedAt: now},
		{Month: 1, Ref: "old", UploadedAt: now.Add(-time.Hour)},
		{Month: 2, Ref: "x", UploadedAt: now},
	})
	require.Len(t, p, 2)
	assert.Equal(t, "new", p[1].Ref)
}

func TestDayDate(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		day  int
		want time.Time
	}{
		{day: 0, want: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{day: 1, want: start},
		{day: 31, want: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)},
		{day: 90, want: time.Date(2026, 5, 29, 0, 0, 0, 0, time.UTC)},
		{day: 91, want: time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.True(t, tt.want.Equal(DayDate(start, tt.day)), "day %d", tt.day)
	}
}
