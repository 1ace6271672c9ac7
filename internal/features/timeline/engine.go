// Package timeline считает прогресс 90-дневного таймлайна:
// номер текущего дня, доступность дней для чекина, стрик,
// сводки по месяцам и право на итоговый бонус.
//
// Пакет не хранит состояние и не ходит в хранилище: он получает
// уже загруженные чекины и фото и возвращает производные значения.
package timeline

import (
	"time"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/fermentation"
)

// Константы таймлайна
const (
	TotalDays   = fermentation.TotalDays // Дней в таймлайне
	MonthDays   = 30                     // Дней в «месяце» таймлайна
	TotalMonths = 3                      // Месяцев с обязательным фото
)

// Checkin - отметка одного дня таймлайна.
type Checkin struct {
	Day       int       // Номер дня 1..90
	Checked   bool      // Отмечен ли день
	CheckedAt time.Time // Когда отмечен
}

// Photo - фото за месяц таймлайна.
type Photo struct {
	Month      int       // Номер месяца 1..3
	Ref        string    // Ссылка на фото (file_id Telegram или URL)
	UploadedAt time.Time // Когда загружено
}

// Checkins - отметки, сгруппированные по номеру дня.
type Checkins map[int]Checkin

// Photos - фото, сгруппированные по номеру месяца.
type Photos map[int]Photo

// IndexCheckins собирает срез отметок в карту по дню.
// Если день встречается дважды, отмеченная запись побеждает.
func IndexCheckins(list []Checkin) Checkins {
	out := make(Checkins, len(list))
	for _, c := range list {
		if prev, ok := out[c.Day]; ok && prev.Checked && !c.Checked {
			continue
		}
		out[c.Day] = c
	}
	return out
}

// IndexPhotos собирает срез фото в карту по месяцу.
// Для одного месяца побеждает самая поздняя загрузка.
func IndexPhotos(list []Photo) Photos {
	out := make(Photos, len(list))
	for _, p := range list {
		if prev, ok := out[p.Month]; ok && prev.UploadedAt.After(p.UploadedAt) {
			continue
		}
		out[p.Month] = p
	}
	return out
}

// IsChecked - отмечен ли день.
func (c Checkins) IsChecked(day int) bool {
	rec, ok := c[day]
	return ok && rec.Checked
}

// Has - есть ли непустое фото за месяц.
func (p Photos) Has(month int) bool {
	ph, ok := p[month]
	return ok && ph.Ref != ""
}

// ValidDay проверяет, что номер дня в диапазоне 1..90.
func ValidDay(day int) bool {
	return day >= 1 && day <= TotalDays
}

// ValidMonth проверяет, что номер месяца в диапазоне 1..3.
func ValidMonth(month int) bool {
	return month >= 1 && month <= TotalMonths
}

// StartDate - дата начала таймлайна: урожай минус 90 дней,
// приведённые к полуночи в поясе loc.
func StartDate(harvest time.Time, loc *time.Location) time.Time {
	return common.Midnight(harvest.Add(-fermentation.Duration), loc)
}

// CurrentDayIndex возвращает номер текущего дня таймлайна.
// 0 - таймлайн ещё не начался, 1..90 - номер дня, после 90 остаётся 90.
// Считаются календарные даты в поясе loc, поэтому переход на летнее
// время не сдвигает номер дня.
func CurrentDayIndex(start, now time.Time, loc *time.Location) int {
	diff := common.DaysBetween(start, now, loc)
	switch {
	case diff < 0:
		return 0
	case diff >= TotalDays:
		return TotalDays
	default:
		return diff + 1
	}
}

// IsDayUnlocked - наступил ли день (чекин разрешён только в наступившие дни).
func IsDayUnlocked(day, current int) bool {
	return current > 0 && day >= 1 && day <= current
}

// DayDate возвращает календарную дату дня таймлайна.
func DayDate(start time.Time, day int) time.Time {
	return start.AddDate(0, 0, day-1)
}

// MonthOf - к какому месяцу (1..3) относится день.
func MonthOf(day int) int {
	if day < 1 {
		return 1
	}
	m := (day + MonthDays - 1) / MonthDays
	if m > TotalMonths {
		return TotalMonths
	}
	return m
}

// MonthRange - первый и последний день месяца.
// Третий месяц заканчивается на 90-м дне.
func MonthRange(month int) (from, to int) {
	from = (month-1)*MonthDays + 1
	to = month * MonthDays
	if month >= TotalMonths || to > TotalDays {
		to = TotalDays
	}
	return from, to
}

// DominantMonth определяет месяц, с которым окно дней [from, to]
// пересекается больше всего. При равенстве побеждает более ранний месяц.
func DominantMonth(from, to int) int {
	best, bestOverlap := 1, 0
	for m := 1; m <= TotalMonths; m++ {
		mFrom, mTo := MonthRange(m)
		lo, hi := max(from, mFrom), min(to, mTo)
		overlap := hi - lo + 1
		if overlap > bestOverlap {
			best, bestOverlap = m, overlap
		}
	}
	return best
}

// MonthSummary - сводка по одному месяцу.
type MonthSummary struct {
	Month   int    // Номер месяца
	Done    int    // Отмеченных дней
	Total   int    // Всего дней в месяце
	Percent int    // Процент выполнения
	Photo   string // Фото за месяц (пусто, если нет)
}

// SummarizeMonth считает выполнение месяца по отметкам.
func SummarizeMonth(checkins Checkins, photos Photos, month int) MonthSummary {
	from, to := MonthRange(month)
	s := MonthSummary{Month: month, Total: to - from + 1}
	if s.Total < 0 {
		s.Total = 0
	}
	for d := from; d <= to; d++ {
		if checkins.IsChecked(d) {
			s.Done++
		}
	}
	s.Percent = percent(s.Done, s.Total)
	if ph, ok := photos[month]; ok {
		s.Photo = ph.Ref
	}
	return s
}

// CheckedCount - сколько дней 1..90 отмечено.
func CheckedCount(checkins Checkins) int {
	n := 0
	for d := 1; d <= TotalDays; d++ {
		if checkins.IsChecked(d) {
			n++
		}
	}
	return n
}

// OverallPercent - общий процент выполнения таймлайна.
func OverallPercent(checkins Checkins) int {
	return percent(CheckedCount(checkins), TotalDays)
}

// Streak - длина серии подряд отмеченных дней, заканчивающейся
// последним отмеченным днём. Без отметок стрик равен 0.
func Streak(checkins Checkins) int {
	last := 0
	for d := TotalDays; d >= 1; d-- {
		if checkins.IsChecked(d) {
			last = d
			break
		}
	}
	streak := 0
	for d := last; d >= 1 && checkins.IsChecked(d); d-- {
		streak++
	}
	return streak
}

// Eligibility - право на итоговый бонус.
type Eligibility struct {
	AllCheckinsDone   bool // Все 90 дней отмечены
	AllPhotosUploaded bool // Все 3 фото загружены
	IsReady           bool // Можно забирать бонус
	IsClaimed         bool // Бонус уже забран
}

// CheckEligibility проверяет условия получения бонуса.
// Отсутствующий день считается неотмеченным.
func CheckEligibility(checkins Checkins, photos Photos, claimed bool) Eligibility {
	e := Eligibility{IsClaimed: claimed}
	e.AllCheckinsDone = CheckedCount(checkins) == TotalDays
	e.AllPhotosUploaded = true
	for m := 1; m <= TotalMonths; m++ {
		if !photos.Has(m) {
			e.AllPhotosUploaded = false
			break
		}
	}
	e.IsReady = e.AllCheckinsDone && e.AllPhotosUploaded
	return e
}

// percent округляет done/total*100 до ближайшего целого; 0 при пустом total.
func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (done*100*2 + total) / (total * 2)
}
