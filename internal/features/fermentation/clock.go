// Package fermentation содержит расчёты 90-дневной ферментации эко-энзима:
// обратный отсчёт до сбора урожая и пересчёт веса отходов в рецепт.
// Все функции чистые: на вход время и вес, на выход числа.
package fermentation

import (
	"time"

	"serotonyl.ru/eco-bot/internal/common"
)

// TotalDays - полная длительность ферментации в днях.
const TotalDays = 90

// Duration - полная длительность ферментации.
const Duration = TotalDays * common.Day

// Clock - обратный отсчёт до сбора урожая.
// Нулевое значение (без даты урожая) означает «ферментация не запущена».
type Clock struct {
	harvest *time.Time
}

// NewClock создаёт часы по моменту сбора урожая.
// nil означает, что ферментация ещё не начата.
func NewClock(harvest *time.Time) Clock {
	if harvest == nil {
		return Clock{}
	}
	h := *harvest
	return Clock{harvest: &h}
}

// ClockFromStart создаёт часы по моменту старта: урожай = старт + 90 дней.
func ClockFromStart(start *time.Time) Clock {
	if start == nil {
		return Clock{}
	}
	h := start.Add(Duration)
	return Clock{harvest: &h}
}

// IsActive - запущена ли ферментация.
func (c Clock) IsActive() bool {
	return c.harvest != nil
}

// Harvest возвращает момент сбора урожая (ok=false, если не запущена).
func (c Clock) Harvest() (time.Time, bool) {
	if c.harvest == nil {
		return time.Time{}, false
	}
	return *c.harvest, true
}

// DaysRemaining возвращает число дней до урожая, округлённое вверх.
// Без даты урожая возвращает полную длительность. Никогда не отрицательно.
func (c Clock) DaysRemaining(now time.Time) int {
	if c.harvest == nil {
		return TotalDays
	}
	left := c.harvest.Sub(now)
	if left <= 0 {
		return 0
	}
	// ceil на целых: частичный день считается целым
	days := int((left + common.Day - 1) / common.Day)
	return days
}

// DaysCompleted - прошедшие дни, в пределах [0, TotalDays].
func (c Clock) DaysCompleted(now time.Time) int {
	done := TotalDays - c.DaysRemaining(now)
	if done < 0 {
		return 0
	}
	if done > TotalDays {
		return TotalDays
	}
	return done
}

// ProgressPercent - процент завершения, 0 если ферментация не запущена.
func (c Clock) ProgressPercent(now time.Time) int {
	if c.harvest == nil {
		return 0
	}
	return (c.DaysCompleted(now)*100 + TotalDays/2) / TotalDays
}
