// Package project управляет проектом эко-энзима: журнал отходов,
// запуск ферментации, ежедневные чекины, фото за месяц и итоговый бонус.
// models.go описывает сущности проекта.
package project

import (
	"time"

	"serotonyl.ru/eco-bot/internal/features/fermentation"
)

// Status - стадия проекта. Меняется только вперёд:
// not_started → ongoing → completed.
type Status string

const (
	StatusNotStarted Status = "not_started" // Собираем отходы
	StatusOngoing    Status = "ongoing"     // Идёт ферментация
	StatusCompleted  Status = "completed"   // 90 дней прошли
)

// ParseStatus разбирает статус из хранилища. Пустое значение - not_started.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusOngoing:
		return StatusOngoing
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusNotStarted
	}
}

// rank - порядковый номер статуса для проверки переходов.
func (s Status) rank() int {
	switch s {
	case StatusOngoing:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 0
	}
}

// CanAdvanceTo - допустим ли переход ровно на следующую стадию.
func (s Status) CanAdvanceTo(next Status) bool {
	return next.rank() == s.rank()+1
}

// Title - название статуса для сообщений.
func (s Status) Title() string {
	switch s {
	case StatusOngoing:
		return "идёт ферментация"
	case StatusCompleted:
		return "завершён"
	default:
		return "сбор отходов"
	}
}

// Project - один 90-дневный проект эко-энзима.
type Project struct {
	ID          string     // Идентификатор
	UserID      int64      // Владелец (Telegram user ID)
	WeightGrams int64      // Сумма отходов из журнала, граммы
	StartedAt   *time.Time // Старт ферментации (nil до старта)
	EndsAt      *time.Time // Сбор урожая = старт + 90 дней
	Status      Status     // Стадия
	IsClaimed   bool       // Итоговый бонус получен
	CreatedAt   time.Time  // Когда проект создан
}

// WeightKg - суммарный вес отходов в килограммах.
func (p *Project) WeightKg() float64 {
	return fermentation.GramsToKg(p.WeightGrams)
}

// IsOpen - проект ещё не завершён.
func (p *Project) IsOpen() bool {
	return p.Status != StatusCompleted
}

// Clock возвращает часы ферментации проекта.
// Если бэкенд не прислал дату урожая, она выводится из старта.
func (p *Project) Clock() fermentation.Clock {
	if p.EndsAt == nil {
		return fermentation.ClockFromStart(p.StartedAt)
	}
	return fermentation.NewClock(p.EndsAt)
}

// Entry - запись журнала отходов. Не меняется после создания.
type Entry struct {
	ID          string    // Идентификатор
	ProjectID   string    // Проект
	WeightGrams int64     // Вес, граммы (> 0)
	CreatedAt   time.Time // Когда записано
}

// WeightKg - вес записи в килограммах.
func (e *Entry) WeightKg() float64 {
	return fermentation.GramsToKg(e.WeightGrams)
}
