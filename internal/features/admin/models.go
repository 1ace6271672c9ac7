// Package admin реализует панель оператора с парольной аутентификацией:
// вход по паролю, выдача баллов и сброс проекта пользователя.
// models.go описывает структуры сессий.
package admin

import "time"

// Session - активная сессия администратора.
type Session struct {
	ID              int64
	UserID          int64
	SessionToken    string
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
	IsActive        bool
}

// Параметры защиты входа
const (
	MaxFailedAttempts = 3              // Неудачных попыток до блокировки
	AttemptsWindow    = time.Hour      // Окно подсчёта попыток
	SessionTTL        = 24 * time.Hour // Время жизни сессии
)
