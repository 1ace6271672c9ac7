// Package admin - repository.go описывает хранилище сессий и попыток входа.
package admin

import (
	"context"
	"time"
)

// Repository работает с сессиями и журналом попыток входа.
type Repository interface {
	// CreateSession создаёт новую сессию администратора
	CreateSession(ctx context.Context, s *Session) error
	// GetActiveSession возвращает действующую сессию или common.ErrNotFound
	GetActiveSession(ctx context.Context, userID int64) (*Session, error)
	// DeactivateSession закрывает все сессии пользователя
	DeactivateSession(ctx context.Context, userID int64) error
	// LogAttempt записывает попытку входа
	LogAttempt(ctx context.Context, userID int64, success bool) error
	// FailedAttemptsSince считает неудачные попытки после since
	FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error)
}
