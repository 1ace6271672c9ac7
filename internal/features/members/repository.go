// Package members - repository.go описывает хранилище пользователей.
package members

import "context"

// Repository - хранилище пользователей.
// Методы поиска возвращают common.ErrUserNotFound, если записи нет.
type Repository interface {
	// Upsert создаёт пользователя или обновляет имя, username и время последнего визита
	Upsert(ctx context.Context, m *Member) error
	// GetByUserID ищет пользователя по Telegram ID
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	// GetByUsername ищет пользователя по username без учёта регистра
	GetByUsername(ctx context.Context, username string) (*Member, error)
}
