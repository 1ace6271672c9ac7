// Package economy - repository.go описывает хранилище баллов.
// Все денежные операции реализация обязана выполнять атомарно:
// изменение баланса и запись транзакции происходят вместе.
package economy

import "context"

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository interface {
	// EnsureBalance создаёт нулевой баланс, если его ещё нет
	EnsureBalance(ctx context.Context, userID int64) error
	// GetBalance возвращает текущий баланс (0 для нового пользователя)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	// AddBalance начисляет amount и пишет транзакцию
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
	// DeductBalance списывает amount; при нехватке - common.ErrInsufficientBalance
	DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
	// GetTransactions возвращает последние limit операций, новые первыми
	GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}
