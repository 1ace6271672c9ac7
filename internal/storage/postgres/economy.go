package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-bot/internal/features/economy"
)

// EconomyRepository работает с таблицами balances и transactions.
type EconomyRepository struct {
	db *pgxpool.Pool
}

// NewEconomyRepository создаёт репозиторий баллов.
func NewEconomyRepository(db *pgxpool.Pool) *EconomyRepository {
	return &EconomyRepository{db: db}
}

// EnsureBalance создаёт нулевой баланс.
func (r *EconomyRepository) EnsureBalance(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO balances (user_id, balance) VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

// GetBalance возвращает баланс; отсутствующая строка - ноль.
func (r *EconomyRepository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, "SELECT balance FROM balances WHERE user_id = $1", userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("баланс не получен: %w", err)
	}
	return balance, nil
}

// AddBalance начисляет amount.
func (r *EconomyRepository) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return credit(ctx, tx, userID, amount, txType, description)
	})
}

// DeductBalance списывает amount, не уводя баланс в минус.
func (r *EconomyRepository) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return credit(ctx, tx, userID, -amount, txType, description)
	})
}

// GetTransactions возвращает последние limit операций.
func (r *EconomyRepository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*economy.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount, transaction_type, description, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*economy.Transaction
	for rows.Next() {
		var t economy.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.TransactionType, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
