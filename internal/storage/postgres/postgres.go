// Package postgres - репозитории всех фич поверх PostgreSQL (pgx/v5).
// Схему создают миграции из internal/db/postgres.
//
// Денежные операции (бонус проекта, плоды, награды, админ-выдачи) выполняются
// в одной транзакции с записью в transactions.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-bot/internal/common"
)

// Коды ошибок PostgreSQL
const (
	codeForeignKey = "23503"
	codeCheck      = "23514"
)

// scanner - общее у pgx.Row и pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// notFound заменяет pgx.ErrNoRows на sentinel.
func notFound(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

// inTx выполняет fn в транзакции. Транзакция откатывается, если fn вернула ошибку.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// credit меняет баланс на amount и пишет транзакцию. Отрицательный amount
// при нехватке баллов даёт common.ErrInsufficientBalance.
func credit(ctx context.Context, tx pgx.Tx, userID, amount int64, txType, description string) error {
	if amount >= 0 {
		_, err := tx.Exec(ctx, `
			INSERT INTO balances (user_id, balance) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE
			SET balance = balances.balance + EXCLUDED.balance, updated_at = NOW()
		`, userID, amount)
		if err != nil {
			return fmt.Errorf("начисление баллов: %w", err)
		}
	} else {
		tag, err := tx.Exec(ctx, `
			UPDATE balances SET balance = balance + $2, updated_at = NOW()
			WHERE user_id = $1 AND balance + $2 >= 0
		`, userID, amount)
		if err != nil {
			return fmt.Errorf("списание баллов: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.ErrInsufficientBalance
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO transactions (user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return fmt.Errorf("запись транзакции: %w", err)
	}
	return nil
}
