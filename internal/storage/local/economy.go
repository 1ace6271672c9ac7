package local

import (
	"context"
	"time"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/storage/kv"
)

type txRecord struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EnsureBalance создаёт нулевой баланс.
func (s *Store) EnsureBalance(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int64
	ok, err := s.load(ctx, userKey(keyPoints, userID), &balance)
	if err != nil || ok {
		return err
	}
	return s.save(ctx, userKey(keyPoints, userID), int64(0))
}

// GetBalance возвращает баланс; нет записи - 0.
func (s *Store) GetBalance(ctx context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int64
	if _, err := s.load(ctx, userKey(keyPoints, userID), &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

// AddBalance начисляет баллы.
func (s *Store) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBalance(ctx, userID, amount, txType, description)
}

// DeductBalance списывает баллы, не допуская отрицательного баланса.
func (s *Store) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance int64
	if _, err := s.load(ctx, userKey(keyPoints, userID), &balance); err != nil {
		return err
	}
	if balance < amount {
		return common.ErrInsufficientBalance
	}
	return s.addBalance(ctx, userID, -amount, txType, description)
}

// GetTransactions возвращает последние операции, новые первыми.
func (s *Store) GetTransactions(ctx context.Context, userID int64, limit int) ([]*economy.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ledger []txRecord
	if _, err := s.load(ctx, userKey(keyLedger, userID), &ledger); err != nil {
		return nil, err
	}
	out := make([]*economy.Transaction, 0, min(limit, len(ledger)))
	for i := len(ledger) - 1; i >= 0 && len(out) < limit; i-- {
		r := ledger[i]
		out = append(out, &economy.Transaction{
			ID:              r.ID,
			UserID:          userID,
			Amount:          r.Amount,
			TransactionType: r.Type,
			Description:     r.Description,
			CreatedAt:       r.CreatedAt,
		})
	}
	return out, nil
}

// addBalance меняет баланс на delta и пишет операцию в историю. Вызывается под s.mu.
func (s *Store) addBalance(ctx context.Context, userID int64, delta int64, txType, description string) error {
	b := kv.NewBatch()
	if err := s.stageBalance(ctx, b, userID, delta, txType, description); err != nil {
		return err
	}
	return s.kv.Apply(ctx, b)
}

// stageBalance добавляет в пакет новый баланс и строку истории.
func (s *Store) stageBalance(ctx context.Context, b *kv.Batch, userID int64, delta int64, txType, description string) error {
	var balance int64
	if _, err := s.load(ctx, userKey(keyPoints, userID), &balance); err != nil {
		return err
	}
	var ledger []txRecord
	if _, err := s.load(ctx, userKey(keyLedger, userID), &ledger); err != nil {
		return err
	}

	ledger = append(ledger, txRecord{
		ID:          int64(len(ledger) + 1),
		Amount:      delta,
		Type:        txType,
		Description: description,
		CreatedAt:   time.Now(),
	})
	if err := stage(b, userKey(keyPoints, userID), balance+delta); err != nil {
		return err
	}
	return stage(b, userKey(keyLedger, userID), ledger)
}
