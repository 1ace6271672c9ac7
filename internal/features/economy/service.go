// Package economy - service.go содержит бизнес-логику баллов.
// Валидация сумм, обмен на ваучеры, получение баланса и истории.
package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
)

// HistoryLimit - сколько операций показывать в истории.
const HistoryLimit = 10

// Service управляет баллами пользователей.
type Service struct {
	repo Repository // Хранилище баллов
}

// NewService создаёт сервис баллов.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetBalance возвращает текущий баланс пользователя.
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.repo.GetBalance(ctx, userID)
}

// CreateBalance создаёт начальный баланс для нового участника (0 баллов).
func (s *Service) CreateBalance(ctx context.Context, userID int64) error {
	return s.repo.EnsureBalance(ctx, userID)
}

// AddBalance начисляет баллы пользователю.
func (s *Service) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.AddBalance(ctx, userID, amount, txType, description)
}

// DeductBalance списывает баллы. Баланс не может стать отрицательным.
func (s *Service) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error {
	if amount <= 0 {
		return common.ErrInvalidAmount
	}
	return s.repo.DeductBalance(ctx, userID, amount, txType, description)
}

// Transactions возвращает последние операции пользователя.
func (s *Service) Transactions(ctx context.Context, userID int64) ([]*Transaction, error) {
	return s.repo.GetTransactions(ctx, userID, HistoryLimit)
}

// Redeem обменивает баллы на ваучер из каталога.
func (s *Service) Redeem(ctx context.Context, userID int64, code string) (*Redemption, error) {
	v, ok := FindVoucher(code)
	if !ok {
		return nil, common.ErrNotFound
	}

	err := s.repo.DeductBalance(ctx, userID, v.Cost, TxTypeVoucher, "Ваучер: "+v.Title)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientBalance) {
			return nil, common.ErrInsufficientBalance
		}
		return nil, fmt.Errorf("обмен на ваучер: %w", err)
	}

	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("баланс после обмена: %w", err)
	}

	r := &Redemption{
		Voucher: v,
		Code:    strings.ToUpper(v.Code + "-" + uuid.NewString()[:8]),
		Balance: balance,
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"voucher": v.Code,
		"code":    r.Code,
	}).Info("Ваучер выдан")
	return r, nil
}
