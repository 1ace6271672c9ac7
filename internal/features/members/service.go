// Package members - service.go регистрирует пользователей и ищет их
// по ссылке вида @username или числовому ID.
package members

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
)

// Service управляет пользователями бота.
type Service struct {
	repo Repository
}

// NewService создаёт сервис пользователей.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Touch регистрирует пользователя при первом обращении и обновляет данные при последующих.
func (s *Service) Touch(ctx context.Context, userID int64, username, firstName, lastName string) error {
	now := time.Now()
	m := &Member{
		UserID:     userID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.repo.Upsert(ctx, m); err != nil {
		return fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}
	return nil
}

// GetByUserID возвращает пользователя по Telegram ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// Resolve находит пользователя по ссылке: «@username», «username» или числовой ID.
func (s *Service) Resolve(ctx context.Context, ref string) (*Member, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.ErrUserNotFound
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.repo.GetByUserID(ctx, id)
	}
	return s.repo.GetByUsername(ctx, strings.TrimPrefix(ref, "@"))
}

// Joined регистрирует пользователей, добавленных в группу.
// Ошибка по одному пользователю не мешает остальным.
func (s *Service) Joined(ctx context.Context, users []*Member) {
	for _, u := range users {
		if err := s.Touch(ctx, u.UserID, u.Username, u.FirstName, u.LastName); err != nil {
			log.WithError(err).WithField("user_id", u.UserID).Error("Ошибка регистрации участника группы")
			continue
		}
		log.WithFields(log.Fields{
			"user_id":  u.UserID,
			"username": u.Username,
		}).Info("Новый участник группы зарегистрирован")
	}
}
