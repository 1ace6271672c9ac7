// Package admin - service.go содержит логику аутентификации и операторских действий.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/members"
)

// MemberResolver ищет пользователя по @username или ID.
type MemberResolver interface {
	Resolve(ctx context.Context, ref string) (*members.Member, error)
}

// Ledger начисляет и списывает баллы.
type Ledger interface {
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
	DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) error
}

// ProjectResetter удаляет активный проект пользователя.
type ProjectResetter interface {
	Reset(ctx context.Context, userID int64) error
}

// Service управляет панелью оператора.
type Service struct {
	repo         Repository
	members      MemberResolver
	ledger       Ledger
	projects     ProjectResetter
	adminIDs     []int64
	passwordHash string
	now          func() time.Time
}

// NewService создаёт сервис панели оператора.
func NewService(repo Repository, m MemberResolver, l Ledger, p ProjectResetter, adminIDs []int64, passwordHash string) *Service {
	return &Service{
		repo:         repo,
		members:      m,
		ledger:       l,
		projects:     p,
		adminIDs:     adminIDs,
		passwordHash: passwordHash,
		now:          time.Now,
	}
}

// IsAdmin - есть ли пользователь в списке ADMIN_IDS.
func (s *Service) IsAdmin(userID int64) bool {
	return slices.Contains(s.adminIDs, userID)
}

// Login проверяет пароль администратора с использованием Argon2id.
// Защита от перебора: 3 неудачные попытки за час блокируют вход на час.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	if !s.IsAdmin(userID) {
		return common.ErrNotAdmin
	}

	attempts, err := s.repo.FailedAttemptsSince(ctx, userID, s.now().Add(-AttemptsWindow))
	if err != nil {
		return fmt.Errorf("попытки входа: %w", err)
	}
	if attempts >= MaxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.passwordHash)
	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось записать попытку входа")
	}
	if !match {
		return common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    s.now().Add(SessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return fmt.Errorf("создание сессии: %w", err)
	}
	log.WithField("user_id", userID).Info("Администратор вошёл в панель")
	return nil
}

// Logout закрывает сессию.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.repo.DeactivateSession(ctx, userID)
}

// Authorize проверяет, что у администратора есть действующая сессия.
func (s *Service) Authorize(ctx context.Context, userID int64) error {
	if !s.IsAdmin(userID) {
		return common.ErrNotAdmin
	}
	_, err := s.repo.GetActiveSession(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrSessionExpired
	}
	if err != nil {
		return fmt.Errorf("проверка сессии: %w", err)
	}
	return nil
}

// Grant начисляет (points > 0) или списывает (points < 0) баллы пользователю.
func (s *Service) Grant(ctx context.Context, adminID int64, target string, points int64) (*members.Member, error) {
	if err := s.Authorize(ctx, adminID); err != nil {
		return nil, err
	}
	if points == 0 {
		return nil, common.ErrInvalidAmount
	}
	m, err := s.members.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	if points > 0 {
		err = s.ledger.AddBalance(ctx, m.UserID, points, economy.TxTypeAdminGive, "Начисление оператором")
	} else {
		err = s.ledger.DeductBalance(ctx, m.UserID, -points, economy.TxTypeAdminTake, "Списание оператором")
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"user_id":  m.UserID,
		"points":   points,
	}).Info("Оператор изменил баланс")
	return m, nil
}

// ResetProject удаляет активный проект пользователя.
func (s *Service) ResetProject(ctx context.Context, adminID int64, target string) (*members.Member, error) {
	if err := s.Authorize(ctx, adminID); err != nil {
		return nil, err
	}
	if s.projects == nil {
		return nil, common.ErrUnsupported
	}
	m, err := s.members.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := s.projects.Reset(ctx, m.UserID); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_id": adminID,
		"user_id":  m.UserID,
	}).Info("Оператор сбросил проект")
	return m, nil
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	// Сравнение в постоянном времени
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
