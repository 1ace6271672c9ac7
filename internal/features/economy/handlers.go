// Package economy - handlers.go обрабатывает команды:
// !баллы (баланс), !история (транзакции), !ваучеры и !обменять.
package economy

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service *Service         // Сервис баллов
	msg     common.Messenger // Отправка ответов
	loc     *time.Location   // Пояс для дат в истории
}

// NewHandler создаёт новый обработчик команд баллов.
func NewHandler(service *Service, msg common.Messenger, loc *time.Location) *Handler {
	return &Handler{service: service, msg: msg, loc: loc}
}

// HandleBalance обрабатывает команду !баллы.
//
// Формат ответа:
//
//	💰 Баланс: 150 баллов
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения баланса")
		h.send(ctx, chatID, "❌ Ошибка получения баланса")
		return
	}
	h.send(ctx, chatID, FormatBalance(balance))
}

// HandleTransactions обрабатывает команду !история.
func (h *Handler) HandleTransactions(ctx context.Context, chatID, userID int64) {
	txs, err := h.service.Transactions(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения транзакций")
		h.send(ctx, chatID, "❌ Ошибка получения истории транзакций")
		return
	}
	h.send(ctx, chatID, FormatHistory(txs, h.loc))
}

// HandleVouchers обрабатывает команду !ваучеры.
func (h *Handler) HandleVouchers(ctx context.Context, chatID, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка получения баланса")
		balance = 0
	}
	h.send(ctx, chatID, FormatCatalog(balance))
}

// HandleRedeem обрабатывает команду !обменять <код>.
func (h *Handler) HandleRedeem(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.send(ctx, chatID, "❌ Формат: !обменять <код>. Список: !ваучеры")
		return
	}

	r, err := h.service.Redeem(ctx, userID, args[0])
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			h.send(ctx, chatID, "❌ Такого ваучера нет. Список: !ваучеры")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.send(ctx, chatID, "❌ Недостаточно баллов на счёте")
		default:
			log.WithError(err).WithField("user_id", userID).Error("Ошибка обмена")
			h.send(ctx, chatID, common.GenericFailure)
		}
		return
	}
	h.send(ctx, chatID, FormatRedemption(r))
}

// send - вспомогательная функция для отправки текстового сообщения.
func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.msg.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
