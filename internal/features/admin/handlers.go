// Package admin - handlers.go обрабатывает команды оператора в личке:
// /login <пароль>, /logout, /grant <пользователь> <баллы>, /resetproject <пользователь>.
package admin

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
)

// Handler обрабатывает команды оператора.
type Handler struct {
	service *Service
	msg     common.Messenger
}

// NewHandler создаёт обработчик команд оператора.
func NewHandler(service *Service, msg common.Messenger) *Handler {
	return &Handler{service: service, msg: msg}
}

// HandleCommand обрабатывает команду оператора.
// Возвращает false, если команда не относится к панели.
func (h *Handler) HandleCommand(ctx context.Context, chatID, userID int64, cmd string, args []string) bool {
	switch cmd {
	case "login":
		h.handleLogin(ctx, chatID, userID, args)
	case "logout":
		if err := h.service.Logout(ctx, userID); err != nil {
			h.replyError(ctx, chatID, userID, cmd, err)
			return true
		}
		h.send(ctx, chatID, "👋 Сессия закрыта")
	case "grant":
		h.handleGrant(ctx, chatID, userID, args)
	case "resetproject":
		h.handleReset(ctx, chatID, userID, args)
	default:
		return false
	}
	return true
}

func (h *Handler) handleLogin(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.send(ctx, chatID, "❌ Формат: /login <пароль>")
		return
	}
	if err := h.service.Login(ctx, userID, args[0]); err != nil {
		h.replyError(ctx, chatID, userID, "login", err)
		return
	}
	h.send(ctx, chatID, "✅ Вход выполнен. Доступно: /grant <пользователь> <баллы>, /resetproject <пользователь>, /logout")
}

func (h *Handler) handleGrant(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 2 {
		h.send(ctx, chatID, "❌ Формат: /grant <@username|id> <баллы>")
		return
	}
	points, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.send(ctx, chatID, "❌ "+common.ErrInvalidAmount.Error())
		return
	}

	m, err := h.service.Grant(ctx, userID, args[0], points)
	if err != nil {
		h.replyError(ctx, chatID, userID, "grant", err)
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("✅ %s: %s", m.DisplayName(), common.FormatPointsAmount(points)))
}

func (h *Handler) handleReset(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.send(ctx, chatID, "❌ Формат: /resetproject <@username|id>")
		return
	}
	m, err := h.service.ResetProject(ctx, userID, args[0])
	if err != nil {
		h.replyError(ctx, chatID, userID, "resetproject", err)
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("🗑 Проект пользователя %s удалён", m.DisplayName()))
}

func (h *Handler) replyError(ctx context.Context, chatID, userID int64, cmd string, err error) {
	if text, ok := common.UserMessage(err); ok {
		h.send(ctx, chatID, "❌ "+text)
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"user_id": userID,
		"command": cmd,
	}).Error("Ошибка команды оператора")
	h.send(ctx, chatID, common.GenericFailure)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.msg.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
