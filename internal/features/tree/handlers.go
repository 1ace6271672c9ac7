// Package tree - handlers.go обрабатывает команды трекера:
// !задачи, !готово, !дерево, !урожай, !прогресс, !награда.
package tree

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
)

// Handler обрабатывает команды дерева.
type Handler struct {
	service *Service
	msg     common.Messenger
}

// NewHandler создаёт обработчик команд дерева.
func NewHandler(service *Service, msg common.Messenger) *Handler {
	return &Handler{service: service, msg: msg}
}

// HandleTasks - !задачи.
func (h *Handler) HandleTasks(ctx context.Context, chatID, userID int64) {
	tasks, err := h.service.Today(ctx, userID)
	if err != nil {
		h.fail(ctx, chatID, userID, "задачи", err)
		return
	}
	h.send(ctx, chatID, FormatTasks(tasks))
}

// HandleDone - !готово <n>.
func (h *Handler) HandleDone(ctx context.Context, chatID, userID int64, args []string) {
	n, ok := parseIndex(args)
	if !ok {
		h.send(ctx, chatID, "❌ Формат: !готово <номер задачи>")
		return
	}

	task, already, err := h.service.CompleteTask(ctx, userID, n)
	switch {
	case errors.Is(err, common.ErrNotFound):
		h.send(ctx, chatID, "❌ Нет задачи с таким номером. Список: !задачи")
	case err != nil:
		h.fail(ctx, chatID, userID, "готово", err)
	case already:
		h.send(ctx, chatID, fmt.Sprintf("ℹ️ «%s» уже выполнена", task.Title))
	default:
		h.send(ctx, chatID, fmt.Sprintf("✅ «%s» выполнена, на дереве новый зелёный лист", task.Title))
	}
}

// HandleTree - !дерево.
func (h *Handler) HandleTree(ctx context.Context, chatID, userID int64) {
	v, err := h.service.Tree(ctx, userID)
	if err != nil {
		h.fail(ctx, chatID, userID, "дерево", err)
		return
	}
	h.send(ctx, chatID, FormatTree(v))
}

// HandleHarvest - !урожай <n>.
func (h *Handler) HandleHarvest(ctx context.Context, chatID, userID int64, args []string) {
	n, ok := parseIndex(args)
	if !ok {
		n = 1
	}

	points, err := h.service.ClaimFruit(ctx, userID, n)
	switch {
	case errors.Is(err, common.ErrNotFound):
		h.send(ctx, chatID, "❌ Нет спелого плода с таким номером. Посмотреть: !дерево")
	case errors.Is(err, common.ErrAlreadyClaimed):
		h.send(ctx, chatID, "ℹ️ Этот плод уже собран")
	case err != nil:
		h.fail(ctx, chatID, userID, "урожай", err)
	default:
		h.send(ctx, chatID, fmt.Sprintf("🍎 Плод собран: %s", common.FormatPointsAmount(points)))
	}
}

// HandleProgress - !прогресс, неделя и серия.
func (h *Handler) HandleProgress(ctx context.Context, chatID, userID int64) {
	week, err := h.service.WeeklyProgress(ctx, userID)
	if err != nil {
		h.fail(ctx, chatID, userID, "прогресс", err)
		return
	}
	m, err := h.service.Milestone(ctx, userID)
	if err != nil {
		h.fail(ctx, chatID, userID, "прогресс", err)
		return
	}
	h.send(ctx, chatID, FormatWeek(week)+"\n\n"+FormatMilestone(m))
}

// HandleMilestone - !награда.
func (h *Handler) HandleMilestone(ctx context.Context, chatID, userID int64) {
	points, err := h.service.ClaimMilestone(ctx, userID)
	switch {
	case errors.Is(err, common.ErrAlreadyClaimed):
		h.send(ctx, chatID, "ℹ️ Награда за этот месяц уже получена")
	case errors.Is(err, common.ErrNotEligible):
		m, mErr := h.service.Milestone(ctx, userID)
		if mErr != nil {
			h.fail(ctx, chatID, userID, "награда", mErr)
			return
		}
		h.send(ctx, chatID, FormatMilestone(m))
	case err != nil:
		h.fail(ctx, chatID, userID, "награда", err)
	default:
		h.send(ctx, chatID, fmt.Sprintf("🏅 Награда за серию: %s", common.FormatPointsAmount(points)))
	}
}

func parseIndex(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (h *Handler) fail(ctx context.Context, chatID, userID int64, cmd string, err error) {
	log.WithError(err).WithFields(log.Fields{
		"user_id": userID,
		"command": cmd,
	}).Error("Ошибка обработки команды")
	h.send(ctx, chatID, common.GenericFailure)
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.msg.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
