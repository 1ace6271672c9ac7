// Package project - handlers.go обрабатывает команды эко-энзима:
// !эко, !сдать, !журнал, !старт, !чекин, фото с подписью, !таймлайн,
// !неделя, !забрать, !сброс.
package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/fermentation"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

// Handler обрабатывает команды проекта.
type Handler struct {
	service *Service         // Сервис проектов
	msg     common.Messenger // Отправка ответов
}

// NewHandler создаёт обработчик команд проекта.
func NewHandler(service *Service, msg common.Messenger) *Handler {
	return &Handler{service: service, msg: msg}
}

// HandleStatus - !эко, состояние проекта.
func (h *Handler) HandleStatus(ctx context.Context, chatID, userID int64) {
	o, err := h.service.Overview(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "эко", err)
		return
	}
	h.send(ctx, chatID, FormatOverview(o, h.service.Location()))
}

// HandleAddWaste - !сдать 2,5, запись отходов в журнал.
func (h *Handler) HandleAddWaste(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		h.send(ctx, chatID, "❌ Формат: !сдать <кг>, например !сдать 2,5")
		return
	}
	grams, err := fermentation.ParseWeight(strings.Join(args, " "))
	if err != nil {
		h.replyError(ctx, chatID, userID, "сдать", err)
		return
	}

	p, e, err := h.service.AddEntry(ctx, userID, grams)
	if err != nil {
		h.replyError(ctx, chatID, userID, "сдать", err)
		return
	}
	h.send(ctx, chatID, FormatEntryAdded(p, e))
}

// HandleJournal - !журнал.
func (h *Handler) HandleJournal(ctx context.Context, chatID, userID int64) {
	p, entries, err := h.service.Journal(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "журнал", err)
		return
	}
	h.send(ctx, chatID, FormatJournal(p, entries, h.service.Location()))
}

// HandleStart - !старт, запуск ферментации.
func (h *Handler) HandleStart(ctx context.Context, chatID, userID int64) {
	p, err := h.service.StartFermentation(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "старт", err)
		return
	}
	h.send(ctx, chatID, FormatStarted(p, h.service.Location()))
}

// HandleCheckin - !чекин [день]. Без аргумента отмечается сегодняшний день.
func (h *Handler) HandleCheckin(ctx context.Context, chatID, userID int64, args []string) {
	day := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			h.send(ctx, chatID, "❌ "+common.ErrInvalidDay.Error())
			return
		}
		day = n
	}

	res, err := h.service.RecordCheckin(ctx, userID, day)
	if err != nil {
		h.replyError(ctx, chatID, userID, "чекин", err)
		return
	}
	h.send(ctx, chatID, FormatCheckin(res))
}

// HandlePhoto - фото с подписью «фото [месяц]».
func (h *Handler) HandlePhoto(ctx context.Context, chatID, userID int64, args []string, fileID string) {
	month := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			h.send(ctx, chatID, "❌ "+common.ErrInvalidMonth.Error())
			return
		}
		month = n
	}

	month, err := h.service.RecordMonthlyPhoto(ctx, userID, month, fileID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "фото", err)
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("📸 Фото за месяц %d сохранено", month))
}

// HandleTimeline - !таймлайн.
func (h *Handler) HandleTimeline(ctx context.Context, chatID, userID int64) {
	v, err := h.service.Timeline(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "таймлайн", err)
		return
	}
	h.send(ctx, chatID, FormatTimeline(v, h.service.Location()))
}

// HandleWeek - !неделя <n>. Без номера показывается текущая неделя.
func (h *Handler) HandleWeek(ctx context.Context, chatID, userID int64, args []string) {
	v, err := h.service.Timeline(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "неделя", err)
		return
	}

	number := timeline.WeekOfDay(v.CurrentDay)
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			n = 0
		}
		number = n
	}
	w, ok := timeline.WeekOf(number)
	if !ok {
		h.send(ctx, chatID, fmt.Sprintf("❌ Номер недели должен быть от 1 до %d", timeline.WeeksTotal))
		return
	}
	h.send(ctx, chatID, FormatWeek(v, w, h.service.Location()))
}

// HandleClaim - !забрать, итоговый бонус.
func (h *Handler) HandleClaim(ctx context.Context, chatID, userID int64) {
	bonus, err := h.service.Claim(ctx, userID)
	if err != nil {
		h.replyError(ctx, chatID, userID, "забрать", err)
		return
	}
	h.send(ctx, chatID, fmt.Sprintf("🏆 Поздравляем! 90 дней пройдены, начислено %s", common.FormatPointsAmount(bonus)))
}

// HandleReset - !сброс да, удаление активного проекта.
func (h *Handler) HandleReset(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 || strings.ToLower(args[0]) != "да" {
		h.send(ctx, chatID, "⚠️ Проект будет удалён вместе с журналом и чекинами.\nПодтвердите: !сброс да")
		return
	}
	if err := h.service.Reset(ctx, userID); err != nil {
		h.replyError(ctx, chatID, userID, "сброс", err)
		return
	}
	h.send(ctx, chatID, "🗑 Проект удалён. Начните новый: !сдать <кг>")
}

// replyError отвечает понятным текстом на известную ошибку,
// остальные логирует и отвечает общим текстом.
func (h *Handler) replyError(ctx context.Context, chatID, userID int64, cmd string, err error) {
	if text, ok := common.UserMessage(err); ok {
		h.send(ctx, chatID, "❌ "+text)
		return
	}
	log.WithError(err).WithFields(log.Fields{
		"user_id": userID,
		"command": cmd,
	}).Error("Ошибка обработки команды")
	h.send(ctx, chatID, common.GenericFailure)
}

// send - вспомогательная функция для отправки текстового сообщения.
func (h *Handler) send(ctx context.Context, chatID int64, text string) {
	if err := h.msg.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
