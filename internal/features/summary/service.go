// Package summary собирает главный экран: задачи дня, проект эко-энзима и баланс.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/tree"
)

// Projects - источник состояния проекта.
type Projects interface {
	Overview(ctx context.Context, userID int64) (*project.Overview, error)
}

// Tasks - источник прогресса задач дня.
type Tasks interface {
	TodayProgress(ctx context.Context, userID int64) (tree.Progress, error)
}

// Balances - источник баланса.
type Balances interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
}

// Eco - снимок проекта для главного экрана.
type Eco struct {
	Status        project.Status
	Percent       int
	Month         int
	DaysRemaining int
}

// Summary - главный экран пользователя.
type Summary struct {
	Tasks   *tree.Progress // nil, если трекер задач выключен
	Eco     *Eco           // nil, если проекта нет
	Balance int64
}

// Service собирает сводку.
type Service struct {
	projects Projects
	tasks    Tasks
	balances Balances
}

// NewService создаёт сервис сводки. tasks и projects могут быть nil,
// если соответствующая функция выключена.
func NewService(projects Projects, tasks Tasks, balances Balances) *Service {
	return &Service{projects: projects, tasks: tasks, balances: balances}
}

// Build собирает сводку пользователя.
func (s *Service) Build(ctx context.Context, userID int64) (*Summary, error) {
	out := &Summary{}

	if s.tasks != nil {
		p, err := s.tasks.TodayProgress(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("задачи дня: %w", err)
		}
		out.Tasks = &p
	}

	if s.projects != nil {
		o, err := s.projects.Overview(ctx, userID)
		switch {
		case errors.Is(err, common.ErrNoProject):
		case err != nil:
			return nil, fmt.Errorf("проект: %w", err)
		default:
			out.Eco = &Eco{
				Status:        o.Project.Status,
				Percent:       o.Percent,
				Month:         o.Month,
				DaysRemaining: o.DaysRemaining,
			}
		}
	}

	balance, err := s.balances.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("баланс: %w", err)
	}
	out.Balance = balance
	return out, nil
}

// Format - текст главного экрана.
func Format(s *Summary) string {
	var sb strings.Builder
	sb.WriteString("🏠 Сводка\n\n")

	if s.Tasks != nil {
		sb.WriteString(fmt.Sprintf("📝 Задачи: %d/%d %s %d%%\n",
			s.Tasks.Completed, s.Tasks.Total, common.ProgressBar(s.Tasks.Percent, 10), s.Tasks.Percent))
	}

	switch {
	case s.Eco == nil:
		sb.WriteString("🍊 Эко-энзим: проекта нет, начните с !сдать <кг>\n")
	case s.Eco.Status == project.StatusNotStarted:
		sb.WriteString("🍊 Эко-энзим: сбор отходов\n")
	default:
		sb.WriteString(fmt.Sprintf("🍊 Эко-энзим: %s, %d%%, месяц %d, осталось %s\n",
			s.Eco.Status.Title(), s.Eco.Percent, s.Eco.Month, common.FormatDays(s.Eco.DaysRemaining)))
	}

	sb.WriteString(fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(s.Balance)))
	return sb.String()
}

// Handler - команда !сводка.
type Handler struct {
	service *Service
	msg     common.Messenger
}

// NewHandler создаёт обработчик сводки.
func NewHandler(service *Service, msg common.Messenger) *Handler {
	return &Handler{service: service, msg: msg}
}

// HandleSummary - !сводка.
func (h *Handler) HandleSummary(ctx context.Context, chatID, userID int64) {
	text := common.GenericFailure
	s, err := h.service.Build(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка сборки сводки")
	} else {
		text = Format(s)
	}
	if err := h.msg.SendText(ctx, chatID, text); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
