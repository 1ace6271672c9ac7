// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: завершение истёкших ферментаций,
// вечерние напоминания о чекине и ночной рост плодов на дереве.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/project"
)

// jobTimeout ограничивает один запуск задачи.
const jobTimeout = 5 * time.Minute

// Projects - то, что задачам нужно от сервиса проектов.
type Projects interface {
	RefreshStatuses(ctx context.Context) (int, error)
	PendingReminders(ctx context.Context) ([]project.Reminder, error)
}

// Fruits - то, что задачам нужно от сервиса дерева.
type Fruits interface {
	GrowFruits(ctx context.Context, date time.Time) (int, error)
}

// Specs - cron-выражения задач.
type Specs struct {
	StatusRefresh string
	Reminders     string
	Fruits        string
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron     *cron.Cron
	loc      *time.Location
	specs    Specs
	projects Projects // nil - эко-энзим выключен
	fruits   Fruits   // nil - дерево выключено
	msg      common.Messenger
	now      func() time.Time
}

// NewScheduler создаёт планировщик в часовом поясе loc.
func NewScheduler(loc *time.Location, specs Specs, projects Projects, fruits Fruits, msg common.Messenger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		loc:      loc,
		specs:    specs,
		projects: projects,
		fruits:   fruits,
		msg:      msg,
		now:      time.Now,
	}
}

// Start регистрирует задачи и запускает cron.
func (s *Scheduler) Start(ctx context.Context) error {
	type job struct {
		name string
		spec string
		run  func(context.Context)
	}
	var list []job
	if s.projects != nil {
		list = append(list,
			job{"status_refresh", s.specs.StatusRefresh, s.RefreshStatuses},
			job{"reminders", s.specs.Reminders, s.SendReminders},
		)
	}
	if s.fruits != nil {
		list = append(list, job{"fruits", s.specs.Fruits, s.GrowFruits})
	}

	for _, j := range list {
		_, err := s.cron.AddFunc(j.spec, func() {
			runCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()
			j.run(runCtx)
		})
		if err != nil {
			return fmt.Errorf("задача %s (%q): %w", j.name, j.spec, err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"jobs":     len(list),
		"timezone": s.loc.String(),
	}).Info("Планировщик задач запущен")
	return nil
}

// Stop останавливает планировщик и ждёт выполняющиеся задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// RefreshStatuses завершает истёкшие ферментации.
func (s *Scheduler) RefreshStatuses(ctx context.Context) {
	n, err := s.projects.RefreshStatuses(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка обновления статусов")
		return
	}
	if n > 0 {
		log.WithField("completed", n).Info("[CRON] Ферментации завершены")
	}
}

// SendReminders напоминает о чекине тем, кто сегодня не отметился.
// Ошибка отправки одному пользователю не останавливает остальных.
func (s *Scheduler) SendReminders(ctx context.Context) {
	reminders, err := s.projects.PendingReminders(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка выборки напоминаний")
		return
	}

	sent := 0
	for _, r := range reminders {
		if err := s.msg.SendText(ctx, r.UserID, reminderText(r)); err != nil {
			log.WithError(err).WithField("user_id", r.UserID).Warn("[CRON] Напоминание не отправлено")
			continue
		}
		sent++
	}
	log.WithFields(log.Fields{
		"pending": len(reminders),
		"sent":    sent,
	}).Debug("[CRON] Напоминания отправлены")
}

// GrowFruits выращивает плоды за вчерашний день.
func (s *Scheduler) GrowFruits(ctx context.Context) {
	yesterday := common.Midnight(s.now(), s.loc).AddDate(0, 0, -1)
	n, err := s.fruits.GrowFruits(ctx, yesterday)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка роста плодов")
		return
	}
	log.WithFields(log.Fields{
		"date":  common.DateKey(yesterday, s.loc),
		"grown": n,
	}).Info("[CRON] Плоды выросли")
}

func reminderText(r project.Reminder) string {
	return fmt.Sprintf("🌿 День %d эко-энзима ещё не отмечен.\nОтправьте !чекин, чтобы не прервать серию.", r.Day)
}
