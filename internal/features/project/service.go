// Package project - service.go содержит бизнес-логику проекта.
// Все проверки предусловий выполняются здесь, до обращения к хранилищу:
// при отказе состояние не меняется.
package project

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/fermentation"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

// DefaultClaimBonus - бонус за прохождение всех 90 дней.
const DefaultClaimBonus = 150

// Service управляет проектами эко-энзима.
type Service struct {
	repo  Repository     // Хранилище проектов
	loc   *time.Location // Часовой пояс для календарных дней
	bonus int64          // Итоговый бонус
	now   func() time.Time
}

// NewService создаёт сервис проектов.
func NewService(repo Repository, loc *time.Location, bonus int64) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if bonus <= 0 {
		bonus = DefaultClaimBonus
	}
	return &Service{repo: repo, loc: loc, bonus: bonus, now: time.Now}
}

// SetClock подменяет источник текущего времени (для тестов и CLI).
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location возвращает часовой пояс сервиса.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Bonus возвращает размер итогового бонуса.
func (s *Service) Bonus() int64 {
	return s.bonus
}

// ActiveProject возвращает самый свежий проект пользователя.
// Если нет ни одного - common.ErrNoProject.
func (s *Service) ActiveProject(ctx context.Context, userID int64) (*Project, error) {
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("список проектов: %w", err)
	}
	if len(projects) == 0 {
		return nil, common.ErrNoProject
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	p := projects[0]
	s.refresh(ctx, p)
	return p, nil
}

// refresh завершает проект, у которого истекли 90 дней.
// Ошибка хранилища не прерывает чтение: логируем и продолжаем.
func (s *Service) refresh(ctx context.Context, p *Project) {
	harvest, ok := p.Clock().Harvest()
	if p.Status != StatusOngoing || !ok || s.now().Before(harvest) {
		return
	}
	if err := s.repo.CompleteProject(ctx, p.ID); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"project_id": p.ID,
			"user_id":    p.UserID,
		}).Warn("Не удалось обновить статус проекта")
		return
	}
	p.Status = StatusCompleted
}

// CreateProject создаёт новый проект. Запрещено, пока есть незавершённый.
func (s *Service) CreateProject(ctx context.Context, userID int64) (*Project, error) {
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("список проектов: %w", err)
	}
	for _, p := range projects {
		s.refresh(ctx, p)
		if p.IsOpen() {
			return nil, common.ErrActiveProjectExists
		}
	}

	p := &Project{
		UserID:    userID,
		Status:    StatusNotStarted,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("создание проекта: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"project_id": p.ID,
	}).Info("Создан проект эко-энзима")
	return p, nil
}

// AddEntry записывает отходы в журнал. Без проекта создаёт новый.
// После старта ферментации добавлять отходы нельзя.
func (s *Service) AddEntry(ctx context.Context, userID int64, grams int64) (*Project, *Entry, error) {
	if grams <= 0 {
		return nil, nil, common.ErrInvalidWeight
	}

	p, err := s.ActiveProject(ctx, userID)
	if errors.Is(err, common.ErrNoProject) || (err == nil && p.Status == StatusCompleted) {
		p, err = s.CreateProject(ctx, userID)
	}
	if err != nil {
		return nil, nil, err
	}
	if p.Status != StatusNotStarted {
		return nil, nil, common.ErrFermentationStarted
	}

	e := &Entry{ProjectID: p.ID, WeightGrams: grams, CreatedAt: s.now()}
	if err := s.repo.AddEntry(ctx, e); err != nil {
		return nil, nil, fmt.Errorf("запись в журнал: %w", err)
	}

	updated, err := s.repo.GetProject(ctx, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("чтение проекта: %w", err)
	}
	return updated, e, nil
}

// Journal возвращает проект и его журнал отходов.
func (s *Service) Journal(ctx context.Context, userID int64) (*Project, []*Entry, error) {
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	entries, err := s.repo.ListEntries(ctx, p.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("журнал: %w", err)
	}
	return p, entries, nil
}

// StartFermentation запускает 90-дневную ферментацию.
func (s *Service) StartFermentation(ctx context.Context, userID int64) (*Project, error) {
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusNotStarted {
		return nil, common.ErrAlreadyStarted
	}
	if p.WeightGrams <= 0 {
		return nil, common.ErrNoWaste
	}

	start := s.now()
	end := start.Add(fermentation.Duration)
	if err := s.repo.StartProject(ctx, p.ID, start, end); err != nil {
		return nil, fmt.Errorf("старт ферментации: %w", err)
	}
	p.StartedAt, p.EndsAt, p.Status = &start, &end, StatusOngoing

	log.WithFields(log.Fields{
		"user_id":    userID,
		"project_id": p.ID,
		"weight_g":   p.WeightGrams,
		"harvest":    end.Format(time.RFC3339),
	}).Info("Ферментация запущена")
	return p, nil
}

// Overview - снимок состояния проекта для экрана «эко».
type Overview struct {
	Project       *Project
	Recipe        fermentation.Recipe
	Active        bool // Ферментация запущена
	DaysRemaining int
	DaysCompleted int
	Percent       int
	CurrentDay    int // Номер дня таймлайна (0 - не начался)
	Month         int // Текущий месяц таймлайна
}

// Overview собирает снимок активного проекта.
func (s *Service) Overview(ctx context.Context, userID int64) (*Overview, error) {
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.overviewOf(p), nil
}

func (s *Service) overviewOf(p *Project) *Overview {
	now := s.now()
	clock := p.Clock()
	o := &Overview{
		Project:       p,
		Recipe:        fermentation.NewRecipe(p.WeightKg()),
		Active:        clock.IsActive(),
		DaysRemaining: clock.DaysRemaining(now),
		DaysCompleted: clock.DaysCompleted(now),
		Percent:       clock.ProgressPercent(now),
	}
	if harvest, ok := clock.Harvest(); ok {
		o.CurrentDay = timeline.CurrentDayIndex(timeline.StartDate(harvest, s.loc), now, s.loc)
		o.Month = timeline.MonthOf(o.CurrentDay)
	}
	return o
}

// TimelineView - состояние таймлайна проекта.
type TimelineView struct {
	Project     *Project
	Start       time.Time // Полночь первого дня
	CurrentDay  int
	Checkins    timeline.Checkins
	Photos      timeline.Photos
	Months      []timeline.MonthSummary
	Streak      int
	Overall     int
	Eligibility timeline.Eligibility
}

// Timeline загружает таймлайн активного проекта.
// До старта ферментации - common.ErrTimelineInactive.
func (s *Service) Timeline(ctx context.Context, userID int64) (*TimelineView, error) {
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.timelineOf(ctx, p)
}

func (s *Service) timelineOf(ctx context.Context, p *Project) (*TimelineView, error) {
	harvest, ok := p.Clock().Harvest()
	if !ok {
		return nil, common.ErrTimelineInactive
	}

	checkins, err := s.repo.ListCheckins(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("чекины: %w", err)
	}
	photos, err := s.repo.ListPhotos(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("фото: %w", err)
	}

	v := &TimelineView{
		Project:  p,
		Start:    timeline.StartDate(harvest, s.loc),
		Checkins: timeline.IndexCheckins(checkins),
		Photos:   timeline.IndexPhotos(photos),
	}
	v.CurrentDay = timeline.CurrentDayIndex(v.Start, s.now(), s.loc)
	for m := 1; m <= timeline.TotalMonths; m++ {
		v.Months = append(v.Months, timeline.SummarizeMonth(v.Checkins, v.Photos, m))
	}
	v.Streak = timeline.Streak(v.Checkins)
	v.Overall = timeline.OverallPercent(v.Checkins)
	v.Eligibility = timeline.CheckEligibility(v.Checkins, v.Photos, p.IsClaimed)
	return v, nil
}

// CheckinResult - итог отметки дня.
type CheckinResult struct {
	Day            int  // Отмеченный день
	AlreadyChecked bool // День был отмечен раньше, ничего не изменилось
	View           *TimelineView
}

// RecordCheckin отмечает день таймлайна. day=0 - текущий день.
// Повторная отметка ничего не меняет; ненаступивший день отклоняется.
func (s *Service) RecordCheckin(ctx context.Context, userID int64, day int) (*CheckinResult, error) {
	v, err := s.Timeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	if day == 0 {
		day = v.CurrentDay
		if day == 0 {
			return nil, common.ErrDayLocked
		}
	}
	if !timeline.ValidDay(day) {
		return nil, common.ErrInvalidDay
	}
	if !timeline.IsDayUnlocked(day, v.CurrentDay) {
		return nil, common.ErrDayLocked
	}

	res := &CheckinResult{Day: day, View: v}
	if v.Checkins.IsChecked(day) {
		res.AlreadyChecked = true
		return res, nil
	}

	rec := timeline.Checkin{Day: day, Checked: true, CheckedAt: s.now()}
	inserted, err := s.repo.SaveCheckin(ctx, v.Project.ID, rec)
	if err != nil {
		return nil, fmt.Errorf("сохранение чекина: %w", err)
	}
	if !inserted {
		res.AlreadyChecked = true
	}

	res.View, err = s.timelineOf(ctx, v.Project)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RecordMonthlyPhoto сохраняет фото месяца, заменяя прежнее.
// month=0 - месяц текущего дня таймлайна.
func (s *Service) RecordMonthlyPhoto(ctx context.Context, userID int64, month int, ref string) (int, error) {
	if ref == "" {
		return 0, common.ErrEmptyPhoto
	}
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return 0, err
	}

	if month == 0 {
		o := s.overviewOf(p)
		if !o.Active {
			return 0, common.ErrTimelineInactive
		}
		month = timeline.MonthOf(o.CurrentDay)
	}
	if !timeline.ValidMonth(month) {
		return 0, common.ErrInvalidMonth
	}

	photo := timeline.Photo{Month: month, Ref: ref, UploadedAt: s.now()}
	if err := s.repo.SavePhoto(ctx, p.ID, photo); err != nil {
		return 0, fmt.Errorf("сохранение фото: %w", err)
	}
	return month, nil
}

// Claim выдаёт итоговый бонус один раз.
// Повторный вызов - common.ErrAlreadyClaimed, без условий - common.ErrNotEligible.
func (s *Service) Claim(ctx context.Context, userID int64) (int64, error) {
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return 0, err
	}
	if p.IsClaimed {
		return 0, common.ErrAlreadyClaimed
	}

	v, err := s.timelineOf(ctx, p)
	if errors.Is(err, common.ErrTimelineInactive) {
		return 0, common.ErrNotEligible
	}
	if err != nil {
		return 0, err
	}
	if !v.Eligibility.IsReady {
		return 0, common.ErrNotEligible
	}

	claimed, err := s.repo.Claim(ctx, p.ID, userID, s.bonus)
	if err != nil {
		return 0, fmt.Errorf("получение бонуса: %w", err)
	}
	if !claimed {
		return 0, common.ErrAlreadyClaimed
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"project_id": p.ID,
		"bonus":      s.bonus,
	}).Info("Итоговый бонус выдан")
	return s.bonus, nil
}

// Reset удаляет активный проект со всеми записями.
func (s *Service) Reset(ctx context.Context, userID int64) error {
	p, err := s.ActiveProject(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, p.ID); err != nil {
		return fmt.Errorf("удаление проекта: %w", err)
	}
	log.WithFields(log.Fields{
		"user_id":    userID,
		"project_id": p.ID,
	}).Info("Проект сброшен")
	return nil
}

// RefreshStatuses завершает все проекты с истёкшей ферментацией.
// Нужен StatusLister; без него возвращает 0.
func (s *Service) RefreshStatuses(ctx context.Context) (int, error) {
	lister, ok := s.repo.(StatusLister)
	if !ok {
		return 0, nil
	}
	ongoing, err := lister.ListByStatus(ctx, StatusOngoing)
	if err != nil {
		return 0, fmt.Errorf("выборка проектов: %w", err)
	}

	completed := 0
	for _, p := range ongoing {
		s.refresh(ctx, p)
		if p.Status == StatusCompleted {
			completed++
		}
	}
	return completed, nil
}

// Reminder - кому напомнить о чекине.
type Reminder struct {
	UserID int64
	Day    int // Текущий день таймлайна
}

// PendingReminders ищет пользователей с идущей ферментацией,
// которые сегодня ещё не отметились.
func (s *Service) PendingReminders(ctx context.Context) ([]Reminder, error) {
	lister, ok := s.repo.(StatusLister)
	if !ok {
		return nil, nil
	}
	ongoing, err := lister.ListByStatus(ctx, StatusOngoing)
	if err != nil {
		return nil, fmt.Errorf("выборка проектов: %w", err)
	}

	var out []Reminder
	for _, p := range ongoing {
		v, err := s.timelineOf(ctx, p)
		if err != nil {
			log.WithError(err).WithField("project_id", p.ID).Warn("Пропускаем напоминание")
			continue
		}
		if v.CurrentDay == 0 || v.Checkins.IsChecked(v.CurrentDay) {
			continue
		}
		out = append(out, Reminder{UserID: p.UserID, Day: v.CurrentDay})
	}
	return out, nil
}
