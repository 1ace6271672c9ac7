// Package tree - service.go содержит логику трекера: задачи дня,
// листья, рост и сбор плодов, серия дней и недельный прогресс.
package tree

import (
	"context"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/eco-bot/internal/common"
)

// Значения по умолчанию
const (
	DefaultFruitPoints     = 10 // Баллов за плод
	DefaultMilestonePoints = 50 // Баллов за серию
	DefaultMilestoneDays   = 30 // Длина серии
	LeafWindowDays         = 30 // За сколько дней показывать листья
)

// Options - настройки наград дерева.
type Options struct {
	FruitPoints     int64
	MilestonePoints int64
	MilestoneDays   int
}

// Service управляет деревом задач.
type Service struct {
	repo Repository
	loc  *time.Location
	opts Options
	now  func() time.Time
}

// NewService создаёт сервис дерева. Нулевые опции заменяются значениями по умолчанию.
func NewService(repo Repository, loc *time.Location, opts Options) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if opts.FruitPoints <= 0 {
		opts.FruitPoints = DefaultFruitPoints
	}
	if opts.MilestonePoints <= 0 {
		opts.MilestonePoints = DefaultMilestonePoints
	}
	if opts.MilestoneDays <= 0 {
		opts.MilestoneDays = DefaultMilestoneDays
	}
	return &Service{repo: repo, loc: loc, opts: opts, now: time.Now}
}

// SetClock подменяет источник текущего времени.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Location возвращает часовой пояс сервиса.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) today() string {
	return common.DateKey(s.now(), s.loc)
}

// Today возвращает задачи на сегодня, создавая их из каталога при первом обращении.
func (s *Service) Today(ctx context.Context, userID int64) ([]*Task, error) {
	date := s.today()
	tasks := make([]*Task, 0, len(DailyCatalog))
	for _, t := range DailyCatalog {
		tasks = append(tasks, &Task{
			UserID:    userID,
			Date:      date,
			Code:      t.Code,
			Title:     t.Title,
			Category:  t.Category,
			CreatedAt: s.now(),
		})
	}
	if err := s.repo.EnsureTasks(ctx, tasks); err != nil {
		return nil, fmt.Errorf("создание задач дня: %w", err)
	}

	list, err := s.repo.ListTasks(ctx, userID, date, date)
	if err != nil {
		return nil, fmt.Errorf("задачи дня: %w", err)
	}
	sortByCatalog(list)
	return list, nil
}

// CompleteTask отмечает n-ю (с 1) задачу дня. Повторная отметка ничего не меняет.
func (s *Service) CompleteTask(ctx context.Context, userID int64, n int) (task *Task, already bool, err error) {
	tasks, err := s.Today(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if n < 1 || n > len(tasks) {
		return nil, false, common.ErrNotFound
	}

	task = tasks[n-1]
	if task.Done {
		return task, true, nil
	}

	at := s.now()
	done, err := s.repo.CompleteTask(ctx, userID, task.ID, at)
	if err != nil {
		return nil, false, fmt.Errorf("отметка задачи: %w", err)
	}
	task.Done = true
	if done {
		task.DoneAt = &at
	}
	return task, !done, nil
}

// Progress - выполнение задач за сегодня.
type Progress struct {
	Completed int
	Total     int
	Percent   int
}

// TodayProgress считает, сколько задач дня выполнено.
func (s *Service) TodayProgress(ctx context.Context, userID int64) (Progress, error) {
	tasks, err := s.Today(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percent = (p.Completed*200 + p.Total) / (p.Total * 2)
	}
	return p, nil
}

// Leaves строит листья из строк чек-листа за последние 30 дней.
func (s *Service) Leaves(ctx context.Context, userID int64) ([]Leaf, error) {
	now := s.now()
	from := common.DateKey(now.AddDate(0, 0, -(LeafWindowDays - 1)), s.loc)
	tasks, err := s.repo.ListTasks(ctx, userID, from, common.DateKey(now, s.loc))
	if err != nil {
		return nil, fmt.Errorf("листья: %w", err)
	}
	return LeavesOf(tasks), nil
}

// LeavesOf превращает строки чек-листа в листья, убирая повторы по ID.
func LeavesOf(tasks []*Task) []Leaf {
	seen := make(map[string]bool, len(tasks))
	leaves := make([]Leaf, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		color := LeafYellow
		if t.Done {
			color = LeafGreen
		}
		leaves = append(leaves, Leaf{ChecklistID: t.ID, Date: t.Date, Color: color})
	}
	return leaves
}

// GrowFruits выращивает по плоду каждому, кто выполнил все задачи за день date.
// Повторный запуск за тот же день новых плодов не создаёт.
func (s *Service) GrowFruits(ctx context.Context, date time.Time) (int, error) {
	day := common.DateKey(date, s.loc)
	users, err := s.repo.UsersWithFullDay(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("выборка пользователей: %w", err)
	}

	grown := 0
	for _, userID := range users {
		f := &Fruit{UserID: userID, Date: day, Points: s.opts.FruitPoints, CreatedAt: s.now()}
		created, err := s.repo.CreateFruit(ctx, f)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id": userID,
				"date":    day,
			}).Warn("Не удалось вырастить плод")
			continue
		}
		if created {
			grown++
		}
	}
	return grown, nil
}

// Tree возвращает состояние дерева.
func (s *Service) Tree(ctx context.Context, userID int64) (*View, error) {
	leaves, err := s.Leaves(ctx, userID)
	if err != nil {
		return nil, err
	}
	fruits, err := s.repo.ListFruits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("плоды: %w", err)
	}
	harvested, err := s.repo.Harvested(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("урожай: %w", err)
	}

	v := &View{Leaves: leaves, Harvested: harvested, Points: int64(harvested) * s.opts.FruitPoints}
	for _, f := range fruits {
		if !f.Claimed {
			v.Fruits = append(v.Fruits, f)
		}
	}
	sort.Slice(v.Fruits, func(i, j int) bool { return v.Fruits[i].Date < v.Fruits[j].Date })
	return v, nil
}

// ClaimFruit собирает n-й (с 1) несобранный плод и возвращает начисленные баллы.
func (s *Service) ClaimFruit(ctx context.Context, userID int64, n int) (int64, error) {
	v, err := s.Tree(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n < 1 || n > len(v.Fruits) {
		return 0, common.ErrNotFound
	}

	f := v.Fruits[n-1]
	claimed, err := s.repo.ClaimFruit(ctx, userID, f.ID)
	if err != nil {
		return 0, fmt.Errorf("сбор плода: %w", err)
	}
	if !claimed {
		return 0, common.ErrAlreadyClaimed
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"fruit_id": f.ID,
		"points":   f.Points,
	}).Info("Плод собран")
	return f.Points, nil
}

// Streak - серия подряд идущих дней с выполненными задачами,
// заканчивающаяся последним таким днём.
func (s *Service) Streak(ctx context.Context, userID int64) (int, error) {
	dates, err := s.repo.CompletionDates(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("дни с задачами: %w", err)
	}
	return StreakOf(dates), nil
}

// StreakOf считает серию по списку дат (2006-01-02). Повторы и мусор игнорируются.
func StreakOf(dates []string) int {
	days := make(map[time.Time]bool, len(dates))
	var last time.Time
	for _, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		days[t] = true
		if t.After(last) {
			last = t
		}
	}
	if len(days) == 0 {
		return 0
	}

	streak := 0
	for cur := last; days[cur]; cur = cur.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

// Milestone возвращает состояние награды за серию в текущем месяце.
func (s *Service) Milestone(ctx context.Context, userID int64) (*Milestone, error) {
	streak, err := s.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}
	period := s.now().In(s.loc).Format("2006-01")
	claimed, err := s.repo.MilestoneClaimed(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("награда за серию: %w", err)
	}

	m := &Milestone{
		Current: min(streak, s.opts.MilestoneDays),
		Target:  s.opts.MilestoneDays,
		Points:  s.opts.MilestonePoints,
		Period:  period,
		Claimed: claimed,
	}
	m.Ready = !claimed && streak >= s.opts.MilestoneDays
	return m, nil
}

// ClaimMilestone выдаёт награду за серию, один раз за месяц.
func (s *Service) ClaimMilestone(ctx context.Context, userID int64) (int64, error) {
	m, err := s.Milestone(ctx, userID)
	if err != nil {
		return 0, err
	}
	if m.Claimed {
		return 0, common.ErrAlreadyClaimed
	}
	if !m.Ready {
		return 0, common.ErrNotEligible
	}

	claimed, err := s.repo.ClaimMilestone(ctx, userID, m.Period, m.Points)
	if err != nil {
		return 0, fmt.Errorf("получение награды: %w", err)
	}
	if !claimed {
		return 0, common.ErrAlreadyClaimed
	}
	return m.Points, nil
}

// WeeklyProgress возвращает дни текущей недели с понедельника по воскресенье.
func (s *Service) WeeklyProgress(ctx context.Context, userID int64) ([]WeekDay, error) {
	dates, err := s.repo.CompletionDates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("дни с задачами: %w", err)
	}
	return WeekOf(s.now(), s.loc, dates), nil
}

// WeekOf строит недельный прогресс для недели, в которую попадает now.
func WeekOf(now time.Time, loc *time.Location, completed []string) []WeekDay {
	done := make(map[string]bool, len(completed))
	for _, d := range completed {
		done[d] = true
	}

	today := common.Midnight(now, loc)
	offset := (int(today.Weekday()) + 6) % 7 // понедельник = 0
	monday := today.AddDate(0, 0, -offset)

	week := make([]WeekDay, 7)
	for i := range week {
		day := monday.AddDate(0, 0, i)
		status := DayPending
		switch {
		case done[common.DateKey(day, loc)]:
			status = DayDone
		case day.Before(today):
			status = DayMissed
		}
		week[i] = WeekDay{Date: day, Status: status}
	}
	return week
}

// sortByCatalog упорядочивает задачи дня как в каталоге.
func sortByCatalog(tasks []*Task) {
	order := make(map[string]int, len(DailyCatalog))
	for i, t := range DailyCatalog {
		order[t.Code] = i
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return order[tasks[i].Code] < order[tasks[j].Code]
	})
}
