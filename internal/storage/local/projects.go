package local

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/timeline"
	"serotonyl.ru/eco-bot/internal/storage/kv"
)

type projectRecord struct {
	ID          string     `json:"id"`
	UserID      int64      `json:"userId"`
	WeightGrams int64      `json:"weightGrams"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Status      string     `json:"status"`
	IsClaimed   bool       `json:"isClaimed"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (r projectRecord) toModel() *project.Project {
	return &project.Project{
		ID:          r.ID,
		UserID:      r.UserID,
		WeightGrams: r.WeightGrams,
		StartedAt:   r.StartDate,
		EndsAt:      r.EndDate,
		Status:      project.ParseStatus(r.Status),
		IsClaimed:   r.IsClaimed,
		CreatedAt:   r.CreatedAt,
	}
}

type entryRecord struct {
	ID          string    `json:"id"`
	WeightGrams int64     `json:"weightGrams"`
	CreatedAt   time.Time `json:"createdAt"`
}

type checkinRecord struct {
	Day       int       `json:"day"`
	Checked   bool      `json:"checked"`
	CheckedAt time.Time `json:"timestamp"`
}

type photoRecord struct {
	Month      int       `json:"month"`
	Ref        string    `json:"photo"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// projects читает список проектов пользователя.
func (s *Store) projects(ctx context.Context, userID int64) ([]projectRecord, error) {
	var list []projectRecord
	if _, err := s.load(ctx, userKey(keyProjects, userID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// owner возвращает владельца проекта или common.ErrNotFound.
func (s *Store) owner(ctx context.Context, projectID string) (int64, error) {
	var userID int64
	ok, err := s.load(ctx, keyOwner+projectID, &userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, common.ErrNotFound
	}
	return userID, nil
}

// update находит проект, применяет fn и сохраняет список. Вызывается под s.mu.
func (s *Store) update(ctx context.Context, projectID string, fn func(*projectRecord) error) error {
	b := kv.NewBatch()
	if err := s.stageUpdate(ctx, b, projectID, fn); err != nil {
		return err
	}
	return s.kv.Apply(ctx, b)
}

// stageUpdate - как update, но новый список проектов только добавляется в пакет.
func (s *Store) stageUpdate(ctx context.Context, b *kv.Batch, projectID string, fn func(*projectRecord) error) error {
	userID, err := s.owner(ctx, projectID)
	if err != nil {
		return err
	}
	list, err := s.projects(ctx, userID)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID != projectID {
			continue
		}
		if err := fn(&list[i]); err != nil {
			return err
		}
		return stage(b, userKey(keyProjects, userID), list)
	}
	return common.ErrNotFound
}

// ListProjects возвращает проекты пользователя.
func (s *Store) ListProjects(ctx context.Context, userID int64) ([]*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.projects(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*project.Project, 0, len(list))
	for _, r := range list {
		out = append(out, r.toModel())
	}
	return out, nil
}

// GetProject возвращает проект по ID.
func (s *Store) GetProject(ctx context.Context, id string) (*project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getProject(ctx, id)
}

func (s *Store) getProject(ctx context.Context, id string) (*project.Project, error) {
	userID, err := s.owner(ctx, id)
	if err != nil {
		return nil, err
	}
	list, err := s.projects(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range list {
		if r.ID == id {
			return r.toModel(), nil
		}
	}
	return nil, common.ErrNotFound
}

// CreateProject сохраняет новый проект и присваивает ему ID.
func (s *Store) CreateProject(ctx context.Context, p *project.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.projects(ctx, p.UserID)
	if err != nil {
		return err
	}
	p.ID = uuid.NewString()
	list = append(list, projectRecord{
		ID:          p.ID,
		UserID:      p.UserID,
		WeightGrams: p.WeightGrams,
		StartDate:   p.StartedAt,
		EndDate:     p.EndsAt,
		Status:      string(p.Status),
		IsClaimed:   p.IsClaimed,
		CreatedAt:   p.CreatedAt,
	})
	b := kv.NewBatch()
	if err := stage(b, keyOwner+p.ID, p.UserID); err != nil {
		return err
	}
	if err := stage(b, userKey(keyProjects, p.UserID), list); err != nil {
		return err
	}
	if err := s.kv.Apply(ctx, b); err != nil {
		p.ID = ""
		return err
	}
	return nil
}

// StartProject переводит проект not_started → ongoing.
func (s *Store) StartProject(ctx context.Context, id string, start, end time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, func(r *projectRecord) error {
		if !project.ParseStatus(r.Status).CanAdvanceTo(project.StatusOngoing) {
			return common.ErrInvalidTransition
		}
		r.StartDate, r.EndDate = &start, &end
		r.Status = string(project.StatusOngoing)
		return nil
	})
}

// CompleteProject переводит проект ongoing → completed.
func (s *Store) CompleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(ctx, id, func(r *projectRecord) error {
		if !project.ParseStatus(r.Status).CanAdvanceTo(project.StatusCompleted) {
			return common.ErrInvalidTransition
		}
		r.Status = string(project.StatusCompleted)
		return nil
	})
}

// DeleteProject удаляет проект и все его записи.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.owner(ctx, id)
	if err != nil {
		return err
	}
	list, err := s.projects(ctx, userID)
	if err != nil {
		return err
	}
	kept := list[:0]
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	b := kv.NewBatch()
	if err := stage(b, userKey(keyProjects, userID), kept); err != nil {
		return err
	}
	for _, prefix := range []string{keyJournal, keyTimeline, keyPhotos, keyOwner} {
		b.Delete(prefix + id)
	}
	if err := s.kv.Apply(ctx, b); err != nil {
		return fmt.Errorf("удаление проекта %s: %w", id, err)
	}
	return nil
}

// AddEntry дописывает запись в журнал и увеличивает вес проекта.
func (s *Store) AddEntry(ctx context.Context, e *project.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var journal []entryRecord
	if _, err := s.load(ctx, keyJournal+e.ProjectID, &journal); err != nil {
		return err
	}
	id := uuid.NewString()
	journal = append(journal, entryRecord{ID: id, WeightGrams: e.WeightGrams, CreatedAt: e.CreatedAt})

	// Вес проекта и журнал меняются вместе: сумма записей всегда равна весу
	b := kv.NewBatch()
	err := s.stageUpdate(ctx, b, e.ProjectID, func(r *projectRecord) error {
		r.WeightGrams += e.WeightGrams
		return nil
	})
	if err != nil {
		return err
	}
	if err := stage(b, keyJournal+e.ProjectID, journal); err != nil {
		return err
	}
	if err := s.kv.Apply(ctx, b); err != nil {
		return err
	}
	e.ID = id
	return nil
}

// ListEntries возвращает журнал проекта.
func (s *Store) ListEntries(ctx context.Context, projectID string) ([]*project.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var journal []entryRecord
	if _, err := s.load(ctx, keyJournal+projectID, &journal); err != nil {
		return nil, err
	}
	out := make([]*project.Entry, 0, len(journal))
	for _, r := range journal {
		out = append(out, &project.Entry{ID: r.ID, ProjectID: projectID, WeightGrams: r.WeightGrams, CreatedAt: r.CreatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveCheckin отмечает день. Отмеченный день не перезаписывается.
func (s *Store) SaveCheckin(ctx context.Context, projectID string, c timeline.Checkin) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := map[string]checkinRecord{}
	if _, err := s.load(ctx, keyTimeline+projectID, &days); err != nil {
		return false, err
	}
	key := fmt.Sprintf("%d", c.Day)
	if have, ok := days[key]; ok && have.Checked {
		return false, nil
	}
	days[key] = checkinRecord{Day: c.Day, Checked: c.Checked, CheckedAt: c.CheckedAt}
	if err := s.save(ctx, keyTimeline+projectID, days); err != nil {
		return false, err
	}
	return true, nil
}

// ListCheckins возвращает отметки проекта.
func (s *Store) ListCheckins(ctx context.Context, projectID string) ([]timeline.Checkin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := map[string]checkinRecord{}
	if _, err := s.load(ctx, keyTimeline+projectID, &days); err != nil {
		return nil, err
	}
	out := make([]timeline.Checkin, 0, len(days))
	for _, r := range days {
		out = append(out, timeline.Checkin{Day: r.Day, Checked: r.Checked, CheckedAt: r.CheckedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

// SavePhoto сохраняет фото месяца, заменяя прежнее.
func (s *Store) SavePhoto(ctx context.Context, projectID string, p timeline.Photo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos := map[string]photoRecord{}
	if _, err := s.load(ctx, keyPhotos+projectID, &photos); err != nil {
		return err
	}
	photos[fmt.Sprintf("%d", p.Month)] = photoRecord{Month: p.Month, Ref: p.Ref, UploadedAt: p.UploadedAt}
	return s.save(ctx, keyPhotos+projectID, photos)
}

// ListPhotos возвращает фото проекта.
func (s *Store) ListPhotos(ctx context.Context, projectID string) ([]timeline.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos := map[string]photoRecord{}
	if _, err := s.load(ctx, keyPhotos+projectID, &photos); err != nil {
		return nil, err
	}
	out := make([]timeline.Photo, 0, len(photos))
	for _, r := range photos {
		out = append(out, timeline.Photo{Month: r.Month, Ref: r.Ref, UploadedAt: r.UploadedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Claim ставит флаг бонуса и начисляет баллы одним пакетом.
func (s *Store) Claim(ctx context.Context, projectID string, userID int64, bonus int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := kv.NewBatch()
	claimed := false
	err := s.stageUpdate(ctx, b, projectID, func(r *projectRecord) error {
		if r.IsClaimed {
			return nil
		}
		r.IsClaimed = true
		claimed = true
		return nil
	})
	if err != nil || !claimed {
		return false, err
	}

	if err := s.stageBalance(ctx, b, userID, bonus, economy.TxTypeEcoClaim, "Бонус за 90 дней эко-энзима"); err != nil {
		return false, err
	}
	if err := s.kv.Apply(ctx, b); err != nil {
		return false, err
	}
	return true, nil
}
