package remote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/fermentation"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

// projectDTO - проект в формате бэкенда. Необязательные поля могут отсутствовать.
type projectDTO struct {
	ID                 string     `json:"_id"`
	UserID             string     `json:"userId"`
	OrganicWasteWeight float64    `json:"organicWasteWeight"`
	StartDate          *time.Time `json:"startDate"`
	EndDate            *time.Time `json:"endDate"`
	Status             string     `json:"status"`
	IsClaimed          bool       `json:"isClaimed"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// projectEnvelope принимает и «голый» проект, и {"project": {...}}.
type projectEnvelope struct {
	Project *projectDTO `json:"project"`
	projectDTO
}

func (e *projectEnvelope) unwrap() *projectDTO {
	if e.Project != nil {
		return e.Project
	}
	return &e.projectDTO
}

// toModel переводит проект в модель. Бэкенд хранит свой строковый ID владельца;
// если он не число, владельцем считается owner (пользователь, чей токен).
func (d *projectDTO) toModel(owner int64) *project.Project {
	userID, err := strconv.ParseInt(d.UserID, 10, 64)
	if err != nil {
		if d.UserID != "" && owner == 0 {
			log.WithFields(log.Fields{
				"project_id": d.ID,
				"owner":      d.UserID,
			}).Debug("Владелец проекта не числовой, ID пользователя неизвестен")
		}
		userID = owner
	}
	return &project.Project{
		ID:          d.ID,
		UserID:      userID,
		WeightGrams: fermentation.KgToGrams(d.OrganicWasteWeight),
		StartedAt:   d.StartDate,
		EndsAt:      d.EndDate,
		Status:      project.ParseStatus(d.Status),
		IsClaimed:   d.IsClaimed,
		CreatedAt:   d.CreatedAt,
	}
}

// uploadDTO - загрузка: запись журнала (weight > 0) или фото месяца.
type uploadDTO struct {
	ID          string    `json:"_id,omitempty"`
	ProjectID   string    `json:"ecoenzimProjectId"`
	Weight      float64   `json:"weight,omitempty"`
	MonthNumber int       `json:"monthNumber,omitempty"`
	PhotoURL    string    `json:"photoUrl,omitempty"`
	Uploaded    time.Time `json:"uploadedDate"`
}

type checkinDTO struct {
	Day       int       `json:"day"`
	Checked   bool      `json:"checked"`
	Timestamp time.Time `json:"timestamp"`
}

func projectPath(id string, suffix string) string {
	return "/ecoenzim/projects/" + url.PathEscape(id) + suffix
}

// ListProjects возвращает проекты пользователя токена.
// Бэкенд сам отбирает проекты по токену, userID становится владельцем в модели.
func (c *Client) ListProjects(ctx context.Context, userID int64) ([]*project.Project, error) {
	var list []projectDTO
	if _, err := c.do(ctx, fasthttp.MethodGet, "/ecoenzim/projects", nil, &list); err != nil {
		return nil, err
	}
	out := make([]*project.Project, 0, len(list))
	for i := range list {
		out = append(out, list[i].toModel(userID))
	}
	return out, nil
}

// GetProject возвращает проект по ID.
func (c *Client) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var env projectEnvelope
	if _, err := c.do(ctx, fasthttp.MethodGet, projectPath(id, ""), nil, &env); err != nil {
		return nil, err
	}
	return env.unwrap().toModel(0), nil
}

// CreateProject создаёт проект на бэкенде.
func (c *Client) CreateProject(ctx context.Context, p *project.Project) error {
	me, err := c.identity(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{
		"userId":             me.ID,
		"organicWasteWeight": fermentation.GramsToKg(p.WeightGrams),
		"status":             string(p.Status),
	}
	var env projectEnvelope
	if _, err := c.do(ctx, fasthttp.MethodPost, "/ecoenzim/projects", body, &env); err != nil {
		return err
	}
	created := env.unwrap()
	if created.ID == "" {
		return fmt.Errorf("%w: бэкенд не вернул ID проекта", common.ErrBackend)
	}
	p.ID = created.ID
	if !created.CreatedAt.IsZero() {
		p.CreatedAt = created.CreatedAt
	}
	return nil
}

// StartProject запускает ферментацию.
func (c *Client) StartProject(ctx context.Context, id string, start, end time.Time) error {
	body := map[string]any{"startDate": start, "endDate": end}
	_, err := c.do(ctx, fasthttp.MethodPatch, projectPath(id, "/start"), body, nil)
	if errors.Is(err, errConflict) {
		return common.ErrInvalidTransition
	}
	return err
}

// CompleteProject завершает ферментацию.
func (c *Client) CompleteProject(ctx context.Context, id string) error {
	_, err := c.do(ctx, fasthttp.MethodPatch, projectPath(id, "/complete"), nil, nil)
	if errors.Is(err, errConflict) {
		return common.ErrInvalidTransition
	}
	return err
}

// DeleteProject удаляет проект; бэкенд удаляет связанные записи сам.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	_, err := c.do(ctx, fasthttp.MethodDelete, projectPath(id, ""), nil, nil)
	return err
}

func (c *Client) uploads(ctx context.Context, projectID string) ([]uploadDTO, error) {
	var list []uploadDTO
	path := "/ecoenzim/uploads/project/" + url.PathEscape(projectID)
	if _, err := c.do(ctx, fasthttp.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AddEntry создаёт загрузку с весом; бэкенд прибавляет вес к проекту.
func (c *Client) AddEntry(ctx context.Context, e *project.Entry) error {
	body := uploadDTO{
		ProjectID: e.ProjectID,
		Weight:    fermentation.GramsToKg(e.WeightGrams),
		Uploaded:  e.CreatedAt,
	}
	var env struct {
		Upload *uploadDTO `json:"upload"`
		uploadDTO
	}
	if _, err := c.do(ctx, fasthttp.MethodPost, "/ecoenzim/uploads", body, &env); err != nil {
		return err
	}
	if env.Upload != nil {
		e.ID = env.Upload.ID
	} else {
		e.ID = env.ID
	}
	return nil
}

// ListEntries возвращает загрузки с весом.
func (c *Client) ListEntries(ctx context.Context, projectID string) ([]*project.Entry, error) {
	list, err := c.uploads(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var out []*project.Entry
	for _, u := range list {
		if u.Weight <= 0 {
			continue
		}
		out = append(out, &project.Entry{
			ID:          u.ID,
			ProjectID:   projectID,
			WeightGrams: fermentation.KgToGrams(u.Weight),
			CreatedAt:   u.Uploaded,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// SaveCheckin отмечает день. 201 - новая отметка, 200 - день уже был отмечен.
func (c *Client) SaveCheckin(ctx context.Context, projectID string, rec timeline.Checkin) (bool, error) {
	body := checkinDTO{Day: rec.Day, Checked: rec.Checked, Timestamp: rec.CheckedAt}
	code, err := c.do(ctx, fasthttp.MethodPost, projectPath(projectID, "/checkins"), body, nil)
	if errors.Is(err, errConflict) {
		return false, common.ErrDayLocked
	}
	if err != nil {
		return false, err
	}
	return code == fasthttp.StatusCreated, nil
}

// ListCheckins возвращает отметки проекта.
func (c *Client) ListCheckins(ctx context.Context, projectID string) ([]timeline.Checkin, error) {
	var list []checkinDTO
	if _, err := c.do(ctx, fasthttp.MethodGet, projectPath(projectID, "/checkins"), nil, &list); err != nil {
		return nil, err
	}
	out := make([]timeline.Checkin, 0, len(list))
	for _, d := range list {
		out = append(out, timeline.Checkin{Day: d.Day, Checked: d.Checked, CheckedAt: d.Timestamp})
	}
	return out, nil
}

// SavePhoto создаёт загрузку с фото; читается последняя загрузка месяца.
func (c *Client) SavePhoto(ctx context.Context, projectID string, p timeline.Photo) error {
	body := uploadDTO{
		ProjectID:   projectID,
		MonthNumber: p.Month,
		PhotoURL:    p.Ref,
		Uploaded:    p.UploadedAt,
	}
	_, err := c.do(ctx, fasthttp.MethodPost, "/ecoenzim/uploads", body, nil)
	return err
}

// ListPhotos возвращает загрузки с фото за месяцы.
func (c *Client) ListPhotos(ctx context.Context, projectID string) ([]timeline.Photo, error) {
	list, err := c.uploads(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var out []timeline.Photo
	for _, u := range list {
		if u.PhotoURL == "" || !timeline.ValidMonth(u.MonthNumber) {
			continue
		}
		out = append(out, timeline.Photo{Month: u.MonthNumber, Ref: u.PhotoURL, UploadedAt: u.Uploaded})
	}
	return out, nil
}

// Claim просит бэкенд выдать бонус. 409 - бонус уже получен.
// Баллы начисляет бэкенд, bonus передаётся для сверки.
func (c *Client) Claim(ctx context.Context, projectID string, _ int64, bonus int64) (bool, error) {
	body := map[string]any{"points": bonus}
	_, err := c.do(ctx, fasthttp.MethodPost, projectPath(projectID, "/claim"), body, nil)
	if errors.Is(err, errConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
