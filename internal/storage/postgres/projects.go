package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

const projectColumns = `id, user_id, weight_grams, started_at, ends_at, status, is_claimed, created_at`

// ProjectRepository работает с таблицами eco_projects, eco_entries, eco_checkins и eco_photos.
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository создаёт репозиторий проектов.
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func scanProject(row scanner) (*project.Project, error) {
	var p project.Project
	var status string
	err := row.Scan(&p.ID, &p.UserID, &p.WeightGrams, &p.StartedAt, &p.EndsAt, &status, &p.IsClaimed, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = project.ParseStatus(status)
	return &p, nil
}

func (r *ProjectRepository) query(ctx context.Context, sql string, args ...any) ([]*project.Project, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProjects возвращает проекты пользователя по времени создания.
func (r *ProjectRepository) ListProjects(ctx context.Context, userID int64) ([]*project.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM eco_projects WHERE user_id = $1 ORDER BY created_at`, userID)
}

// ListByStatus возвращает проекты всех пользователей в статусе status.
func (r *ProjectRepository) ListByStatus(ctx context.Context, status project.Status) ([]*project.Project, error) {
	return r.query(ctx, `SELECT `+projectColumns+` FROM eco_projects WHERE status = $1 ORDER BY created_at`, string(status))
}

// GetProject возвращает проект по ID.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (*project.Project, error) {
	p, err := scanProject(r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM eco_projects WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, common.ErrNotFound)
	}
	return p, nil
}

// CreateProject вставляет проект и заполняет ID.
func (r *ProjectRepository) CreateProject(ctx context.Context, p *project.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Status == "" {
		p.Status = project.StatusNotStarted
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO eco_projects (id, user_id, weight_grams, started_at, ends_at, status, is_claimed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.UserID, p.WeightGrams, p.StartedAt, p.EndsAt, string(p.Status), p.IsClaimed, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("создание проекта: %w", err)
	}
	return nil
}

// transitionFailed различает отсутствующий проект и неверную смену статуса.
func (r *ProjectRepository) transitionFailed(ctx context.Context, id string) error {
	if _, err := r.GetProject(ctx, id); err != nil {
		return err
	}
	return common.ErrInvalidTransition
}

// StartProject переводит проект в ongoing.
func (r *ProjectRepository) StartProject(ctx context.Context, id string, start, end time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE eco_projects SET status = 'ongoing', started_at = $2, ends_at = $3
		WHERE id = $1 AND status = 'not_started'
	`, id, start, end)
	if err != nil {
		return fmt.Errorf("запуск проекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionFailed(ctx, id)
	}
	return nil
}

// CompleteProject переводит проект в completed.
func (r *ProjectRepository) CompleteProject(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE eco_projects SET status = 'completed'
		WHERE id = $1 AND status = 'ongoing'
	`, id)
	if err != nil {
		return fmt.Errorf("завершение проекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionFailed(ctx, id)
	}
	return nil
}

// DeleteProject удаляет проект; журнал, чекины и фото удаляются каскадом.
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM eco_projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("удаление проекта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// AddEntry пишет запись журнала и прибавляет вес в одной транзакции.
func (r *ProjectRepository) AddEntry(ctx context.Context, e *project.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE eco_projects SET weight_grams = weight_grams + $2 WHERE id = $1",
			e.ProjectID, e.WeightGrams)
		if err != nil {
			return fmt.Errorf("обновление веса: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.ErrNotFound
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO eco_entries (id, project_id, weight_grams, created_at)
			VALUES ($1, $2, $3, $4)
		`, e.ID, e.ProjectID, e.WeightGrams, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("запись журнала: %w", err)
		}
		return nil
	})
}

// ListEntries возвращает журнал проекта.
func (r *ProjectRepository) ListEntries(ctx context.Context, projectID string) ([]*project.Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, weight_grams, created_at
		FROM eco_entries WHERE project_id = $1
		ORDER BY created_at, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*project.Entry
	for rows.Next() {
		var e project.Entry
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.WeightGrams, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// SaveCheckin отмечает день. Отмеченный день не перезаписывается.
func (r *ProjectRepository) SaveCheckin(ctx context.Context, projectID string, c timeline.Checkin) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO eco_checkins (project_id, day, checked, checked_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (project_id, day) DO UPDATE
		SET checked = TRUE, checked_at = EXCLUDED.checked_at
		WHERE NOT eco_checkins.checked
	`, projectID, c.Day, c.CheckedAt)
	if hasCode(err, codeForeignKey) {
		return false, common.ErrNotFound
	}
	if hasCode(err, codeCheck) {
		return false, common.ErrInvalidDay
	}
	if err != nil {
		return false, fmt.Errorf("запись чекина: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListCheckins возвращает отметки проекта по дням.
func (r *ProjectRepository) ListCheckins(ctx context.Context, projectID string) ([]timeline.Checkin, error) {
	rows, err := r.db.Query(ctx, `
		SELECT day, checked, checked_at FROM eco_checkins
		WHERE project_id = $1 ORDER BY day
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeline.Checkin
	for rows.Next() {
		var c timeline.Checkin
		if err := rows.Scan(&c.Day, &c.Checked, &c.CheckedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SavePhoto сохраняет фото месяца; повторная загрузка заменяет прежнюю.
func (r *ProjectRepository) SavePhoto(ctx context.Context, projectID string, p timeline.Photo) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO eco_photos (project_id, month, ref, uploaded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_id, month) DO UPDATE
		SET ref = EXCLUDED.ref, uploaded_at = EXCLUDED.uploaded_at
	`, projectID, p.Month, p.Ref, p.UploadedAt)
	if hasCode(err, codeForeignKey) {
		return common.ErrNotFound
	}
	if hasCode(err, codeCheck) {
		return common.ErrInvalidMonth
	}
	if err != nil {
		return fmt.Errorf("запись фото: %w", err)
	}
	return nil
}

// ListPhotos возвращает фото проекта по месяцам.
func (r *ProjectRepository) ListPhotos(ctx context.Context, projectID string) ([]timeline.Photo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT month, ref, uploaded_at FROM eco_photos
		WHERE project_id = $1 ORDER BY month
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeline.Photo
	for rows.Next() {
		var p timeline.Photo
		if err := rows.Scan(&p.Month, &p.Ref, &p.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Claim ставит флаг бонуса и начисляет баллы в одной транзакции.
func (r *ProjectRepository) Claim(ctx context.Context, projectID string, userID int64, bonus int64) (bool, error) {
	claimed := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE eco_projects SET is_claimed = TRUE WHERE id = $1 AND NOT is_claimed",
			projectID)
		if err != nil {
			return fmt.Errorf("флаг бонуса: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM eco_projects WHERE id = $1)", projectID,
			).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return common.ErrNotFound
			}
			return nil
		}
		claimed = true
		return credit(ctx, tx, userID, bonus, economy.TxTypeEcoClaim, "Бонус за 90 дней эко-энзима")
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}
