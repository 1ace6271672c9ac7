package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/economy"
	"serotonyl.ru/eco-bot/internal/features/tree"
)

// TreeRepository работает с таблицами tree_tasks, tree_fruits и tree_milestones.
// Дни передаются строками 2006-01-02 и хранятся как DATE.
type TreeRepository struct {
	db *pgxpool.Pool
}

// NewTreeRepository создаёт репозиторий дерева.
func NewTreeRepository(db *pgxpool.Pool) *TreeRepository {
	return &TreeRepository{db: db}
}

// EnsureTasks вставляет задачи пакетом; существующие пропускаются.
func (r *TreeRepository) EnsureTasks(ctx context.Context, tasks []*tree.Task) error {
	batch := &pgx.Batch{}
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		batch.Queue(`
			INSERT INTO tree_tasks (id, user_id, task_date, code, title, category, created_at)
			VALUES ($1, $2, $3::text::date, $4, $5, $6, $7)
			ON CONFLICT (user_id, task_date, code) DO NOTHING
		`, t.ID, t.UserID, t.Date, t.Code, t.Title, string(t.Category), t.CreatedAt)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for range tasks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("создание задач: %w", err)
		}
	}
	return nil
}

// ListTasks возвращает задачи за дни from..to.
func (r *TreeRepository) ListTasks(ctx context.Context, userID int64, from, to string) ([]*tree.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, to_char(task_date, 'YYYY-MM-DD'), code, title, category, done, done_at, created_at
		FROM tree_tasks
		WHERE user_id = $1 AND task_date BETWEEN $2::text::date AND $3::text::date
		ORDER BY task_date, created_at
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*tree.Task
	for rows.Next() {
		var t tree.Task
		var category string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Code, &t.Title, &category, &t.Done, &t.DoneAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Category = tree.Category(category)
		out = append(out, &t)
	}
	return out, rows.Err()
}

// exists проверяет строку таблицы по id и владельцу.
func (r *TreeRepository) exists(ctx context.Context, q pgx.Tx, table, id string, userID int64) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = $1 AND user_id = $2)", id, userID,
	).Scan(&ok)
	return ok, err
}

// CompleteTask отмечает задачу выполненной.
func (r *TreeRepository) CompleteTask(ctx context.Context, userID int64, taskID string, at time.Time) (bool, error) {
	done := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE tree_tasks SET done = TRUE, done_at = $3
			WHERE id = $2 AND user_id = $1 AND NOT done
		`, userID, taskID, at)
		if err != nil {
			return fmt.Errorf("отметка задачи: %w", err)
		}
		if tag.RowsAffected() == 1 {
			done = true
			return nil
		}
		ok, err := r.exists(ctx, tx, "tree_tasks", taskID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrNotFound
		}
		return nil
	})
	return done, err
}

// CompletionDates возвращает дни с выполненными задачами по возрастанию.
func (r *TreeRepository) CompletionDates(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT to_char(task_date, 'YYYY-MM-DD') AS d
		FROM tree_tasks WHERE user_id = $1 AND done
		ORDER BY d
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// UsersWithFullDay возвращает пользователей, у которых выполнены все задачи дня.
func (r *TreeRepository) UsersWithFullDay(ctx context.Context, date string) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id FROM tree_tasks
		WHERE task_date = $1::text::date
		GROUP BY user_id
		HAVING bool_and(done)
		ORDER BY user_id
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

// CreateFruit создаёт плод за день, один на пользователя и день.
func (r *TreeRepository) CreateFruit(ctx context.Context, f *tree.Fruit) (bool, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO tree_fruits (id, user_id, fruit_date, points, created_at)
		VALUES ($1, $2, $3::text::date, $4, $5)
		ON CONFLICT (user_id, fruit_date) DO NOTHING
	`, f.ID, f.UserID, f.Date, f.Points, f.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("создание плода: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListFruits возвращает плоды пользователя по дням.
func (r *TreeRepository) ListFruits(ctx context.Context, userID int64) ([]*tree.Fruit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, to_char(fruit_date, 'YYYY-MM-DD'), claimed, points, claimed_at, created_at
		FROM tree_fruits WHERE user_id = $1
		ORDER BY fruit_date
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*tree.Fruit
	for rows.Next() {
		var f tree.Fruit
		if err := rows.Scan(&f.ID, &f.UserID, &f.Date, &f.Claimed, &f.Points, &f.ClaimedAt, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// ClaimFruit собирает плод и начисляет его баллы.
func (r *TreeRepository) ClaimFruit(ctx context.Context, userID int64, fruitID string) (bool, error) {
	claimed := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var points int64
		var date string
		err := tx.QueryRow(ctx, `
			UPDATE tree_fruits SET claimed = TRUE, claimed_at = NOW()
			WHERE id = $1 AND user_id = $2 AND NOT claimed
			RETURNING points, to_char(fruit_date, 'DD.MM.YYYY')
		`, fruitID, userID).Scan(&points, &date)
		if errors.Is(err, pgx.ErrNoRows) {
			ok, err := r.exists(ctx, tx, "tree_fruits", fruitID, userID)
			if err != nil {
				return err
			}
			if !ok {
				return common.ErrNotFound
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("сбор плода: %w", err)
		}
		claimed = true
		return credit(ctx, tx, userID, points, economy.TxTypeTreeFruit, "Плод дерева за "+date)
	})
	return claimed, err
}

// Harvested считает собранные плоды.
func (r *TreeRepository) Harvested(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM tree_fruits WHERE user_id = $1 AND claimed", userID,
	).Scan(&n)
	return n, err
}

// MilestoneClaimed проверяет награду за период.
func (r *TreeRepository) MilestoneClaimed(ctx context.Context, userID int64, period string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM tree_milestones WHERE user_id = $1 AND period = $2)", userID, period,
	).Scan(&ok)
	return ok, err
}

// ClaimMilestone записывает награду за период и начисляет баллы.
func (r *TreeRepository) ClaimMilestone(ctx context.Context, userID int64, period string, points int64) (bool, error) {
	claimed := false
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO tree_milestones (user_id, period, points) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, period) DO NOTHING
		`, userID, period, points)
		if err != nil {
			return fmt.Errorf("запись награды: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		claimed = true
		return credit(ctx, tx, userID, points, economy.TxTypeTreeMilestone, "Награда за серию, "+period)
	})
	return claimed, err
}
