// Package tree - repository.go описывает хранилище трекера задач.
package tree

import (
	"context"
	"time"
)

// Repository - хранилище задач, плодов и наград.
type Repository interface {
	// EnsureTasks создаёт недостающие задачи (уникальность: пользователь + день + код)
	EnsureTasks(ctx context.Context, tasks []*Task) error
	// ListTasks возвращает задачи пользователя за дни from..to включительно
	ListTasks(ctx context.Context, userID int64, from, to string) ([]*Task, error)
	// CompleteTask отмечает задачу. done=false - задача уже была выполнена.
	CompleteTask(ctx context.Context, userID int64, taskID string, at time.Time) (done bool, err error)
	// CompletionDates возвращает различные дни, в которые выполнена хотя бы одна задача
	CompletionDates(ctx context.Context, userID int64) ([]string, error)
	// UsersWithFullDay возвращает пользователей, выполнивших все задачи дня
	UsersWithFullDay(ctx context.Context, date string) ([]int64, error)

	// CreateFruit создаёт плод за день. created=false - плод уже есть.
	CreateFruit(ctx context.Context, f *Fruit) (created bool, err error)
	// ListFruits возвращает плоды пользователя
	ListFruits(ctx context.Context, userID int64) ([]*Fruit, error)
	// ClaimFruit собирает плод: начисляет баллы и увеличивает счётчик урожая.
	// claimed=false - плод уже собран.
	ClaimFruit(ctx context.Context, userID int64, fruitID string) (claimed bool, err error)
	// Harvested - сколько плодов собрано за всё время
	Harvested(ctx context.Context, userID int64) (int, error)

	// MilestoneClaimed - получена ли награда за серию в периоде
	MilestoneClaimed(ctx context.Context, userID int64, period string) (bool, error)
	// ClaimMilestone отмечает награду и начисляет баллы. claimed=false - уже получена.
	ClaimMilestone(ctx context.Context, userID int64, period string, points int64) (claimed bool, err error)
}
