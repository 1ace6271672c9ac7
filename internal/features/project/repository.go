// Package project - repository.go описывает хранилище проектов.
// Реализации: Postgres (storage/postgres), локальное KV (storage/local)
// и удалённый REST-бэкенд (storage/remote).
package project

import (
	"context"
	"time"

	"serotonyl.ru/eco-bot/internal/features/timeline"
)

// Repository - хранилище проектов, журнала, чекинов и фото.
//
// Ошибки:
//   - common.ErrNotFound - проект не найден
//   - common.ErrInvalidTransition - смена статуса не из предыдущей стадии
type Repository interface {
	// ListProjects возвращает все проекты пользователя
	ListProjects(ctx context.Context, userID int64) ([]*Project, error)
	// GetProject возвращает проект по ID
	GetProject(ctx context.Context, id string) (*Project, error)
	// CreateProject сохраняет новый проект и заполняет p.ID
	CreateProject(ctx context.Context, p *Project) error
	// StartProject переводит проект not_started → ongoing
	StartProject(ctx context.Context, id string, start, end time.Time) error
	// CompleteProject переводит проект ongoing → completed
	CompleteProject(ctx context.Context, id string) error
	// DeleteProject удаляет проект вместе с журналом, чекинами и фото
	DeleteProject(ctx context.Context, id string) error

	// AddEntry сохраняет запись журнала и прибавляет вес к проекту
	AddEntry(ctx context.Context, e *Entry) error
	// ListEntries возвращает журнал проекта по времени
	ListEntries(ctx context.Context, projectID string) ([]*Entry, error)

	// SaveCheckin отмечает день. inserted=false - день уже был отмечен.
	SaveCheckin(ctx context.Context, projectID string, c timeline.Checkin) (inserted bool, err error)
	// ListCheckins возвращает все отметки проекта
	ListCheckins(ctx context.Context, projectID string) ([]timeline.Checkin, error)

	// SavePhoto сохраняет фото месяца, заменяя предыдущее
	SavePhoto(ctx context.Context, projectID string, p timeline.Photo) error
	// ListPhotos возвращает фото проекта
	ListPhotos(ctx context.Context, projectID string) ([]timeline.Photo, error)

	// Claim ставит флаг бонуса и начисляет bonus баллов пользователю.
	// claimed=false - бонус уже был получен, баллы не начислены.
	Claim(ctx context.Context, projectID string, userID int64, bonus int64) (claimed bool, err error)
}

// StatusLister - необязательное расширение хранилища для фоновых задач:
// выборка проектов всех пользователей по статусу.
type StatusLister interface {
	ListByStatus(ctx context.Context, status Status) ([]*Project, error)
}
