package service

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

// TaskRepository - контракт хранилища задач.
// Владелец - обязательный аргумент каждого метода: забыть передать его
// невозможно, это ошибка компиляции, а не утечка данных в рантайме.
type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*task.Task, error)
	GetAllByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*task.Task, error)
	GetStatusedByOwner(ctx context.Context, ownerID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error)
	Update(ctx context.Context, ownerID uuid.UUID, t *task.Task) error
	Delete(ctx context.Context, ownerID, taskID uuid.UUID) error
	HealthCheck(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}
