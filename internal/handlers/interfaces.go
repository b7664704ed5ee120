package handlers

import (
	"context"

	"taskManager/internal/models/task"
	"taskManager/internal/models/user"

	"github.com/google/uuid"
)

type TaskService interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, ownerID uuid.UUID, title, description, status string) (*task.Task, error)
	GetTaskByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error)
	GetTasks(ctx context.Context, ownerID uuid.UUID, status string, page, limit int) ([]*task.Task, error)
	UpdateTask(ctx context.Context, ownerID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error
}

type AuthService interface {
	Register(ctx context.Context, username, email, password, firstName, lastName string) (*user.User, error)
	Login(ctx context.Context, username, password string) (access, refresh string, err error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, options ...user.UserOption) (*user.User, error)
}
