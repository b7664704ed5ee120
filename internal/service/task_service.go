package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) TaskService {
	return TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

// CreateTask создаёт задачу от имени ownerID. Владелец приходит только
// из проверенного токена, из тела запроса он не принимается.
func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, title, description, status string) (*task.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if len(title) > task.MaxTitleLength {
		return nil, NewValidationError("title", fmt.Sprintf("название не может быть длиннее %d символов", task.MaxTitleLength))
	}

	parsedStatus := task.StatusTodo
	if status != "" {
		var ok bool
		parsedStatus, ok = task.ParseStatus(status)
		if !ok {
			return nil, NewValidationError("status", "статус должен быть одним из: todo, in_progress, done")
		}
	}

	t := &task.Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Status:      parsedStatus,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	return t, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// GetTasks возвращает задачи владельца, новые первыми.
// Непустой status дополнительно фильтрует выборку.
func (s *TaskService) GetTasks(ctx context.Context, ownerID uuid.UUID, status string, page, limit int) ([]*task.Task, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	if status != "" {
		parsedStatus, ok := task.ParseStatus(status)
		if !ok {
			return nil, NewValidationError("status", "статус должен быть одним из: todo, in_progress, done")
		}

		tasks, err := s.repo.GetStatusedByOwner(ctx, ownerID, parsedStatus, page, limit)
		if err != nil {
			return nil, fmt.Errorf("получение задач: %w", err)
		}
		return tasks, nil
	}

	tasks, err := s.repo.GetAllByOwner(ctx, ownerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// UpdateTask применяет частичное обновление. Владелец и id неизменяемы:
// опции трогают только title/description/status.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}

	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, NewValidationError("title", "название не может быть пустым")
	}
	if len(t.Title) > task.MaxTitleLength {
		return nil, NewValidationError("title", fmt.Sprintf("название не может быть длиннее %d символов", task.MaxTitleLength))
	}
	if _, ok := task.ParseStatus(string(t.Status)); !ok {
		return nil, NewValidationError("status", "статус должен быть одним из: todo, in_progress, done")
	}

	if err := s.repo.Update(ctx, ownerID, t); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("задача", id.String())
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
			return NewNotFound("задача", id.String())
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}
