package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Storage - хранилище задач в PostgreSQL.
// Каждый запрос обязан нести user_id владельца: чужая строка
// неотличима от несуществующей (pgx.ErrNoRows -> ErrNotFound).
type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, user_id, title, description, status, created_at)
				VALUES ($1, $2, $3, $4, $5, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.UserID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Status,
	).Scan(&taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				user_id,
				title,
				description,
				status,
				created_at,
				updated_at
				FROM tasks
				WHERE id = $1 AND user_id = $2`

	t := &task.Task{}
	err := s.pool.QueryRow(ctx, query, taskID, ownerID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return t, nil
}

// GetAllByOwner возвращает задачи владельца, новые первыми
func (s *Storage) GetAllByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*task.Task, error) {
	start := time.Now()
	offset := (page - 1) * limit

	query := `SELECT
				id,
				user_id,
				title,
				description,
				status,
				created_at,
				updated_at
				FROM tasks
				WHERE user_id = $1
				ORDER BY created_at DESC, id DESC
				LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*10*time.Duration(limit) {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return tasks, nil
}

// GetStatusedByOwner - задачи владельца с определённым статусом
func (s *Storage) GetStatusedByOwner(ctx context.Context, ownerID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error) {
	start := time.Now()
	offset := (page - 1) * limit

	query := `SELECT
				id,
				user_id,
				title,
				description,
				status,
				created_at,
				updated_at
				FROM tasks
				WHERE user_id = $1 AND status = $2
				ORDER BY created_at DESC, id DESC
				LIMIT $3 OFFSET $4`

	rows, err := s.pool.Query(ctx, query, ownerID, status, limit, offset)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*10*time.Duration(limit) {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return tasks, nil
}

func (s *Storage) Update(ctx context.Context, ownerID uuid.UUID, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				status = $3,
				updated_at = NOW()
			WHERE id = $4 AND user_id = $5
			RETURNING updated_at`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Status,
		taskToUpdate.ID,
		ownerID,
	).Scan(&taskToUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1 AND user_id = $2`

	tag, err := s.pool.Exec(ctx, query, taskID, ownerID)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	tasks := []*task.Task{}

	for rows.Next() {
		t := &task.Task{}

		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	return tasks, nil
}
