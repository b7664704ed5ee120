package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskManager/internal/models/task"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

// TaskStorage - потокобезопасное in-memory хранилище задач.
// Контракт тот же, что у PostgreSQL-версии: владелец обязателен,
// чужая задача выглядит как несуществующая.
type TaskStorage struct {
	storage map[uuid.UUID]*task.Task
	mtx     *sync.RWMutex
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*task.Task),
		mtx:     &sync.RWMutex{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	taskToCreate.CreatedAt = time.Now()

	copied := *taskToCreate
	s.storage[taskToCreate.ID] = &copied
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, ownerID, taskID uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[taskID]
	if !ok || taskToGet.UserID != ownerID {
		return nil, repo.ErrNotFound
	}

	copied := *taskToGet
	return &copied, nil
}

func (s *TaskStorage) GetAllByOwner(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*task.Task, error) {
	return s.collect(ownerID, page, limit, func(t *task.Task) bool { return true })
}

func (s *TaskStorage) GetStatusedByOwner(ctx context.Context, ownerID uuid.UUID, status task.Status, page, limit int) ([]*task.Task, error) {
	return s.collect(ownerID, page, limit, func(t *task.Task) bool { return t.Status == status })
}

func (s *TaskStorage) Update(ctx context.Context, ownerID uuid.UUID, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskToUpdate.ID]
	if !ok || existed.UserID != ownerID {
		return repo.ErrNotFound
	}

	now := time.Now()
	taskToUpdate.UserID = existed.UserID
	taskToUpdate.CreatedAt = existed.CreatedAt
	taskToUpdate.UpdatedAt = &now

	copied := *taskToUpdate
	s.storage[taskToUpdate.ID] = &copied
	return nil
}

func (s *TaskStorage) Delete(ctx context.Context, ownerID, taskID uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[taskID]
	if !ok || existed.UserID != ownerID {
		return repo.ErrNotFound
	}

	delete(s.storage, taskID)
	return nil
}

func (s *TaskStorage) collect(ownerID uuid.UUID, page, limit int, keep func(*task.Task) bool) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	all := []*task.Task{}
	for _, t := range s.storage {
		if t.UserID != ownerID || !keep(t) {
			continue
		}
		copied := *t
		all = append(all, &copied)
	}

	// новые первыми, id как tie-break - как в SQL-версии
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID.String() > all[j].ID.String()
	})

	offset := (page - 1) * limit
	if offset >= len(all) {
		return []*task.Task{}, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
