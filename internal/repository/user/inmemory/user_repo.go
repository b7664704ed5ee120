package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*user.User
	byName  map[string]uuid.UUID
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*user.User),
		byName:  make(map[string]uuid.UUID),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := strings.ToLower(userToCreate.Username)
	if _, exists := s.byName[key]; exists {
		return repo.ErrUsernameTaken
	}

	userToCreate.CreatedAt = time.Now()

	copied := *userToCreate
	s.storage[userToCreate.ID] = &copied
	s.byName[key] = userToCreate.ID
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	userToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *userToGet
	return &copied, nil
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byName[strings.ToLower(username)]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *s.storage[id]
	return &copied, nil
}

func (s *UserStorage) Update(ctx context.Context, userToUpdate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existed, ok := s.storage[userToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}

	// username и хеш через Update не меняются
	existed.Email = userToUpdate.Email
	existed.FirstName = userToUpdate.FirstName
	existed.LastName = userToUpdate.LastName
	return nil
}
