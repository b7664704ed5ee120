package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(id, username, email, first_name, last_name, password_hash, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.Username,
		userToCreate.Email,
		userToCreate.FirstName,
		userToCreate.LastName,
		userToCreate.PasswordHash,
	).Scan(&userToCreate.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrUsernameTaken
		}
		logger.Error("Repository: Не удалось создать пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("создание пользователя: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getBy(ctx, "id = $1", id)
}

func (s *Storage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.getBy(ctx, "username = $1", username)
}

func (s *Storage) getBy(ctx context.Context, predicate string, arg any) (*user.User, error) {
	start := time.Now()

	query := `SELECT
				id,
				username,
				email,
				first_name,
				last_name,
				password_hash,
				created_at
				FROM users
				WHERE ` + predicate

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.FirstName,
		&u.LastName,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return u, nil
}

// Update меняет только профильные поля: username и хеш пароля
// через этот метод не изменяются
func (s *Storage) Update(ctx context.Context, userToUpdate *user.User) error {
	start := time.Now()

	query := `UPDATE users
			SET email = $1,
				first_name = $2,
				last_name = $3
			WHERE id = $4`

	tag, err := s.pool.Exec(ctx, query,
		userToUpdate.Email,
		userToUpdate.FirstName,
		userToUpdate.LastName,
		userToUpdate.ID,
	)
	if err != nil {
		logger.Error("Repository: Не удалось обновить пользователя", err)
		return fmt.Errorf("обновление пользователя: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}
