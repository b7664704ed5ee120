package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskManager/internal/auth"
	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	repo "taskManager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users             UserRepository
	tokens            *auth.TokenManager
	minPasswordLength int

	// хеш несуществующего пароля: сравнение с ним выполняется при
	// неизвестном username, чтобы время ответа не выдавало, какое
	// из двух полей неверно
	dummyHash string
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager, minPasswordLength int) (AuthService, error) {
	dummyHash, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return AuthService{}, fmt.Errorf("инициализация сервиса аутентификации: %w", err)
	}

	return AuthService{
		users:             users,
		tokens:            tokens,
		minPasswordLength: minPasswordLength,
		dummyHash:         dummyHash,
	}, nil
}

// Register создаёт пользователя. При любой ошибке валидации ничего
// не записывается.
func (s *AuthService) Register(ctx context.Context, username, email, password, firstName, lastName string) (*user.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	details := []Detail{}
	if username == "" {
		details = append(details, ToDetail("username", "имя пользователя не может быть пустым"))
	}
	if email == "" {
		details = append(details, ToDetail("email", "email не может быть пустым"))
	}
	for _, fieldErr := range auth.ValidatePassword(password, username, email, s.minPasswordLength) {
		details = append(details, ToDetail(fieldErr.Field, fieldErr.Reason))
	}
	if len(details) > 0 {
		return nil, NewBusinessError(CodeValidation, "регистрация отклонена", details...)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("регистрация: %w", err)
	}

	u := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrUsernameTaken) {
			logger.Info("Service: Имя пользователя занято", zap.String("username", username))
			return nil, NewBusinessError(CodeValidation, "регистрация отклонена",
				ToDetail("username", "имя пользователя уже занято"))
		}
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}

	return u, nil
}

// Login проверяет учётные данные и выпускает пару токенов.
// Ответ одинаков для неизвестного username и неверного пароля.
func (s *AuthService) Login(ctx context.Context, username, password string) (access, refresh string, err error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			auth.CheckPassword(s.dummyHash, password)
			return "", "", NewUnauthorized()
		}
		return "", "", fmt.Errorf("аутентификация: %w", err)
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", "", NewUnauthorized()
	}

	access, refresh, err = s.tokens.IssuePair(u.ID)
	if err != nil {
		return "", "", fmt.Errorf("выпуск токенов: %w", err)
	}
	return access, refresh, nil
}

// Refresh меняет действующий refresh-токен на новый access-токен
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Verify(refreshToken, auth.TokenRefresh)
	if err != nil {
		return "", NewUnauthorized()
	}

	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return "", fmt.Errorf("выпуск токена: %w", err)
	}
	return access, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("пользователь", userID.String())
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return u, nil
}

// UpdateProfile - частичное обновление профиля. Username и id не меняются.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, options ...user.UserOption) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("пользователь", userID.String())
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}

	for _, opt := range options {
		if opt != nil {
			opt(u)
		}
	}

	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return nil, NewValidationError("email", "email не может быть пустым")
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("обновление профиля: %w", err)
	}
	return u, nil
}
