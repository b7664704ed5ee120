package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const TokenAccess TokenType = "access"
const TokenRefresh TokenType = "refresh"

var ErrInvalidToken = errors.New("недействительный токен")

// Claims - полезная нагрузка обоих видов токенов.
// token_type не даёт использовать refresh-токен как access и наоборот.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenManager выпускает и проверяет подписанные HS256 токены.
// Проверка полностью stateless - серверного хранилища сессий нет.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("секрет подписи токенов не задан")
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssuePair выпускает пару access+refresh для пользователя
func (m *TokenManager) IssuePair(userID uuid.UUID) (access, refresh string, err error) {
	access, err = m.issue(userID, TokenAccess, m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.issue(userID, TokenRefresh, m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *TokenManager) IssueAccess(userID uuid.UUID) (string, error) {
	return m.issue(userID, TokenAccess, m.accessTTL)
}

func (m *TokenManager) issue(userID uuid.UUID, tokenType TokenType, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("подпись токена: %w", err)
	}
	return signed, nil
}

// Verify проверяет подпись, срок действия и тип токена.
// Любая причина отказа схлопывается в ErrInvalidToken - клиенту
// детали знать не нужно.
func (m *TokenManager) Verify(tokenString string, want TokenType) (uuid.UUID, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	if claims.TokenType != want {
		return uuid.Nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}

	return claims.UserID, nil
}
