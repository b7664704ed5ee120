package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"taskManager/internal/auth"
	"taskManager/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const UserIdKey contextKey = "user_id"

// Auth проверяет Bearer access-токен и кладёт id пользователя в контекст.
// Без валидного токена запрос обрывается до обращения к хранилищу.
func Auth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestId := GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("AUTH: Отсутствует заголовок Authorization",
					zap.String("request_id", requestId),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, requestId)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("AUTH: Неверный формат заголовка Authorization",
					zap.String("request_id", requestId),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, requestId)
				return
			}

			userID, err := tokens.Verify(parts[1], auth.TokenAccess)
			if err != nil {
				logger.Warn("AUTH: Недействительный токен",
					zap.String("request_id", requestId),
					zap.String("client_ip", r.RemoteAddr))
				unauthorized(w, requestId)
				return
			}

			ctx := context.WithValue(r.Context(), UserIdKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID достаёт id аутентифицированного пользователя из контекста
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIdKey).(uuid.UUID)
	return id, ok
}

func unauthorized(w http.ResponseWriter, requestId string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	json.NewEncoder(w).Encode(map[string]any{
		"error":      "UNAUTHORIZED",
		"message":    "требуется действительный access-токен",
		"request_id": requestId,
	})
}
