package handlers

import "net/http"

// ApiRoot отдаёт справочник эндпоинтов
func ApiRoot(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Task Manager API"),
		toPayload("endpoints", map[string]string{
			"tasks":         "/tasks",
			"auth_register": "/auth/register",
			"auth_login":    "/token",
			"auth_refresh":  "/token/refresh",
			"auth_me":       "/auth/me",
		}))
}
