package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskManager/internal/handlers"
	"taskManager/internal/middleware"
	"taskManager/internal/models/task"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, title, description, status string) (*task.Task, error) {
	args := m.Called(ctx, ownerID, title, description, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTaskByID(ctx context.Context, ownerID, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTasks(ctx context.Context, ownerID uuid.UUID, status string, page, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, ownerID, status, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, ownerID, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, ownerID, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

// MockAuthService - мок сервиса аутентификации
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password, firstName, lastName string) (*user.User, error) {
	args := m.Called(ctx, username, email, password, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, options ...user.UserOption) (*user.User, error) {
	args := m.Called(ctx, userID, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

var _ handlers.AuthService = (*MockAuthService)(nil)

func newTaskRouter(mockService *MockTaskService) *chi.Mux {
	handler := handlers.NewTaskHandler(mockService)

	r := chi.NewRouter()
	r.Get("/tasks", handler.GetTasks)
	r.Post("/tasks", handler.PostTask)
	r.Get("/tasks/{id}", handler.GetTaskByID)
	r.Put("/tasks/{id}", handler.UpdateTaskByID)
	r.Patch("/tasks/{id}", handler.UpdateTaskByID)
	r.Delete("/tasks/{id}", handler.DeleteTaskByID)
	return r
}

// запрос от аутентифицированного пользователя
func authedRequest(method, target string, body []byte, ownerID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(req.Context(), middleware.UserIdKey, ownerID)
	return req.WithContext(ctx)
}

func TestTaskHandler_PostTask(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:        "success - create task",
			requestBody: `{"title": "Buy milk", "description": "2 liters"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, ownerID, "Buy milk", "2 liters", "").
					Return(&task.Task{
						ID:        taskID,
						UserID:    ownerID,
						Title:     "Buy milk",
						Status:    task.StatusTodo,
						CreatedAt: time.Now(),
					}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - validation from service",
			requestBody: `{"title": ""}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, ownerID, "", "", "").
					Return(nil, service.NewValidationError("title", "название не может быть пустым"))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "error - internal error is opaque",
			requestBody: `{"title": "Buy milk"}`,
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, ownerID, "Buy milk", "", "").
					Return(nil, errors.New("pool exhausted"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			router := newTaskRouter(mockService)

			req := authedRequest("POST", "/tasks", []byte(tt.requestBody), ownerID)
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "Buy milk", response["title"])
				assert.Equal(t, "todo", response["status"])
				// владелец не сериализуется в ответ задачи
				assert.NotContains(t, response, "user_id")
			}

			if tt.expectedStatus == http.StatusInternalServerError {
				// внутренности не утекают клиенту
				assert.NotContains(t, w.Body.String(), "pool exhausted")
			}

			mockService.AssertExpectations(t)
		})
	}
}

// тело запроса с чужим owner игнорируется: владелец всегда из токена
func TestTaskHandler_PostTask_OwnerFromTokenOnly(t *testing.T) {
	ownerID := uuid.New()
	foreignID := uuid.New()

	mockService := new(MockTaskService)
	mockService.On("CreateTask", mock.Anything, ownerID, "Buy milk", "", "").
		Return(&task.Task{
			ID:        uuid.New(),
			UserID:    ownerID,
			Title:     "Buy milk",
			Status:    task.StatusTodo,
			CreatedAt: time.Now(),
		}, nil)

	router := newTaskRouter(mockService)

	body := []byte(`{"title": "Buy milk", "user_id": "` + foreignID.String() + `", "id": "` + uuid.NewString() + `"}`)
	req := authedRequest("POST", "/tasks", body, ownerID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestTaskHandler_GetTasks(t *testing.T) {
	ownerID := uuid.New()
	now := time.Now()

	mockService := new(MockTaskService)
	mockService.On("GetTasks", mock.Anything, ownerID, "", 0, 0).
		Return([]*task.Task{
			{ID: uuid.New(), UserID: ownerID, Title: "newer", Status: task.StatusTodo, CreatedAt: now},
			{ID: uuid.New(), UserID: ownerID, Title: "older", Status: task.StatusDone, CreatedAt: now.Add(-time.Hour)},
		}, nil)

	router := newTaskRouter(mockService)

	req := authedRequest("GET", "/tasks", nil, ownerID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response []map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 2)
	assert.Equal(t, "newer", response[0]["title"])
	assert.Equal(t, "older", response[1]["title"])
	mockService.AssertExpectations(t)
}

func TestTaskHandler_GetTaskByID(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:   "success - get task",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, ownerID, taskID).
					Return(&task.Task{
						ID:        taskID,
						UserID:    ownerID,
						Title:     "Buy milk",
						Status:    task.StatusTodo,
						CreatedAt: time.Now(),
					}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "error - foreign task looks missing",
			taskID: taskID.String(),
			setupMock: func(m *MockTaskService) {
				m.On("GetTaskByID", mock.Anything, ownerID, taskID).
					Return(nil, service.NewNotFound("задача", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "error - malformed id",
			taskID:         "not-a-uuid",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			router := newTaskRouter(mockService)

			req := authedRequest("GET", "/tasks/"+tt.taskID, nil, ownerID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_UpdateTaskByID(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()
	now := time.Now()

	mockService := new(MockTaskService)
	mockService.On("UpdateTask", mock.Anything, ownerID, taskID, mock.Anything).
		Return(&task.Task{
			ID:        taskID,
			UserID:    ownerID,
			Title:     "Buy milk",
			Status:    task.StatusDone,
			CreatedAt: now.Add(-time.Hour),
			UpdatedAt: &now,
		}, nil)

	router := newTaskRouter(mockService)

	req := authedRequest("PATCH", "/tasks/"+taskID.String(), []byte(`{"status": "done"}`), ownerID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "done", response["status"])
	assert.Contains(t, response, "updated_at")
	mockService.AssertExpectations(t)
}

func TestTaskHandler_DeleteTaskByID(t *testing.T) {
	ownerID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - delete",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, ownerID, taskID).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "error - not found or not owned",
			setupMock: func(m *MockTaskService) {
				m.On("DeleteTask", mock.Anything, ownerID, taskID).
					Return(service.NewNotFound("задача", taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			router := newTaskRouter(mockService)

			req := authedRequest("DELETE", "/tasks/"+taskID.String(), nil, ownerID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// без user id в контексте обработчик отвечает 401 и не трогает сервис
func TestTaskHandler_Unauthenticated(t *testing.T) {
	mockService := new(MockTaskService)
	router := newTaskRouter(mockService)

	req := httptest.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertExpectations(t)
}

func TestAuthHandler_Register(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockAuthService)
		expectedStatus int
	}{
		{
			name:        "success - register",
			requestBody: `{"username": "alice", "email": "a@x.com", "password": "Str0ngPW!"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "alice", "a@x.com", "Str0ngPW!", "", "").
					Return(&user.User{
						ID:           userID,
						Username:     "alice",
						Email:        "a@x.com",
						PasswordHash: "secret-hash",
					}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "error - duplicate username",
			requestBody: `{"username": "alice", "email": "a@x.com", "password": "Str0ngPW!"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Register", mock.Anything, "alice", "a@x.com", "Str0ngPW!", "", "").
					Return(nil, service.NewBusinessError(service.CodeValidation, "регистрация отклонена",
						service.ToDetail("username", "имя пользователя уже занято")))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{broken`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			handler := handlers.NewAuthHandler(mockService)

			req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Register(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				userPayload, ok := response["user"].(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "alice", userPayload["username"])
				// хеш не попадает в ответ
				assert.NotContains(t, w.Body.String(), "secret-hash")
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockAuthService)
		expectedStatus int
	}{
		{
			name:        "success - token pair",
			requestBody: `{"username": "alice", "password": "Str0ngPW!"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "alice", "Str0ngPW!").
					Return("access-token", "refresh-token", nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "error - bad credentials",
			requestBody: `{"username": "alice", "password": "wrong"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "alice", "wrong").
					Return("", "", service.NewUnauthorized())
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			handler := handlers.NewAuthHandler(mockService)

			req := httptest.NewRequest("POST", "/token", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response map[string]any
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "access-token", response["access"])
				assert.Equal(t, "refresh-token", response["refresh"])
			}

			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Refresh", mock.Anything, "refresh-token").Return("new-access", nil)

	handler := handlers.NewAuthHandler(mockService)

	req := httptest.NewRequest("POST", "/token/refresh", bytes.NewBufferString(`{"refresh": "refresh-token"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "new-access", response["access"])
	mockService.AssertExpectations(t)
}

func TestAuthHandler_GetMe(t *testing.T) {
	userID := uuid.New()

	mockService := new(MockAuthService)
	mockService.On("GetProfile", mock.Anything, userID).
		Return(&user.User{
			ID:           userID,
			Username:     "alice",
			Email:        "a@x.com",
			FirstName:    "Alice",
			PasswordHash: "secret-hash",
			CreatedAt:    time.Now(),
		}, nil)

	handler := handlers.NewAuthHandler(mockService)

	req := authedRequest("GET", "/auth/me", nil, userID)
	w := httptest.NewRecorder()

	handler.GetMe(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "alice", response["username"])
	assert.Equal(t, "Alice", response["first_name"])
	assert.NotContains(t, w.Body.String(), "secret-hash")
	mockService.AssertExpectations(t)
}

func TestAuthHandler_UpdateMe(t *testing.T) {
	userID := uuid.New()

	mockService := new(MockAuthService)
	mockService.On("UpdateProfile", mock.Anything, userID, mock.Anything).
		Return(&user.User{
			ID:       userID,
			Username: "alice",
			Email:    "new@x.com",
		}, nil)

	handler := handlers.NewAuthHandler(mockService)

	req := authedRequest("PUT", "/auth/me", []byte(`{"email": "new@x.com"}`), userID)
	w := httptest.NewRecorder()

	handler.UpdateMe(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "new@x.com", response["email"])
	mockService.AssertExpectations(t)
}
