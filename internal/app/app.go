package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskManager/internal/auth"
	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	mw "taskManager/internal/middleware"
	"taskManager/internal/repository/postgres"
	taskinmemory "taskManager/internal/repository/task/inmemory"
	taskpostgres "taskManager/internal/repository/task/postgres"
	userinmemory "taskManager/internal/repository/user/inmemory"
	userpostgres "taskManager/internal/repository/user/postgres"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const migrationsDir = "internal/migrations"

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	shutdowns []func() // функции для graceful shutdown, в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	tokens, err := auth.NewTokenManager(
		a.config.Auth.Secret,
		a.config.Auth.AccessTTL,
		a.config.Auth.RefreshTTL,
	)
	if err != nil {
		return fmt.Errorf("инициализация менеджера токенов: %w", err)
	}

	var taskRepo service.TaskRepository
	var userRepo service.UserRepository

	switch a.config.Repository.Type {
	case "postgres":
		pool, err := postgres.NewPool(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к базе: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("Закрытие соединений PostgreSQL...")
			pool.Close()
		})

		if err := postgres.Migrate(ctx, pool, migrationsDir); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}

		taskRepo = taskpostgres.New(pool)
		userRepo = userpostgres.New(pool)
	case "inmemory", "":
		taskRepo = taskinmemory.NewTaskStorage()
		userRepo = userinmemory.NewUserStorage()
	default:
		return fmt.Errorf("неизвестный тип репозитория: %q", a.config.Repository.Type)
	}

	taskService := service.NewTaskService(taskRepo)
	authService, err := service.NewAuthService(userRepo, tokens, a.config.Auth.MinPasswordLength)
	if err != nil {
		return err
	}

	taskHandler := handlers.NewTaskHandler(&taskService)
	authHandler := handlers.NewAuthHandler(&authService)

	a.router = buildRouter(&taskHandler, &authHandler, tokens)
	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func buildRouter(taskHandler *handlers.TaskHandler, authHandler *handlers.AuthHandler, tokens *auth.TokenManager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Use(mw.RateLimit(100))

	r.Get("/", handlers.ApiRoot)
	r.Get("/health", taskHandler.HealthCheck)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/token", authHandler.Login)
	r.Post("/token/refresh", authHandler.Refresh)

	// всё ниже требует действительный access-токен
	r.Group(func(r chi.Router) {
		r.Use(mw.Auth(tokens))

		r.Route("/auth/me", func(r chi.Router) {
			r.Get("/", authHandler.GetMe)
			r.Put("/", authHandler.UpdateMe)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetTasks)   // GET /tasks
			r.Post("/", taskHandler.PostTask)  // POST /tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)       // GET /tasks/{id}
				r.Put("/", taskHandler.UpdateTaskByID)    // PUT /tasks/{id}
				r.Patch("/", taskHandler.UpdateTaskByID)  // PATCH /tasks/{id}
				r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /tasks/{id}
			})
		})
	})

	return r
}

// Run блокируется до отмены контекста, затем гасит сервер
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		logger.Info("Server started")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http-сервер: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return nil
}
