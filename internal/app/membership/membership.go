// Package membership собирает приложение: хранилище, миграции, кеш,
// хранилище вложений, сервисы сущностей и HTTP-сервер.
package membership

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/fitnessclub/membership-api/internal/cache"
	"github.com/fitnessclub/membership-api/internal/config"
	"github.com/fitnessclub/membership-api/internal/lib/blob"
	"github.com/fitnessclub/membership-api/internal/migrations"
	authservice "github.com/fitnessclub/membership-api/internal/services/auth"
	entityservice "github.com/fitnessclub/membership-api/internal/services/entity"
	"github.com/fitnessclub/membership-api/internal/storage"
	"github.com/fitnessclub/membership-api/internal/storage/schema"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
}

// New создает приложение: подключается к базе и Redis, применяет
// миграции, создаёт каталог вложений и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	blobs, err := blob.New(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	entities := []schema.Entity{
		schema.Product,
		schema.User,
		schema.Subscription,
		schema.Payment,
		schema.Promotion,
		schema.Contact,
	}
	entityServices := make(map[schema.Entity]*entityservice.Service, len(entities))
	for _, e := range entities {
		entityServices[e] = entityservice.NewService(e, db, cacheRedis, blobs, logger)
	}
	authService := authservice.NewAuthService(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, entityServices, authService, blobs.Dir())

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.db.DB.Close()
		return err
	}
}
