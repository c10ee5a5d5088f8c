package membership

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fitnessclub/membership-api/internal/http-server/handlers/create"
	"github.com/fitnessclub/membership-api/internal/http-server/handlers/list"
	"github.com/fitnessclub/membership-api/internal/http-server/handlers/login"
	"github.com/fitnessclub/membership-api/internal/http-server/handlers/read"
	"github.com/fitnessclub/membership-api/internal/http-server/handlers/remove"
	"github.com/fitnessclub/membership-api/internal/http-server/handlers/update"
	"github.com/fitnessclub/membership-api/internal/http-server/mware"
	authservice "github.com/fitnessclub/membership-api/internal/services/auth"
	entityservice "github.com/fitnessclub/membership-api/internal/services/entity"
	"github.com/fitnessclub/membership-api/internal/storage/schema"
)

// Пути API для каждой сущности. Порядок регистрации фиксирован.
var routes = []struct {
	path   string
	entity schema.Entity
}{
	{"products", schema.Product},
	{"users", schema.User},
	{"subscriptions", schema.Subscription},
	{"payments", schema.Payment},
	{"promotions", schema.Promotion},
	{"contacts", schema.Contact},
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, services map[schema.Entity]*entityservice.Service, auth *authservice.AuthService, uploadsDir string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(mware.RateLimitMiddleware(logger))

		r.Post("/login", login.New(logger, auth))

		for _, route := range routes {
			svc := services[route.entity]
			name := string(route.entity)
			r.Route("/"+route.path, func(r chi.Router) {
				r.Get("/", list.New(logger, name, svc))
				r.Post("/", create.New(logger, name, svc))
				r.Get("/{id}", read.New(logger, name, svc))
				r.Put("/{id}", update.New(logger, name, svc))
				r.Delete("/{id}", remove.New(logger, name, svc))
			})
		}
	})

	// Отдача загруженных вложений
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
