// Package list предоставляет HTTP-обработчик выборки всех строк сущности.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fitnessclub/membership-api/internal/http-server/response"
	"github.com/fitnessclub/membership-api/internal/lib/sl"
)

// EntityLister определяет контракт выборки всех строк сущности.
type EntityLister interface {
	List(ctx context.Context) ([]map[string]any, error)
}

// New возвращает HTTP-обработчик, отдающий массив всех строк сущности.
//
// @Summary Получить список всех записей сущности
// @Tags entities
// @Produce json
// @Success 200 {array} map[string]interface{} "Массив записей"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /{entity} [get]
func New(log *slog.Logger, entity string, lister EntityLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("entity", entity),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		res, err := lister.List(r.Context())
		if err != nil {
			log.Error("failed to list entries", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log.Info("list entries", slog.Int("count", len(res)))
		render.JSON(w, r, res)
	}
}
