// Package read предоставляет HTTP-обработчик чтения строки сущности по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fitnessclub/membership-api/internal/http-server/response"
	"github.com/fitnessclub/membership-api/internal/lib/sl"
	"github.com/fitnessclub/membership-api/internal/storage"
)

// EntityGetter определяет контракт чтения строки сущности по ID.
type EntityGetter interface {
	Get(ctx context.Context, id int) (map[string]any, error)
}

// New возвращает HTTP-обработчик, отдающий строку сущности по ID
// либо 404, когда строки нет.
//
// @Summary Получить запись сущности по ID
// @Tags entities
// @Produce json
// @Param id path int true "Идентификатор записи"
// @Success 200 {object} map[string]interface{} "Запись"
// @Failure 404 {object} response.Response "Запись не найдена"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /{entity}/{id} [get]
func New(log *slog.Logger, entity string, getter EntityGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.read.New"

		log := log.With(
			slog.String("op", op),
			slog.String("entity", entity),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			log.Error("failed to decode id from url", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode id from url"))
			return
		}

		res, err := getter.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(entity+" not found"))
				return
			}
			log.Error("failed to read entry", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log.Info("read entry", slog.Int("id", id))
		render.JSON(w, r, res)
	}
}
