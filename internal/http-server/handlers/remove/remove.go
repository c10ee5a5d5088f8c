// Package remove предоставляет HTTP-обработчик удаления строки сущности
// по ID. Вложение строки удаляется по возможности, результат операции
// отражает только исход удаления строки.
package remove

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

// EntityDeleter определяет контракт удаления строки сущности по ID.
type EntityDeleter interface {
	Delete(ctx context.Context, id int) (int64, error)
}

// New возвращает HTTP-обработчик, удаляющий строку сущности по ID.
//
// @Summary Удалить запись сущности по ID
// @Tags entities
// @Produce json
// @Param id path int true "Идентификатор записи"
// @Success 200 {object} response.Response "Количество удалённых записей"
// @Failure 404 {object} response.Response "Запись не найдена"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /{entity}/{id} [delete]
func New(log *slog.Logger, entity string, deleter EntityDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.remove.New"

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

		counter, err := deleter.Delete(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(entity+" not found"))
				return
			}
			log.Error("failed to remove entry", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log.Info("deleted entry", slog.Int("id", id), slog.Int64("count", counter))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"deleted_count": counter,
		}))
	}
}
