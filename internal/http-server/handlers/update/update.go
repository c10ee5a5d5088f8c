// Package update предоставляет HTTP-обработчик частичного обновления
// строки сущности: меняются только переданные поля. Сущности с колонкой
// вложения принимают multipart-форму; новый файл замещает вложение
// целиком, без файла вложение не трогается.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fitnessclub/membership-api/internal/http-server/response"
	"github.com/fitnessclub/membership-api/internal/lib/sl"
	entityservice "github.com/fitnessclub/membership-api/internal/services/entity"
	"github.com/fitnessclub/membership-api/internal/storage"
)

const maxUploadSize = 10 << 20

// EntityUpdater определяет контракт частичного обновления строки сущности.
type EntityUpdater interface {
	Update(ctx context.Context, id int, raw map[string]any, upload *entityservice.Upload) (int64, error)
	AcceptsUpload() bool
}

// New возвращает HTTP-обработчик, обновляющий строку сущности по ID.
//
// @Summary Обновить запись сущности по ID
// @Tags entities
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "Идентификатор записи"
// @Success 200 {object} response.Response "Количество изменённых записей"
// @Failure 400 {object} response.Response "Некорректные поля"
// @Failure 404 {object} response.Response "Запись не найдена"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /{entity}/{id} [put]
func New(log *slog.Logger, entity string, updater EntityUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.update.New"

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

		raw, upload, err := decodeBody(r, updater.AcceptsUpload())
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}
		if upload != nil {
			defer func() {
				_ = upload.File.Close()
			}()
		}
		log.Info("request body decoded", slog.Any("request", raw))

		counter, err := updater.Update(r.Context(), id, raw, upload)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error(entity+" not found"))
			case errors.Is(err, entityservice.ErrInvalidFields):
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
			default:
				log.Error("failed to update entry", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error(err.Error()))
			}
			return
		}

		log.Info("updated entry", slog.Int("id", id), slog.Int64("count", counter))
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"updated_count": counter,
		}))
	}
}

func decodeBody(r *http.Request, acceptsUpload bool) (map[string]any, *entityservice.Upload, error) {
	contentType := r.Header.Get("Content-Type")
	if !acceptsUpload || !strings.HasPrefix(contentType, "multipart/form-data") {
		var raw map[string]any
		if err := render.DecodeJSON(r.Body, &raw); err != nil {
			return nil, nil, err
		}
		return raw, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, err
	}
	raw := make(map[string]any, len(r.MultipartForm.Value))
	for name, vals := range r.MultipartForm.Value {
		if len(vals) > 0 {
			raw[name] = vals[0]
		}
	}

	file, header, err := r.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) {
		return raw, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return raw, &entityservice.Upload{Field: "picture", File: file, Header: header}, nil
}
