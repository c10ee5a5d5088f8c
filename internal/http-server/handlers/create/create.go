// Package create предоставляет HTTP-обработчик создания строки сущности.
// Сущности с колонкой вложения дополнительно принимают multipart-форму
// с необязательным файловым полем picture.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/fitnessclub/membership-api/internal/http-server/response"
	"github.com/fitnessclub/membership-api/internal/lib/sl"
	entityservice "github.com/fitnessclub/membership-api/internal/services/entity"
)

const maxUploadSize = 10 << 20

// EntityCreator определяет контракт создания строки сущности.
type EntityCreator interface {
	Create(ctx context.Context, raw map[string]any, upload *entityservice.Upload) (int, error)
	AcceptsUpload() bool
}

// New возвращает HTTP-обработчик, создающий строку сущности и
// отвечающий 201 с назначенным идентификатором.
//
// @Summary Создать запись сущности
// @Tags entities
// @Accept json
// @Accept mpfd
// @Produce json
// @Success 201 {object} response.Response "Назначенный идентификатор"
// @Failure 400 {object} response.Response "Некорректные поля"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /{entity} [post]
func New(log *slog.Logger, entity string, creator EntityCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.create.New"

		log := log.With(
			slog.String("op", op),
			slog.String("entity", entity),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		raw, upload, err := decodeBody(r, creator.AcceptsUpload())
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

		id, err := creator.Create(r.Context(), raw, upload)
		if err != nil {
			if errors.Is(err, entityservice.ErrInvalidFields) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(err.Error()))
				return
			}
			log.Error("failed to create new entry", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log.Info("created new entry", slog.Int("id", id))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.StatusOKWithData(map[string]any{
			"id": id,
		}))
	}
}

// decodeBody разбирает тело запроса: JSON по умолчанию, multipart-форма
// для сущностей с вложением. Файловое поле picture необязательно.
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
