// Package login предоставляет HTTP-обработчик входа по email и паролю.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/fitnessclub/membership-api/internal/http-server/response"
	"github.com/fitnessclub/membership-api/internal/lib/sl"
	authservice "github.com/fitnessclub/membership-api/internal/services/auth"
)

// LoginRequest тело запроса входа.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Authenticator определяет контракт проверки учётных данных.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (map[string]any, error)
}

// New возвращает HTTP-обработчик входа. При совпадении пары email/пароль
// отдаёт строку пользователя без поля пароля, иначе 401, не раскрывая,
// какое из полей оказалось неверным.
//
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Пользователь без поля пароля"
// @Failure 401 {object} response.Response "Неверный email или пароль"
// @Failure 500 {object} response.Response "Ошибка хранилища"
// @Router /login [post]
func New(log *slog.Logger, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req LoginRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)
			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))
			return
		}

		user, err := auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, authservice.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid email or password"))
				return
			}
			log.Error("failed to login", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		log.Info("user authenticated")
		render.JSON(w, r, user)
	}
}
