// Package services реализует проверку учётных данных для входа.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fitnessclub/membership-api/internal/storage"
)

// ErrInvalidCredentials возвращается при несовпадении пары email/пароль.
// Ошибка не раскрывает, какое из двух полей оказалось неверным.
var ErrInvalidCredentials = errors.New("invalid email or password")

// CredentialChecker определяет контракт поиска пользователя по точному
// совпадению email и пароля.
type CredentialChecker interface {
	AuthenticateUser(ctx context.Context, email, password string) (map[string]any, error)
}

// AuthService реализует операцию входа поверх хранилища пользователей.
type AuthService struct {
	repo CredentialChecker
	log  *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(repo CredentialChecker, log *slog.Logger) *AuthService {
	return &AuthService{repo: repo, log: log}
}

// Login возвращает строку пользователя без поля пароля либо
// ErrInvalidCredentials, когда совпадения нет.
func (s *AuthService) Login(ctx context.Context, email, password string) (map[string]any, error) {
	user, err := s.repo.AuthenticateUser(ctx, email, password)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	s.log.Info("user logged in", slog.Any("id", user["id"]))
	return user, nil
}
