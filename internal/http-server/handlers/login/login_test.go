package login_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitnessclub/membership-api/internal/http-server/handlers/login"
	authservice "github.com/fitnessclub/membership-api/internal/services/auth"
)

type mockAuthenticator struct {
	LoginFunc func(ctx context.Context, email, password string) (map[string]any, error)
}

func (m *mockAuthenticator) Login(ctx context.Context, email, password string) (map[string]any, error) {
	return m.LoginFunc(ctx, email, password)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestLoginHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		auth := &mockAuthenticator{
			LoginFunc: func(_ context.Context, email, password string) (map[string]any, error) {
				require.Equal(t, "jane@example.com", email)
				require.Equal(t, "secret", password)
				return map[string]any{"id": 3, "email": "jane@example.com", "firstname": "Jane"}, nil
			},
		}

		req := newLoginRequest(`{"email": "jane@example.com", "password": "secret"}`)
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), auth)
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var user map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
		assert.Equal(t, "Jane", user["firstname"])
		_, hasPassword := user["password"]
		assert.False(t, hasPassword)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		auth := &mockAuthenticator{
			LoginFunc: func(context.Context, string, string) (map[string]any, error) {
				return nil, authservice.ErrInvalidCredentials
			},
		}

		req := newLoginRequest(`{"email": "jane@example.com", "password": "wrong"}`)
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), auth)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid email or password")
	})

	t.Run("missing fields", func(t *testing.T) {
		auth := &mockAuthenticator{
			LoginFunc: func(context.Context, string, string) (map[string]any, error) {
				t.Fatal("login must not be called on invalid request")
				return nil, nil
			},
		}

		req := newLoginRequest(`{"email": "jane@example.com"}`)
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), auth)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Password")
	})

	t.Run("malformed json", func(t *testing.T) {
		auth := &mockAuthenticator{}

		req := newLoginRequest(`{not json`)
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), auth)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "failed to decode request")
	})

	t.Run("storage error", func(t *testing.T) {
		auth := &mockAuthenticator{
			LoginFunc: func(context.Context, string, string) (map[string]any, error) {
				return nil, errors.New("db error")
			},
		}

		req := newLoginRequest(`{"email": "jane@example.com", "password": "secret"}`)
		w := httptest.NewRecorder()

		handler := login.New(makeLogger(), auth)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func newLoginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
