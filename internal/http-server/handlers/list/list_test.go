package list_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitnessclub/membership-api/internal/http-server/handlers/list"
)

type mockLister struct {
	ListFunc func(ctx context.Context) ([]map[string]any, error)
}

func (m *mockLister) List(ctx context.Context) ([]map[string]any, error) {
	return m.ListFunc(ctx)
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func TestListHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		lister := &mockLister{
			ListFunc: func(context.Context) ([]map[string]any, error) {
				return []map[string]any{
					{"id": 1, "name": "Gym Pass"},
					{"id": 2, "name": "Pool Pass"},
				}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		w := httptest.NewRecorder()

		handler := list.New(makeLogger(), "product", lister)
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var rows []map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "Pool Pass", rows[1]["name"])
	})

	t.Run("empty table gives empty array", func(t *testing.T) {
		lister := &mockLister{
			ListFunc: func(context.Context) ([]map[string]any, error) {
				return []map[string]any{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		w := httptest.NewRecorder()

		handler := list.New(makeLogger(), "product", lister)
		handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("storage error", func(t *testing.T) {
		lister := &mockLister{
			ListFunc: func(context.Context) ([]map[string]any, error) {
				return nil, errors.New("db error")
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		w := httptest.NewRecorder()

		handler := list.New(makeLogger(), "product", lister)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
