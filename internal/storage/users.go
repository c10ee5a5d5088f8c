package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitnessclub/membership-api/internal/storage/schema"
)

// AuthenticateUser находит пользователя с точным совпадением email и
// пароля. Пароль сравнивается как непрозрачная строка, без нормализации.
// Возвращаемая строка не содержит поля password. Если совпадений
// несколько, возвращается первая в естественном порядке выборки.
func (s *Storage) AuthenticateUser(ctx context.Context, email, password string) (map[string]any, error) {
	const op = "storage.AuthenticateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	d := schema.Get(schema.User)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE email = $1 AND password = $2`,
		selectColumns(d), d.Table)

	row, err := scanRow(d, s.DB.QueryRowContext(ctx, query, email, password).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	delete(row, "password")
	return row, nil
}
