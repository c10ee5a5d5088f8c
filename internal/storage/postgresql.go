// Package storage реализует хранилище данных на основе PostgreSQL
// для обобщённого доступа к сущностям. Запросы строятся по дескриптору
// схемы и выполняются только с позиционной привязкой параметров.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitnessclub/membership-api/internal/storage/schema"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// ErrNotFound означает, что строка с запрошенным идентификатором
// отсутствует. Это не ошибка бэкенда и отличается от неё в обработке.
var ErrNotFound = errors.New("entity not found")

// Storage инкапсулирует соединение с базой данных PostgreSQL.
// Хэндл создаётся при старте процесса и закрывается при остановке,
// зависимость передаётся явно.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// FetchAll возвращает все строки таблицы сущности. Пустая таблица не
// является ошибкой.
func (s *Storage) FetchAll(ctx context.Context, d schema.Descriptor) ([]map[string]any, error) {
	const op = "storage.FetchAll"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stmt := BuildSelectAll(d)
	rows, err := s.DB.QueryContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]map[string]any, 0)
	for rows.Next() {
		row, err := scanRow(d, rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// FetchOne возвращает строку по идентификатору либо ErrNotFound.
func (s *Storage) FetchOne(ctx context.Context, d schema.Descriptor, id int) (map[string]any, error) {
	const op = "storage.FetchOne"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stmt := BuildSelectByID(d, id)
	row, err := scanRow(d, s.DB.QueryRowContext(ctx, stmt.Query, stmt.Args...).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row, nil
}

// Insert вставляет новую строку и возвращает назначенный идентификатор.
func (s *Storage) Insert(ctx context.Context, d schema.Descriptor, fields map[string]any) (int, error) {
	const op = "storage.Insert"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stmt := BuildInsert(d, fields)
	var newID int
	if err := s.DB.QueryRowContext(ctx, stmt.Query, stmt.Args...).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// Update обновляет присутствующие в fields колонки строки и возвращает
// количество изменённых строк. Ноль означает отсутствие строки.
// Пустой набор колонок возвращает ErrEmptyUpdate без обращения к базе.
func (s *Storage) Update(ctx context.Context, d schema.Descriptor, id int, fields map[string]any) (int64, error) {
	const op = "storage.Update"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stmt, err := BuildUpdate(d, id, fields)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	result, err := s.DB.ExecContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// Delete удаляет строку по идентификатору и возвращает количество
// удалённых строк. Ноль означает отсутствие строки.
func (s *Storage) Delete(ctx context.Context, d schema.Descriptor, id int) (int64, error) {
	const op = "storage.Delete"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	stmt := BuildDelete(d, id)
	result, err := s.DB.ExecContext(ctx, stmt.Query, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// scanRow читает одну строку выборки в map по дескриптору. NULL-значения
// представляются как nil.
func scanRow(d schema.Descriptor, scan func(dest ...any) error) (map[string]any, error) {
	var id int64
	dest := make([]any, 0, len(d.Columns)+1)
	dest = append(dest, &id)

	holders := make([]any, len(d.Columns))
	for i, col := range d.Columns {
		switch col.Kind {
		case schema.Number:
			holders[i] = new(sql.NullFloat64)
		case schema.Integer, schema.Ref:
			holders[i] = new(sql.NullInt64)
		case schema.Date:
			holders[i] = new(sql.NullTime)
		default:
			holders[i] = new(sql.NullString)
		}
		dest = append(dest, holders[i])
	}

	if err := scan(dest...); err != nil {
		return nil, err
	}

	row := make(map[string]any, len(d.Columns)+1)
	row["id"] = id
	for i, col := range d.Columns {
		switch h := holders[i].(type) {
		case *sql.NullFloat64:
			if h.Valid {
				row[col.Name] = h.Float64
			} else {
				row[col.Name] = nil
			}
		case *sql.NullInt64:
			if h.Valid {
				row[col.Name] = h.Int64
			} else {
				row[col.Name] = nil
			}
		case *sql.NullTime:
			if h.Valid {
				row[col.Name] = h.Time
			} else {
				row[col.Name] = nil
			}
		case *sql.NullString:
			if h.Valid {
				row[col.Name] = h.String
			} else {
				row[col.Name] = nil
			}
		}
	}
	return row, nil
}
