package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fitnessclub/membership-api/internal/storage/schema"
)

// ErrEmptyUpdate возвращается BuildUpdate, когда запрос не содержит
// ни одной известной колонки. Политику обработки выбирает вызывающий.
var ErrEmptyUpdate = errors.New("empty update")

// Statement параметризованный SQL-запрос. Значения никогда не
// подставляются в текст запроса, только в позиционный список Args.
type Statement struct {
	Query string
	Args  []any
}

// BuildSelectAll собирает выборку всех строк таблицы в порядке колонок
// дескриптора.
func BuildSelectAll(d schema.Descriptor) Statement {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, selectColumns(d), d.Table)
	return Statement{Query: query}
}

// BuildSelectByID собирает выборку одной строки по идентификатору.
func BuildSelectByID(d schema.Descriptor, id int) Statement {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, selectColumns(d), d.Table)
	return Statement{Query: query, Args: []any{id}}
}

// BuildInsert собирает вставку только тех колонок, что присутствуют в
// fields, сохраняя порядок дескриптора. Отсутствующие колонки опускаются,
// чтобы сработали значения по умолчанию.
func BuildInsert(d schema.Descriptor, fields map[string]any) Statement {
	var (
		names        []string
		placeholders []string
		args         []any
	)
	for _, col := range d.Columns {
		val, ok := fields[col.Name]
		if !ok {
			continue
		}
		names = append(names, col.Name)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, val)
	}
	if len(names) == 0 {
		return Statement{Query: fmt.Sprintf(`INSERT INTO %s DEFAULT VALUES RETURNING id`, d.Table)}
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING id`,
		d.Table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return Statement{Query: query, Args: args}
}

// BuildUpdate собирает частичное обновление строки: изменяются только
// колонки, присутствующие в fields. Пустой набор колонок возвращает
// ErrEmptyUpdate.
func BuildUpdate(d schema.Descriptor, id int, fields map[string]any) (Statement, error) {
	var (
		assignments []string
		args        []any
	)
	for _, col := range d.Columns {
		val, ok := fields[col.Name]
		if !ok {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col.Name, len(args)+1))
		args = append(args, val)
	}
	if len(assignments) == 0 {
		return Statement{}, ErrEmptyUpdate
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`,
		d.Table, strings.Join(assignments, ", "), len(args))
	return Statement{Query: query, Args: args}, nil
}

// BuildDelete собирает удаление строки по идентификатору.
func BuildDelete(d schema.Descriptor, id int) Statement {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, d.Table)
	return Statement{Query: query, Args: []any{id}}
}

func selectColumns(d schema.Descriptor) string {
	names := make([]string, 0, len(d.Columns)+1)
	names = append(names, "id")
	for _, col := range d.Columns {
		names = append(names, col.Name)
	}
	return strings.Join(names, ", ")
}
