package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitnessclub/membership-api/internal/storage/schema"
)

func TestBuildSelectAll(t *testing.T) {
	stmt := BuildSelectAll(schema.Get(schema.Contact))

	assert.Equal(t,
		`SELECT id, contact_name, contact_email, contact_tel, title, detail FROM contact ORDER BY id`,
		stmt.Query)
	assert.Empty(t, stmt.Args)
}

func TestBuildSelectByID(t *testing.T) {
	stmt := BuildSelectByID(schema.Get(schema.Product), 42)

	assert.Equal(t,
		`SELECT id, package_id, name, price, description, duration, picture FROM product WHERE id = $1`,
		stmt.Query)
	assert.Equal(t, []any{42}, stmt.Args)
}

func TestBuildInsert_SubsetKeepsDescriptorOrder(t *testing.T) {
	stmt := BuildInsert(schema.Get(schema.Product), map[string]any{
		"price": 49.99,
		"name":  "Gym Pass",
	})

	assert.Equal(t,
		`INSERT INTO product (name, price) VALUES ($1, $2) RETURNING id`,
		stmt.Query)
	assert.Equal(t, []any{"Gym Pass", 49.99}, stmt.Args)
}

func TestBuildInsert_EmptyFields(t *testing.T) {
	stmt := BuildInsert(schema.Get(schema.Contact), map[string]any{})

	assert.Equal(t, `INSERT INTO contact DEFAULT VALUES RETURNING id`, stmt.Query)
	assert.Empty(t, stmt.Args)
}

func TestBuildInsert_IgnoresUnknownKeys(t *testing.T) {
	stmt := BuildInsert(schema.Get(schema.Contact), map[string]any{
		"contact_name": "Anna",
		"role":         "admin",
	})

	assert.Equal(t, `INSERT INTO contact (contact_name) VALUES ($1) RETURNING id`, stmt.Query)
	assert.Equal(t, []any{"Anna"}, stmt.Args)
}

func TestBuildUpdate_PartialWithIDLast(t *testing.T) {
	stmt, err := BuildUpdate(schema.Get(schema.Payment), 7, map[string]any{
		"method": "card",
	})
	require.NoError(t, err)

	assert.Equal(t, `UPDATE payment SET method = $1 WHERE id = $2`, stmt.Query)
	assert.Equal(t, []any{"card", 7}, stmt.Args)
}

func TestBuildUpdate_Empty(t *testing.T) {
	_, err := BuildUpdate(schema.Get(schema.Payment), 7, map[string]any{})

	require.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestBuildDelete(t *testing.T) {
	stmt := BuildDelete(schema.Get(schema.User), 3)

	assert.Equal(t, `DELETE FROM users WHERE id = $1`, stmt.Query)
	assert.Equal(t, []any{3}, stmt.Args)
}

// Значения никогда не попадают в текст запроса, даже содержащие кавычки
// и ключевые слова SQL.
func TestBuild_NeverEmbedsValues(t *testing.T) {
	hostile := `a'); DROP TABLE product; --`

	insert := BuildInsert(schema.Get(schema.Product), map[string]any{"name": hostile})
	update, err := BuildUpdate(schema.Get(schema.Product), 1, map[string]any{"name": hostile})
	require.NoError(t, err)

	for _, stmt := range []Statement{insert, update} {
		assert.NotContains(t, stmt.Query, hostile)
		assert.NotContains(t, stmt.Query, "DROP TABLE")
		assert.Contains(t, stmt.Args, hostile)
	}
}
