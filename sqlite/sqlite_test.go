package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/asaidimu/go-paginate/core/query"
	"github.com/asaidimu/go-paginate/core/schema"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func usersSchema(t *testing.T) *schema.SchemaDefinition {
	t.Helper()
	sc, err := schema.ParseSchema([]byte(`{
		"name": "users",
		"version": "1.0.0",
		"fields": {
			"id": {"type": "integer"},
			"name": {"type": "string"},
			"score": {"type": "number"},
			"active": {"type": "boolean"},
			"joined": {"type": "time"},
			"books": {"type": "array", "itemsType": "object", "fields": {
				"id": {"type": "integer"},
				"title": {"type": "string"}
			}}
		}
	}`))
	require.NoError(t, err)
	return sc
}

func seedUsers(t *testing.T, source *Source, sc *schema.SchemaDefinition) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, source.CreateCollection(ctx, sc))

	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n, err := source.InsertDocuments(ctx, sc, []schema.Document{
		{"id": 1, "name": "Alice", "score": 7.5, "active": true, "joined": joined,
			"books": []any{map[string]any{"id": 1, "title": "Marvel"}}},
		{"id": 2, "name": "Bob", "score": 9, "active": false, "joined": joined.Add(24 * time.Hour),
			"books": []any{map[string]any{"id": 2, "title": "DC Comics"}}},
		{"id": 3, "name": "Charlie", "active": true, "ignored": "x",
			"books": []any{
				map[string]any{"id": 3, "title": "Image Comics"},
				map[string]any{"id": 4, "title": "Dark Horse"},
			}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCreateTableSQL(t *testing.T) {
	source := NewSource(nil, nil, &Options{TablePrefix: "app_"})
	stmt, err := source.CreateTableSQL(usersSchema(t))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stmt, `CREATE TABLE "app_users" (`), stmt)
	assert.Contains(t, stmt, `"active" INTEGER`)
	assert.Contains(t, stmt, `"books" TEXT`)
	assert.Contains(t, stmt, `"joined" TEXT`)
	assert.Contains(t, stmt, `"score" REAL`)
	assert.Less(t, strings.Index(stmt, `"active"`), strings.Index(stmt, `"score"`), "columns are ordered by name")

	stmt, err = NewSource(nil, nil, nil).CreateTableSQL(usersSchema(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stmt, `CREATE TABLE IF NOT EXISTS "users"`))

	_, err = source.CreateTableSQL(&schema.SchemaDefinition{Name: "empty"})
	assert.Error(t, err)
}

func TestColumnType(t *testing.T) {
	tests := map[schema.FieldType]string{
		schema.FieldTypeString:  "TEXT",
		schema.FieldTypeEnum:    "TEXT",
		schema.FieldTypeTime:    "TEXT",
		schema.FieldTypeInteger: "INTEGER",
		schema.FieldTypeBoolean: "INTEGER",
		schema.FieldTypeNumber:  "REAL",
		schema.FieldTypeDecimal: "REAL",
		schema.FieldTypeObject:  "TEXT",
		schema.FieldTypeArray:   "TEXT",
		schema.FieldTypeRecord:  "TEXT",
		"unknown":               "BLOB",
	}
	for fieldType, expected := range tests {
		assert.Equal(t, expected, ColumnType(fieldType), string(fieldType))
	}
}

func TestSource_RoundTrip(t *testing.T) {
	db := openDB(t)
	sc := usersSchema(t)
	source := NewSource(db, zap.NewNop(), DefaultOptions())
	seedUsers(t, source, sc)

	docs, err := source.LoadCollection(context.Background(), sc)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	alice := docs[0]
	assert.Equal(t, int64(1), alice["id"])
	assert.Equal(t, "Alice", alice["name"])
	assert.Equal(t, 7.5, alice["score"])
	assert.Equal(t, true, alice["active"])
	joined, ok := alice["joined"].(time.Time)
	require.True(t, ok, "time columns decode to time.Time")
	assert.True(t, joined.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, []any{map[string]any{"id": float64(1), "title": "Marvel"}}, alice["books"])

	bob := docs[1]
	assert.Equal(t, float64(9), bob["score"])
	assert.Equal(t, false, bob["active"])

	charlie := docs[2]
	assert.Nil(t, charlie["score"])
	assert.Nil(t, charlie["joined"])
	assert.NotContains(t, charlie, "ignored")
}

func TestSource_InsertNothing(t *testing.T) {
	source := NewSource(openDB(t), nil, nil)
	n, err := source.InsertDocuments(context.Background(), usersSchema(t), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSource_LoadMissingTable(t *testing.T) {
	source := NewSource(openDB(t), nil, nil)
	_, err := source.Load(context.Background(), usersSchema(t))
	assert.Error(t, err)
}

func TestSource_Paginate(t *testing.T) {
	db := openDB(t)
	sc := usersSchema(t)
	source := NewSource(db, zap.NewNop(), &Options{TablePrefix: "t_", IfNotExists: true})
	seedUsers(t, source, sc)

	data, err := source.Load(context.Background(), sc)
	require.NoError(t, err)

	p, err := query.NewPaginator(query.Config{DisableEvents: true})
	require.NoError(t, err)
	require.NoError(t, p.RegisterSchema(sc))

	opts, err := query.ParseOptions([]byte(`{
		"filter": [
			{"books": {"title": {"eq": "Dark Horse"}}},
			{"score": {"gt": 8}}
		],
		"sort": {"name": "desc"},
		"limit": 5
	}`))
	require.NoError(t, err)

	result, err := p.Paginate(context.Background(), "users", data, opts)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Charlie", result.Items[0]["name"])
	assert.Equal(t, "Bob", result.Items[1]["name"])
	assert.Equal(t, 2, result.Total)

	result, err = p.Paginate(context.Background(), "users", data, &query.Options{
		Filter: query.AllOf(query.Where("joined", query.OperatorGt, time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC))),
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Bob", result.Items[0]["name"])
}

func TestSource_InsertRejectsInvalidRecords(t *testing.T) {
	db := openDB(t)
	sc := usersSchema(t)
	source := NewSource(db, nil, nil)
	require.NoError(t, source.CreateCollection(context.Background(), sc))

	_, err := source.InsertDocuments(context.Background(), sc, []schema.Document{
		{"id": 1, "name": "Alice"},
		{"id": "two", "name": "Bob"},
	})
	assert.ErrorContains(t, err, "record 1")

	docs, err := source.LoadCollection(context.Background(), sc)
	require.NoError(t, err)
	assert.Empty(t, docs, "no record is stored when one is invalid")
}

func TestSource_PaginateSource(t *testing.T) {
	db := openDB(t)
	sc := usersSchema(t)
	source := NewSource(db, nil, nil)
	seedUsers(t, source, sc)

	p, err := query.NewPaginator(query.Config{DisableEvents: true})
	require.NoError(t, err)

	result, err := p.PaginateSource(context.Background(), source, sc, &query.Options{
		Filter: query.AllOf(query.Where("active", query.OperatorEq, true)),
		Sort:   []query.SortConfiguration{{Field: "id", Direction: query.SortDirectionDesc}},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, int64(3), result.Items[0]["id"])
	assert.Equal(t, int64(1), result.Items[1]["id"])

	_, err = p.PaginateSource(context.Background(), NewSource(openDB(t), nil, nil), sc, nil)
	assert.ErrorContains(t, err, "failed to load collection 'users'")

	_, err = p.PaginateSource(context.Background(), source, nil, nil)
	assert.Error(t, err)
}
