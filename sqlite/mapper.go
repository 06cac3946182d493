// Package sqlite loads collections stored in SQLite tables into the in-memory
// documents the paginator works on, and stores records back. Each collection
// is a table whose columns are the top-level fields of its schema; nested
// fields are stored as JSON text and decoded on load.
package sqlite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/asaidimu/go-paginate/core/schema"
)

// quoteIdentifier safely quotes an identifier, such as a table or column name,
// to prevent SQL injection and to handle names that might be keywords or contain
// special characters.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableName constructs the full, quoted table name by applying the configured
// table prefix to the base name.
func (s *Source) tableName(collection string) string {
	return quoteIdentifier(s.options.TablePrefix + collection)
}

// columns returns the schema's top-level fields in name order.
func columns(sc *schema.SchemaDefinition) []*schema.FieldDefinition {
	fields := make([]*schema.FieldDefinition, 0, len(sc.Fields))
	for _, field := range sc.Fields {
		fields = append(fields, field)
	}
	slices.SortFunc(fields, func(a, b *schema.FieldDefinition) int {
		return strings.Compare(a.Name, b.Name)
	})
	return fields
}

// CreateTableSQL generates the DDL statement that creates a collection's table.
func (s *Source) CreateTableSQL(sc *schema.SchemaDefinition) (string, error) {
	if len(sc.Fields) == 0 {
		return "", fmt.Errorf("schema '%s' has no fields", sc.Name)
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if s.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(s.tableName(sc.Name) + " (\n")

	defs := make([]string, 0, len(sc.Fields))
	for _, field := range columns(sc) {
		defs = append(defs, "    "+quoteIdentifier(field.Name)+" "+ColumnType(field.Type))
	}
	sb.WriteString(strings.Join(defs, ",\n"))
	sb.WriteString("\n);")
	return sb.String(), nil
}

// ColumnType maps a schema.FieldType to its corresponding SQLite column type.
func ColumnType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeEnum, schema.FieldTypeTime:
		return "TEXT"
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		return "REAL"
	case schema.FieldTypeInteger, schema.FieldTypeBoolean:
		return "INTEGER"
	case schema.FieldTypeObject, schema.FieldTypeArray, schema.FieldTypeRecord:
		return "TEXT"
	default:
		return "BLOB"
	}
}
