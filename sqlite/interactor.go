package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-paginate/core/query"
	"github.com/asaidimu/go-paginate/core/schema"
	"go.uber.org/zap"
)

var _ query.DocumentSource = (*Source)(nil)

// Options configures a Source.
type Options struct {
	TablePrefix string // prepended to collection names
	IfNotExists bool   // CREATE TABLE IF NOT EXISTS
}

// DefaultOptions returns a set of sensible default options for a Source.
func DefaultOptions() *Options {
	return &Options{IfNotExists: true}
}

// Source reads and writes collections held in a SQLite database.
type Source struct {
	db      *sql.DB
	logger  *zap.Logger
	options *Options
}

// NewSource creates a Source over an open database handle.
func NewSource(db *sql.DB, logger *zap.Logger, options *Options) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}
	return &Source{db: db, logger: logger, options: options}
}

// CreateCollection creates the table backing a collection.
func (s *Source) CreateCollection(ctx context.Context, sc *schema.SchemaDefinition) error {
	stmt, err := s.CreateTableSQL(sc)
	if err != nil {
		return fmt.Errorf("failed to generate SQL for table %s: %w", sc.Name, err)
	}
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
	}
	s.logger.Info("Created collection table", zap.String("collection", sc.Name))
	return nil
}

// InsertDocuments stores records in a collection's table inside a single
// transaction. Records are checked against the schema first and none is
// stored if any fails. Fields missing from a record are stored as NULL;
// fields not declared in the schema are ignored.
func (s *Source) InsertDocuments(ctx context.Context, sc *schema.SchemaDefinition, docs []schema.Document) (int64, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	validator := schema.NewValidator(sc)
	for i, doc := range docs {
		if valid, issues := validator.Validate(doc, true); !valid {
			return 0, fmt.Errorf("record %d does not match schema '%s': %s", i, sc.Name, schema.FormatIssues(issues))
		}
	}

	fields := columns(sc)
	names := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	for i, field := range fields {
		names[i] = quoteIdentifier(field.Name)
		placeholders[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.tableName(sc.Name), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer prepared.Close()

	var inserted int64
	for i, doc := range docs {
		args := make([]any, len(fields))
		for j, field := range fields {
			value, err := encodeValue(field, doc[field.Name])
			if err != nil {
				return 0, fmt.Errorf("record %d, field '%s': %w", i, field.Name, err)
			}
			args[j] = value
		}
		if _, err := prepared.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug("Inserted documents", zap.String("collection", sc.Name), zap.Int64("count", inserted))
	return inserted, nil
}

func encodeValue(field *schema.FieldDefinition, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch field.Type {
	case schema.FieldTypeObject, schema.FieldTypeArray, schema.FieldTypeRecord:
		b, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal nested value to JSON: %w", err)
		}
		return string(b), nil
	case schema.FieldTypeTime:
		if t, ok := value.(time.Time); ok {
			return t.UTC().Format(time.RFC3339Nano), nil
		}
	case schema.FieldTypeBoolean:
		if b, ok := value.(bool); ok {
			if b {
				return int64(1), nil
			}
			return int64(0), nil
		}
	}
	return value, nil
}

// LoadCollection reads every row of a collection's table, in rowid order.
func (s *Source) LoadCollection(ctx context.Context, sc *schema.SchemaDefinition) ([]schema.Document, error) {
	fields := columns(sc)
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = quoteIdentifier(field.Name)
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", strings.Join(names, ", "), s.tableName(sc.Name))

	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection '%s': %w", sc.Name, err)
	}
	defer rows.Close()

	docs, err := readRows(s.logger, sc, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection '%s': %w", sc.Name, err)
	}
	s.logger.Debug("Loaded collection", zap.String("collection", sc.Name), zap.Int("count", len(docs)))
	return docs, nil
}

// Load reads several collections into one document keyed by collection name,
// ready to be paginated.
func (s *Source) Load(ctx context.Context, schemas ...*schema.SchemaDefinition) (schema.Document, error) {
	data := make(schema.Document, len(schemas))
	for _, sc := range schemas {
		docs, err := s.LoadCollection(ctx, sc)
		if err != nil {
			return nil, err
		}
		data[sc.Name] = docs
	}
	return data, nil
}

// readRows reads all rows from a *sql.Rows object and converts them into a slice
// of schema.Document maps. It also handles type conversions for different field types.
func readRows(logger *zap.Logger, sc *schema.SchemaDefinition, rows *sql.Rows) ([]schema.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	results := []schema.Document{}
	for rows.Next() {
		row := make(schema.Document, len(columns))
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			val := values[i]
			if val == nil {
				row[col] = nil
				continue
			}

			fieldDef, ok := sc.Fields[col]
			if !ok {
				logger.Warn("Column not found in schema, using raw value", zap.String("column", col))
				row[col] = val
				continue
			}
			row[col] = decodeValue(fieldDef.Type, val)
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func decodeValue(fieldType schema.FieldType, val any) any {
	switch fieldType {
	case schema.FieldTypeBoolean:
		if intVal, isInt := val.(int64); isInt {
			return intVal != 0
		}
	case schema.FieldTypeString, schema.FieldTypeEnum:
		if byteVal, isByte := val.([]byte); isByte {
			return string(byteVal)
		}
	case schema.FieldTypeInteger:
		if floatVal, isFloat := val.(float64); isFloat {
			return int64(floatVal)
		}
	case schema.FieldTypeNumber, schema.FieldTypeDecimal:
		if intVal, isInt := val.(int64); isInt {
			return float64(intVal)
		}
	case schema.FieldTypeTime:
		if s, ok := textValue(val); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t
			}
			return s
		}
	case schema.FieldTypeObject, schema.FieldTypeArray, schema.FieldTypeRecord:
		if s, ok := textValue(val); ok {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err == nil {
				return decoded
			}
		}
	}
	return val
}

func textValue(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}
