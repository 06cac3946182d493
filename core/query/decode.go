package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/asaidimu/go-paginate/core/schema"
)

// member is one key of a JSON object, kept in document order.
type member struct {
	key   string
	value json.RawMessage
}

// decodeObject reads a JSON object without losing the order of its keys.
func decodeObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %s", describeJSON(data))
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode value of '%s': %w", key, err)
		}
		members = append(members, member{key: key, value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return members, nil
}

func jsonKind(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

func describeJSON(data []byte) string {
	switch jsonKind(data) {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	case 0:
		return "nothing"
	}
	return "number"
}

// UnmarshalJSON decodes either an AND-object or an OR-sequence of
// AND-objects. Field and operator order follow the document.
func (f *Filter) UnmarshalJSON(data []byte) error {
	switch jsonKind(data) {
	case '{':
		conditions, err := decodeConditions(data)
		if err != nil {
			return err
		}
		*f = Filter{Kind: FilterKindAnd, And: conditions}
		return nil
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return err
		}
		alternatives := make([]Conditions, 0, len(raws))
		for _, raw := range raws {
			conditions, err := decodeConditions(raw)
			if err != nil {
				return err
			}
			alternatives = append(alternatives, conditions)
		}
		*f = Filter{Kind: FilterKindOr, Or: alternatives}
		return nil
	case 'n':
		*f = Filter{Kind: FilterKindAnd}
		return nil
	}
	return &InvalidFilterError{Reason: fmt.Sprintf("a filter must be an object or an array of objects, got %s", describeJSON(data))}
}

func decodeConditions(data []byte) (Conditions, error) {
	if jsonKind(data) != '{' {
		return nil, &InvalidFilterError{Reason: fmt.Sprintf("expected an AND-object, got %s", describeJSON(data))}
	}
	members, err := decodeObject(data)
	if err != nil {
		return nil, err
	}
	conditions := make(Conditions, 0, len(members))
	for _, m := range members {
		clause, err := decodeClause(m.key, m.value)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, clause)
	}
	return conditions, nil
}

// decodeClause reads the value of one field of an AND-object. Keys naming a
// supported operator become comparisons; any other key holding an object is
// a sub-filter on the nested field of that name.
func decodeClause(field string, data []byte) (FieldClause, error) {
	clause := FieldClause{Field: field}
	if jsonKind(data) != '{' {
		return clause, &InvalidFilterError{Field: field, Reason: fmt.Sprintf("expected an operator object, got %s", describeJSON(data))}
	}
	members, err := decodeObject(data)
	if err != nil {
		return clause, err
	}

	for _, m := range members {
		op := Operator(m.key)
		switch {
		case op.IsSupported():
			var value any
			if err := json.Unmarshal(m.value, &value); err != nil {
				return clause, fmt.Errorf("failed to decode operand of %s on '%s': %w", op, field, err)
			}
			clause.Comparisons = append(clause.Comparisons, Comparison{Operator: op, Value: value})
		case jsonKind(m.value) == '{':
			nested, err := decodeClause(m.key, m.value)
			if err != nil {
				return clause, err
			}
			clause.Nested = append(clause.Nested, nested)
		default:
			return clause, &UnsupportedOperatorError{Operator: m.key, Field: field}
		}
	}
	return clause, nil
}

// UnmarshalJSON decodes pagination options. The sort may be given either as
// an object mapping fields to directions, applied in key order, or as an
// array of {field, direction} objects.
func (o *Options) UnmarshalJSON(data []byte) error {
	var raw struct {
		Filter *Filter         `json:"filter"`
		Sort   json.RawMessage `json:"sort"`
		Page   int             `json:"page"`
		Limit  int             `json:"limit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	sort, err := decodeSort(raw.Sort)
	if err != nil {
		return err
	}
	*o = Options{Filter: raw.Filter, Sort: sort, Page: raw.Page, Limit: raw.Limit}
	return nil
}

func decodeSort(data json.RawMessage) ([]SortConfiguration, error) {
	switch jsonKind(data) {
	case 0, 'n':
		return nil, nil
	case '[':
		var sort []SortConfiguration
		if err := json.Unmarshal(data, &sort); err != nil {
			return nil, err
		}
		return sort, nil
	case '{':
		members, err := decodeObject(data)
		if err != nil {
			return nil, err
		}
		sort := make([]SortConfiguration, 0, len(members))
		for _, m := range members {
			var direction string
			if err := json.Unmarshal(m.value, &direction); err != nil {
				return nil, fmt.Errorf("%w: direction of '%s' must be a string", ErrInvalidSortDirection, m.key)
			}
			sort = append(sort, SortConfiguration{Field: m.key, Direction: SortDirection(direction)})
		}
		return sort, nil
	}
	return nil, fmt.Errorf("sort must be an object or an array, got %s", describeJSON(data))
}

// ParseOptions decodes pagination options from JSON. The document is first
// checked with ValidateOptionsDocument.
func ParseOptions(data []byte) (*Options, error) {
	if err := ValidateOptionsDocument(data); err != nil {
		return nil, err
	}
	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return &opts, nil
}

// ParseFilter builds a filter from already-decoded values: a map for an
// AND-object, or a slice of maps for an OR-sequence. Go maps carry no key
// order, so fields and operators are taken in sorted order.
func ParseFilter(v any) (*Filter, error) {
	if v == nil {
		return nil, nil
	}
	if m, ok := toStringMap(v); ok {
		conditions, err := parseConditions(m)
		if err != nil {
			return nil, err
		}
		return AllOf(conditions...), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &InvalidFilterError{Reason: fmt.Sprintf("a filter must be a map or a slice of maps, got %T", v)}
	}
	alternatives := make([]Conditions, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		m, ok := toStringMap(elem)
		if !ok {
			return nil, &InvalidFilterError{Reason: fmt.Sprintf("alternative %d must be a map, got %T", i, elem)}
		}
		conditions, err := parseConditions(m)
		if err != nil {
			return nil, err
		}
		alternatives = append(alternatives, conditions)
	}
	return AnyOf(alternatives...), nil
}

func parseConditions(m map[string]any) (Conditions, error) {
	conditions := make(Conditions, 0, len(m))
	for _, field := range sortedKeys(m) {
		clause, err := parseClause(field, m[field])
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, clause)
	}
	return conditions, nil
}

func parseClause(field string, v any) (FieldClause, error) {
	clause := FieldClause{Field: field}
	m, ok := toStringMap(v)
	if !ok {
		return clause, &InvalidFilterError{Field: field, Reason: fmt.Sprintf("expected an operator map, got %T", v)}
	}

	for _, key := range sortedKeys(m) {
		op := Operator(key)
		if op.IsSupported() {
			clause.Comparisons = append(clause.Comparisons, Comparison{Operator: op, Value: m[key]})
			continue
		}
		if _, isMap := toStringMap(m[key]); !isMap {
			return clause, &UnsupportedOperatorError{Operator: key, Field: field}
		}
		nested, err := parseClause(key, m[key])
		if err != nil {
			return clause, err
		}
		clause.Nested = append(clause.Nested, nested)
	}
	return clause, nil
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case schema.Document:
		return m, true
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
