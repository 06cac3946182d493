package schema

import "strings"

// FindField returns the top-level field with the given name, or nil.
func (s *SchemaDefinition) FindField(name string) *FieldDefinition {
	for _, field := range s.Fields {
		if field.Name == name {
			return field
		}
	}
	return s.Fields[name]
}

// ResolvePath walks a dotted field path ("profile.city") through nested
// object fields. It returns the definition of the last segment, and ok=false
// when a segment is not declared. A segment below a nested field without
// declared sub-fields resolves to nil with ok=true: it is unchecked.
func (s *SchemaDefinition) ResolvePath(path string) (*FieldDefinition, bool) {
	return resolveIn(s.Fields, strings.Split(path, "."))
}

// ResolveIn resolves a field path relative to the sub-record of a nested
// field, used when a filter drills into the items of an array field.
func (f *FieldDefinition) ResolveIn(path string) (*FieldDefinition, bool) {
	if f.Fields == nil {
		return nil, true
	}
	return resolveIn(f.Fields, strings.Split(path, "."))
}

func resolveIn(fields map[string]*FieldDefinition, parts []string) (*FieldDefinition, bool) {
	field, ok := fields[parts[0]]
	if !ok || field == nil {
		return nil, false
	}
	if len(parts) == 1 {
		return field, true
	}
	if !field.Type.IsNested() {
		return nil, false
	}
	if field.Fields == nil {
		return nil, true
	}
	return resolveIn(field.Fields, parts[1:])
}
