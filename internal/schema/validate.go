package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFields is returned when a schema declares an empty field list.
	ErrNoFields = errors.New("schema must define at least one field")
)

// ValidateFields checks schema-definition-time invariants over a field list:
// non-empty list, non-empty unique names, no reserved names, known types and
// compilable custom rules. The first violation wins.
func ValidateFields(fields []FieldDef) error {
	if len(fields) == 0 {
		return ErrNoFields
	}

	seen := make(map[string]bool, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			return errors.New("field name must not be empty")
		}
		if IsSystemField(field.Name) {
			return fmt.Errorf("field name %q is reserved", field.Name)
		}
		if seen[field.Name] {
			return fmt.Errorf("duplicate field name %q", field.Name)
		}
		seen[field.Name] = true

		if !field.Type.Valid() {
			return fmt.Errorf("field %q has unknown type %q", field.Name, field.Type)
		}

		if _, err := field.Validation.Rules(); err != nil {
			return fmt.Errorf("field %q: %v", field.Name, err)
		}
	}

	return nil
}

// ValidateIndexes checks that every index references declared fields only.
func ValidateIndexes(indexes []IndexDef, fields []FieldDef) error {
	declared := make(map[string]bool, len(fields))
	for _, field := range fields {
		declared[field.Name] = true
	}

	for _, index := range indexes {
		if len(index.Fields) == 0 {
			return fmt.Errorf("index %q must reference at least one field", index.Name)
		}
		for _, name := range index.Fields {
			if !declared[name] {
				return fmt.Errorf("index %q references unknown field %q", index.Name, name)
			}
		}
	}

	return nil
}
