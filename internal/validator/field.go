package validator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/krapi/cms/internal/schema"
)

// Error reports the first field that failed document validation. Validation
// is fail-fast: one error per document, never an aggregate.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

func fieldError(field, format string, args ...interface{}) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Date layouts accepted on input. Values are normalized to RFC3339 UTC.
var (
	dateLayouts = []string{"2006-01-02", time.RFC3339}

	dateTimeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
)

// Field checks a raw value against the declared field type, returning the
// normalized value. Custom rules run only after the type check passes.
func Field(value interface{}, def schema.FieldDef) (interface{}, error) {
	normalized, err := checkType(value, def)
	if err != nil {
		return nil, err
	}

	rules, err := def.Validation.Rules()
	if err != nil {
		// unreachable for schemas that passed definition-time validation
		return nil, fieldError(def.Name, "has invalid validation rules: %v", err)
	}
	for _, rule := range rules {
		if err := rule.Check(normalized); err != nil {
			return nil, fieldError(def.Name, "%v", err)
		}
	}

	return normalized, nil
}

func checkType(value interface{}, def schema.FieldDef) (interface{}, error) {
	switch def.Type {
	case schema.FieldString:
		s, ok := value.(string)
		if !ok {
			return nil, fieldError(def.Name, "must be a string, got %T", value)
		}
		return s, nil

	case schema.FieldNumber:
		return coerceNumber(value, def.Name)

	case schema.FieldBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, fieldError(def.Name, "must be a boolean, got %T", value)
		}
		return b, nil

	case schema.FieldDate:
		return coerceTime(value, def.Name, dateLayouts)

	case schema.FieldDateTime:
		return coerceTime(value, def.Name, dateTimeLayouts)

	case schema.FieldJSON:
		return coerceJSON(value, def.Name)

	case schema.FieldReference, schema.FieldFile:
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, fieldError(def.Name, "must be a non-empty identifier")
		}
		// referenced entity existence is deliberately not checked here
		return s, nil
	}

	return nil, fieldError(def.Name, "has unknown type %q", def.Type)
}

// coerceNumber normalizes numeric input to float64. Numeric strings are
// parsed; everything else non-numeric is rejected.
func coerceNumber(value interface{}, field string) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return nil, fieldError(field, "must be a number, got %q", v.String())
		}
		return n, nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fieldError(field, "must be a number, got %q", v)
		}
		return n, nil
	}
	return nil, fieldError(field, "must be a number, got %T", value)
}

// coerceTime parses an instant from the accepted layouts and normalizes it
// to a canonical RFC3339 UTC string.
func coerceTime(value interface{}, field string, layouts []string) (interface{}, error) {
	if t, ok := value.(time.Time); ok {
		return t.UTC().Format(time.RFC3339), nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, fieldError(field, "must be a date string, got %T", value)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return nil, fieldError(field, "is not a valid date: %q", s)
}

// coerceJSON parses textual input into structured data; already-structured
// input passes through unchanged.
func coerceJSON(value interface{}, field string) (interface{}, error) {
	s, ok := value.(string)
	if !ok {
		return value, nil
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return nil, fieldError(field, "is not valid JSON: %v", err)
	}
	return parsed, nil
}
