package service

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound is returned when the project registry does not
	// know the requested project.
	ErrProjectNotFound = errors.New("project not found")
	// ErrSchemaNotFound is returned when no schema with the requested name
	// exists in the project.
	ErrSchemaNotFound = errors.New("table schema not found")
	// ErrDocumentNotFound is returned when no document exists under the
	// requested project, table and id.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrSchemaExists is returned when a schema with the same name already
	// exists in the project.
	ErrSchemaExists = errors.New("table schema already exists")
)

// InvalidFieldsError wraps a schema-definition-time violation: missing name
// or type, duplicate field name, unknown type, uncompilable rule.
type InvalidFieldsError struct {
	Reason error
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("invalid schema fields: %v", e.Reason)
}

func (e *InvalidFieldsError) Unwrap() error {
	return e.Reason
}

// HasDocumentsError blocks schema deletion while documents still reference
// the schema.
type HasDocumentsError struct {
	Name  string
	Count int64
}

func (e *HasDocumentsError) Error() string {
	return fmt.Sprintf("table %q still has %d documents", e.Name, e.Count)
}

// PersistenceError wraps a store-layer failure. The underlying error is
// logged with full context; callers only see a generic failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s", e.Op)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
