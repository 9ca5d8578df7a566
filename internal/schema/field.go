package schema

// FieldType enumerates the value types a table field can declare.
type FieldType string

const (
	FieldString    FieldType = "string"
	FieldNumber    FieldType = "number"
	FieldBoolean   FieldType = "boolean"
	FieldDate      FieldType = "date"
	FieldDateTime  FieldType = "datetime"
	FieldJSON      FieldType = "json"
	FieldReference FieldType = "reference"
	FieldFile      FieldType = "file"
)

// Valid reports whether t belongs to the closed type enumeration.
func (t FieldType) Valid() bool {
	switch t {
	case FieldString, FieldNumber, FieldBoolean, FieldDate, FieldDateTime,
		FieldJSON, FieldReference, FieldFile:
		return true
	}
	return false
}

// FieldDef describes one field of a table schema.
type FieldDef struct {
	Name       string      `json:"name"`
	Type       FieldType   `json:"type"`
	Required   bool        `json:"required"`
	Default    interface{} `json:"default,omitempty"`
	Validation *Validation `json:"validation,omitempty"`
}

// IndexDef describes an index over one or more schema fields.
type IndexDef struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique"`
}

// System field names injected by the document validator. They are reserved
// and cannot be declared by a schema.
const (
	SystemID        = "id"
	SystemCreatedAt = "created_at"
	SystemUpdatedAt = "updated_at"
)

// IsSystemField reports whether name is one of the reserved system fields.
func IsSystemField(name string) bool {
	return name == SystemID || name == SystemCreatedAt || name == SystemUpdatedAt
}
