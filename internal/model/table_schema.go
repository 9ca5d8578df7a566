package model

import (
	"encoding/json"
	"time"

	"github.com/krapi/cms/internal/schema"
)

// TableSchema is a named field contract within a project. The field and
// index definitions are persisted as JSON text columns.
type TableSchema struct {
	ID          string `gorm:"primaryKey;type:uuid;not null"`
	ProjectID   string `gorm:"type:uuid;not null;uniqueIndex:idx_table_schemas_project_name"`
	Name        string `gorm:"not null;uniqueIndex:idx_table_schemas_project_name"`
	Description string
	Fields      string `gorm:"not null"`
	Indexes     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TableSchema) TableName() string {
	return "table_schemas"
}

// FieldDefs decodes the persisted field list.
func (t *TableSchema) FieldDefs() ([]schema.FieldDef, error) {
	var fields []schema.FieldDef
	if err := json.Unmarshal([]byte(t.Fields), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// SetFieldDefs encodes and stores the field list.
func (t *TableSchema) SetFieldDefs(fields []schema.FieldDef) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	t.Fields = string(data)
	return nil
}

// IndexDefs decodes the persisted index list.
func (t *TableSchema) IndexDefs() ([]schema.IndexDef, error) {
	if t.Indexes == "" {
		return nil, nil
	}
	var indexes []schema.IndexDef
	if err := json.Unmarshal([]byte(t.Indexes), &indexes); err != nil {
		return nil, err
	}
	return indexes, nil
}

// SetIndexDefs encodes and stores the index list.
func (t *TableSchema) SetIndexDefs(indexes []schema.IndexDef) error {
	if indexes == nil {
		t.Indexes = ""
		return nil
	}
	data, err := json.Marshal(indexes)
	if err != nil {
		return err
	}
	t.Indexes = string(data)
	return nil
}
