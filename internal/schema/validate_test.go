package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFields(t *testing.T) {
	tests := []struct {
		name    string
		fields  []FieldDef
		wantErr string
	}{
		{
			name:    "empty field list",
			fields:  nil,
			wantErr: "at least one field",
		},
		{
			name: "valid fields",
			fields: []FieldDef{
				{Name: "title", Type: FieldString, Required: true},
				{Name: "views", Type: FieldNumber, Default: 0},
			},
		},
		{
			name: "missing field name",
			fields: []FieldDef{
				{Name: "", Type: FieldString},
			},
			wantErr: "must not be empty",
		},
		{
			name: "duplicate field name",
			fields: []FieldDef{
				{Name: "title", Type: FieldString},
				{Name: "title", Type: FieldNumber},
			},
			wantErr: "duplicate field name",
		},
		{
			name: "unknown type",
			fields: []FieldDef{
				{Name: "title", Type: FieldType("text")},
			},
			wantErr: "unknown type",
		},
		{
			name: "reserved system field",
			fields: []FieldDef{
				{Name: "id", Type: FieldString},
			},
			wantErr: "reserved",
		},
		{
			name: "uncompilable pattern",
			fields: []FieldDef{
				{Name: "slug", Type: FieldString, Validation: &Validation{Pattern: "("}},
			},
			wantErr: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFields(tt.fields)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIndexes(t *testing.T) {
	fields := []FieldDef{
		{Name: "title", Type: FieldString},
		{Name: "views", Type: FieldNumber},
	}

	err := ValidateIndexes([]IndexDef{{Name: "by_title", Fields: []string{"title"}}}, fields)
	assert.NoError(t, err)

	err = ValidateIndexes([]IndexDef{{Name: "broken", Fields: []string{"missing"}}}, fields)
	assert.ErrorContains(t, err, "unknown field")

	err = ValidateIndexes([]IndexDef{{Name: "empty"}}, fields)
	assert.ErrorContains(t, err, "at least one field")
}
