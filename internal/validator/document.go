package validator

import (
	"time"

	"github.com/google/uuid"
	"github.com/krapi/cms/internal/schema"
)

// Document validates a raw document against the schema's field list and
// returns the normalized projection. Fields are visited in declaration
// order and the first failure aborts validation. Keys not declared in the
// schema are dropped; system fields are injected last:
//
//   - id: reused when the caller supplied one, otherwise generated
//   - created_at: reused when supplied, otherwise now; callers preserve it
//     across updates by passing the existing document's value
//   - updated_at: always set to now
func Document(fields []schema.FieldDef, raw map[string]interface{}) (map[string]interface{}, error) {
	normalized := make(map[string]interface{}, len(fields)+3)

	for _, def := range fields {
		value, present := raw[def.Name]
		if !present || value == nil {
			if def.Required {
				return nil, fieldError(def.Name, "is required")
			}
			if def.Default != nil {
				// defaults are schema-author-provided and trusted as-is
				normalized[def.Name] = def.Default
			}
			continue
		}

		checked, err := Field(value, def)
		if err != nil {
			return nil, err
		}
		normalized[def.Name] = checked
	}

	now := time.Now().UTC().Format(time.RFC3339)

	if id, ok := raw[schema.SystemID].(string); ok && id != "" {
		normalized[schema.SystemID] = id
	} else {
		normalized[schema.SystemID] = uuid.New().String()
	}

	if createdAt, ok := raw[schema.SystemCreatedAt].(string); ok && createdAt != "" {
		normalized[schema.SystemCreatedAt] = createdAt
	} else {
		normalized[schema.SystemCreatedAt] = now
	}

	normalized[schema.SystemUpdatedAt] = now

	return normalized, nil
}
