package model

import (
	"encoding/json"
	"time"
)

// Changelog entity types and actions.
const (
	EntitySchema   = "schema"
	EntityDocument = "document"

	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// ChangelogEntry is an append-only audit record of one schema or document
// mutation. Rows are never updated or deleted after creation.
type ChangelogEntry struct {
	ID         string `gorm:"primaryKey;type:uuid;not null"`
	ProjectID  string `gorm:"type:uuid;not null;index"`
	EntityType string `gorm:"not null;index"`
	EntityID   string `gorm:"not null;index"`
	Action     string `gorm:"not null"`
	Changes    string `gorm:"not null"`
	Performer  string `gorm:"not null"`
	SessionID  string
	CreatedAt  time.Time `gorm:"index"`
}

func (ChangelogEntry) TableName() string {
	return "changelog_entries"
}

// FieldChange is one entry of an UPDATE diff.
type FieldChange struct {
	Old interface{} `json:"old"`
	New interface{} `json:"new"`
}

// ChangeSet decodes the Changes payload of an UPDATE entry.
func (c *ChangelogEntry) ChangeSet() (map[string]FieldChange, error) {
	changes := make(map[string]FieldChange)
	if err := json.Unmarshal([]byte(c.Changes), &changes); err != nil {
		return nil, err
	}
	return changes, nil
}
