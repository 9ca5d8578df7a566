package model

import (
	"time"

	"gorm.io/gorm"
)

// Document is a schema-validated record belonging to one table within a
// project. The normalized field map is persisted as an encoded payload in
// Fields; Compression names the codec the payload was encoded with.
// Deletion is a soft delete so the trash purge job can erase rows later.
type Document struct {
	ID          string `gorm:"primaryKey;type:uuid;not null"`
	ProjectID   string `gorm:"type:uuid;not null;index"`
	TableID     string `gorm:"type:uuid;not null;index"`
	Fields      string `gorm:"not null"`
	Compression string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}
