package store

import (
	"context"
	"time"

	"github.com/krapi/cms/internal/model"
)

type Store interface {
	SchemaStore
	DocumentStore
	ChangelogStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type SchemaStore interface {
	// CreateSchema creates a new table schema.
	CreateSchema(ctx context.Context, tableSchema *model.TableSchema) error
	// GetSchemaByName retrieves a table schema by project and name.
	GetSchemaByName(ctx context.Context, projectID, name string) (*model.TableSchema, error)
	// ListSchemas retrieves all table schemas of a project.
	ListSchemas(ctx context.Context, projectID string) ([]*model.TableSchema, error)
	// UpdateSchema persists a modified table schema.
	UpdateSchema(ctx context.Context, tableSchema *model.TableSchema) error
	// DeleteSchema deletes a table schema by project and name.
	DeleteSchema(ctx context.Context, projectID, name string) error
}

type DocumentStore interface {
	// CreateDocument creates a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document scoped to project and table. A
	// document looked up under the wrong table is not found.
	GetDocument(ctx context.Context, projectID, tableID, id string) (*model.Document, error)
	// ListDocuments retrieves all live documents of a table.
	ListDocuments(ctx context.Context, projectID, tableID string) ([]*model.Document, error)
	// UpdateDocument persists a modified document.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument soft-deletes a document.
	DeleteDocument(ctx context.Context, projectID, tableID, id string) error
	// CountDocuments counts the live documents referencing a table.
	CountDocuments(ctx context.Context, tableID string) (int64, error)
	// EraseTrashedDocuments hard-deletes documents soft-deleted before the
	// cutoff and returns the number of erased rows.
	EraseTrashedDocuments(ctx context.Context, before time.Time) (int64, error)
}

type ChangelogStore interface {
	// CreateChangelogEntry appends an audit entry. Entries are never
	// updated or deleted.
	CreateChangelogEntry(ctx context.Context, entry *model.ChangelogEntry) error
	// ListChangelogEntries retrieves audit entries for a project, newest
	// first, optionally narrowed to one entity.
	ListChangelogEntries(ctx context.Context, projectID, entityID string, limit int) ([]*model.ChangelogEntry, error)
}
