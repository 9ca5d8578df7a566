package store

import (
	"context"
	"errors"
	"time"

	"github.com/krapi/cms/internal/model"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a schema or document does not exist in the
// requested scope.
var ErrNotFound = errors.New("record not found")

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateSchema(ctx context.Context, tableSchema *model.TableSchema) error {
	return g.db.WithContext(ctx).Create(tableSchema).Error
}

func (g *GormStore) GetSchemaByName(ctx context.Context, projectID, name string) (*model.TableSchema, error) {
	var tableSchema model.TableSchema
	err := g.db.WithContext(ctx).
		Where("project_id = ? AND name = ?", projectID, name).
		First(&tableSchema).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tableSchema, nil
}

func (g *GormStore) ListSchemas(ctx context.Context, projectID string) ([]*model.TableSchema, error) {
	var schemas []*model.TableSchema
	err := g.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name asc").
		Find(&schemas).Error
	return schemas, err
}

func (g *GormStore) UpdateSchema(ctx context.Context, tableSchema *model.TableSchema) error {
	return g.db.WithContext(ctx).Save(tableSchema).Error
}

func (g *GormStore) DeleteSchema(ctx context.Context, projectID, name string) error {
	res := g.db.WithContext(ctx).
		Where("project_id = ? AND name = ?", projectID, name).
		Delete(&model.TableSchema{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, projectID, tableID, id string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).
		Where("id = ? AND project_id = ? AND table_id = ?", id, projectID, tableID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context, projectID, tableID string) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).
		Where("project_id = ? AND table_id = ?", projectID, tableID).
		Order("created_at asc").
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Save(doc).Error
}

func (g *GormStore) DeleteDocument(ctx context.Context, projectID, tableID, id string) error {
	res := g.db.WithContext(ctx).
		Where("id = ? AND project_id = ? AND table_id = ?", id, projectID, tableID).
		Delete(&model.Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormStore) CountDocuments(ctx context.Context, tableID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).
		Model(&model.Document{}).
		Where("table_id = ?", tableID).
		Count(&count).Error
	return count, err
}

func (g *GormStore) EraseTrashedDocuments(ctx context.Context, before time.Time) (int64, error) {
	res := g.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Delete(&model.Document{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) CreateChangelogEntry(ctx context.Context, entry *model.ChangelogEntry) error {
	return g.db.WithContext(ctx).Create(entry).Error
}

func (g *GormStore) ListChangelogEntries(ctx context.Context, projectID, entityID string, limit int) ([]*model.ChangelogEntry, error) {
	q := g.db.WithContext(ctx).Where("project_id = ?", projectID)
	if entityID != "" {
		q = q.Where("entity_id = ?", entityID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var entries []*model.ChangelogEntry
	err := q.Order("created_at desc").Find(&entries).Error
	return entries, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
