package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/krapi/cms/internal/model"
	"github.com/krapi/cms/internal/schema"
	"github.com/krapi/cms/internal/store"
	"github.com/sirupsen/logrus"
)

// NewSchemaService creates a new SchemaService.
func NewSchemaService(stores store.Provider, registry ProjectRegistry, recorder *ChangelogRecorder) *SchemaService {
	if registry == nil {
		registry = StaticRegistry{}
	}
	return &SchemaService{
		stores:   stores,
		registry: registry,
		recorder: recorder,
	}
}

// SchemaService owns the table schema lifecycle: definition, evolution and
// guarded deletion.
type SchemaService struct {
	stores   store.Provider
	registry ProjectRegistry
	recorder *ChangelogRecorder
}

// CreateSchemaRequest carries a schema-creation operation.
type CreateSchemaRequest struct {
	ProjectID   string
	Name        string
	Description string
	Fields      []schema.FieldDef
	Indexes     []schema.IndexDef
	Performer   Performer
}

// UpdateSchemaRequest carries a partial schema update. Nil members are left
// untouched.
type UpdateSchemaRequest struct {
	ProjectID   string
	Name        string
	Description *string
	Fields      []schema.FieldDef
	Indexes     []schema.IndexDef
	Performer   Performer
}

// CreateSchema validates and persists a new table schema and records a
// CREATE audit entry.
func (s *SchemaService) CreateSchema(ctx context.Context, req CreateSchemaRequest) (*model.TableSchema, error) {
	if req.Name == "" {
		return nil, &InvalidFieldsError{Reason: errors.New("schema name must not be empty")}
	}
	if err := schema.ValidateFields(req.Fields); err != nil {
		return nil, &InvalidFieldsError{Reason: err}
	}
	if err := schema.ValidateIndexes(req.Indexes, req.Fields); err != nil {
		return nil, &InvalidFieldsError{Reason: err}
	}

	st, err := s.storeFor(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	tableSchema := &model.TableSchema{
		ID:          uuid.New().String(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := tableSchema.SetFieldDefs(req.Fields); err != nil {
		return nil, err
	}
	if err := tableSchema.SetIndexDefs(req.Indexes); err != nil {
		return nil, err
	}

	err = st.Transaction(ctx, func(tx store.Store) error {
		_, err := tx.GetSchemaByName(ctx, req.ProjectID, req.Name)
		if err == nil {
			return ErrSchemaExists
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err := tx.CreateSchema(ctx, tableSchema); err != nil {
			return err
		}

		summary := map[string]interface{}{"table": req.Name}
		return s.recorder.RecordCreate(ctx, tx, req.ProjectID, model.EntitySchema, tableSchema.ID, summary, req.Performer)
	})
	if err != nil {
		return nil, s.persistence("create schema", err)
	}

	return tableSchema, nil
}

// GetSchema retrieves a schema by name within a project.
func (s *SchemaService) GetSchema(ctx context.Context, projectID, name string) (*model.TableSchema, error) {
	st, err := s.storeFor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tableSchema, err := st.GetSchemaByName(ctx, projectID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSchemaNotFound
	}
	if err != nil {
		return nil, s.persistence("get schema", err)
	}
	return tableSchema, nil
}

// ListSchemas retrieves all schemas of a project.
func (s *SchemaService) ListSchemas(ctx context.Context, projectID string) ([]*model.TableSchema, error) {
	st, err := s.storeFor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	schemas, err := st.ListSchemas(ctx, projectID)
	if err != nil {
		return nil, s.persistence("list schemas", err)
	}
	return schemas, nil
}

// UpdateSchema applies a partial update. A replacement field list is
// revalidated exactly like a new schema's. The UPDATE audit entry carries
// the diff of the changed attributes; an update that changes nothing
// records no entry.
func (s *SchemaService) UpdateSchema(ctx context.Context, req UpdateSchemaRequest) (*model.TableSchema, error) {
	if req.Fields != nil {
		if err := schema.ValidateFields(req.Fields); err != nil {
			return nil, &InvalidFieldsError{Reason: err}
		}
	}

	st, err := s.storeFor(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	var updated *model.TableSchema
	err = st.Transaction(ctx, func(tx store.Store) error {
		tableSchema, err := tx.GetSchemaByName(ctx, req.ProjectID, req.Name)
		if errors.Is(err, store.ErrNotFound) {
			return ErrSchemaNotFound
		}
		if err != nil {
			return err
		}

		old := map[string]interface{}{
			"description": tableSchema.Description,
			"fields":      tableSchema.Fields,
			"indexes":     tableSchema.Indexes,
		}

		proposed := make(map[string]interface{})
		if req.Description != nil {
			tableSchema.Description = *req.Description
			proposed["description"] = *req.Description
		}
		if req.Fields != nil {
			if err := tableSchema.SetFieldDefs(req.Fields); err != nil {
				return err
			}
			proposed["fields"] = tableSchema.Fields
		}
		if req.Indexes != nil {
			fields, err := tableSchema.FieldDefs()
			if err != nil {
				return err
			}
			if err := schema.ValidateIndexes(req.Indexes, fields); err != nil {
				return &InvalidFieldsError{Reason: err}
			}
			if err := tableSchema.SetIndexDefs(req.Indexes); err != nil {
				return err
			}
			proposed["indexes"] = tableSchema.Indexes
		}

		recorded, err := s.recorder.RecordUpdate(ctx, tx, req.ProjectID, model.EntitySchema, tableSchema.ID, old, proposed, req.Performer)
		if err != nil {
			return err
		}
		if !recorded {
			// nothing changed, keep the stored row untouched
			updated = tableSchema
			return nil
		}

		if err := tx.UpdateSchema(ctx, tableSchema); err != nil {
			return err
		}
		updated = tableSchema
		return nil
	})
	if err != nil {
		return nil, s.persistence("update schema", err)
	}

	return updated, nil
}

// DeleteSchema deletes a schema once no documents reference it. The count
// check and the delete run in one store transaction so a concurrent
// document creation cannot slip between them on backends with serializable
// isolation; weaker isolation leaves a narrow documented race window.
func (s *SchemaService) DeleteSchema(ctx context.Context, projectID, name string, performer Performer) error {
	st, err := s.storeFor(ctx, projectID)
	if err != nil {
		return err
	}

	err = st.Transaction(ctx, func(tx store.Store) error {
		tableSchema, err := tx.GetSchemaByName(ctx, projectID, name)
		if errors.Is(err, store.ErrNotFound) {
			return ErrSchemaNotFound
		}
		if err != nil {
			return err
		}

		count, err := tx.CountDocuments(ctx, tableSchema.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return &HasDocumentsError{Name: name, Count: count}
		}

		if err := tx.DeleteSchema(ctx, projectID, name); err != nil {
			return err
		}

		summary := map[string]interface{}{"table": name}
		return s.recorder.RecordDelete(ctx, tx, projectID, model.EntitySchema, tableSchema.ID, summary, performer)
	})
	return s.persistence("delete schema", err)
}

func (s *SchemaService) storeFor(ctx context.Context, projectID string) (store.Store, error) {
	exists, err := s.registry.Exists(ctx, projectID)
	if err != nil {
		return nil, s.persistence("project lookup", err)
	}
	if !exists {
		return nil, ErrProjectNotFound
	}
	return s.stores.Provide(projectID)
}

// persistence classifies a transaction error: domain errors pass through
// untouched, anything else is logged and wrapped so no storage detail leaks
// to the caller.
func (s *SchemaService) persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	var invalid *InvalidFieldsError
	var hasDocs *HasDocumentsError
	switch {
	case errors.Is(err, ErrSchemaExists),
		errors.Is(err, ErrSchemaNotFound),
		errors.Is(err, ErrProjectNotFound),
		errors.As(err, &invalid),
		errors.As(err, &hasDocs):
		return err
	}

	logrus.Errorf("schema store failure during %s: %v", op, err)
	return &PersistenceError{Op: op, Err: err}
}
