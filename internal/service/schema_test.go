package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/krapi/cms/internal/compress"
	"github.com/krapi/cms/internal/model"
	"github.com/krapi/cms/internal/schema"
	"github.com/krapi/cms/internal/store"
	"github.com/krapi/cms/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices() (*SchemaService, *DocumentService, store.Store) {
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	provider := store.NewDefaultProvider(st)
	recorder := NewChangelogRecorder(nil)

	schemas := NewSchemaService(provider, nil, recorder)
	documents := NewDocumentService(provider, nil, recorder, compress.NewNop(), nil)

	return schemas, documents, st
}

func postFields() []schema.FieldDef {
	return []schema.FieldDef{
		{Name: "title", Type: schema.FieldString, Required: true},
		{Name: "views", Type: schema.FieldNumber, Default: float64(0)},
	}
}

func TestSchemaService_CreateSchema(t *testing.T) {
	schemas, _, st := newTestServices()
	projectID := uuid.New().String()

	created, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "post",
		Fields:    postFields(),
		Performer: Performer{UserID: "user-1"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "post", created.Name)

	// duplicate name in the same project is rejected
	_, err = schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "post",
		Fields:    postFields(),
	})
	assert.ErrorIs(t, err, ErrSchemaExists)

	// same name in another project is fine
	_, err = schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: uuid.New().String(),
		Name:      "post",
		Fields:    postFields(),
	})
	assert.NoError(t, err)

	// a CREATE changelog entry was recorded with the performer
	entries, err := st.ListChangelogEntries(context.TODO(), projectID, created.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionCreate, entries[0].Action)
	assert.Equal(t, model.EntitySchema, entries[0].EntityType)
	assert.Equal(t, "user-1", entries[0].Performer)
}

func TestSchemaService_CreateSchemaInvalidFields(t *testing.T) {
	schemas, _, _ := newTestServices()
	projectID := uuid.New().String()

	tests := []struct {
		name   string
		fields []schema.FieldDef
	}{
		{name: "no fields", fields: nil},
		{name: "duplicate names", fields: []schema.FieldDef{
			{Name: "a", Type: schema.FieldString},
			{Name: "a", Type: schema.FieldString},
		}},
		{name: "unknown type", fields: []schema.FieldDef{
			{Name: "a", Type: schema.FieldType("bytes")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
				ProjectID: projectID,
				Name:      "broken",
				Fields:    tt.fields,
			})

			var invalid *InvalidFieldsError
			assert.ErrorAs(t, err, &invalid)
		})
	}
}

func TestSchemaService_UpdateSchema(t *testing.T) {
	schemas, _, st := newTestServices()
	projectID := uuid.New().String()

	created, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "post",
		Fields:    postFields(),
	})
	require.NoError(t, err)

	desc := "blog posts"
	updated, err := schemas.UpdateSchema(context.TODO(), UpdateSchemaRequest{
		ProjectID:   projectID,
		Name:        "post",
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "blog posts", updated.Description)

	// replacement field lists are revalidated like a new schema's
	_, err = schemas.UpdateSchema(context.TODO(), UpdateSchemaRequest{
		ProjectID: projectID,
		Name:      "post",
		Fields:    []schema.FieldDef{{Name: "x", Type: schema.FieldType("nope")}},
	})
	var invalid *InvalidFieldsError
	assert.ErrorAs(t, err, &invalid)

	// a no-op update records no changelog entry
	before, err := st.ListChangelogEntries(context.TODO(), projectID, created.ID, 0)
	require.NoError(t, err)

	_, err = schemas.UpdateSchema(context.TODO(), UpdateSchemaRequest{
		ProjectID:   projectID,
		Name:        "post",
		Description: &desc,
	})
	require.NoError(t, err)

	after, err := st.ListChangelogEntries(context.TODO(), projectID, created.ID, 0)
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	// updating an unknown schema fails
	_, err = schemas.UpdateSchema(context.TODO(), UpdateSchemaRequest{
		ProjectID:   projectID,
		Name:        "missing",
		Description: &desc,
	})
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}

func TestSchemaService_DeleteSchemaGuard(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()

	_, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "post",
		Fields:    postFields(),
	})
	require.NoError(t, err)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "Hello"}, Performer{})
	require.NoError(t, err)

	// deletion is blocked while documents reference the schema
	err = schemas.DeleteSchema(context.TODO(), projectID, "post", Performer{})
	var hasDocs *HasDocumentsError
	require.ErrorAs(t, err, &hasDocs)
	assert.Equal(t, int64(1), hasDocs.Count)

	err = documents.DeleteDocument(context.TODO(), projectID, "post", doc["id"].(string), Performer{})
	require.NoError(t, err)

	// once the table is empty the schema deletes cleanly
	err = schemas.DeleteSchema(context.TODO(), projectID, "post", Performer{})
	require.NoError(t, err)

	_, err = schemas.GetSchema(context.TODO(), projectID, "post")
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	// deleting again reports not found
	err = schemas.DeleteSchema(context.TODO(), projectID, "post", Performer{})
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}
