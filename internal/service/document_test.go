package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/krapi/cms/internal/compress"
	"github.com/krapi/cms/internal/model"
	"github.com/krapi/cms/internal/schema"
	"github.com/krapi/cms/internal/store"
	"github.com/krapi/cms/internal/tester"
	"github.com/krapi/cms/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPostSchema(t *testing.T, schemas *SchemaService, projectID string) {
	t.Helper()
	_, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "post",
		Fields:    postFields(),
	})
	require.NoError(t, err)
}

func TestDocumentService_CreateDocument(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "Hello"}, Performer{})
	require.NoError(t, err)

	assert.Equal(t, "Hello", doc["title"])
	assert.Equal(t, float64(0), doc["views"], "default should be populated")
	assert.NotEmpty(t, doc["id"])

	// round-trip: get by the returned id yields the same field map
	got, err := documents.GetDocument(context.TODO(), projectID, "post", doc["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDocumentService_CreateDocumentValidation(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	_, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{}, Performer{})

	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Equal(t, "is required", verr.Reason)

	// unknown table
	_, err = documents.CreateDocument(context.TODO(), projectID, "missing", map[string]interface{}{}, Performer{})
	assert.ErrorIs(t, err, ErrSchemaNotFound)
}

func TestDocumentService_CreateDocumentRuleViolation(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()

	min, max := float64(0), float64(120)
	_, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "person",
		Fields: []schema.FieldDef{
			{Name: "age", Type: schema.FieldNumber, Validation: &schema.Validation{Min: &min, Max: &max}},
		},
	})
	require.NoError(t, err)

	_, err = documents.CreateDocument(context.TODO(), projectID, "person", map[string]interface{}{"age": 150}, Performer{})

	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Field)
	assert.Contains(t, verr.Reason, "at most")
}

func TestDocumentService_GetDocumentWrongTable(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	_, err := schemas.CreateSchema(context.TODO(), CreateSchemaRequest{
		ProjectID: projectID,
		Name:      "comment",
		Fields:    []schema.FieldDef{{Name: "body", Type: schema.FieldString, Required: true}},
	})
	require.NoError(t, err)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "Hello"}, Performer{})
	require.NoError(t, err)

	// fetched under the wrong table the document is simply not found
	_, err = documents.GetDocument(context.TODO(), projectID, "comment", doc["id"].(string))
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_UpdateDocumentMerges(t *testing.T) {
	schemas, documents, st := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "A", "views": 5}, Performer{})
	require.NoError(t, err)
	docID := doc["id"].(string)

	updated, err := documents.UpdateDocument(context.TODO(), projectID, "post", docID, map[string]interface{}{"views": 6}, Performer{UserID: "editor"})
	require.NoError(t, err)

	// payload fields override, everything else is retained
	assert.Equal(t, "A", updated["title"])
	assert.Equal(t, float64(6), updated["views"])
	assert.Equal(t, doc["created_at"], updated["created_at"])
	assert.Equal(t, docID, updated["id"])

	// exactly one UPDATE entry with the views diff
	entries, err := st.ListChangelogEntries(context.TODO(), projectID, docID, 0)
	require.NoError(t, err)

	var updates []*model.ChangelogEntry
	for _, entry := range entries {
		if entry.Action == model.ActionUpdate {
			updates = append(updates, entry)
		}
	}
	require.Len(t, updates, 1)
	assert.Equal(t, "editor", updates[0].Performer)

	changes, err := updates[0].ChangeSet()
	require.NoError(t, err)
	require.Contains(t, changes, "views")
	assert.Equal(t, float64(5), changes["views"].Old)
	assert.Equal(t, float64(6), changes["views"].New)
	assert.Len(t, changes, 1)
}

func TestDocumentService_UpdateDocumentNoOp(t *testing.T) {
	schemas, documents, st := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "A", "views": 5}, Performer{})
	require.NoError(t, err)
	docID := doc["id"].(string)

	before, err := st.ListChangelogEntries(context.TODO(), projectID, docID, 0)
	require.NoError(t, err)

	// identical data produces zero new changelog entries
	got, err := documents.UpdateDocument(context.TODO(), projectID, "post", docID, map[string]interface{}{"title": "A", "views": 5}, Performer{})
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	after, err := st.ListChangelogEntries(context.TODO(), projectID, docID, 0)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestDocumentService_UpdateDocumentRevalidates(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "A"}, Performer{})
	require.NoError(t, err)

	// the merged object must independently satisfy the schema
	_, err = documents.UpdateDocument(context.TODO(), projectID, "post", doc["id"].(string), map[string]interface{}{"views": "lots"}, Performer{})

	var verr *validator.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "views", verr.Field)

	// a failed update leaves the document untouched
	got, err := documents.GetDocument(context.TODO(), projectID, "post", doc["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDocumentService_DeleteDocument(t *testing.T) {
	schemas, documents, st := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "A"}, Performer{})
	require.NoError(t, err)
	docID := doc["id"].(string)

	err = documents.DeleteDocument(context.TODO(), projectID, "post", docID, Performer{})
	require.NoError(t, err)

	_, err = documents.GetDocument(context.TODO(), projectID, "post", docID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	err = documents.DeleteDocument(context.TODO(), projectID, "post", docID, Performer{})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	entries, err := st.ListChangelogEntries(context.TODO(), projectID, docID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionDelete, entries[0].Action)
}

func TestDocumentService_ListDocuments(t *testing.T) {
	schemas, documents, _ := newTestServices()
	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	for i := 0; i < 5; i++ {
		_, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{
			"title": fmt.Sprintf("post-%d", i),
			"views": i,
		}, Performer{})
		require.NoError(t, err)
	}

	// second page of two
	res, err := documents.ListDocuments(context.TODO(), projectID, "post", ListQuery{
		Page:  2,
		Limit: 2,
		Sort:  "views",
		Order: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Total)
	assert.Equal(t, int64(3), res.TotalPages(2))
	require.Len(t, res.Documents, 2)
	assert.Equal(t, float64(2), res.Documents[0]["views"])
	assert.Equal(t, float64(3), res.Documents[1]["views"])

	// descending sort
	res, err = documents.ListDocuments(context.TODO(), projectID, "post", ListQuery{
		Page:  1,
		Limit: 5,
		Sort:  "views",
		Order: "desc",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(4), res.Documents[0]["views"])

	// equality filter
	res, err = documents.ListDocuments(context.TODO(), projectID, "post", ListQuery{
		Filter: map[string]interface{}{"title": "post-3"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, float64(3), res.Documents[0]["views"])

	// page past the end is empty, total is unchanged
	res, err = documents.ListDocuments(context.TODO(), projectID, "post", ListQuery{Page: 4, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Documents)
	assert.Equal(t, int64(5), res.Total)
}

func TestDocumentService_CompressedPayloads(t *testing.T) {
	tester.Setup()

	st := store.NewGormStore(tester.TestDB())
	provider := store.NewDefaultProvider(st)
	recorder := NewChangelogRecorder(nil)
	schemas := NewSchemaService(provider, nil, recorder)
	documents := NewDocumentService(provider, nil, recorder, compress.NewGZip(), nil)

	projectID := uuid.New().String()
	createPostSchema(t, schemas, projectID)

	doc, err := documents.CreateDocument(context.TODO(), projectID, "post", map[string]interface{}{"title": "compressed"}, Performer{})
	require.NoError(t, err)

	got, err := documents.GetDocument(context.TODO(), projectID, "post", doc["id"].(string))
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}
