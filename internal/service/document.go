package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/krapi/cms/internal/cache"
	"github.com/krapi/cms/internal/compress"
	"github.com/krapi/cms/internal/model"
	"github.com/krapi/cms/internal/schema"
	"github.com/krapi/cms/internal/store"
	"github.com/krapi/cms/internal/validator"
	"github.com/sirupsen/logrus"
)

// NewDocumentService creates a new DocumentService. The cache is optional.
func NewDocumentService(stores store.Provider, registry ProjectRegistry, recorder *ChangelogRecorder, codec compress.Compress, documents cache.DocumentCache) *DocumentService {
	if registry == nil {
		registry = StaticRegistry{}
	}
	if codec == nil {
		codec = compress.NewNop()
	}
	return &DocumentService{
		stores:    stores,
		registry:  registry,
		recorder:  recorder,
		codec:     codec,
		codecName: codecName(codec),
		cache:     documents,
	}
}

// DocumentService owns the document lifecycle under a table schema: every
// write is validated against the current schema, persisted and audited in
// that order.
type DocumentService struct {
	stores    store.Provider
	registry  ProjectRegistry
	recorder  *ChangelogRecorder
	codec     compress.Compress
	codecName string
	cache     cache.DocumentCache
}

// ListQuery selects a page of documents. Page and Limit are 1-indexed
// positive integers; Sort names a schema or system field; Filter matches
// field values by equality.
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Order  string
	Filter map[string]interface{}
}

// ListResult carries one page of documents plus the total count of
// documents matching the filter.
type ListResult struct {
	Documents []map[string]interface{}
	Total     int64
}

// TotalPages returns the page count for the given limit.
func (r ListResult) TotalPages(limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (r.Total + int64(limit) - 1) / int64(limit)
}

// CreateDocument validates raw data against the table's schema, persists
// the normalized document and records a CREATE audit entry.
func (d *DocumentService) CreateDocument(ctx context.Context, projectID, tableName string, raw map[string]interface{}, performer Performer) (map[string]interface{}, error) {
	st, err := d.storeFor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tableSchema, err := d.loadSchema(ctx, st, projectID, tableName)
	if err != nil {
		return nil, err
	}
	fields, err := tableSchema.FieldDefs()
	if err != nil {
		return nil, d.persistence("decode schema fields", err)
	}

	normalized, err := validator.Document(fields, raw)
	if err != nil {
		return nil, err
	}

	doc, err := d.encode(projectID, tableSchema.ID, normalized)
	if err != nil {
		return nil, err
	}

	err = st.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateDocument(ctx, doc); err != nil {
			return err
		}
		summary := map[string]interface{}{"table": tableName}
		return d.recorder.RecordCreate(ctx, tx, projectID, model.EntityDocument, doc.ID, summary, performer)
	})
	if err != nil {
		return nil, d.persistence("create document", err)
	}

	return normalized, nil
}

// GetDocument retrieves a document by id, scoped to project and table. A
// document fetched under the wrong table is not found.
func (d *DocumentService) GetDocument(ctx context.Context, projectID, tableName, documentID string) (map[string]interface{}, error) {
	st, err := d.storeFor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tableSchema, err := d.loadSchema(ctx, st, projectID, tableName)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		if fields, err := d.cache.GetDocument(ctx, projectID, tableSchema.ID, documentID); err != nil {
			logrus.Warnf("document cache read failed: %v", err)
		} else if fields != nil {
			return fields, nil
		}
	}

	doc, err := st.GetDocument(ctx, projectID, tableSchema.ID, documentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, d.persistence("get document", err)
	}

	normalized, err := d.decode(doc)
	if err != nil {
		return nil, d.persistence("decode document", err)
	}

	if d.cache != nil {
		if err := d.cache.SetDocument(ctx, projectID, tableSchema.ID, documentID, normalized); err != nil {
			logrus.Warnf("document cache write failed: %v", err)
		}
	}

	return normalized, nil
}

// ListDocuments returns one page of a table's documents with the total
// count of documents matching the filter.
func (d *DocumentService) ListDocuments(ctx context.Context, projectID, tableName string, query ListQuery) (*ListResult, error) {
	st, err := d.storeFor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tableSchema, err := d.loadSchema(ctx, st, projectID, tableName)
	if err != nil {
		return nil, err
	}

	docs, err := st.ListDocuments(ctx, projectID, tableSchema.ID)
	if err != nil {
		return nil, d.persistence("list documents", err)
	}

	matched := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		normalized, err := d.decode(doc)
		if err != nil {
			return nil, d.persistence("decode document", err)
		}
		if matchesFilter(normalized, query.Filter) {
			matched = append(matched, normalized)
		}
	}

	sortDocuments(matched, query.Sort, query.Order)

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return &ListResult{
		Documents: matched[start:end],
		Total:     int64(len(matched)),
	}, nil
}

// UpdateDocument merges the partial payload over the existing document,
// revalidates the full merged object against the current schema and
// persists it. The UPDATE audit entry carries the diff over the payload's
// keys; an update that changes nothing persists nothing and records no
// entry.
func (d *DocumentService) UpdateDocument(ctx context.Context, projectID, tableName, documentID string, partial map[string]interface{}, performer Performer) (map[string]interface{}, error) {
	st, err := d.storeFor(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tableSchema, err := d.loadSchema(ctx, st, projectID, tableName)
	if err != nil {
		return nil, err
	}
	fields, err := tableSchema.FieldDefs()
	if err != nil {
		return nil, d.persistence("decode schema fields", err)
	}

	var result map[string]interface{}
	err = st.Transaction(ctx, func(tx store.Store) error {
		doc, err := tx.GetDocument(ctx, projectID, tableSchema.ID, documentID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrDocumentNotFound
		}
		if err != nil {
			return err
		}

		existing, err := d.decode(doc)
		if err != nil {
			return err
		}

		// merge: payload fields override, everything else is retained
		merged := make(map[string]interface{}, len(existing)+len(partial))
		for k, v := range existing {
			merged[k] = v
		}
		for k, v := range partial {
			merged[k] = v
		}
		// system identity and creation time always survive the merge
		merged[schema.SystemID] = existing[schema.SystemID]
		merged[schema.SystemCreatedAt] = existing[schema.SystemCreatedAt]

		normalized, err := validator.Document(fields, merged)
		if err != nil {
			return err
		}

		// diff only over the keys the caller proposed, with their
		// normalized values
		proposed := make(map[string]interface{}, len(partial))
		for k := range partial {
			if v, ok := normalized[k]; ok {
				proposed[k] = v
			}
		}

		recorded, err := d.recorder.RecordUpdate(ctx, tx, projectID, model.EntityDocument, documentID, existing, proposed, performer)
		if err != nil {
			return err
		}
		if !recorded {
			// no-op update, keep the stored row and its timestamps
			result = existing
			return nil
		}

		updated, err := d.encode(projectID, tableSchema.ID, normalized)
		if err != nil {
			return err
		}
		updated.ID = doc.ID
		updated.CreatedAt = doc.CreatedAt

		if err := tx.UpdateDocument(ctx, updated); err != nil {
			return err
		}

		result = normalized
		return nil
	})
	if err != nil {
		return nil, d.persistence("update document", err)
	}

	if d.cache != nil {
		if err := d.cache.DeleteDocument(ctx, projectID, tableSchema.ID, documentID); err != nil {
			logrus.Warnf("document cache invalidation failed: %v", err)
		}
	}

	return result, nil
}

// DeleteDocument soft-deletes a document and records a DELETE audit entry.
func (d *DocumentService) DeleteDocument(ctx context.Context, projectID, tableName, documentID string, performer Performer) error {
	st, err := d.storeFor(ctx, projectID)
	if err != nil {
		return err
	}

	tableSchema, err := d.loadSchema(ctx, st, projectID, tableName)
	if err != nil {
		return err
	}

	err = st.Transaction(ctx, func(tx store.Store) error {
		if err := tx.DeleteDocument(ctx, projectID, tableSchema.ID, documentID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}
		summary := map[string]interface{}{"table": tableName}
		return d.recorder.RecordDelete(ctx, tx, projectID, model.EntityDocument, documentID, summary, performer)
	})
	if err != nil {
		return d.persistence("delete document", err)
	}

	if d.cache != nil {
		if err := d.cache.DeleteDocument(ctx, projectID, tableSchema.ID, documentID); err != nil {
			logrus.Warnf("document cache invalidation failed: %v", err)
		}
	}

	return nil
}

func (d *DocumentService) loadSchema(ctx context.Context, st store.Store, projectID, tableName string) (*model.TableSchema, error) {
	tableSchema, err := st.GetSchemaByName(ctx, projectID, tableName)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSchemaNotFound
	}
	if err != nil {
		return nil, d.persistence("load schema", err)
	}
	return tableSchema, nil
}

func (d *DocumentService) encode(projectID, tableID string, normalized map[string]interface{}) (*model.Document, error) {
	data, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	encoded, err := d.codec.Encode(data)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		ID:          normalized[schema.SystemID].(string),
		ProjectID:   projectID,
		TableID:     tableID,
		Fields:      string(encoded),
		Compression: d.codecName,
	}

	if createdAt, ok := normalized[schema.SystemCreatedAt].(string); ok {
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			doc.CreatedAt = t
		}
	}

	return doc, nil
}

func (d *DocumentService) decode(doc *model.Document) (map[string]interface{}, error) {
	codec, err := compress.FromName(doc.Compression)
	if err != nil {
		return nil, err
	}
	data, err := codec.Decode([]byte(doc.Fields))
	if err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (d *DocumentService) storeFor(ctx context.Context, projectID string) (store.Store, error) {
	exists, err := d.registry.Exists(ctx, projectID)
	if err != nil {
		return nil, d.persistence("project lookup", err)
	}
	if !exists {
		return nil, ErrProjectNotFound
	}
	return d.stores.Provide(projectID)
}

// persistence classifies a transaction error the same way the schema
// service does: domain and validation errors pass through, store failures
// are logged and wrapped.
func (d *DocumentService) persistence(op string, err error) error {
	if err == nil {
		return nil
	}

	var validation *validator.Error
	switch {
	case errors.Is(err, ErrSchemaNotFound),
		errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, ErrProjectNotFound),
		errors.As(err, &validation):
		return err
	}

	logrus.Errorf("document store failure during %s: %v", op, err)
	return &PersistenceError{Op: op, Err: err}
}

func matchesFilter(doc map[string]interface{}, filter map[string]interface{}) bool {
	for field, want := range filter {
		got, ok := doc[field]
		if !ok || !jsonEqual(got, want) {
			return false
		}
	}
	return true
}

// sortDocuments orders documents by the named field. Missing values sort
// first; mixed types fall back to their canonical JSON form.
func sortDocuments(docs []map[string]interface{}, field, order string) {
	if field == "" {
		field = schema.SystemCreatedAt
	}
	desc := order == "desc"

	sort.SliceStable(docs, func(i, j int) bool {
		less := lessValue(docs[i][field], docs[j][field])
		if desc {
			return lessValue(docs[j][field], docs[i][field])
		}
		return less
	})
}

func lessValue(a, b interface{}) bool {
	if a == nil {
		return b != nil
	}
	if b == nil {
		return false
	}

	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as < bs
	}

	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return string(ab) < string(bb)
}

func codecName(codec compress.Compress) string {
	switch codec.(type) {
	case compress.GZip:
		return compress.CodecGZip
	case compress.Brotli:
		return compress.CodecBrotli
	}
	return compress.CodecNop
}
