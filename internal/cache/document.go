package cache

import "context"

// DocumentCache caches normalized documents keyed by project, table and
// document id. A miss returns (nil, nil).
type DocumentCache interface {
	GetDocument(ctx context.Context, projectID, tableID, id string) (map[string]interface{}, error)
	SetDocument(ctx context.Context, projectID, tableID, id string, fields map[string]interface{}) error
	DeleteDocument(ctx context.Context, projectID, tableID, id string) error
}
