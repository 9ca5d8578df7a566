package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/krapi/cms/internal/model"
	"github.com/krapi/cms/internal/queue"
	"github.com/krapi/cms/internal/store"
	"github.com/sirupsen/logrus"
)

// ChangelogRecorder appends audit entries for schema and document
// mutations. Entries are written through the caller's transaction so the
// audit trail only records confirmed state transitions; the optional queue
// fan-out is best effort and never blocks the mutation.
type ChangelogRecorder struct {
	queue queue.ChangelogQueue
}

func NewChangelogRecorder(q queue.ChangelogQueue) *ChangelogRecorder {
	if q == nil {
		q = queue.NewNop()
	}
	return &ChangelogRecorder{queue: q}
}

// RecordCreate appends a CREATE entry carrying a fixed summary.
func (r *ChangelogRecorder) RecordCreate(ctx context.Context, tx store.Store, projectID, entityType, entityID string, summary map[string]interface{}, performer Performer) error {
	return r.record(ctx, tx, projectID, entityType, entityID, model.ActionCreate, summary, performer)
}

// RecordDelete appends a DELETE entry carrying a fixed summary.
func (r *ChangelogRecorder) RecordDelete(ctx context.Context, tx store.Store, projectID, entityType, entityID string, summary map[string]interface{}, performer Performer) error {
	return r.record(ctx, tx, projectID, entityType, entityID, model.ActionDelete, summary, performer)
}

// RecordUpdate appends an UPDATE entry with the field-level diff between
// old and proposed. A no-op update produces no entry; the boolean reports
// whether one was written.
func (r *ChangelogRecorder) RecordUpdate(ctx context.Context, tx store.Store, projectID, entityType, entityID string, old, proposed map[string]interface{}, performer Performer) (bool, error) {
	diff := Diff(old, proposed)
	if len(diff) == 0 {
		return false, nil
	}

	changes := make(map[string]interface{}, len(diff))
	for field, change := range diff {
		changes[field] = change
	}

	if err := r.record(ctx, tx, projectID, entityType, entityID, model.ActionUpdate, changes, performer); err != nil {
		return false, err
	}
	return true, nil
}

func (r *ChangelogRecorder) record(ctx context.Context, tx store.Store, projectID, entityType, entityID, action string, payload map[string]interface{}, performer Performer) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	entry := &model.ChangelogEntry{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Changes:    string(data),
		Performer:  performer.Resolve(),
		SessionID:  performer.SessionID,
	}

	if err := tx.CreateChangelogEntry(ctx, entry); err != nil {
		return err
	}

	if err := r.queue.Publish(ctx, entry); err != nil {
		logrus.Warnf("changelog fan-out failed for %s %s: %v", entityType, entityID, err)
	}

	return nil
}

// Diff computes a shallow field-level diff over the proposed change set.
// Only keys present in proposed are compared; values compare by canonical
// JSON serialization. Keys whose values are equal are omitted.
func Diff(old, proposed map[string]interface{}) map[string]model.FieldChange {
	diff := make(map[string]model.FieldChange)
	for field, newValue := range proposed {
		oldValue, existed := old[field]
		if existed && jsonEqual(oldValue, newValue) {
			continue
		}
		diff[field] = model.FieldChange{Old: oldValue, New: newValue}
	}
	return diff
}

func jsonEqual(a, b interface{}) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
