package queue

import (
	"context"

	"github.com/krapi/cms/internal/model"
)

// ChangelogQueue fans audit entries out to downstream consumers (sync
// engines, webhooks, search indexers). Delivery is best effort; the audit
// table remains the source of truth.
type ChangelogQueue interface {
	// Publish appends a changelog entry to the queue.
	Publish(ctx context.Context, entry *model.ChangelogEntry) error
}

// Nop drops every entry. Used when no broker is configured.
type Nop struct{}

func NewNop() Nop {
	return Nop{}
}

func (Nop) Publish(ctx context.Context, entry *model.ChangelogEntry) error {
	return nil
}
