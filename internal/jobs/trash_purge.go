package jobs

import (
	"context"
	"time"

	"github.com/krapi/cms/internal/store"
	"github.com/sirupsen/logrus"
)

// TrashPurgeTask erases documents that were soft-deleted longer than the
// retention window ago. Deleting a document only trashes the row; this job
// is what finally frees the storage.
type TrashPurgeTask struct {
	store     store.Store
	retention time.Duration
	cron      string
}

func NewTrashPurgeTask(store store.Store, retention time.Duration, schedule string) *TrashPurgeTask {
	return &TrashPurgeTask{
		store:     store,
		retention: retention,
		cron:      schedule,
	}
}

func (t *TrashPurgeTask) Name() string {
	return "trash_purge"
}

func (t *TrashPurgeTask) Schedule() string {
	return t.cron
}

func (t *TrashPurgeTask) Run() {
	cutoff := time.Now().Add(-t.retention)

	erased, err := t.store.EraseTrashedDocuments(context.Background(), cutoff)
	if err != nil {
		logrus.Errorf("trash purge failed: %v", err)
		return
	}

	if erased > 0 {
		logrus.Infof("trash purge erased %d documents deleted before %s", erased, cutoff.Format(time.RFC3339))
	}
}
