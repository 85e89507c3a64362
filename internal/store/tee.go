package store

import (
	"context"

	"coach-generation/internal/common/logger"
	"coach-generation/internal/common/metrics"
)

// TeeCallLogStore writes to a primary store and best-effort mirrors.
// Only a primary failure is returned.
type TeeCallLogStore struct {
	primary CallLogStore
	mirrors map[string]CallLogStore
	logger  logger.Logger
}

func NewTeeCallLogStore(primary CallLogStore, log logger.Logger) *TeeCallLogStore {
	return &TeeCallLogStore{
		primary: primary,
		mirrors: make(map[string]CallLogStore),
		logger:  log.With(map[string]interface{}{"component": "call-log-tee"}),
	}
}

// AddMirror registers a secondary store under a metrics label.
func (t *TeeCallLogStore) AddMirror(name string, mirror CallLogStore) *TeeCallLogStore {
	t.mirrors[name] = mirror
	return t
}

func (t *TeeCallLogStore) InsertCallLogEntry(ctx context.Context, entry *CallLogEntry) error {
	if err := t.primary.InsertCallLogEntry(ctx, entry); err != nil {
		return err
	}
	for name, mirror := range t.mirrors {
		if err := mirror.InsertCallLogEntry(ctx, entry); err != nil {
			metrics.StoreWriteFailures.WithLabelValues(name).Inc()
			t.logger.Warn("call log mirror write failed", map[string]interface{}{
				"mirror":  name,
				"entryId": entry.ID,
				"error":   err,
			})
		}
	}
	return nil
}
