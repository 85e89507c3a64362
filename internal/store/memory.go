package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"coach-generation/internal/llm"
)

// MemoryStore implements ReplayStore and CallLogStore in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   int64
	replays  []ReplayRecord
	callLogs []CallLogEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
}

func (m *MemoryStore) InsertReplayRecord(ctx context.Context, rec *ReplayRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	rec.ID = m.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	m.replays = append(m.replays, cloneRecord(*rec))
	return nil
}

func (m *MemoryStore) FindLatestReplayRecord(ctx context.Context, userID string, op llm.Operation) (*ReplayRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *ReplayRecord
	for i := range m.replays {
		rec := &m.replays[i]
		if rec.UserID != userID || rec.Operation != op {
			continue
		}
		if rec.newerThan(latest) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	found := cloneRecord(*latest)
	return &found, nil
}

func (m *MemoryStore) InsertCallLogEntry(ctx context.Context, entry *CallLogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = m.now()
	}
	m.callLogs = append(m.callLogs, *entry)
	return nil
}

// CallLogEntries returns a snapshot in insertion order.
func (m *MemoryStore) CallLogEntries() []CallLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]CallLogEntry(nil), m.callLogs...)
}

// ReplayRecords returns a snapshot in insertion order.
func (m *MemoryStore) ReplayRecords() []ReplayRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ReplayRecord, 0, len(m.replays))
	for _, rec := range m.replays {
		out = append(out, cloneRecord(rec))
	}
	return out
}

func cloneRecord(rec ReplayRecord) ReplayRecord {
	rec.StoredRequest = append(json.RawMessage(nil), rec.StoredRequest...)
	rec.StoredResponse = append(json.RawMessage(nil), rec.StoredResponse...)
	return rec
}
