// Package store persists replay records and provider call logs.
//
// Postgres is the durable store. Redis can front replay lookups with a
// latest-record pointer, and Elasticsearch can mirror the call log for
// search. The in-memory store backs tests and local runs.
package store

import (
	"context"

	"coach-generation/internal/llm"
)

// ReplayStore keeps validated responses per (user, operation).
type ReplayStore interface {
	// InsertReplayRecord appends rec and sets its ID and CreatedAt.
	InsertReplayRecord(ctx context.Context, rec *ReplayRecord) error
	// FindLatestReplayRecord returns the newest record by (created_at, id)
	// or ErrNotFound.
	FindLatestReplayRecord(ctx context.Context, userID string, op llm.Operation) (*ReplayRecord, error)
}

// CallLogStore appends call log entries. Entries are never updated.
type CallLogStore interface {
	InsertCallLogEntry(ctx context.Context, entry *CallLogEntry) error
}

// HealthChecker is implemented by stores backed by a remote service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
