package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coach-generation/internal/llm"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS llm_generation_replays (
		id BIGSERIAL PRIMARY KEY,
		user_id TEXT NOT NULL,
		operation TEXT NOT NULL,
		request_fingerprint CHAR(64) NOT NULL,
		stored_request JSONB NOT NULL,
		stored_response JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_generation_replays_latest
		ON llm_generation_replays (user_id, operation, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS llm_call_logs (
		id UUID PRIMARY KEY,
		user_id TEXT,
		operation TEXT NOT NULL,
		code TEXT NOT NULL,
		retry_count INTEGER NOT NULL DEFAULT 0,
		latency_ms BIGINT NOT NULL,
		provider_request_id TEXT,
		provider_status INTEGER,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_llm_call_logs_operation_created
		ON llm_call_logs (operation, created_at DESC)`,
}

// Migrate creates the replay and call log tables if they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// PostgresStore implements ReplayStore and CallLogStore on lib/pq.
// Each write is its own statement, committed immediately.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertReplayQuery = `
	INSERT INTO llm_generation_replays
		(user_id, operation, request_fingerprint, stored_request, stored_response)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, created_at`

func (s *PostgresStore) InsertReplayRecord(ctx context.Context, rec *ReplayRecord) error {
	// JSONB columns take text; []byte would be sent as bytea.
	row := s.db.QueryRowContext(ctx, insertReplayQuery,
		rec.UserID,
		rec.Operation.String(),
		rec.RequestFingerprint,
		string(rec.StoredRequest),
		string(rec.StoredResponse),
	)
	if err := row.Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("insert replay record: %w", err)
	}
	return nil
}

const latestReplayQuery = `
	SELECT id, user_id, operation, request_fingerprint, stored_request, stored_response, created_at
	FROM llm_generation_replays
	WHERE user_id = $1 AND operation = $2
	ORDER BY created_at DESC, id DESC
	LIMIT 1`

func (s *PostgresStore) FindLatestReplayRecord(ctx context.Context, userID string, op llm.Operation) (*ReplayRecord, error) {
	var (
		rec       ReplayRecord
		operation string
		request   []byte
		response  []byte
	)
	err := s.db.QueryRowContext(ctx, latestReplayQuery, userID, op.String()).Scan(
		&rec.ID,
		&rec.UserID,
		&operation,
		&rec.RequestFingerprint,
		&request,
		&response,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find latest replay record: %w", err)
	}

	rec.Operation, err = llm.ParseOperation(operation)
	if err != nil {
		return nil, fmt.Errorf("replay record %d: %w", rec.ID, err)
	}
	rec.StoredRequest = request
	rec.StoredResponse = response
	return &rec, nil
}

const insertCallLogQuery = `
	INSERT INTO llm_call_logs
		(id, user_id, operation, code, retry_count, latency_ms,
		 provider_request_id, provider_status, error_message)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at`

func (s *PostgresStore) InsertCallLogEntry(ctx context.Context, entry *CallLogEntry) error {
	row := s.db.QueryRowContext(ctx, insertCallLogQuery,
		entry.ID,
		nullString(entry.UserID),
		entry.Operation.String(),
		entry.Code,
		entry.RetryCount,
		entry.LatencyMs,
		nullString(entry.ProviderRequestID),
		nullInt(entry.ProviderStatus),
		nullString(entry.ErrorMessage),
	)
	if err := row.Scan(&entry.CreatedAt); err != nil {
		return fmt.Errorf("insert call log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
