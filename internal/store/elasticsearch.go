package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// CallLogIndexMapping is applied when the call log index is created.
const CallLogIndexMapping = `{
	"mappings": {
		"properties": {
			"id":                  {"type": "keyword"},
			"user_id":             {"type": "keyword"},
			"operation":           {"type": "keyword"},
			"code":                {"type": "keyword"},
			"retry_count":         {"type": "integer"},
			"latency_ms":          {"type": "long"},
			"provider_request_id": {"type": "keyword"},
			"provider_status":     {"type": "integer"},
			"error_message":       {"type": "text"},
			"created_at":          {"type": "date"}
		}
	}
}`

// ElasticsearchCallLogStore mirrors call log entries into an index, keyed by
// entry id so a resend overwrites instead of duplicating.
type ElasticsearchCallLogStore struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchCallLogStore(client *elasticsearch.Client, index string) *ElasticsearchCallLogStore {
	return &ElasticsearchCallLogStore{client: client, index: index}
}

func (s *ElasticsearchCallLogStore) InsertCallLogEntry(ctx context.Context, entry *CallLogEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode call log entry: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: entry.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index call log entry: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index call log entry: %s: %s", res.Status(), bytes.TrimSpace(detail))
	}
	return nil
}

func (s *ElasticsearchCallLogStore) HealthCheck(ctx context.Context) error {
	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}
	return nil
}
