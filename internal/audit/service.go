// File: internal/audit/service.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"

	platformElasticsearch "prepwise_backend/internal/platform/elasticsearch"
)

// EventsIndexName is the Elasticsearch index holding auth events.
const EventsIndexName = "auth_events"

// Recorder records auth events for diagnostics: always to the database,
// and best-effort to Elasticsearch when a client is configured. Recording
// failures are logged and swallowed — an auth flow never fails on audit.
type Recorder struct {
	repo     Repository
	esClient *platformElasticsearch.ESClientWrapper
	logger   *zap.Logger
}

// NewRecorder creates a new audit recorder. esClient may be nil.
func NewRecorder(repo Repository, esClient *platformElasticsearch.ESClientWrapper, logger *zap.Logger) *Recorder {
	return &Recorder{
		repo:     repo,
		esClient: esClient,
		logger:   logger,
	}
}

// Record persists one auth event. ID and CreatedAt are assigned here.
func (r *Recorder) Record(ctx context.Context, event AuthEvent) {
	event.ID = uuid.New()
	event.CreatedAt = time.Now()

	if err := r.repo.Create(ctx, &event); err != nil {
		r.logger.Error("Failed to record auth event", zap.Error(err), zap.String("kind", event.Kind))
		return
	}

	r.indexEvent(ctx, &event)
}

// indexEvent indexes the event into Elasticsearch when configured.
func (r *Recorder) indexEvent(ctx context.Context, event *AuthEvent) {
	if r.esClient == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		r.logger.Error("Failed to marshal auth event for indexing", zap.Error(err), zap.String("id", event.ID.String()))
		return
	}

	req := esapi.IndexRequest{
		Index:      EventsIndexName,
		DocumentID: event.ID.String(),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, r.esClient.Client)
	if err != nil {
		r.logger.Warn("Failed to index auth event", zap.Error(err), zap.String("id", event.ID.String()))
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("Elasticsearch rejected auth event",
			zap.String("id", event.ID.String()),
			zap.String("status", res.Status()),
		)
	}
}

// Prune deletes events older than the retention window and returns the
// number removed. Called by the scheduled retention job.
func (r *Recorder) Prune(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return r.repo.DeleteOlderThan(ctx, cutoff)
}
