package worker

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nsqio/go-nsq"
	"swiftvisa/backend/internal/ingest"
	"swiftvisa/backend/internal/middleware"
	"swiftvisa/backend/internal/vecindex"
)

// CorpusBuilder is the slice of the ingest builder the consumer needs.
type CorpusBuilder interface {
	BuildFromDir(ctx context.Context, dir string) (*ingest.Result, error)
}

// SnapshotSwapper publishes a freshly built snapshot to live traffic.
type SnapshotSwapper interface {
	Swap(snapshot *vecindex.Snapshot)
}

// RebuildConsumer rebuilds the corpus index off the request path. Queries
// keep serving the previous snapshot until the new one is swapped in whole;
// a half-built index is never visible. A nil swapper means a remote backend
// is populated through the build's sink instead, so the flat snapshot is
// neither persisted nor swapped.
type RebuildConsumer struct {
	builder     CorpusBuilder
	swapper     SnapshotSwapper
	corpusDir   string
	indexPath   string
	catalogPath string
}

func NewRebuildConsumer(builder CorpusBuilder, swapper SnapshotSwapper, corpusDir, indexPath, catalogPath string) *RebuildConsumer {
	return &RebuildConsumer{
		builder:     builder,
		swapper:     swapper,
		corpusDir:   corpusDir,
		indexPath:   indexPath,
		catalogPath: catalogPath,
	}
}

func (h *RebuildConsumer) HandleMessage(m *nsq.Message) error {
	if len(m.Body) == 0 {
		return nil
	}

	var task RebuildTask
	if err := json.Unmarshal(m.Body, &task); err != nil {
		// Poison Pill: Invalid JSON, don't retry
		slog.Error("poison pill: invalid json", "error", err)
		return nil
	}

	ctx := context.Background()
	if task.CorrelationID != "" {
		ctx = middleware.WithCorrelationID(ctx, task.CorrelationID)
	}

	result, err := h.builder.BuildFromDir(ctx, h.corpusDir)
	if err != nil {
		slog.ErrorContext(ctx, "corpus rebuild failed", "error", err)
		return err // Retry
	}

	if h.swapper != nil {
		if err := result.Snapshot.Save(h.indexPath, h.catalogPath); err != nil {
			slog.ErrorContext(ctx, "snapshot persist failed", "error", err)
			return err // Retry
		}
		h.swapper.Swap(result.Snapshot)
	}

	slog.InfoContext(ctx, "corpus rebuilt",
		"documents", result.Documents,
		"skipped", result.SkippedDocuments,
		"chunks", result.Chunks)
	return nil
}
