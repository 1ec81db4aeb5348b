// Package ingest turns a directory of policy documents into a searchable
// snapshot: segment, embed, index, in deterministic file order.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"swiftvisa/backend/internal/retrieval"
	"swiftvisa/backend/internal/segment"
	"swiftvisa/backend/internal/vecindex"
)

// embedTimeout bounds a single embedding call so one stuck request cannot
// hang a whole rebuild.
const embedTimeout = 60 * time.Second

// Registry records per-document ingestion outcomes. Implementations persist
// them; a nil registry disables recording.
type Registry interface {
	RecordIndexed(ctx context.Context, name, path string, chunkCount int) error
	RecordSkipped(ctx context.Context, name, path string) error
}

// Sink receives every embedded chunk as it is indexed. The Weaviate store
// implements it; a nil sink means the flat snapshot is the only destination.
// Reset is called once before a build starts storing, so a rebuild replaces
// the previous corpus instead of piling new copies on top of it.
type Sink interface {
	Reset(ctx context.Context) error
	StoreChunk(ctx context.Context, chunk segment.Chunk, vectorID int, vec []float32) error
}

type Result struct {
	Snapshot         *vecindex.Snapshot
	Documents        int
	SkippedDocuments int
	Chunks           int
}

type Builder struct {
	embedder retrieval.Embedder
	window   int
	overlap  int
	registry Registry
	sink     Sink
}

func NewBuilder(embedder retrieval.Embedder, window, overlap int) *Builder {
	return &Builder{embedder: embedder, window: window, overlap: overlap}
}

func (b *Builder) WithRegistry(r Registry) *Builder {
	b.registry = r
	return b
}

func (b *Builder) WithSink(s Sink) *Builder {
	b.sink = s
	return b
}

// BuildFromDir ingests every .txt file under dir in sorted name order, so
// vector ids are stable across rebuilds of the same corpus. A document that
// cannot be read is skipped and counted, never fatal; an embedding failure
// aborts the build because a partial index would silently drop evidence.
func (b *Builder) BuildFromDir(ctx context.Context, dir string) (*Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list corpus directory: %w", err)
	}
	sort.Strings(paths)

	if b.sink != nil {
		if err := b.sink.Reset(ctx); err != nil {
			return nil, fmt.Errorf("reset sink: %w", err)
		}
	}

	result := &Result{}
	builder := vecindex.NewBuilder()

	for _, path := range paths {
		name := filepath.Base(path)

		data, err := os.ReadFile(path)
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable document", "document", name, "error", err)
			result.SkippedDocuments++
			b.recordSkipped(ctx, name, path)
			continue
		}

		chunks, err := segment.Segment(name, string(data), b.window, b.overlap)
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", name, err)
		}

		for _, chunk := range chunks {
			vec, err := b.embed(ctx, chunk.Text)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d of %s: %w", chunk.Sequence, name, err)
			}
			vectorID := builder.Len()
			if err := builder.Add(chunk, vec); err != nil {
				return nil, fmt.Errorf("index chunk %d of %s: %w", chunk.Sequence, name, err)
			}
			if b.sink != nil {
				if err := b.sink.StoreChunk(ctx, chunk, vectorID, vec); err != nil {
					return nil, fmt.Errorf("store chunk %d of %s: %w", chunk.Sequence, name, err)
				}
			}
		}

		result.Documents++
		result.Chunks += len(chunks)
		b.recordIndexed(ctx, name, path, len(chunks))
		slog.InfoContext(ctx, "document indexed", "document", name, "chunks", len(chunks))
	}

	snapshot, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	result.Snapshot = snapshot

	slog.InfoContext(ctx, "corpus build complete",
		"documents", result.Documents,
		"skipped", result.SkippedDocuments,
		"chunks", result.Chunks)
	return result, nil
}

func (b *Builder) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()
	return b.embedder.Embed(ctx, text)
}

func (b *Builder) recordIndexed(ctx context.Context, name, path string, chunkCount int) {
	if b.registry == nil {
		return
	}
	if err := b.registry.RecordIndexed(ctx, name, path, chunkCount); err != nil {
		slog.WarnContext(ctx, "failed to record indexed document", "document", name, "error", err)
	}
}

func (b *Builder) recordSkipped(ctx context.Context, name, path string) {
	if b.registry == nil {
		return
	}
	if err := b.registry.RecordSkipped(ctx, name, path); err != nil {
		slog.WarnContext(ctx, "failed to record skipped document", "document", name, "error", err)
	}
}
