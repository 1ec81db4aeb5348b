package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"swiftvisa/backend/internal/segment"
)

// ErrUnavailable is returned when no evidence can be retrieved at all, either
// because the embedding service is unreachable or because no index has been
// built. The caller must fail the query rather than proceed with an empty
// context.
var ErrUnavailable = errors.New("retrieval unavailable")

// RetrievedChunk is a chunk annotated with its rank and distance from the
// query embedding.
type RetrievedChunk struct {
	segment.Chunk
	VectorID int     `json:"vector_id"`
	Rank     int     `json:"rank"`
	Distance float32 `json:"distance"`
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher maps a query embedding to ranked chunks. The flat snapshot store
// is the reference implementation; the Weaviate-backed store satisfies the
// same contract.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) ([]RetrievedChunk, error)
}

type Service struct {
	embedder Embedder
	searcher Searcher
	k        int
}

func NewService(e Embedder, s Searcher, k int) *Service {
	return &Service{embedder: e, searcher: s, k: k}
}

// Retrieve embeds the query and resolves its k nearest chunks in rank order.
func (s *Service) Retrieve(ctx context.Context, query string) ([]RetrievedChunk, error) {
	start := time.Now()

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrUnavailable, err)
	}

	chunks, err := s.searcher.Search(ctx, vector, s.k)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "retrieval complete", "k", s.k, "results", len(chunks), "duration", time.Since(start))
	return chunks, nil
}
