package retrieval

import (
	"context"
	"fmt"
	"sync/atomic"

	"swiftvisa/backend/internal/vecindex"
)

// SnapshotProvider serves searches from the current index/catalog snapshot
// and lets a rebuild swap in a new pair atomically. Readers never observe an
// index and a catalog from different builds.
type SnapshotProvider struct {
	current atomic.Pointer[vecindex.Snapshot]
}

func NewSnapshotProvider() *SnapshotProvider {
	return &SnapshotProvider{}
}

// Swap replaces the served snapshot. The snapshot's own build step has
// already verified the correspondence contract.
func (p *SnapshotProvider) Swap(snap *vecindex.Snapshot) {
	p.current.Store(snap)
}

// Snapshot returns the currently served snapshot, or nil before any build.
func (p *SnapshotProvider) Snapshot() *vecindex.Snapshot {
	return p.current.Load()
}

// Search resolves index hits through the catalog, preserving rank order.
// Any id outside [0, len(catalog)) is discarded: a sentinel "no match" id
// must never be resolved into a chunk.
func (p *SnapshotProvider) Search(ctx context.Context, vector []float32, k int) ([]RetrievedChunk, error) {
	snap := p.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("%w: no index has been built", ErrUnavailable)
	}

	hits, err := snap.Index.Search(vector, k)
	if err != nil {
		return nil, err
	}

	chunks := make([]RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		if h.VectorID < 0 || h.VectorID >= len(snap.Catalog) {
			continue
		}
		chunks = append(chunks, RetrievedChunk{
			Chunk:    snap.Catalog[h.VectorID],
			VectorID: h.VectorID,
			Rank:     len(chunks),
			Distance: h.Distance,
		})
	}
	return chunks, nil
}
