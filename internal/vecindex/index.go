// Package vecindex implements the exact nearest-neighbour index the
// assessment pipeline retrieves evidence from, together with the chunk
// catalog that shares its id space. Position i in the catalog describes
// exactly the vector at position i in the index; the Builder enforces that
// correspondence at build time.
package vecindex

import (
	"errors"
	"fmt"
	"sort"

	"swiftvisa/backend/internal/segment"
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrCorrespondence    = errors.New("index/catalog correspondence violated")
)

// Catalog is the ordered metadata store: the chunk at position i describes
// the vector with id i. It is read-only after a build.
type Catalog []segment.Chunk

// Hit is one search result: a vector id and its squared L2 distance from the
// query embedding.
type Hit struct {
	VectorID int
	Distance float32
}

// Index is a flat, exhaustive L2 index. It is write-once: vectors are added
// through a Builder, and the built index is safe for concurrent readers.
type Index struct {
	dim     int
	vectors [][]float32
}

func (ix *Index) Len() int { return len(ix.vectors) }
func (ix *Index) Dim() int { return ix.dim }

// Search returns up to k nearest neighbours by ascending squared L2
// distance, ties broken by ascending vector id. Searching an empty index
// returns an empty result for any k. A query of the wrong dimensionality is
// a configuration error, never silently truncated.
func (ix *Index) Search(vector []float32, k int) ([]Hit, error) {
	if k < 0 {
		k = 0
	}
	if ix.Len() == 0 {
		return []Hit{}, nil
	}
	if len(vector) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(vector), ix.dim)
	}

	hits := make([]Hit, len(ix.vectors))
	for i, v := range ix.vectors {
		hits[i] = Hit{VectorID: i, Distance: sqDistance(v, vector)}
	}
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].VectorID < hits[b].VectorID
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func sqDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Snapshot pairs an index with its catalog. Rebuilds produce a fresh
// Snapshot which is swapped in atomically; the two structures are never
// replaced independently.
type Snapshot struct {
	Index   *Index
	Catalog Catalog
}

// Builder accumulates (chunk, vector) pairs in insertion order, assigning
// vector ids sequentially from zero. The dimensionality is fixed by the
// first vector added.
type Builder struct {
	dim     int
	vectors [][]float32
	chunks  Catalog
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Len() int { return len(b.vectors) }

// Add appends one chunk and its embedding. A vector whose length differs
// from the first one added is fatal: continuing would silently corrupt every
// future answer.
func (b *Builder) Add(chunk segment.Chunk, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector for %s#%d", ErrDimensionMismatch, chunk.Document, chunk.Sequence)
	}
	if b.dim == 0 {
		b.dim = len(vector)
	}
	if len(vector) != b.dim {
		return fmt.Errorf("%w: got %d dimensions, want %d", ErrDimensionMismatch, len(vector), b.dim)
	}
	b.vectors = append(b.vectors, vector)
	b.chunks = append(b.chunks, chunk)
	return nil
}

// Build seals the builder into an immutable snapshot. The correspondence
// check is deliberately re-verified here rather than assumed.
func (b *Builder) Build() (*Snapshot, error) {
	if len(b.vectors) != len(b.chunks) {
		return nil, fmt.Errorf("%w: %d vectors, %d catalog entries", ErrCorrespondence, len(b.vectors), len(b.chunks))
	}
	return &Snapshot{
		Index:   &Index{dim: b.dim, vectors: b.vectors},
		Catalog: b.chunks,
	}, nil
}
