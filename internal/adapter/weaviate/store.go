package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"swiftvisa/backend/internal/retrieval"
	"swiftvisa/backend/internal/segment"
	"swiftvisa/backend/internal/vector"
)

// Store persists policy chunks in Weaviate and resolves nearest-neighbour
// queries against them. It satisfies the same Searcher contract as the flat
// in-memory snapshot, so the rest of the pipeline does not care which backend
// is configured.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) StoreChunk(ctx context.Context, chunk segment.Chunk, vectorID int, vec []float32) error {
	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassPolicyChunk).
		WithProperties(map[string]interface{}{
			"text":     chunk.Text,
			"document": chunk.Document,
			"sequence": chunk.Sequence,
			"vectorId": vectorID,
		}).
		WithVector(vec).
		Do(ctx)
	return err
}

// Reset drops every stored chunk and recreates the class, so a rebuild
// starts from a clean slate instead of accumulating duplicates.
func (s *Store) Reset(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().
		WithClassName(vector.ClassPolicyChunk).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

func (s *Store) Search(ctx context.Context, vec []float32, k int) ([]retrieval.RetrievedChunk, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vec)

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "document"},
		{Name: "sequence"},
		{Name: "vectorId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassPolicyChunk).
		WithNearVector(nearVector).
		WithLimit(k).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}

	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []retrieval.RetrievedChunk
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if chunks, ok := data[vector.ClassPolicyChunk].([]interface{}); ok {
			for _, c := range chunks {
				props, ok := c.(map[string]interface{})
				if !ok {
					continue
				}

				result := retrieval.RetrievedChunk{Rank: len(results)}
				if text, ok := props["text"].(string); ok {
					result.Text = text
				}
				if document, ok := props["document"].(string); ok {
					result.Document = document
				}
				if sequence, ok := props["sequence"].(float64); ok {
					result.Sequence = int(sequence)
				}
				if vectorID, ok := props["vectorId"].(float64); ok {
					result.VectorID = int(vectorID)
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					if distance, ok := additional["distance"].(float64); ok {
						result.Distance = float32(distance)
					}
				}

				results = append(results, result)
			}
		}
	}

	return results, nil
}
