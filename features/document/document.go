// Package document tracks the policy corpus registry: which documents exist,
// whether the last build indexed or skipped them, and how many chunks each
// contributed.
package document

import (
	"context"
	"time"
)

const (
	StatusPending = "pending"
	StatusIndexed = "indexed"
	StatusSkipped = "skipped"
)

type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	Status     string    `json:"status"` // pending, indexed, skipped
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Repository interface {
	Upsert(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	List(ctx context.Context) ([]Document, error)
	Count(ctx context.Context) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Document, error) {
	return s.repo.Get(ctx, id)
}

// RecordIndexed and RecordSkipped let the corpus builder report per-document
// outcomes without knowing about the registry schema.

func (s *Service) RecordIndexed(ctx context.Context, name, path string, chunkCount int) error {
	return s.repo.Upsert(ctx, &Document{
		Name:       name,
		Path:       path,
		Status:     StatusIndexed,
		ChunkCount: chunkCount,
	})
}

func (s *Service) RecordSkipped(ctx context.Context, name, path string) error {
	return s.repo.Upsert(ctx, &Document{
		Name:   name,
		Path:   path,
		Status: StatusSkipped,
	})
}
