// Package assess runs the full eligibility pipeline for one question:
// retrieve evidence, compose the prompt, generate, parse, calibrate, record.
package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"swiftvisa/backend/internal/answer"
	"swiftvisa/backend/internal/decision"
	"swiftvisa/backend/internal/middleware"
	"swiftvisa/backend/internal/prompt"
	"swiftvisa/backend/internal/retrieval"
)

var (
	ErrEmptyQuestion = errors.New("question is required")
	// ErrGeneration marks an upstream generation failure so the handler can
	// answer 502 instead of a generic 500.
	ErrGeneration = errors.New("generation failed")
)

type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]retrieval.RetrievedChunk, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Recorder interface {
	Append(rec decision.Record) error
}

type Announcer interface {
	Announce(rec decision.Record) error
}

type Request struct {
	Question  string            `json:"question"`
	Applicant *prompt.Applicant `json:"applicant,omitempty"`
}

type Service struct {
	retriever Retriever
	generator Generator
	recorder  Recorder
	announcer Announcer
	policy    answer.Policy
}

func NewService(retriever Retriever, generator Generator, recorder Recorder, announcer Announcer, policy answer.Policy) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		recorder:  recorder,
		announcer: announcer,
		policy:    policy,
	}
}

// Assess answers one eligibility question. Retrieval failure fails the whole
// query; an answer without grounding evidence is worse than no answer. Audit
// logging never blocks the response: a failed append is logged and the
// calibrated answer still goes back to the caller.
func (s *Service) Assess(ctx context.Context, req Request) (*decision.Record, error) {
	if req.Question == "" {
		return nil, ErrEmptyQuestion
	}

	chunks, err := s.retriever.Retrieve(ctx, prompt.EnrichQuery(req.Question, req.Applicant))
	if err != nil {
		return nil, err
	}

	composed := prompt.Compose(req.Question, chunks, req.Applicant)
	raw, err := s.generator.Generate(ctx, composed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	parsed := answer.Parse(raw)
	if parsed.HasAbsentFields() {
		slog.WarnContext(ctx, "generation response missing fields",
			"eligibility", parsed.Eligibility,
			"has_confidence", parsed.Confidence != nil)
	}
	calibrated := s.policy.Apply(parsed)

	chunkIDs := make([]int, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.VectorID
	}

	rec := &decision.Record{
		ID:                uuid.NewString(),
		Timestamp:         time.Now().UTC(),
		Question:          req.Question,
		Applicant:         req.Applicant,
		RetrievedChunkIDs: chunkIDs,
		RawAnswer:         raw,
		Answer:            calibrated,
	}

	if err := s.recorder.Append(*rec); err != nil {
		slog.ErrorContext(ctx, "failed to append decision record", "error", err, "decision_id", rec.ID)
	}

	if s.announcer != nil {
		if err := s.announcer.Announce(*rec); err != nil {
			slog.ErrorContext(ctx, "failed to announce decision", "error", err, "decision_id", rec.ID)
		}
	}

	slog.InfoContext(ctx, "assessment complete",
		"decision_id", rec.ID,
		"eligibility", calibrated.Eligibility,
		"chunks", len(chunkIDs),
		"correlation_id", middleware.GetCorrelationID(ctx))
	return rec, nil
}
