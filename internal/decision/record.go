// Package decision persists every eligibility assessment to an append-only
// audit trail and announces it on the message bus.
package decision

import (
	"time"

	"swiftvisa/backend/internal/answer"
	"swiftvisa/backend/internal/prompt"
)

// Record is one line of the audit trail. It captures the full provenance of
// an assessment: what was asked, which evidence was retrieved, what the
// generator produced verbatim, and the calibrated verdict returned to the
// caller.
type Record struct {
	ID                string            `json:"id"`
	Timestamp         time.Time         `json:"timestamp"`
	Question          string            `json:"question"`
	Applicant         *prompt.Applicant `json:"applicant,omitempty"`
	RetrievedChunkIDs []int             `json:"retrieved_chunk_ids"`
	RawAnswer         string            `json:"raw_answer"`
	Answer            answer.Answer     `json:"answer"`
}
