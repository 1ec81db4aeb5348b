package assess

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"swiftvisa/backend/internal/answer"
	"swiftvisa/backend/internal/middleware"
	"swiftvisa/backend/internal/retrieval"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type Response struct {
	ID                string             `json:"id"`
	Eligibility       answer.Eligibility `json:"eligibility"`
	Summary           string             `json:"summary"`
	Explanation       []string           `json:"explanation"`
	Confidence        *float64           `json:"confidence"`
	RetrievedChunkIDs []int              `json:"retrieved_chunk_ids"`
}

func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := h.service.Assess(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			h.writeError(r.Context(), w, "VALIDATION_ERROR", "question is required", http.StatusBadRequest)
		case errors.Is(err, retrieval.ErrUnavailable):
			h.writeError(r.Context(), w, "RETRIEVAL_UNAVAILABLE", "evidence retrieval is unavailable", http.StatusServiceUnavailable)
		case errors.Is(err, ErrGeneration):
			h.writeError(r.Context(), w, "GENERATION_FAILED", "answer generation failed", http.StatusBadGateway)
		default:
			slog.ErrorContext(r.Context(), "assessment failed", "error", err)
			h.writeError(r.Context(), w, "INTERNAL_ERROR", "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	resp := Response{
		ID:                rec.ID,
		Eligibility:       rec.Answer.Eligibility,
		Summary:           rec.Answer.Summary,
		Explanation:       rec.Answer.Explanation,
		Confidence:        rec.Answer.Confidence,
		RetrievedChunkIDs: rec.RetrievedChunkIDs,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
