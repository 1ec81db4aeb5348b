// Package history exposes the decision audit trail read-only over HTTP.
package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"swiftvisa/backend/internal/decision"
	"swiftvisa/backend/internal/middleware"
)

// Store reads the persisted audit trail.
type Store interface {
	Read() ([]decision.Record, error)
}

// FileStore reads records back from the JSONL audit file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Read() ([]decision.Record, error) {
	return decision.ReadFile(s.path)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List returns decisions in write order. An optional limit query parameter
// trims to the most recent N without reordering.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.Read()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to read decision history", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "failed to read decision history", http.StatusInternalServerError)
		return
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(r.Context(), w, "VALIDATION_ERROR", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		if limit < len(records) {
			records = records[len(records)-limit:]
		}
	}

	if records == nil {
		records = []decision.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": records}); err != nil {
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
