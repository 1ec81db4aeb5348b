package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"swiftvisa/backend/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list documents", "error", err)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []Document{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": docs}); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "document id is required", http.StatusBadRequest)
		return
	}

	doc, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(r.Context(), w, "NOT_FOUND", "document not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to get document", "error", err, "id", id)
		h.writeError(r.Context(), w, "INTERNAL_ERROR", "failed to get document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": doc}); err != nil {
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
