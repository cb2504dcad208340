package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"interview-memory-service/internal/memory/service"
	"interview-memory-service/internal/models"
	"interview-memory-service/internal/observability/logging"
)

// MemoryService is the part of the memory service the handlers need.
type MemoryService interface {
	Save(ctx context.Context, req models.SaveMemoryRequest) error
	Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error)
}

// Handler serves the memory API endpoints.
type Handler struct {
	svc MemoryService
	log zerolog.Logger
}

// NewHandler creates the API handler backed by the given memory service.
func NewHandler(svc MemoryService) *Handler {
	return &Handler{
		svc: svc,
		log: logging.WithComponent("http"),
	}
}

// SaveMemory handles POST /api/save-memory.
func (h *Handler) SaveMemory(w http.ResponseWriter, r *http.Request) {
	var req models.SaveMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Malformed save-memory request body")
		writeJSON(w, http.StatusBadRequest, models.SaveMemoryResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	if err := h.svc.Save(r.Context(), req); err != nil {
		status := http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusBadRequest
		} else {
			h.log.Error().Err(err).Msg("Failed to save memory")
		}
		writeJSON(w, status, models.SaveMemoryResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.SaveMemoryResponse{Success: true})
}

// SearchMemory handles POST /api/search-memory.
func (h *Handler) SearchMemory(w http.ResponseWriter, r *http.Request) {
	var req models.SearchMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn().Err(err).Msg("Malformed search-memory request body")
		writeJSON(w, http.StatusBadRequest, models.SearchMemoryResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	results, err := h.svc.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		status := http.StatusInternalServerError
		if service.IsValidationError(err) {
			status = http.StatusBadRequest
		} else {
			h.log.Error().Err(err).Str("query", req.Query).Msg("Memory search failed")
		}
		writeJSON(w, status, models.SearchMemoryResponse{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, models.SearchMemoryResponse{
		Success: true,
		Results: results,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
