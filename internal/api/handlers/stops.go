package handlers

import (
	"net/http"

	"smart-route-planner/internal/api/dto"
	"smart-route-planner/internal/services"
)

// StopsHandler exposes read-only access to stored stop batches.
type StopsHandler struct {
	Planner *services.Planner
}

func (h *StopsHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	batch := r.URL.Query().Get("batch")
	if batch == "" {
		writeError(w, r, http.StatusBadRequest, "batch query parameter is required")
		return
	}

	stops, err := h.Planner.ListBatch(r.Context(), batch)
	if err != nil {
		writeBatchError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListStopsResponse{Batch: batch, Stops: toPoints(stops)})
}
