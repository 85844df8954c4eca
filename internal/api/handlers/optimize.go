package handlers

import (
	"errors"
	"log"
	"net/http"

	"smart-route-planner/internal/api/dto"
	"smart-route-planner/internal/domain"
	"smart-route-planner/internal/platform/obs"
	"smart-route-planner/internal/services"
)

// OptimizeHandler serves route optimization for inline and stored stops.
type OptimizeHandler struct {
	Planner  *services.Planner
	Defaults domain.Options
}

// Optimize orders the request's points by priority tier and distance.
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.OptimizeRequest
	if err := decodeStrict(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, decodeMessage(err))
		return
	}
	if req.Points == nil {
		writeError(w, r, http.StatusBadRequest, "points is required")
		return
	}

	stops, err := toStops(req.Points)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := resolveOptions(h.Defaults, req.Options)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Planner.Optimize(r.Context(), stops, opts)
	if isRejected(err) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("req_id=%s optimize failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, toResponse(res))
}

// OptimizeStored optimizes the batch named by the "batch" query parameter.
// The body is optional and may only carry options.
func (h *OptimizeHandler) OptimizeStored(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	batch := r.URL.Query().Get("batch")
	if batch == "" {
		writeError(w, r, http.StatusBadRequest, "batch query parameter is required")
		return
	}

	var req dto.StoredOptimizeRequest
	if err := decodeStrict(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opts, err := resolveOptions(h.Defaults, req.Options)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Planner.OptimizeBatch(r.Context(), batch, opts)
	if err != nil {
		writeBatchError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toResponse(res))
}

func decodeMessage(err error) string {
	if errors.Is(err, errEmptyBody) {
		return "request body is required"
	}
	return err.Error()
}

func writeBatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isRejected(err):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrStorageDisabled):
		writeError(w, r, http.StatusServiceUnavailable, "stop storage is not configured")
	case errors.Is(err, services.ErrBatchNotFound):
		writeError(w, r, http.StatusNotFound, "batch not found")
	default:
		log.Printf("req_id=%s batch request failed: %v", obs.RequestID(r.Context()), err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// isRejected reports planner errors caused by the request's size.
func isRejected(err error) bool {
	return errors.Is(err, services.ErrTooManyStops) || errors.Is(err, services.ErrTierTooLarge)
}
