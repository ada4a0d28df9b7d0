package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/vsm/qualitycheck/internal/app"
	"github.com/vsm/qualitycheck/internal/domain/model"
	"github.com/vsm/qualitycheck/internal/domain/normalize"
)

const maxBatchBytes = 10 << 20

// failureResponse is the 422 body for a batch that failed its checks.
type failureResponse struct {
	Error    string             `json:"error"`
	Failures []model.Failure    `json:"failures"`
	Summary  model.BatchSummary `json:"summary"`
}

// CheckHandler handles quality-check requests.
type CheckHandler struct {
	deps Dependencies
}

// NewCheckHandler creates a new quality-check handler.
func NewCheckHandler(deps Dependencies) *CheckHandler {
	return &CheckHandler{deps: deps}
}

// HandlePostCheck handles POST /quality-check requests.
func (h *CheckHandler) HandlePostCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes))
	dec.UseNumber()
	var event model.Event
	if err := dec.Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	out, err := h.deps.Check(r.Context(), event)
	if err == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}

	var qcErr *service.QualityCheckError
	switch {
	case errors.As(err, &qcErr):
		writeJSON(w, http.StatusUnprocessableEntity, failureResponse{
			Error:    "quality_check_failed",
			Failures: qcErr.Failures,
			Summary:  qcErr.Summary,
		})
	case errors.Is(err, normalize.ErrValidation):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "stage_failed", ErrStageFailed)
	}
}
