package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/store"
)

type EvaluationsHandler struct {
	store store.Store
	pulse pulse.Client
}

func NewEvaluationsHandler(s store.Store, p pulse.Client) *EvaluationsHandler {
	return &EvaluationsHandler{store: s, pulse: p}
}

type CreateEvaluationRequest struct {
	Accuracy         float64 `json:"accuracy"`
	CalibrationError float64 `json:"calibration_error"`
	F1Score          float64 `json:"f1_score"`
	Source           string  `json:"source,omitempty"`
}

func (h *EvaluationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Accuracy < 0 || req.Accuracy > 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "accuracy must be in [0, 1]"})
		return
	}
	if req.CalibrationError < 0 || req.CalibrationError > 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "calibration_error must be in [0, 1]"})
		return
	}
	if req.F1Score < 0 || req.F1Score > 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "f1_score must be in [0, 1]"})
		return
	}

	rec := &store.EvaluationRecord{
		Accuracy:         req.Accuracy,
		CalibrationError: req.CalibrationError,
		F1Score:          req.F1Score,
		Source:           req.Source,
	}
	if err := h.store.CreateEvaluation(r.Context(), rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.pulse != nil {
		_ = h.pulse.Publish(pulse.SubjectEvalRecorded, pulse.EvaluationRecordedEvent{
			ID:               rec.ID.String(),
			Accuracy:         rec.Accuracy,
			CalibrationError: rec.CalibrationError,
			F1Score:          rec.F1Score,
			Source:           rec.Source,
		})
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *EvaluationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}

	records, err := h.store.ListEvaluations(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*store.EvaluationRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}
