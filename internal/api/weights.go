package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/tuner"
)

type WeightsHandler struct {
	engine *ensemble.Engine
	tuner  *tuner.Tuner
	pulse  pulse.Client
}

func NewWeightsHandler(engine *ensemble.Engine, tn *tuner.Tuner, p pulse.Client) *WeightsHandler {
	return &WeightsHandler{engine: engine, tuner: tn, pulse: p}
}

func (h *WeightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Get())
}

func (h *WeightsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Summary())
}

func (h *WeightsHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	entries := h.engine.History(limit)
	if entries == nil {
		entries = []ensemble.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Adapt triggers one adaptation cycle outside the periodic schedule.
func (h *WeightsHandler) Adapt(w http.ResponseWriter, r *http.Request) {
	h.tuner.RunOnce(r.Context())
	writeJSON(w, http.StatusOK, h.engine.Get())
}

func (h *WeightsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	weights := h.engine.Reset()
	if h.pulse != nil {
		_ = h.pulse.Publish(pulse.SubjectWeightsReset, pulse.WeightsResetEvent{
			Weights:   snapshot(weights),
			Timestamp: time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, weights)
}

type OverrideRequest struct {
	RuleBased    float64 `json:"rule_based"`
	AnomalyModel float64 `json:"anomaly_model"`
	Projection   float64 `json:"projection"`
	Interaction  float64 `json:"interaction"`
	Source       string  `json:"source,omitempty"`
}

// Override replaces the current vector with operator-supplied weights.
// Values are treated as relative proportions and renormalized before
// commit.
func (h *WeightsHandler) Override(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.RuleBased < 0 || req.AnomalyModel < 0 || req.Projection < 0 || req.Interaction < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weights must be non-negative"})
		return
	}
	if req.RuleBased+req.AnomalyModel+req.Projection+req.Interaction <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one weight must be positive"})
		return
	}

	committed := h.engine.SetCustom(ensemble.WeightVector{
		RuleBased:    req.RuleBased,
		AnomalyModel: req.AnomalyModel,
		Projection:   req.Projection,
		Interaction:  req.Interaction,
	})
	if h.pulse != nil {
		_ = h.pulse.Publish(pulse.SubjectWeightsOverride, pulse.WeightsOverrideEvent{
			Weights:   snapshot(committed),
			Source:    req.Source,
			Timestamp: time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, committed)
}

func snapshot(w ensemble.WeightVector) pulse.WeightSnapshot {
	return pulse.WeightSnapshot{
		RuleBased:    w.RuleBased,
		AnomalyModel: w.AnomalyModel,
		Projection:   w.Projection,
		Interaction:  w.Interaction,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
