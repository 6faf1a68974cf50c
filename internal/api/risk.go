package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/signals"
)

type RiskHandler struct {
	combiner *signals.Combiner
	pulse    pulse.Client
}

func NewRiskHandler(c *signals.Combiner, p pulse.Client) *RiskHandler {
	return &RiskHandler{combiner: c, pulse: p}
}

// Score runs the four signal calculators over one analysis window and
// returns the weighted composite.
func (h *RiskHandler) Score(w http.ResponseWriter, r *http.Request) {
	var window signals.AnalysisWindow
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if window.Volume < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "volume must be non-negative"})
		return
	}

	assessment := h.combiner.Compute(window)

	if h.pulse != nil {
		scores := make(map[string]float64, len(assessment.Signals))
		for _, s := range assessment.Signals {
			scores[s.Name] = s.Score
		}
		_ = h.pulse.Publish(pulse.SubjectRiskScored, pulse.RiskScoredEvent{
			Composite: assessment.Composite,
			Signals:   scores,
			Weights:   snapshot(assessment.Weights),
			Timestamp: time.Now().UTC(),
		})
	}
	writeJSON(w, http.StatusOK, assessment)
}
