package ensemble

// DriftSignal is an externally computed snapshot of distribution shift
// between monitored inputs and outcomes.
type DriftSignal struct {
	FeatureDriftDetected    bool    `json:"feature_drift_detected"`
	PredictionDriftDetected bool    `json:"prediction_drift_detected"`
	ConceptDriftDetected    bool    `json:"concept_drift_detected"`
	OverallDriftScore       float64 `json:"overall_drift_score"`
}

// Any reports whether any drift type fired.
func (s DriftSignal) Any() bool {
	return s.FeatureDriftDetected || s.PredictionDriftDetected || s.ConceptDriftDetected
}

// DriftAdjuster derives a per-component delta from a drift snapshot.
// The rule-based component is treated as the most distribution-robust
// signal and is favored whenever any drift type fires; affected
// components are down-weighted rather than removed.
type DriftAdjuster struct {
	learningRate float64
}

// NewDriftAdjuster creates an adjuster with the engine's learning rate.
func NewDriftAdjuster(learningRate float64) *DriftAdjuster {
	if learningRate <= 0 {
		learningRate = 0.05
	}
	return &DriftAdjuster{learningRate: learningRate}
}

// Deltas maps a drift snapshot to an additive adjustment. A nil signal
// means the drift feed was unavailable and yields a zero vector: drift
// handling fails open.
func (a *DriftAdjuster) Deltas(signal *DriftSignal) AdjustmentVector {
	if signal == nil {
		return AdjustmentVector{}
	}

	var d AdjustmentVector
	lr := a.learningRate

	if signal.ConceptDriftDetected {
		d.RuleBased += 0.5 * lr
		d.AnomalyModel -= 0.3 * lr
		d.Projection -= 0.2 * lr
	}
	if signal.FeatureDriftDetected {
		d.RuleBased += 0.2 * lr
		d.AnomalyModel -= 0.2 * lr
	}
	if signal.PredictionDriftDetected {
		d.RuleBased += 0.2 * lr
		d.Interaction -= 0.2 * lr
	}
	return d
}
