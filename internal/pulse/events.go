package pulse

import "time"

type WeightSnapshot struct {
	RuleBased    float64 `json:"rule_based"`
	AnomalyModel float64 `json:"anomaly_model"`
	Projection   float64 `json:"projection"`
	Interaction  float64 `json:"interaction"`
}

type WeightsAdaptedEvent struct {
	Weights           WeightSnapshot `json:"weights"`
	Reason            string         `json:"reason"`
	AggregateAccuracy float64        `json:"aggregate_accuracy"`
	DriftScore        float64        `json:"drift_score"`
	Timestamp         time.Time      `json:"timestamp"`
}

type WeightsResetEvent struct {
	Weights   WeightSnapshot `json:"weights"`
	Timestamp time.Time      `json:"timestamp"`
}

type WeightsOverrideEvent struct {
	Weights   WeightSnapshot `json:"weights"`
	Source    string         `json:"source,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type RiskScoredEvent struct {
	Composite float64            `json:"composite"`
	Signals   map[string]float64 `json:"signals"`
	Weights   WeightSnapshot     `json:"weights"`
	Timestamp time.Time          `json:"timestamp"`
}

type EvaluationRecordedEvent struct {
	ID               string  `json:"id"`
	Accuracy         float64 `json:"accuracy"`
	CalibrationError float64 `json:"calibration_error"`
	F1Score          float64 `json:"f1_score"`
	Source           string  `json:"source,omitempty"`
}
