package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
)

// EvaluationRecord is one persisted accuracy-feedback record from the
// evaluation pipeline.
type EvaluationRecord struct {
	ID               uuid.UUID `json:"id"`
	Accuracy         float64   `json:"accuracy"`
	CalibrationError float64   `json:"calibration_error"`
	F1Score          float64   `json:"f1_score"`
	Source           string    `json:"source,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// WeightHistoryRow is one persisted adaptation outcome, mirrored from
// the engine's in-memory ledger for dashboard queries that outlive the
// process.
type WeightHistoryRow struct {
	ID                uuid.UUID `json:"id"`
	RuleBased         float64   `json:"rule_based"`
	AnomalyModel      float64   `json:"anomaly_model"`
	Projection        float64   `json:"projection"`
	Interaction       float64   `json:"interaction"`
	AggregateAccuracy float64   `json:"aggregate_accuracy"`
	CalibrationProxy  float64   `json:"calibration_proxy"`
	DriftScore        float64   `json:"drift_score"`
	Reason            string    `json:"reason"`
	CreatedAt         time.Time `json:"created_at"`
}

// EngineStats aggregates persisted activity for the operator surface.
type EngineStats struct {
	TotalEvaluations  int     `json:"total_evaluations"`
	TotalAdaptations  int     `json:"total_adaptations"`
	AvgAccuracy       float64 `json:"avg_accuracy"`
	AvgAccuracyRecent float64 `json:"avg_accuracy_recent"`
}

// Store persists evaluation feedback and adaptation history. It also
// serves as the engine's performance feed.
type Store interface {
	ensemble.PerformanceFeed

	CreateEvaluation(ctx context.Context, rec *EvaluationRecord) error
	ListEvaluations(ctx context.Context, limit int) ([]*EvaluationRecord, error)

	CreateWeightHistory(ctx context.Context, row *WeightHistoryRow) error
	ListWeightHistory(ctx context.Context, limit int) ([]*WeightHistoryRow, error)

	GetStats(ctx context.Context) (*EngineStats, error)

	Close() error
}
