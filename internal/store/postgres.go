package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const evaluationColumns = `id, accuracy, calibration_error, f1_score, source, created_at`

func (s *PostgresStore) CreateEvaluation(ctx context.Context, rec *EvaluationRecord) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO vigil_evaluations (accuracy, calibration_error, f1_score, source)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		rec.Accuracy, rec.CalibrationError, rec.F1Score, rec.Source,
	).Scan(&rec.ID, &rec.CreatedAt)
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, limit int) ([]*EvaluationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+evaluationColumns+`
		FROM vigil_evaluations
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvaluations(rows)
}

// RecentEvaluations implements ensemble.PerformanceFeed: the newest
// limit records mapped to the engine's feedback shape.
func (s *PostgresStore) RecentEvaluations(ctx context.Context, limit int) ([]ensemble.EvaluationRecord, error) {
	records, err := s.ListEvaluations(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ensemble.EvaluationRecord, len(records))
	for i, r := range records {
		out[i] = ensemble.EvaluationRecord{
			Accuracy:         r.Accuracy,
			CalibrationError: r.CalibrationError,
			F1Score:          r.F1Score,
		}
	}
	return out, nil
}

const historyColumns = `id, rule_based, anomaly_model, projection, interaction,
	aggregate_accuracy, calibration_proxy, drift_score, reason, created_at`

func (s *PostgresStore) CreateWeightHistory(ctx context.Context, row *WeightHistoryRow) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO vigil_weight_history (rule_based, anomaly_model, projection, interaction,
			aggregate_accuracy, calibration_proxy, drift_score, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		row.RuleBased, row.AnomalyModel, row.Projection, row.Interaction,
		row.AggregateAccuracy, row.CalibrationProxy, row.DriftScore, row.Reason,
	).Scan(&row.ID, &row.CreatedAt)
}

func (s *PostgresStore) ListWeightHistory(ctx context.Context, limit int) ([]*WeightHistoryRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+historyColumns+`
		FROM vigil_weight_history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*WeightHistoryRow
	for rows.Next() {
		r := &WeightHistoryRow{}
		if err := rows.Scan(
			&r.ID, &r.RuleBased, &r.AnomalyModel, &r.Projection, &r.Interaction,
			&r.AggregateAccuracy, &r.CalibrationProxy, &r.DriftScore, &r.Reason, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*EngineStats, error) {
	stats := &EngineStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM vigil_evaluations),
			(SELECT COUNT(*) FROM vigil_weight_history),
			COALESCE((SELECT AVG(accuracy) FROM vigil_evaluations), 0),
			COALESCE((SELECT AVG(accuracy) FROM (
				SELECT accuracy FROM vigil_evaluations ORDER BY created_at DESC LIMIT 20
			) recent), 0)`,
	).Scan(&stats.TotalEvaluations, &stats.TotalAdaptations, &stats.AvgAccuracy, &stats.AvgAccuracyRecent)
	return stats, err
}

func scanEvaluations(rows pgx.Rows) ([]*EvaluationRecord, error) {
	var out []*EvaluationRecord
	for rows.Next() {
		r := &EvaluationRecord{}
		if err := rows.Scan(&r.ID, &r.Accuracy, &r.CalibrationError, &r.F1Score, &r.Source, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
