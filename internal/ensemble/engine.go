// Package ensemble maintains the blending coefficients used to combine
// the four independently-scored risk signals into one composite risk
// number, and continuously re-tunes them from recent accuracy and
// concept-drift feedback.
package ensemble

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PerformanceFeed supplies the most recent evaluation records,
// newest-first. It may return an empty slice or an error; both degrade
// to the estimator's neutral defaults.
type PerformanceFeed interface {
	RecentEvaluations(ctx context.Context, limit int) ([]EvaluationRecord, error)
}

// DriftFeed supplies the current drift snapshot. A nil signal or an
// error marks the feed unavailable; drift handling then fails open with
// a zero contribution.
type DriftFeed interface {
	CurrentDrift(ctx context.Context) (*DriftSignal, error)
}

// Config carries the engine's tuning constants. Zero values fall back
// to the documented defaults.
type Config struct {
	LearningRate   float64
	Momentum       float64
	MinWeight      float64
	MaxWeight      float64
	HistoryCap     int
	EvalWindow     int
	NeutralDefault float64
}

// Engine owns the weight vector, the momentum carry-over, and the
// adaptation history. One instance is constructed by the hosting
// service and shared by handle; there is no ambient global state.
//
// Adapt, Reset, and SetCustom are serialized by the write lock so at
// most one adaptation is in flight at a time; concurrent reads observe
// either the pre- or post-adaptation vector, never a partial write.
type Engine struct {
	mu sync.RWMutex

	current  WeightVector
	momentum AdjustmentVector

	estimator *PerformanceEstimator
	adjuster  *DriftAdjuster
	pipeline  *AdaptationPipeline
	ledger    *HistoryLedger

	perf   PerformanceFeed
	drift  DriftFeed
	logger *slog.Logger
	now    func() time.Time
}

// Summary is the operator status surface for the current weights.
type Summary struct {
	CurrentWeights WeightVector `json:"current_weights"`
	RecentTrend    string       `json:"recent_trend"`
	AvgAccuracy    float64      `json:"avg_accuracy"`
	LastAdjustment string       `json:"last_adjustment"`
}

const (
	TrendImproving = "improving"
	TrendDegrading = "degrading"
	TrendStable    = "stable"
)

// trendThreshold is the accuracy movement needed before the trend
// classification leaves "stable".
const trendThreshold = 0.05

// New creates an engine with the default weight vector committed and an
// empty history. Feeds may be nil; a nil feed behaves as permanently
// unavailable.
func New(cfg Config, perf PerformanceFeed, drift DriftFeed, logger *slog.Logger) *Engine {
	bounds := Bounds{Min: cfg.MinWeight, Max: cfg.MaxWeight}
	if bounds.Max <= bounds.Min {
		bounds = DefaultBounds()
	}
	lr := cfg.LearningRate
	if lr <= 0 {
		lr = 0.05
	}

	return &Engine{
		current:   DefaultWeights(),
		estimator: NewPerformanceEstimator(cfg.EvalWindow, cfg.NeutralDefault),
		adjuster:  NewDriftAdjuster(lr),
		pipeline:  NewAdaptationPipeline(lr, cfg.Momentum, bounds),
		ledger:    NewHistoryLedger(cfg.HistoryCap),
		perf:      perf,
		drift:     drift,
		logger:    logger,
		now:       time.Now,
	}
}

// Adapt runs one pass of the control loop: query both feeds, blend
// their deltas with the momentum carry-over, clamp, renormalize, and
// commit. It never fails; any upstream unavailability degrades to a
// zero or neutral contribution and the adaptation still commits.
func (e *Engine) Adapt(ctx context.Context) WeightVector {
	e.mu.Lock()
	defer e.mu.Unlock()

	records := e.fetchEvaluations(ctx)
	signal := e.fetchDrift(ctx)

	before := e.current
	perfDelta := e.estimator.Deltas(records, before)
	driftDelta := e.adjuster.Deltas(signal)

	step := e.pipeline.Step(before, perfDelta, driftDelta, e.momentum)
	e.current = step.Committed
	e.momentum = step.AppliedDelta

	stats := e.estimator.Stats(records)
	entry := HistoryEntry{
		Timestamp:         e.now(),
		Weights:           step.Committed,
		AggregateAccuracy: stats.AggregateAccuracy,
		CalibrationProxy:  stats.CalibrationProxy,
		Reason:            changeReason(before, step.Committed),
	}
	if signal != nil {
		entry.DriftScore = signal.OverallDriftScore
	}
	if step.FellBack {
		entry.Reason = "Degenerate normalization - reverted to defaults"
	}
	e.ledger.Record(entry)

	if e.logger != nil {
		e.logger.Debug("weights adapted",
			"reason", entry.Reason,
			"aggregate_accuracy", entry.AggregateAccuracy,
			"drift_score", entry.DriftScore,
		)
	}
	return e.current
}

// Get returns a copy of the current vector. The returned value always
// satisfies the sum and bounds invariants.
func (e *Engine) Get() WeightVector {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Reset restores the default vector, clears the momentum carry-over,
// and records a reset entry. An Adapt immediately after Reset behaves
// identically to an Adapt on a freshly constructed engine.
func (e *Engine) Reset() WeightVector {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.current = DefaultWeights()
	e.momentum = AdjustmentVector{}
	e.ledger.Record(HistoryEntry{
		Timestamp: e.now(),
		Weights:   e.current,
		Reason:    "Manual reset to defaults",
	})
	return e.current
}

// SetCustom clamps the supplied vector into bounds, renormalizes it to
// sum 1, and commits it, bypassing the estimator and drift adjuster.
// The momentum carry-over is left untouched.
func (e *Engine) SetCustom(v WeightVector) WeightVector {
	e.mu.Lock()
	defer e.mu.Unlock()

	committed, _ := clampNormalize(v, e.pipeline.Bounds())
	e.current = committed
	e.ledger.Record(HistoryEntry{
		Timestamp: e.now(),
		Weights:   committed,
		Reason:    "Manual override applied",
	})
	return committed
}

// LastEntry returns the most recent history entry, if any.
func (e *Engine) LastEntry() (HistoryEntry, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Last()
}

// History returns the most recent limit entries, newest-last.
func (e *Engine) History(limit int) []HistoryEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Recent(limit)
}

// Summary returns the current weights with a trend classification over
// the recent adaptation history.
func (e *Engine) Summary() Summary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Summary{
		CurrentWeights: e.current,
		RecentTrend:    TrendStable,
	}

	entries := e.ledger.Recent(0)
	if last, ok := e.ledger.Last(); ok {
		s.LastAdjustment = last.Reason
	}
	if len(entries) == 0 {
		return s
	}

	recent := entries
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}
	s.AvgAccuracy = meanAccuracy(recent)

	if len(entries) >= 6 {
		prior := entries[len(entries)-6 : len(entries)-3]
		diff := s.AvgAccuracy - meanAccuracy(prior)
		switch {
		case diff > trendThreshold:
			s.RecentTrend = TrendImproving
		case diff < -trendThreshold:
			s.RecentTrend = TrendDegrading
		}
	}
	return s
}

func meanAccuracy(entries []HistoryEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	var sum float64
	for _, en := range entries {
		sum += en.AggregateAccuracy
	}
	return sum / float64(len(entries))
}

func (e *Engine) fetchEvaluations(ctx context.Context) []EvaluationRecord {
	if e.perf == nil {
		return nil
	}
	records, err := e.perf.RecentEvaluations(ctx, e.estimator.Window())
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("performance feed unavailable, using neutral defaults", "error", err)
		}
		return nil
	}
	return records
}

func (e *Engine) fetchDrift(ctx context.Context) *DriftSignal {
	if e.drift == nil {
		return nil
	}
	signal, err := e.drift.CurrentDrift(ctx)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("drift feed unavailable, skipping drift adjustment", "error", err)
		}
		return nil
	}
	return signal
}
