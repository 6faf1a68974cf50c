// Package tuner runs the periodic adaptation loop: it steps the weight
// engine, persists the resulting history row, publishes the change on
// the event bus, and keeps the exported gauges current.
package tuner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/store"
)

var (
	weightGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vigil_ensemble_weight",
		Help: "Current ensemble weight per component.",
	}, []string{"component"})

	adaptationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vigil_adaptations_total",
		Help: "Number of adaptation cycles performed.",
	})

	adaptationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vigil_adaptation_duration_seconds",
		Help:    "Wall time of a single adaptation cycle.",
		Buckets: prometheus.DefBuckets,
	})
)

type Tuner struct {
	engine   *ensemble.Engine
	store    store.Store
	pulse    pulse.Client
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New wires the adaptation loop. The pulse client may be nil when the
// event bus is not configured; publishing is then skipped.
func New(engine *ensemble.Engine, s store.Store, p pulse.Client, interval time.Duration, logger *slog.Logger) *Tuner {
	return &Tuner{
		engine:   engine,
		store:    s,
		pulse:    p,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (t *Tuner) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.adaptLoop(ctx)
}

func (t *Tuner) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
}

func (t *Tuner) adaptLoop(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single adaptation cycle. Persistence and event
// publication are best effort; the in-memory engine state is already
// committed by the time either runs.
func (t *Tuner) RunOnce(ctx context.Context) {
	start := time.Now()
	cycleCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	weights := t.engine.Adapt(cycleCtx)
	adaptationsTotal.Inc()
	adaptationDuration.Observe(time.Since(start).Seconds())
	t.updateGauges(weights)

	entry, ok := t.engine.LastEntry()
	if !ok {
		return
	}

	if err := t.store.CreateWeightHistory(cycleCtx, &store.WeightHistoryRow{
		RuleBased:         entry.Weights.RuleBased,
		AnomalyModel:      entry.Weights.AnomalyModel,
		Projection:        entry.Weights.Projection,
		Interaction:       entry.Weights.Interaction,
		AggregateAccuracy: entry.AggregateAccuracy,
		CalibrationProxy:  entry.CalibrationProxy,
		DriftScore:        entry.DriftScore,
		Reason:            entry.Reason,
	}); err != nil {
		t.logger.Error("failed to persist weight history", "error", err)
	}

	if t.pulse != nil {
		event := pulse.WeightsAdaptedEvent{
			Weights: pulse.WeightSnapshot{
				RuleBased:    weights.RuleBased,
				AnomalyModel: weights.AnomalyModel,
				Projection:   weights.Projection,
				Interaction:  weights.Interaction,
			},
			Reason:            entry.Reason,
			AggregateAccuracy: entry.AggregateAccuracy,
			DriftScore:        entry.DriftScore,
			Timestamp:         entry.Timestamp,
		}
		if err := t.pulse.Publish(pulse.SubjectWeightsAdapted, event); err != nil {
			t.logger.Warn("failed to publish adaptation event", "error", err)
		}
	}
}

func (t *Tuner) updateGauges(w ensemble.WeightVector) {
	weightGauge.WithLabelValues("ruleBased").Set(w.RuleBased)
	weightGauge.WithLabelValues("anomalyModel").Set(w.AnomalyModel)
	weightGauge.WithLabelValues("projection").Set(w.Projection)
	weightGauge.WithLabelValues("interaction").Set(w.Interaction)
}
