package signals

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCombineAppliesWeights(t *testing.T) {
	s := SignalSet{RuleBased: 80, AnomalyModel: 50, Projection: 40, Interaction: 20}
	a := combine(s, ensemble.DefaultWeights())

	// 0.35*80 + 0.25*50 + 0.20*40 + 0.20*20 = 52.5
	if math.Abs(a.Composite-52.5) > 1e-9 {
		t.Errorf("expected 52.5, got %f", a.Composite)
	}
	if len(a.Signals) != 4 {
		t.Fatalf("expected 4 signal results, got %d", len(a.Signals))
	}
	if a.Signals[0].Name != "ruleBased" || math.Abs(a.Signals[0].Weighted-28) > 1e-9 {
		t.Errorf("unexpected rule-based breakdown: %+v", a.Signals[0])
	}
}

func TestInteractionScore(t *testing.T) {
	if got := interactionScore(0, 100, 0); got != 0 {
		t.Errorf("expected 0 when one factor is zero, got %f", got)
	}
	// 80*60/100 = 48, no projection amplification.
	if got := interactionScore(80, 60, 40); math.Abs(got-48) > 1e-9 {
		t.Errorf("expected 48, got %f", got)
	}
	// Same with elevated projection: 48 * 1.25 = 60.
	if got := interactionScore(80, 60, 60); math.Abs(got-60) > 1e-9 {
		t.Errorf("expected amplified 60, got %f", got)
	}
	if got := interactionScore(100, 100, 90); got != 100 {
		t.Errorf("expected cap at 100, got %f", got)
	}
}

func TestCombinerCompute(t *testing.T) {
	engine := ensemble.New(ensemble.Config{}, nil, nil, discardLogger())
	c := NewCombiner(engine, discardLogger())

	window := AnalysisWindow{
		Volume:     120,
		Sentiments: []float64{-0.2, -0.4, -0.5, -0.6, -0.7, -0.8},
		Clusters: []ClusterInfo{
			{Size: 40, GrowthRate: 70},
			{Size: 25, GrowthRate: 30},
		},
	}

	a := c.Compute(window)
	if a.Composite < 0 || a.Composite > 100 {
		t.Errorf("composite out of range: %f", a.Composite)
	}
	if len(a.Signals) != 4 {
		t.Fatalf("expected 4 signals, got %d", len(a.Signals))
	}
	if a.Weights != engine.Get() {
		t.Errorf("assessment weights should match the engine vector")
	}

	var total float64
	for _, s := range a.Signals {
		total += s.Weighted
	}
	if math.Abs(math.Min(100, total)-a.Composite) > 1e-9 {
		t.Errorf("composite %f does not match weighted sum %f", a.Composite, total)
	}
}

func TestCombinerProjectionUsesPastComposites(t *testing.T) {
	engine := ensemble.New(ensemble.Config{}, nil, nil, discardLogger())
	c := NewCombiner(engine, discardLogger())

	window := AnalysisWindow{Volume: 100}
	first := c.Compute(window)
	if first.Signals[2].Score != 0 {
		t.Errorf("first projection should be 0, got %f", first.Signals[2].Score)
	}

	c.Compute(AnalysisWindow{
		Volume:     100,
		Sentiments: []float64{-0.9, -0.95},
	})
	third := c.Compute(AnalysisWindow{Volume: 100})
	if third.Signals[2].Score < 0 {
		t.Errorf("projection negative: %f", third.Signals[2].Score)
	}
}

func TestCombinerReset(t *testing.T) {
	engine := ensemble.New(ensemble.Config{}, nil, nil, discardLogger())
	c := NewCombiner(engine, discardLogger())

	for i := 0; i < 10; i++ {
		c.Compute(AnalysisWindow{Volume: 50 + i*10, Sentiments: []float64{-0.3, -0.4}})
	}
	c.Reset()
	if c.anomaly.HistoryLen() != 0 || c.projector.HistoryLen() != 0 {
		t.Error("expected calculator state cleared after reset")
	}
}
