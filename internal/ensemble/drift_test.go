package ensemble

import (
	"math"
	"testing"
)

func TestDriftAdjusterUnavailableIsZero(t *testing.T) {
	a := NewDriftAdjuster(0.05)
	if d := a.Deltas(nil); !d.IsZero() {
		t.Errorf("expected zero vector for unavailable feed, got %+v", d)
	}
}

func TestDriftAdjusterNoDriftIsZero(t *testing.T) {
	a := NewDriftAdjuster(0.05)
	if d := a.Deltas(&DriftSignal{OverallDriftScore: 0.4}); !d.IsZero() {
		t.Errorf("expected zero vector when no drift type fired, got %+v", d)
	}
}

func TestDriftAdjusterResponses(t *testing.T) {
	const lr = 0.05
	a := NewDriftAdjuster(lr)

	tests := []struct {
		name   string
		signal DriftSignal
		want   AdjustmentVector
	}{
		{
			name:   "concept drift",
			signal: DriftSignal{ConceptDriftDetected: true},
			want:   AdjustmentVector{RuleBased: 0.5 * lr, AnomalyModel: -0.3 * lr, Projection: -0.2 * lr},
		},
		{
			name:   "feature drift",
			signal: DriftSignal{FeatureDriftDetected: true},
			want:   AdjustmentVector{RuleBased: 0.2 * lr, AnomalyModel: -0.2 * lr},
		},
		{
			name:   "prediction drift",
			signal: DriftSignal{PredictionDriftDetected: true},
			want:   AdjustmentVector{RuleBased: 0.2 * lr, Interaction: -0.2 * lr},
		},
		{
			name: "all drift types are additive",
			signal: DriftSignal{
				ConceptDriftDetected:    true,
				FeatureDriftDetected:    true,
				PredictionDriftDetected: true,
			},
			want: AdjustmentVector{
				RuleBased:    0.9 * lr,
				AnomalyModel: -0.5 * lr,
				Projection:   -0.2 * lr,
				Interaction:  -0.2 * lr,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Deltas(&tt.signal)
			if math.Abs(got.RuleBased-tt.want.RuleBased) > 1e-12 ||
				math.Abs(got.AnomalyModel-tt.want.AnomalyModel) > 1e-12 ||
				math.Abs(got.Projection-tt.want.Projection) > 1e-12 ||
				math.Abs(got.Interaction-tt.want.Interaction) > 1e-12 {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDriftNeverReducesRuleBased(t *testing.T) {
	a := NewDriftAdjuster(0.05)
	signals := []DriftSignal{
		{ConceptDriftDetected: true},
		{FeatureDriftDetected: true},
		{PredictionDriftDetected: true},
		{ConceptDriftDetected: true, FeatureDriftDetected: true, PredictionDriftDetected: true},
	}
	for _, s := range signals {
		if d := a.Deltas(&s); d.RuleBased < 0 {
			t.Errorf("rule-based delta negative for %+v: %f", s, d.RuleBased)
		}
	}
}
