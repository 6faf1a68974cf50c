package ensemble

// Blend constants for combining the two delta sources.
const (
	performanceBlend = 0.6
	driftBlend       = 0.4
)

// AdaptationPipeline applies the continuous control law that turns the
// performance and drift deltas into a committed weight vector:
//
//	combined = 0.6*perf + 0.4*drift
//	scaled   = lr * (combined + momentum*previous)
//	next     = normalize(clamp(current + scaled))
//
// Momentum is carried from the learning-rate-scaled delta, and the
// learning rate is applied once to the momentum-augmented sum. Scaling
// before adding momentum produces a different numeric trajectory and
// must not be substituted.
type AdaptationPipeline struct {
	learningRate float64
	momentum     float64
	bounds       Bounds
}

// StepResult is the outcome of one pipeline application.
type StepResult struct {
	Committed WeightVector
	// AppliedDelta is the scaled, pre-clamp delta persisted as the
	// momentum carry-over for the next step.
	AppliedDelta AdjustmentVector
	// FellBack is set when the post-clamp sum was degenerate and the
	// default vector was committed instead.
	FellBack bool
}

// NewAdaptationPipeline creates a pipeline with the given tuning
// constants, substituting defaults for non-positive values.
func NewAdaptationPipeline(learningRate, momentum float64, bounds Bounds) *AdaptationPipeline {
	if learningRate <= 0 {
		learningRate = 0.05
	}
	if momentum <= 0 {
		momentum = 0.3
	}
	if bounds.Max <= bounds.Min {
		bounds = DefaultBounds()
	}
	return &AdaptationPipeline{learningRate: learningRate, momentum: momentum, bounds: bounds}
}

// Step runs the control law once against the current vector.
func (p *AdaptationPipeline) Step(current WeightVector, perfDelta, driftDelta, previousApplied AdjustmentVector) StepResult {
	combined := perfDelta.Scale(performanceBlend).Plus(driftDelta.Scale(driftBlend))
	withMomentum := combined.Plus(previousApplied.Scale(p.momentum))
	scaled := withMomentum.Scale(p.learningRate)

	candidate := current.Add(scaled)
	committed, ok := clampNormalize(candidate, p.bounds)

	return StepResult{
		Committed:    committed,
		AppliedDelta: scaled,
		FellBack:     !ok,
	}
}

// Bounds returns the clamp interval the pipeline commits into.
func (p *AdaptationPipeline) Bounds() Bounds { return p.bounds }

// LearningRate returns the configured learning rate.
func (p *AdaptationPipeline) LearningRate() float64 { return p.learningRate }
