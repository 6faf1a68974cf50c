package ensemble

import (
	"fmt"
	"math"
)

// WeightVector holds the blending coefficients applied to the four
// independently-scored risk signals before they are summed into one
// composite score. Components must sum to 1.0 (±1e-9 tolerance) and
// each must lie within the configured bounds.
type WeightVector struct {
	RuleBased    float64 `json:"rule_based" yaml:"rule_based"`
	AnomalyModel float64 `json:"anomaly_model" yaml:"anomaly_model"`
	Projection   float64 `json:"projection" yaml:"projection"`
	Interaction  float64 `json:"interaction" yaml:"interaction"`
}

// AdjustmentVector is a signed per-component delta. Unlike WeightVector
// it carries no sum constraint.
type AdjustmentVector struct {
	RuleBased    float64
	AnomalyModel float64
	Projection   float64
	Interaction  float64
}

// Bounds constrains every committed weight component.
type Bounds struct {
	Min float64
	Max float64
}

const sumTolerance = 1e-9

// DefaultWeights returns the process-start weight distribution.
func DefaultWeights() WeightVector {
	return WeightVector{
		RuleBased:    0.35,
		AnomalyModel: 0.25,
		Projection:   0.20,
		Interaction:  0.20,
	}
}

// DefaultBounds returns the default per-component weight bounds.
func DefaultBounds() Bounds {
	return Bounds{Min: 0.10, Max: 0.60}
}

// Sum returns the total of all components.
func (w WeightVector) Sum() float64 {
	return w.RuleBased + w.AnomalyModel + w.Projection + w.Interaction
}

// Validate checks the sum-to-1 invariant and the given bounds.
func (w WeightVector) Validate(b Bounds) error {
	if math.Abs(w.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("weights sum to %.9f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < b.Min-sumTolerance || v > b.Max+sumTolerance {
			return fmt.Errorf("weight %f outside bounds [%.2f, %.2f]", v, b.Min, b.Max)
		}
	}
	return nil
}

func (w WeightVector) asList() [4]float64 {
	return [4]float64{w.RuleBased, w.AnomalyModel, w.Projection, w.Interaction}
}

func fromList(vals [4]float64) WeightVector {
	return WeightVector{
		RuleBased:    vals[0],
		AnomalyModel: vals[1],
		Projection:   vals[2],
		Interaction:  vals[3],
	}
}

// Add applies a signed delta to every component.
func (w WeightVector) Add(d AdjustmentVector) WeightVector {
	return WeightVector{
		RuleBased:    w.RuleBased + d.RuleBased,
		AnomalyModel: w.AnomalyModel + d.AnomalyModel,
		Projection:   w.Projection + d.Projection,
		Interaction:  w.Interaction + d.Interaction,
	}
}

// Clamp constrains every component into [b.Min, b.Max].
func (w WeightVector) Clamp(b Bounds) WeightVector {
	vals := w.asList()
	for i, v := range vals {
		vals[i] = math.Min(b.Max, math.Max(b.Min, v))
	}
	return fromList(vals)
}

// Normalize rescales components so they sum to exactly 1. A near-zero
// pre-normalize sum is degenerate; the caller falls back to defaults.
func (w WeightVector) Normalize() (WeightVector, bool) {
	sum := w.Sum()
	if sum < 1e-6 {
		return DefaultWeights(), false
	}
	vals := w.asList()
	for i := range vals {
		vals[i] /= sum
	}
	return fromList(vals), true
}

// clampNormalize clamps into bounds and renormalizes to sum 1. When
// normalization pushes a component back past a bound, that component is
// pinned at the bound and the remaining mass is redistributed among the
// free components, so the result satisfies both invariants whenever the
// bounds make a sum of 1 feasible. Returns false when the post-clamp sum
// was degenerate and the defaults were committed instead.
func clampNormalize(w WeightVector, b Bounds) (WeightVector, bool) {
	vals := w.Clamp(b).asList()

	var sum float64
	for _, v := range vals {
		sum += v
	}
	if sum < 1e-6 {
		return DefaultWeights(), false
	}

	var pinned [4]bool
	for iter := 0; iter < len(vals); iter++ {
		var freeSum, pinnedSum float64
		for i, v := range vals {
			if pinned[i] {
				pinnedSum += v
			} else {
				freeSum += v
			}
		}
		target := 1 - pinnedSum
		if freeSum <= 0 || target <= 0 {
			break
		}
		scale := target / freeSum

		violated := false
		for i, v := range vals {
			if pinned[i] {
				continue
			}
			scaled := v * scale
			if scaled > b.Max {
				vals[i] = b.Max
				pinned[i] = true
				violated = true
			} else if scaled < b.Min {
				vals[i] = b.Min
				pinned[i] = true
				violated = true
			}
		}
		if !violated {
			for i := range vals {
				if !pinned[i] {
					vals[i] *= scale
				}
			}
			return fromList(vals), true
		}
	}

	// Bounds leave no feasible sum-to-1 vector; keep the sum invariant.
	out, ok := fromList(vals).Normalize()
	return out, ok
}

// Scale multiplies every component of the adjustment by f.
func (d AdjustmentVector) Scale(f float64) AdjustmentVector {
	return AdjustmentVector{
		RuleBased:    d.RuleBased * f,
		AnomalyModel: d.AnomalyModel * f,
		Projection:   d.Projection * f,
		Interaction:  d.Interaction * f,
	}
}

// Plus adds two adjustments component-wise.
func (d AdjustmentVector) Plus(o AdjustmentVector) AdjustmentVector {
	return AdjustmentVector{
		RuleBased:    d.RuleBased + o.RuleBased,
		AnomalyModel: d.AnomalyModel + o.AnomalyModel,
		Projection:   d.Projection + o.Projection,
		Interaction:  d.Interaction + o.Interaction,
	}
}

// IsZero reports whether every component is exactly zero.
func (d AdjustmentVector) IsZero() bool {
	return d.RuleBased == 0 && d.AnomalyModel == 0 && d.Projection == 0 && d.Interaction == 0
}
