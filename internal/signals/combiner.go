package signals

import (
	"log/slog"
	"math"
	"sync"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
)

// SignalResult captures one signal's contribution to the composite.
type SignalResult struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Assessment is the complete scoring output for one analysis window.
type Assessment struct {
	Composite float64               `json:"composite"`
	Signals   []SignalResult        `json:"signals"`
	Weights   ensemble.WeightVector `json:"weights"`
}

// Combiner runs the four signal calculators over an analysis window and
// blends them with the ensemble engine's current weight vector.
//
// The calculators carry rolling state, so Compute is serialized.
type Combiner struct {
	mu         sync.Mutex
	engine     *ensemble.Engine
	escalation *EscalationCalculator
	anomaly    *AnomalyDetector
	projector  *TrendProjector
	logger     *slog.Logger
}

// NewCombiner creates a combiner bound to the given engine.
func NewCombiner(engine *ensemble.Engine, logger *slog.Logger) *Combiner {
	return &Combiner{
		engine:     engine,
		escalation: NewEscalationCalculator(),
		anomaly:    NewAnomalyDetector(),
		projector:  NewTrendProjector(),
		logger:     logger,
	}
}

// Compute scores one window: the rule-based escalation metrics, the
// volume anomaly, the trend projection, and the interaction
// amplification, weighted by the engine's current vector.
func (c *Combiner) Compute(window AnalysisWindow) Assessment {
	c.mu.Lock()
	defer c.mu.Unlock()

	rule := c.escalation.RuleScore(window)
	anomaly := c.anomaly.Score(window.Volume)
	projection := c.projector.Project()
	interaction := interactionScore(rule, anomaly, projection)

	weights := c.engine.Get()
	assessment := combine(SignalSet{
		RuleBased:    rule,
		AnomalyModel: anomaly,
		Projection:   projection,
		Interaction:  interaction,
	}, weights)

	c.projector.Observe(assessment.Composite)

	if c.logger != nil {
		c.logger.Debug("window scored",
			"composite", assessment.Composite,
			"rule_based", rule,
			"anomaly", anomaly,
			"projection", projection,
			"interaction", interaction,
		)
	}
	return assessment
}

// Reset clears all rolling calculator state.
func (c *Combiner) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.escalation.Reset()
	c.anomaly.Reset()
	c.projector.Reset()
}

// SignalSet holds the four raw signal scores on the 0-100 scale.
type SignalSet struct {
	RuleBased    float64
	AnomalyModel float64
	Projection   float64
	Interaction  float64
}

// combine applies the weight vector to the raw signals.
func combine(s SignalSet, w ensemble.WeightVector) Assessment {
	results := []SignalResult{
		{Name: "ruleBased", Score: s.RuleBased, Weight: w.RuleBased},
		{Name: "anomalyModel", Score: s.AnomalyModel, Weight: w.AnomalyModel},
		{Name: "projection", Score: s.Projection, Weight: w.Projection},
		{Name: "interaction", Score: s.Interaction, Weight: w.Interaction},
	}

	var total float64
	for i := range results {
		results[i].Weighted = results[i].Score * results[i].Weight
		total += results[i].Weighted
	}

	return Assessment{
		Composite: math.Min(100, total),
		Signals:   results,
		Weights:   w,
	}
}

// interactionScore measures amplification between signals: narratives
// that are simultaneously escalating and anomalous compound each other
// beyond their individual contributions.
func interactionScore(rule, anomaly, projection float64) float64 {
	base := rule / 100 * anomaly / 100 * 100
	if projection > 50 {
		base *= 1.25
	}
	return math.Min(100, base)
}
