package signals

import "math"

const projectionHistorySize = 30

// TrendProjector projects the next composite score one step ahead with
// a least-squares fit over the recent composite history.
type TrendProjector struct {
	history []float64
}

// NewTrendProjector creates a projector with an empty history.
func NewTrendProjector() *TrendProjector {
	return &TrendProjector{}
}

// Observe records a committed composite score.
func (p *TrendProjector) Observe(composite float64) {
	p.history = append(p.history, composite)
	if len(p.history) > projectionHistorySize {
		p.history = p.history[len(p.history)-projectionHistorySize:]
	}
}

// Project returns the one-step-ahead projection clamped to 0-100. With
// fewer than three observations there is no trend to fit and the last
// observation (or zero) is returned.
func (p *TrendProjector) Project() float64 {
	n := len(p.history)
	if n == 0 {
		return 0
	}
	if n < 3 {
		return clampScore(p.history[n-1])
	}

	// Least-squares slope and intercept over index positions.
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range p.history {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return clampScore(p.history[n-1])
	}
	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	return clampScore(intercept + slope*fn)
}

// HistoryLen returns the number of retained observations.
func (p *TrendProjector) HistoryLen() int { return len(p.history) }

// Reset clears the composite history.
func (p *TrendProjector) Reset() {
	p.history = nil
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}
