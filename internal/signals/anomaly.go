package signals

import "math"

const (
	anomalyWindowSize = 50
	anomalyMinSamples = 5
	anomalyStdFloor   = 0.1
)

// AnomalyDetector scores volume anomalies with a rolling z-score over a
// bounded window. The score is |z|/3 normalized to 0-100, so three
// standard deviations from the rolling mean saturates the signal.
type AnomalyDetector struct {
	window  int
	volumes []float64
}

// NewAnomalyDetector creates a detector with the default window.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{window: anomalyWindowSize}
}

// Score records the current volume and returns its anomaly score. Too
// little history or a near-constant series scores zero.
func (d *AnomalyDetector) Score(volume int) float64 {
	d.volumes = append(d.volumes, float64(volume))
	if len(d.volumes) > d.window {
		d.volumes = d.volumes[len(d.volumes)-d.window:]
	}

	if len(d.volumes) < anomalyMinSamples {
		return 0
	}

	m := mean(d.volumes)
	var varSum float64
	for _, v := range d.volumes {
		varSum += (v - m) * (v - m)
	}
	std := math.Sqrt(varSum / float64(len(d.volumes)))
	if std < anomalyStdFloor {
		return 0
	}

	z := (float64(volume) - m) / std
	return math.Min(100, math.Abs(z)/3*100)
}

// HistoryLen returns the number of retained samples.
func (d *AnomalyDetector) HistoryLen() int { return len(d.volumes) }

// Reset clears the rolling window.
func (d *AnomalyDetector) Reset() {
	d.volumes = nil
}
