// Package signals computes the four per-signal risk scores blended by
// the ensemble engine, and combines them into the composite risk number
// shown on the dashboard. All scores are on a 0-100 scale.
package signals

import "math"

// ClusterInfo summarizes one narrative cluster from the ingestion
// pipeline.
type ClusterInfo struct {
	ClusterID       int      `json:"cluster_id"`
	Keywords        []string `json:"keywords,omitempty"`
	Size            int      `json:"size"`
	AvgSentiment    float64  `json:"avg_sentiment"`
	GrowthRate      float64  `json:"growth_rate"`
	VolatilityIndex float64  `json:"volatility_index"`
}

// AnalysisWindow is one batch of ingested material to score.
type AnalysisWindow struct {
	Volume     int           `json:"volume"`
	Sentiments []float64     `json:"sentiments,omitempty"`
	Clusters   []ClusterInfo `json:"clusters,omitempty"`
}

const sentimentHistorySize = 20

// EscalationCalculator derives the rule-based escalation metrics from a
// rolling sentiment history and the current cluster snapshot.
type EscalationCalculator struct {
	sentimentHistory []float64
}

// NewEscalationCalculator creates a calculator with an empty history.
func NewEscalationCalculator() *EscalationCalculator {
	return &EscalationCalculator{}
}

// SentimentAcceleration measures the rate of change toward negative
// sentiment as a second-derivative approximation over the recent
// history, normalized to 0-100. A strongly negative recent average is
// itself treated as concerning when no acceleration is measurable.
func (c *EscalationCalculator) SentimentAcceleration(sentiments []float64) float64 {
	if len(sentiments) < 2 {
		return 0
	}

	c.sentimentHistory = append(c.sentimentHistory, sentiments...)
	if len(c.sentimentHistory) > sentimentHistorySize {
		c.sentimentHistory = c.sentimentHistory[len(c.sentimentHistory)-sentimentHistorySize:]
	}

	recent := c.sentimentHistory
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	recentAvg := mean(recent)

	if len(c.sentimentHistory) >= 5 {
		n := len(c.sentimentHistory)
		var derivSum float64
		var count int
		for i := 1; i < 5 && i < n; i++ {
			derivSum += c.sentimentHistory[n-i] - c.sentimentHistory[n-i-1]
			count++
		}
		if count > 0 {
			accel := math.Abs(derivSum / float64(count))
			return math.Min(100, accel*200)
		}
	}

	if recentAvg < -0.3 {
		return math.Min(100, math.Abs(recentAvg)*100)
	}
	return 0
}

// ClusterGrowthRate returns the mean growth rate across clusters.
func (c *EscalationCalculator) ClusterGrowthRate(clusters []ClusterInfo) float64 {
	if len(clusters) == 0 {
		return 0
	}
	var sum float64
	for _, cl := range clusters {
		sum += cl.GrowthRate
	}
	return sum / float64(len(clusters))
}

// NarrativeSpreadSpeed scores how fast a narrative is spreading from
// the cluster count (up to 50 points), the affected share of the
// window (up to 30), and the number of viral clusters (up to 20).
func (c *EscalationCalculator) NarrativeSpreadSpeed(clusters []ClusterInfo, volume int) float64 {
	if len(clusters) == 0 || volume == 0 {
		return 0
	}

	totalPosts := 0
	viral := 0
	for _, cl := range clusters {
		totalPosts += cl.Size
		if cl.GrowthRate > 50 {
			viral++
		}
	}

	clusterFactor := math.Min(50, float64(len(clusters))*10)
	sizeFactor := math.Min(30, float64(totalPosts)/float64(volume)*30)
	viralFactor := math.Min(20, float64(viral)*5)

	return clusterFactor + sizeFactor + viralFactor
}

// RuleScore blends the three escalation metrics into the rule-based
// signal.
func (c *EscalationCalculator) RuleScore(w AnalysisWindow) float64 {
	accel := c.SentimentAcceleration(w.Sentiments)
	growth := c.ClusterGrowthRate(w.Clusters)
	spread := c.NarrativeSpreadSpeed(w.Clusters, w.Volume)
	return math.Min(100, 0.4*accel+0.3*math.Min(100, growth)+0.3*spread)
}

// Reset clears the rolling sentiment history.
func (c *EscalationCalculator) Reset() {
	c.sentimentHistory = nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
