package ensemble

// EvaluationRecord is one unit of accuracy feedback from the evaluation
// pipeline, newest-first when supplied in a batch.
type EvaluationRecord struct {
	Accuracy         float64 `json:"accuracy"`
	CalibrationError float64 `json:"calibration_error"`
	F1Score          float64 `json:"f1_score"`
}

// PerformanceEstimator derives a per-component "deserved weight" delta
// from recent evaluation feedback.
//
// The per-component accuracy formulas are heuristic stand-ins: no real
// per-component ground truth exists upstream. They are isolated in
// deservedWeights so a different crediting policy is a one-function change.
type PerformanceEstimator struct {
	window         int
	neutralDefault float64
}

// NewPerformanceEstimator creates an estimator over the most recent
// window records. Absent data yields the neutral default accuracy for
// every component.
func NewPerformanceEstimator(window int, neutralDefault float64) *PerformanceEstimator {
	if window <= 0 {
		window = 20
	}
	if neutralDefault <= 0 {
		neutralDefault = 0.7
	}
	return &PerformanceEstimator{window: window, neutralDefault: neutralDefault}
}

// Window returns the number of records the estimator considers.
func (e *PerformanceEstimator) Window() int { return e.window }

// Deltas computes the zero-sum-biased adjustment pushing weight toward
// components currently under-credited relative to estimated skill:
// delta_i = deserved_i/sum(deserved) - current_i.
func (e *PerformanceEstimator) Deltas(records []EvaluationRecord, current WeightVector) AdjustmentVector {
	deserved := e.deservedWeights(records)

	sum := deserved[0] + deserved[1] + deserved[2] + deserved[3]
	if sum <= 0 {
		return AdjustmentVector{}
	}

	cur := current.asList()
	return AdjustmentVector{
		RuleBased:    deserved[0]/sum - cur[0],
		AnomalyModel: deserved[1]/sum - cur[1],
		Projection:   deserved[2]/sum - cur[2],
		Interaction:  deserved[3]/sum - cur[3],
	}
}

// deservedWeights estimates per-component skill from the rolling window:
// ruleBased tracks raw accuracy, anomalyModel discounts by calibration
// error, projection tracks F1, interaction takes a fixed 0.9 haircut on
// accuracy.
func (e *PerformanceEstimator) deservedWeights(records []EvaluationRecord) [4]float64 {
	if len(records) == 0 {
		n := e.neutralDefault
		return [4]float64{n, n, n, n}
	}

	if len(records) > e.window {
		records = records[:e.window]
	}

	var accSum, calSum, f1Sum float64
	for _, r := range records {
		accSum += r.Accuracy
		calSum += r.CalibrationError
		f1Sum += r.F1Score
	}
	n := float64(len(records))
	meanAcc := accSum / n
	meanCal := calSum / n
	meanF1 := f1Sum / n

	return [4]float64{
		meanAcc,
		meanAcc * (1 - meanCal),
		meanF1,
		meanAcc * 0.9,
	}
}

// WindowStats summarizes the evaluation window for history bookkeeping.
type WindowStats struct {
	AggregateAccuracy float64
	CalibrationProxy  float64
}

// Stats returns the aggregate accuracy and calibration proxy used in
// history entries. An empty window reports the neutral default with a
// perfect calibration proxy.
func (e *PerformanceEstimator) Stats(records []EvaluationRecord) WindowStats {
	if len(records) == 0 {
		return WindowStats{AggregateAccuracy: e.neutralDefault, CalibrationProxy: 1.0}
	}
	if len(records) > e.window {
		records = records[:e.window]
	}
	var accSum, calSum float64
	for _, r := range records {
		accSum += r.Accuracy
		calSum += r.CalibrationError
	}
	n := float64(len(records))
	return WindowStats{
		AggregateAccuracy: accSum / n,
		CalibrationProxy:  1 - calSum/n,
	}
}
