package pulse

const (
	SubjectWeightsAdapted  = "vigil.weights.adapted"
	SubjectWeightsReset    = "vigil.weights.reset"
	SubjectWeightsOverride = "vigil.weights.override"
	SubjectRiskScored      = "vigil.risk.scored"
	SubjectEvalRecorded    = "vigil.eval.recorded"

	StreamName   = "VIGIL_EVENTS"
	StreamMaxAge = "720h" // 30 days
)
