package domain

// Execution algorithm names.
const (
	AlgorithmMarket  = "MARKET"
	AlgorithmTWAP    = "TWAP"
	AlgorithmVWAP    = "VWAP"
	AlgorithmIceberg = "ICEBERG"
)

// AlgorithmRecommendation is the advisory output of the liquidity
// analyzer. Ephemeral: never mutated or persisted by this core.
type AlgorithmRecommendation struct {
	Algorithm             string // MARKET | TWAP | VWAP | ICEBERG
	Reason                string // human-readable rationale
	EstimatedDurationMins float64
	SuggestedIntervals    int
	EstimatedSlippageBps  float64
	Confidence            float64 // 0..1
}
