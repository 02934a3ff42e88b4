// Package liquidity maps an order's size against pool depth to a
// recommended execution algorithm.
package liquidity

import (
	"context"
	"fmt"
	"io"
	"log"

	"solana-exec-engine/internal/domain"
)

// Impact thresholds as fractions of pool liquidity.
const (
	// MarketImpactThreshold: at or below, a direct market order is fine.
	MarketImpactThreshold = 0.001
	// IcebergImpactThreshold: above, the order must be hidden.
	IcebergImpactThreshold = 0.01
)

// Duration and interval policy per algorithm.
const (
	icebergBaseDurationMins = 120.0
	icebergMaxDurationMult  = 4.0
	twapLowDurationMins     = 30.0
	twapMediumDurationMins  = 15.0
	vwapDurationMins        = 60.0
	vwapIntervals           = 12
)

// minVWAPPredictability is the volume predictability required before a
// VWAP schedule is worth preferring over TWAP.
const minVWAPPredictability = 0.6

// VolumeSource supplies volume predictability for a token, in [0,1].
type VolumeSource interface {
	VolumePredictability(ctx context.Context, mint string) (float64, error)
}

// Analyzer recommends execution algorithms. Pure given its inputs and
// safe to call repeatedly; the optional volume source is its only
// collaborator.
type Analyzer struct {
	volumes VolumeSource
	logger  *log.Logger
}

// NewAnalyzer creates an analyzer. The volume source may be nil, in
// which case RecommendWithVolume degrades to Recommend.
func NewAnalyzer(volumes VolumeSource, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Analyzer{volumes: volumes, logger: logger}
}

// Impact returns the order size as a fraction of pool liquidity.
// A pool with no measurable liquidity counts as maximum impact.
func (a *Analyzer) Impact(orderSizeUSD, poolLiquidityUSD float64) float64 {
	if poolLiquidityUSD <= 0 {
		return 1.0
	}
	return orderSizeUSD / poolLiquidityUSD
}

// Recommend picks an algorithm from order size, pool liquidity and
// urgency. volume24h is advisory and may be zero.
func (a *Analyzer) Recommend(orderSizeUSD, poolLiquidityUSD float64, urgency domain.Urgency, volume24h float64) domain.AlgorithmRecommendation {
	impact := a.Impact(orderSizeUSD, poolLiquidityUSD)

	if urgency == domain.UrgencyHigh {
		return domain.AlgorithmRecommendation{
			Algorithm:             domain.AlgorithmMarket,
			Reason:                "high urgency overrides impact-based selection",
			EstimatedDurationMins: 0,
			SuggestedIntervals:    1,
			EstimatedSlippageBps:  impact * 100,
			Confidence:            0.9,
		}
	}

	if impact <= MarketImpactThreshold {
		return domain.AlgorithmRecommendation{
			Algorithm:             domain.AlgorithmMarket,
			Reason:                fmt.Sprintf("impact %.4f%% of pool is negligible", impact*100),
			EstimatedDurationMins: 0,
			SuggestedIntervals:    1,
			EstimatedSlippageBps:  impact * 100,
			Confidence:            0.95,
		}
	}

	if impact > IcebergImpactThreshold {
		durationMult := impact / IcebergImpactThreshold
		if durationMult > icebergMaxDurationMult {
			durationMult = icebergMaxDurationMult
		}
		intervals := int(impact / MarketImpactThreshold)
		if intervals < 10 {
			intervals = 10
		}
		return domain.AlgorithmRecommendation{
			Algorithm:             domain.AlgorithmIceberg,
			Reason:                fmt.Sprintf("impact %.2f%% of pool requires hidden execution", impact*100),
			EstimatedDurationMins: icebergBaseDurationMins * durationMult,
			SuggestedIntervals:    intervals,
			EstimatedSlippageBps:  impact * 100,
			Confidence:            0.8,
		}
	}

	if urgency == domain.UrgencyLow {
		intervals := int(impact / MarketImpactThreshold * 10)
		if intervals < 5 {
			intervals = 5
		}
		return domain.AlgorithmRecommendation{
			Algorithm:             domain.AlgorithmTWAP,
			Reason:                "moderate impact with low urgency favors time slicing",
			EstimatedDurationMins: twapLowDurationMins,
			SuggestedIntervals:    intervals,
			EstimatedSlippageBps:  impact * 100,
			Confidence:            0.85,
		}
	}

	return domain.AlgorithmRecommendation{
		Algorithm:             domain.AlgorithmTWAP,
		Reason:                "moderate impact with medium urgency favors a short TWAP",
		EstimatedDurationMins: twapMediumDurationMins,
		SuggestedIntervals:    5,
		EstimatedSlippageBps:  impact * 100,
		Confidence:            0.85,
	}
}

// RecommendWithVolume additionally consults volume predictability and
// upgrades mid-impact low-urgency orders to VWAP when the token's
// volume shape is predictable enough. Falls back to Recommend when no
// volume source is configured or the lookup fails.
func (a *Analyzer) RecommendWithVolume(ctx context.Context, mint string, orderSizeUSD, poolLiquidityUSD float64, urgency domain.Urgency, volume24h float64) domain.AlgorithmRecommendation {
	base := a.Recommend(orderSizeUSD, poolLiquidityUSD, urgency, volume24h)
	if a.volumes == nil {
		return base
	}

	impact := a.Impact(orderSizeUSD, poolLiquidityUSD)
	if urgency != domain.UrgencyLow || impact <= MarketImpactThreshold || impact > IcebergImpactThreshold {
		return base
	}

	predictability, err := a.volumes.VolumePredictability(ctx, mint)
	if err != nil {
		a.logger.Printf("volume predictability lookup failed for %s: %v", mint, err)
		return base
	}
	if predictability < minVWAPPredictability {
		return base
	}

	return domain.AlgorithmRecommendation{
		Algorithm:             domain.AlgorithmVWAP,
		Reason:                fmt.Sprintf("volume predictability %.2f supports volume weighting", predictability),
		EstimatedDurationMins: vwapDurationMins,
		SuggestedIntervals:    vwapIntervals,
		EstimatedSlippageBps:  impact * 100,
		Confidence:            predictability,
	}
}
