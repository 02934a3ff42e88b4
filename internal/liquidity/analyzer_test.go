package liquidity

import (
	"context"
	"errors"
	"testing"

	"solana-exec-engine/internal/domain"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

// fixedVolumeSource returns one predictability score for every mint.
type fixedVolumeSource struct {
	score float64
	err   error
}

func (s *fixedVolumeSource) VolumePredictability(context.Context, string) (float64, error) {
	return s.score, s.err
}

func TestImpact(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	tests := []struct {
		name string
		size float64
		pool float64
		want float64
	}{
		{"typical", 1_000, 1_000_000, 0.001},
		{"whole pool", 500, 500, 1.0},
		{"zero pool", 100, 0, 1.0},
		{"negative pool", 100, -5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Impact(tt.size, tt.pool); got != tt.want {
				t.Errorf("Impact(%v, %v) = %v, want %v", tt.size, tt.pool, got, tt.want)
			}
		})
	}
}

func TestRecommendAlgorithmSelection(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	tests := []struct {
		name    string
		size    float64
		pool    float64
		urgency domain.Urgency
		want    string
	}{
		{"high urgency always market", 50_000, 100_000, domain.UrgencyHigh, domain.AlgorithmMarket},
		{"negligible impact is market", 10, 1_000_000, domain.UrgencyLow, domain.AlgorithmMarket},
		{"half the pool is iceberg", 50_000, 100_000, domain.UrgencyLow, domain.AlgorithmIceberg},
		{"moderate impact low urgency is twap", 500, 100_000, domain.UrgencyLow, domain.AlgorithmTWAP},
		{"moderate impact medium urgency is twap", 500, 100_000, domain.UrgencyMedium, domain.AlgorithmTWAP},
		{"empty pool is iceberg", 100, 0, domain.UrgencyLow, domain.AlgorithmIceberg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.Recommend(tt.size, tt.pool, tt.urgency, 0)
			if rec.Algorithm != tt.want {
				t.Errorf("Algorithm = %s, want %s", rec.Algorithm, tt.want)
			}
		})
	}
}

func TestRecommendHighUrgency(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	rec := a.Recommend(50_000, 100_000, domain.UrgencyHigh, 0)
	if rec.Algorithm != domain.AlgorithmMarket {
		t.Fatalf("Algorithm = %s, want %s", rec.Algorithm, domain.AlgorithmMarket)
	}
	if rec.EstimatedDurationMins != 0 {
		t.Errorf("EstimatedDurationMins = %v, want 0", rec.EstimatedDurationMins)
	}
	if rec.SuggestedIntervals != 1 {
		t.Errorf("SuggestedIntervals = %d, want 1", rec.SuggestedIntervals)
	}
}

func TestRecommendIcebergDurationCap(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	// Impact 0.5 would multiply duration 50x; it caps at 4x.
	rec := a.Recommend(50_000, 100_000, domain.UrgencyLow, 0)
	if rec.Algorithm != domain.AlgorithmIceberg {
		t.Fatalf("Algorithm = %s, want %s", rec.Algorithm, domain.AlgorithmIceberg)
	}
	if rec.EstimatedDurationMins != 480 {
		t.Errorf("EstimatedDurationMins = %v, want 480", rec.EstimatedDurationMins)
	}
	if rec.SuggestedIntervals < 450 {
		t.Errorf("SuggestedIntervals = %d, want roughly 500", rec.SuggestedIntervals)
	}
}

func TestRecommendIcebergIntervalFloor(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	// Impact just over the iceberg threshold lands on the interval
	// floor and barely stretches the base duration.
	rec := a.Recommend(1_050, 100_000, domain.UrgencyMedium, 0)
	if rec.Algorithm != domain.AlgorithmIceberg {
		t.Fatalf("Algorithm = %s, want %s", rec.Algorithm, domain.AlgorithmIceberg)
	}
	if rec.SuggestedIntervals != 10 {
		t.Errorf("SuggestedIntervals = %d, want 10", rec.SuggestedIntervals)
	}
	if rec.EstimatedDurationMins < 120 || rec.EstimatedDurationMins > 480 {
		t.Errorf("EstimatedDurationMins = %v, want within [120, 480]", rec.EstimatedDurationMins)
	}
}

func TestRecommendTWAPDurations(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	low := a.Recommend(500, 100_000, domain.UrgencyLow, 0)
	if low.EstimatedDurationMins != 30 {
		t.Errorf("low urgency EstimatedDurationMins = %v, want 30", low.EstimatedDurationMins)
	}
	if low.SuggestedIntervals < 10 {
		t.Errorf("low urgency SuggestedIntervals = %d, want at least 10", low.SuggestedIntervals)
	}

	medium := a.Recommend(500, 100_000, domain.UrgencyMedium, 0)
	if medium.EstimatedDurationMins != 15 {
		t.Errorf("medium urgency EstimatedDurationMins = %v, want 15", medium.EstimatedDurationMins)
	}
	if medium.SuggestedIntervals != 5 {
		t.Errorf("medium urgency SuggestedIntervals = %d, want 5", medium.SuggestedIntervals)
	}
}

func TestRecommendWithVolumeUpgradesToVWAP(t *testing.T) {
	a := NewAnalyzer(&fixedVolumeSource{score: 0.8}, nil)

	rec := a.RecommendWithVolume(context.Background(), testMint, 500, 100_000, domain.UrgencyLow, 0)
	if rec.Algorithm != domain.AlgorithmVWAP {
		t.Fatalf("Algorithm = %s, want %s", rec.Algorithm, domain.AlgorithmVWAP)
	}
	if rec.EstimatedDurationMins != 60 {
		t.Errorf("EstimatedDurationMins = %v, want 60", rec.EstimatedDurationMins)
	}
	if rec.SuggestedIntervals != 12 {
		t.Errorf("SuggestedIntervals = %d, want 12", rec.SuggestedIntervals)
	}
	if rec.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", rec.Confidence)
	}
}

func TestRecommendWithVolumeFallsBack(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		source  VolumeSource
		size    float64
		pool    float64
		urgency domain.Urgency
		want    string
	}{
		{
			name: "no source",
			size: 500, pool: 100_000, urgency: domain.UrgencyLow,
			want: domain.AlgorithmTWAP,
		},
		{
			name:   "low predictability",
			source: &fixedVolumeSource{score: 0.3},
			size:   500, pool: 100_000, urgency: domain.UrgencyLow,
			want: domain.AlgorithmTWAP,
		},
		{
			name:   "lookup error",
			source: &fixedVolumeSource{err: errors.New("feed down")},
			size:   500, pool: 100_000, urgency: domain.UrgencyLow,
			want: domain.AlgorithmTWAP,
		},
		{
			name:   "medium urgency never upgrades",
			source: &fixedVolumeSource{score: 0.9},
			size:   500, pool: 100_000, urgency: domain.UrgencyMedium,
			want: domain.AlgorithmTWAP,
		},
		{
			name:   "iceberg territory never upgrades",
			source: &fixedVolumeSource{score: 0.9},
			size:   50_000, pool: 100_000, urgency: domain.UrgencyLow,
			want: domain.AlgorithmIceberg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalyzer(tt.source, nil)
			rec := a.RecommendWithVolume(ctx, testMint, tt.size, tt.pool, tt.urgency, 0)
			if rec.Algorithm != tt.want {
				t.Errorf("Algorithm = %s, want %s", rec.Algorithm, tt.want)
			}
		})
	}
}
