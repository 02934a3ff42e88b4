package schedule

import (
	"math"
	"time"

	"solana-exec-engine/internal/domain"
)

// IcebergConfig controls iceberg schedule construction.
type IcebergConfig struct {
	// VisiblePct caps a single chunk as a fraction of pool liquidity.
	VisiblePct float64
	// MaxChunkPct sizes chunks as a fraction of pool liquidity.
	MaxChunkPct float64
	// BaseDelay is the nominal gap between consecutive chunks.
	BaseDelay time.Duration
	// RandomizeSizes varies chunk sizes ±20% to avoid detection.
	RandomizeSizes bool
	// RandomizeDelays varies delays uniformly in [0.75, 1.25] of base.
	RandomizeDelays bool
}

// DefaultIcebergConfig returns the standard iceberg parameters.
func DefaultIcebergConfig() IcebergConfig {
	return IcebergConfig{
		VisiblePct:      0.10,
		MaxChunkPct:     0.01,
		BaseDelay:       60 * time.Second,
		RandomizeSizes:  true,
		RandomizeDelays: true,
	}
}

// minChunkUSD is the floor for a randomized chunk draw.
const minChunkUSD = 1.0

// IcebergBuilder hides an order's true size behind a sequence of small
// randomized chunks sized against pool liquidity.
type IcebergBuilder struct {
	cfg  IcebergConfig
	rand Rand
}

// NewIcebergBuilder creates an iceberg schedule builder. A nil rand
// uses the process-wide source.
func NewIcebergBuilder(cfg IcebergConfig, rand Rand) *IcebergBuilder {
	if rand == nil {
		rand = SystemRand
	}
	return &IcebergBuilder{cfg: cfg, rand: rand}
}

// NumChunks returns the planned chunk count before size randomization.
func (b *IcebergBuilder) NumChunks(orderSizeUSD, poolLiquidityUSD float64) int {
	maxChunkUSD := poolLiquidityUSD * b.cfg.MaxChunkPct
	if maxChunkUSD <= 0 {
		return 0
	}
	n := int(orderSizeUSD/maxChunkUSD) + 1
	if n < 1 {
		n = 1
	}
	return n
}

// CreateSchedule builds an iceberg schedule starting now.
func (b *IcebergBuilder) CreateSchedule(order domain.Order, poolLiquidityUSD float64) *domain.ExecutionSchedule {
	return b.CreateScheduleAt(order, poolLiquidityUSD, time.Now().UTC())
}

// CreateScheduleAt builds an iceberg schedule anchored at start.
// Non-positive order size or pool liquidity yields an empty schedule.
func (b *IcebergBuilder) CreateScheduleAt(order domain.Order, poolLiquidityUSD float64, start time.Time) *domain.ExecutionSchedule {
	sched := &domain.ExecutionSchedule{
		Order:     order,
		Algorithm: domain.AlgorithmIceberg,
		CreatedAt: start,
	}
	if order.SizeUSD <= 0 || poolLiquidityUSD <= 0 {
		return sched
	}

	numChunks := b.NumChunks(order.SizeUSD, poolLiquidityUSD)
	baseChunkSize := order.SizeUSD / float64(numChunks)
	visibleUSD := poolLiquidityUSD * b.cfg.VisiblePct

	remaining := order.SizeUSD
	executeAt := start

	for i := 0; i < numChunks; i++ {
		var size float64
		switch {
		case i == numChunks-1:
			// Last chunk always takes the exact remainder.
			size = remaining
		case b.cfg.RandomizeSizes:
			// ±20% around the base size.
			size = baseChunkSize * (0.8 + 0.4*b.rand.Float64())
			size = clampChunk(size, remaining)
		default:
			size = math.Min(baseChunkSize, remaining)
		}
		if i < numChunks-1 && b.cfg.VisiblePct > 0 && size > visibleUSD {
			size = visibleUSD
		}
		remaining -= size

		if i > 0 {
			delay := b.cfg.BaseDelay
			if b.cfg.RandomizeDelays {
				delay = time.Duration(float64(delay) * (0.75 + 0.5*b.rand.Float64()))
			}
			executeAt = executeAt.Add(delay)
		}

		sched.Chunks = append(sched.Chunks, &domain.ExecutionChunk{
			Index:     i,
			SizeUSD:   size,
			ExecuteAt: executeAt,
			Status:    domain.ChunkPending,
		})
	}

	return sched
}

// clampChunk bounds a randomized draw to [minChunkUSD, remaining].
func clampChunk(size, remaining float64) float64 {
	if size > remaining {
		size = remaining
	}
	if size < minChunkUSD {
		size = math.Min(minChunkUSD, remaining)
	}
	return size
}
