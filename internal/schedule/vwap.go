package schedule

import (
	"math"
	"time"

	"solana-exec-engine/internal/domain"
)

// VWAP sizing policy.
const (
	vwapMinChunks     = 5
	vwapChunkInterval = 180 * time.Second // target spacing per chunk
)

// VWAPBuilder splits an order into chunks weighted to resemble typical
// intraday volume shape: larger slices mid-window, smaller at the
// edges. With no measured volume pattern it uses a sine-weighted curve.
type VWAPBuilder struct{}

// NewVWAPBuilder creates a VWAP schedule builder.
func NewVWAPBuilder() *VWAPBuilder {
	return &VWAPBuilder{}
}

// CreateSchedule builds a sine-weighted VWAP schedule starting now.
func (b *VWAPBuilder) CreateSchedule(order domain.Order, duration time.Duration) *domain.ExecutionSchedule {
	return b.CreateScheduleAt(order, duration, time.Now().UTC())
}

// CreateScheduleAt builds a sine-weighted VWAP schedule anchored at
// start. Weights follow 1 + 0.5*sin(π*i/(n-1)), normalized so chunk
// sizes sum to the order size.
func (b *VWAPBuilder) CreateScheduleAt(order domain.Order, duration time.Duration, start time.Time) *domain.ExecutionSchedule {
	numOrders := int(duration / vwapChunkInterval)
	if numOrders < vwapMinChunks {
		numOrders = vwapMinChunks
	}
	return b.fromWeights(order, sineWeights(numOrders), duration, start)
}

// CreateScheduleFromPattern builds a schedule weighted by a measured
// volume pattern (one weight per interval). An empty or degenerate
// pattern falls back to uniform weighting.
func (b *VWAPBuilder) CreateScheduleFromPattern(order domain.Order, pattern []float64, duration time.Duration, start time.Time) *domain.ExecutionSchedule {
	weights := pattern
	var total float64
	for _, w := range weights {
		total += w
	}
	if len(weights) == 0 || total <= 0 {
		weights = uniformWeights(vwapMinChunks)
	}
	return b.fromWeights(order, weights, duration, start)
}

// fromWeights distributes the order size over evenly spaced chunks.
func (b *VWAPBuilder) fromWeights(order domain.Order, weights []float64, duration time.Duration, start time.Time) *domain.ExecutionSchedule {
	sched := &domain.ExecutionSchedule{
		Order:     order,
		Algorithm: domain.AlgorithmVWAP,
		CreatedAt: start,
	}
	if order.SizeUSD <= 0 || len(weights) == 0 {
		return sched
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}

	n := len(weights)
	interval := duration / time.Duration(n)

	var allocated float64
	for i, w := range weights {
		size := order.SizeUSD * w / totalWeight
		if i == n-1 {
			// Last chunk absorbs the rounding remainder.
			size = order.SizeUSD - allocated
		}
		allocated += size

		sched.Chunks = append(sched.Chunks, &domain.ExecutionChunk{
			Index:     i,
			SizeUSD:   size,
			ExecuteAt: start.Add(time.Duration(i) * interval),
			Status:    domain.ChunkPending,
		})
	}

	return sched
}

// sineWeights approximates intraday volume shape over n intervals.
func sineWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		if n == 1 {
			weights[i] = 1
			continue
		}
		weights[i] = 1 + 0.5*math.Sin(math.Pi*float64(i)/float64(n-1))
	}
	return weights
}

func uniformWeights(n int) []float64 {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return weights
}
