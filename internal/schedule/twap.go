// Package schedule builds execution schedules: ordered, time-stamped
// chunk sequences that a runner consumes. Builders are stateless and
// deterministic except where a Rand source is explicitly injected.
package schedule

import (
	"time"

	"solana-exec-engine/internal/domain"
)

// TWAP sizing policy.
const (
	twapMinChunks     = 3
	twapChunkInterval = 300 * time.Second // target spacing per chunk
)

// TWAPBuilder splits an order into equal chunks spread evenly across a
// time window. Sizing is deterministic; no randomization.
type TWAPBuilder struct{}

// NewTWAPBuilder creates a TWAP schedule builder.
func NewTWAPBuilder() *TWAPBuilder {
	return &TWAPBuilder{}
}

// CreateSchedule builds a TWAP schedule starting now.
func (b *TWAPBuilder) CreateSchedule(order domain.Order, duration time.Duration) *domain.ExecutionSchedule {
	return b.CreateScheduleAt(order, duration, time.Now().UTC())
}

// CreateScheduleAt builds a TWAP schedule anchored at start. The first
// chunk executes at start; chunks are evenly spaced across duration.
func (b *TWAPBuilder) CreateScheduleAt(order domain.Order, duration time.Duration, start time.Time) *domain.ExecutionSchedule {
	sched := &domain.ExecutionSchedule{
		Order:     order,
		Algorithm: domain.AlgorithmTWAP,
		CreatedAt: start,
	}
	if order.SizeUSD <= 0 {
		return sched
	}

	numOrders := int(duration / twapChunkInterval)
	if numOrders < twapMinChunks {
		numOrders = twapMinChunks
	}

	chunkSize := order.SizeUSD / float64(numOrders)
	interval := duration / time.Duration(numOrders)

	var allocated float64
	for i := 0; i < numOrders; i++ {
		size := chunkSize
		if i == numOrders-1 {
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
