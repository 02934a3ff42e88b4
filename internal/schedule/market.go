package schedule

import (
	"time"

	"solana-exec-engine/internal/domain"
)

// MarketSchedule wraps the full order in a single chunk executing
// immediately, so market orders flow through the same runner as the
// sliced algorithms.
func MarketSchedule(order domain.Order) *domain.ExecutionSchedule {
	return MarketScheduleAt(order, time.Now().UTC())
}

// MarketScheduleAt builds a single-chunk schedule anchored at start.
func MarketScheduleAt(order domain.Order, start time.Time) *domain.ExecutionSchedule {
	sched := &domain.ExecutionSchedule{
		Order:     order,
		Algorithm: domain.AlgorithmMarket,
		CreatedAt: start,
	}
	if order.SizeUSD <= 0 {
		return sched
	}

	sched.Chunks = []*domain.ExecutionChunk{{
		Index:     0,
		SizeUSD:   order.SizeUSD,
		ExecuteAt: start,
		Status:    domain.ChunkPending,
	}}
	return sched
}
