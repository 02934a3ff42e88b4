package domain

import "time"

// ExecutionSchedule owns an order and its ordered chunks.
// Built once by a schedule builder, consumed once by a runner.
type ExecutionSchedule struct {
	Order     Order             // the order being executed
	Algorithm string            // MARKET | TWAP | VWAP | ICEBERG
	Chunks    []*ExecutionChunk // ordered by Index, ExecuteAt non-decreasing
	CreatedAt time.Time
}

// TotalSize returns the sum of planned chunk sizes in USD.
func (s *ExecutionSchedule) TotalSize() float64 {
	var total float64
	for _, c := range s.Chunks {
		total += c.SizeUSD
	}
	return total
}

// Duration returns the planned span from first to last chunk.
func (s *ExecutionSchedule) Duration() time.Duration {
	if len(s.Chunks) < 2 {
		return 0
	}
	return s.Chunks[len(s.Chunks)-1].ExecuteAt.Sub(s.Chunks[0].ExecuteAt)
}
