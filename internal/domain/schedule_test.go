package domain

import (
	"testing"
	"time"
)

func TestScheduleTotalSizeAndDuration(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sched := &ExecutionSchedule{
		Order:     NewOrder(testMint, SideBuy, 300),
		Algorithm: AlgorithmTWAP,
		Chunks: []*ExecutionChunk{
			{Index: 0, SizeUSD: 100, ExecuteAt: start, Status: ChunkPending},
			{Index: 1, SizeUSD: 100, ExecuteAt: start.Add(5 * time.Minute), Status: ChunkPending},
			{Index: 2, SizeUSD: 100, ExecuteAt: start.Add(10 * time.Minute), Status: ChunkPending},
		},
		CreatedAt: start,
	}

	if got := sched.TotalSize(); got != 300 {
		t.Errorf("TotalSize() = %v, want 300", got)
	}
	if got := sched.Duration(); got != 10*time.Minute {
		t.Errorf("Duration() = %v, want 10m", got)
	}
}

func TestScheduleDurationDegenerate(t *testing.T) {
	empty := &ExecutionSchedule{}
	if got := empty.Duration(); got != 0 {
		t.Errorf("empty Duration() = %v, want 0", got)
	}

	single := &ExecutionSchedule{Chunks: []*ExecutionChunk{{Index: 0, SizeUSD: 10}}}
	if got := single.Duration(); got != 0 {
		t.Errorf("single-chunk Duration() = %v, want 0", got)
	}
}

func TestResultFillRate(t *testing.T) {
	r := &ExecutionResult{TotalSizeUSD: 1000, ExecutedSizeUSD: 250}
	if got := r.FillRate(); got != 0.25 {
		t.Errorf("FillRate() = %v, want 0.25", got)
	}

	zero := &ExecutionResult{}
	if got := zero.FillRate(); got != 0 {
		t.Errorf("zero FillRate() = %v, want 0", got)
	}
}
