package domain

import "time"

// ChunkStatus tracks the lifecycle of a single chunk.
// Transitions are monotonic: PENDING → EXECUTING → {COMPLETED, FAILED}.
// A chunk skipped by pause or cancellation never leaves PENDING.
type ChunkStatus string

// Chunk status constants.
const (
	ChunkPending   ChunkStatus = "PENDING"
	ChunkExecuting ChunkStatus = "EXECUTING"
	ChunkCompleted ChunkStatus = "COMPLETED"
	ChunkFailed    ChunkStatus = "FAILED"
)

// ExecutionChunk is one scheduled sub-order within a larger execution
// schedule. Created at schedule-build time; mutated only by the runner
// of the execution it belongs to.
type ExecutionChunk struct {
	Index         int         // dense 0..N-1 within the schedule
	SizeUSD       float64     // planned size in USD
	ExecuteAt     time.Time   // planned wall-clock execution time
	Status        ChunkStatus // PENDING | EXECUTING | COMPLETED | FAILED
	ActualSizeUSD float64     // filled size, set on completion
	Signature     string      // transaction signature, set on completion
	Error         string      // failure detail, set on failure
}

// Terminal reports whether the chunk reached a final state.
// Terminal chunks are never touched again.
func (c *ExecutionChunk) Terminal() bool {
	return c.Status == ChunkCompleted || c.Status == ChunkFailed
}
