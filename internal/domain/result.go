package domain

import "time"

// PauseReasonSlippage marks a run stopped by the slippage circuit
// breaker. A pause is a deliberate stop, not an error.
const PauseReasonSlippage = "slippage_exceeded"

// ExecutionResult is the terminal, read-only report of one execution
// run. It is constructed once at the end of a run and never re-entered;
// journaling or analytics on it are the caller's responsibility.
type ExecutionResult struct {
	Success         bool    // at least one chunk completed
	Algorithm       string  // algorithm that produced the run
	TotalSizeUSD    float64 // planned size
	ExecutedSizeUSD float64 // filled size
	AvgPrice        float64 // mean execution price over completed chunks
	ChunksExecuted  int
	ChunksTotal     int
	ChunksFailed    int
	PausedReason    string // set when the circuit breaker stopped the run
	Error           string // populated when no chunk could be attempted
	Warnings        []string
	StartTime       time.Time
	EndTime         time.Time
	Chunks          []*ExecutionChunk // chunks actually attempted, in order
}

// FillRate returns the executed fraction of the planned size.
func (r *ExecutionResult) FillRate() float64 {
	if r.TotalSizeUSD <= 0 {
		return 0
	}
	return r.ExecutedSizeUSD / r.TotalSizeUSD
}

// Duration returns the wall-clock span of the run.
func (r *ExecutionResult) Duration() time.Duration {
	if r.StartTime.IsZero() || r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
