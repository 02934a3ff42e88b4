// Package execution walks execution schedules chunk by chunk and
// aggregates the outcome. It owns the slippage circuit breaker and
// cooperative cancellation; schedule construction lives in the
// schedule package.
package execution

import (
	"context"
	"io"
	"log"
	"time"

	"solana-exec-engine/internal/domain"
	"solana-exec-engine/internal/jupiter"
	"solana-exec-engine/internal/observability"
	"solana-exec-engine/internal/solana"
)

// DefaultMaxSlippagePct is the price-impact ceiling (percent) above
// which a run pauses.
const DefaultMaxSlippagePct = 2.0

// usdAtomicUnit converts USD notional to the 6-decimal atomic unit the
// quote API expects.
const usdAtomicUnit = 1_000_000

// errNoChunks is the result error for schedules with nothing to run.
const errNoChunks = "No chunks to execute"

// Runner executes one schedule at a time. It carries no cross-run
// state; per-run state lives on the loop stack, so a Runner is safe to
// reuse across sequential runs and across concurrent runs for
// different orders.
type Runner struct {
	swap           jupiter.Client
	wallet         jupiter.Wallet
	maxSlippagePct float64
	logger         *log.Logger
	metrics        *observability.Metrics
}

// RunnerOption configures Runner.
type RunnerOption func(*Runner)

// WithMaxSlippagePct sets the circuit-breaker threshold in percent.
func WithMaxSlippagePct(pct float64) RunnerOption {
	return func(r *Runner) {
		r.maxSlippagePct = pct
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger *log.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a schedule runner.
func NewRunner(swap jupiter.Client, wallet jupiter.Wallet, opts ...RunnerOption) *Runner {
	r := &Runner{
		swap:           swap,
		wallet:         wallet,
		maxSlippagePct: DefaultMaxSlippagePct,
		logger:         log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the schedule's chunks strictly in index order.
//
// Cancellation is cooperative: the context is checked at the top of
// each iteration and during the wait for a chunk's execution time. An
// in-flight quote or swap call runs to completion before the loop
// re-checks. Every failure mode degrades to fields on the returned
// result; Run never returns an error.
func (r *Runner) Run(ctx context.Context, sched *domain.ExecutionSchedule) *domain.ExecutionResult {
	start := time.Now().UTC()
	result := &domain.ExecutionResult{
		Algorithm:    sched.Algorithm,
		TotalSizeUSD: sched.Order.SizeUSD,
		ChunksTotal:  len(sched.Chunks),
		StartTime:    start,
	}

	if len(sched.Chunks) == 0 {
		result.Error = errNoChunks
		result.EndTime = time.Now().UTC()
		r.observe(result)
		return result
	}

	var totalPrice float64

	for _, chunk := range sched.Chunks {
		if ctx.Err() != nil {
			break
		}
		if err := waitUntil(ctx, chunk.ExecuteAt); err != nil {
			break
		}

		quote, err := r.fetchQuote(ctx, sched.Order, chunk.SizeUSD)
		if err != nil {
			chunk.Status = domain.ChunkFailed
			chunk.Error = err.Error()
			result.ChunksFailed++
			result.Chunks = append(result.Chunks, chunk)
			r.logger.Printf("%s chunk %d: quote failed: %v", sched.Algorithm, chunk.Index, err)
			continue
		}

		if quote.PriceImpactPct > r.maxSlippagePct {
			// Circuit breaker: stop without touching the chunk.
			result.PausedReason = domain.PauseReasonSlippage
			r.logger.Printf("%s run paused at chunk %d: price impact %.2f%% exceeds %.2f%%",
				sched.Algorithm, chunk.Index, quote.PriceImpactPct, r.maxSlippagePct)
			if r.metrics != nil {
				r.metrics.SlippagePauses.Inc()
			}
			break
		}

		chunk.Status = domain.ChunkExecuting
		swapRes, err := r.submitSwap(ctx, quote)
		switch {
		case err != nil:
			chunk.Status = domain.ChunkFailed
			chunk.Error = err.Error()
			result.ChunksFailed++
			r.logger.Printf("%s chunk %d: swap failed: %v", sched.Algorithm, chunk.Index, err)
		case !swapRes.Success:
			chunk.Status = domain.ChunkFailed
			chunk.Error = swapRes.Error
			if chunk.Error == "" {
				chunk.Error = "swap rejected"
			}
			result.ChunksFailed++
			r.logger.Printf("%s chunk %d: swap rejected: %s", sched.Algorithm, chunk.Index, chunk.Error)
		default:
			chunk.Status = domain.ChunkCompleted
			chunk.ActualSizeUSD = chunk.SizeUSD
			chunk.Signature = swapRes.Signature
			result.ExecutedSizeUSD += chunk.SizeUSD
			result.ChunksExecuted++
			totalPrice += quote.Price()
		}
		result.Chunks = append(result.Chunks, chunk)
	}

	result.Success = result.ChunksExecuted > 0
	if result.ChunksExecuted > 0 {
		result.AvgPrice = totalPrice / float64(result.ChunksExecuted)
	}
	if !result.Success && result.Error == "" && result.PausedReason == "" {
		result.Error = firstChunkError(result.Chunks)
	}
	result.EndTime = time.Now().UTC()
	r.observe(result)
	return result
}

// waitUntil blocks until at, or until the context is cancelled.
// The timer firing is the normal path, not an error.
func waitUntil(ctx context.Context, at time.Time) error {
	d := time.Until(at)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fetchQuote requests a fresh quote for the chunk's size.
func (r *Runner) fetchQuote(ctx context.Context, order domain.Order, sizeUSD float64) (*jupiter.Quote, error) {
	started := time.Now()
	quote, err := r.swap.GetQuote(ctx, quoteRequest(order, sizeUSD))
	if r.metrics != nil {
		r.metrics.QuoteLatency.Observe(time.Since(started).Seconds())
	}
	return quote, err
}

// submitSwap submits the quoted swap through the wallet.
func (r *Runner) submitSwap(ctx context.Context, quote *jupiter.Quote) (*jupiter.SwapResult, error) {
	started := time.Now()
	res, err := r.swap.ExecuteSwap(ctx, quote, r.wallet)
	if r.metrics != nil {
		r.metrics.SwapLatency.Observe(time.Since(started).Seconds())
	}
	return res, err
}

// quoteRequest maps the order side onto input/output mints: buys are
// funded from wrapped SOL, sells unwind into it.
func quoteRequest(order domain.Order, sizeUSD float64) jupiter.QuoteRequest {
	inputMint, outputMint := solana.WSOLMint, order.Mint
	if order.Side == domain.SideSell {
		inputMint, outputMint = order.Mint, solana.WSOLMint
	}
	return jupiter.QuoteRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      uint64(sizeUSD * usdAtomicUnit),
		SlippageBps: order.MaxSlippageBps,
	}
}

func firstChunkError(chunks []*domain.ExecutionChunk) string {
	for _, c := range chunks {
		if c.Error != "" {
			return c.Error
		}
	}
	return ""
}

// observe records run-level metrics.
func (r *Runner) observe(result *domain.ExecutionResult) {
	if r.metrics == nil {
		return
	}
	outcome := "failed"
	switch {
	case result.PausedReason != "":
		outcome = "paused"
	case result.Success:
		outcome = "success"
	}
	r.metrics.ExecutionsTotal.WithLabelValues(result.Algorithm, outcome).Inc()
	r.metrics.ExecutedUSD.Add(result.ExecutedSizeUSD)
	r.metrics.ChunksExecuted.Add(float64(result.ChunksExecuted))
	r.metrics.ChunksFailed.Add(float64(result.ChunksFailed))
	r.metrics.RunDuration.WithLabelValues(result.Algorithm).Observe(result.Duration().Seconds())
}
