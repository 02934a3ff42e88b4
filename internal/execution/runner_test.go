package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-exec-engine/internal/domain"
	"solana-exec-engine/internal/jupiter/stub"
	"solana-exec-engine/internal/schedule"
)

const testMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

// pastSchedule builds a TWAP schedule whose chunks are all already due,
// so the runner never sleeps.
func pastSchedule(order domain.Order, chunks int) *domain.ExecutionSchedule {
	start := time.Now().UTC().Add(-time.Hour)
	return schedule.NewTWAPBuilder().CreateScheduleAt(order, time.Duration(chunks)*300*time.Second, start)
}

func TestRunEmptySchedule(t *testing.T) {
	swap := stub.NewClient()
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.Order{Mint: testMint, Side: domain.SideBuy, SizeUSD: 0, Urgency: domain.UrgencyLow}
	sched := schedule.MarketSchedule(order)
	require.Empty(t, sched.Chunks)

	result := runner.Run(context.Background(), sched)

	assert.False(t, result.Success)
	assert.Equal(t, "No chunks to execute", result.Error)
	assert.Zero(t, result.ChunksExecuted)
	assert.Zero(t, swap.QuoteCalls, "empty schedule must not touch the network")
	assert.Zero(t, swap.SwapCalls)
}

func TestRunExecutesAllChunks(t *testing.T) {
	swap := stub.NewClient()
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	result := runner.Run(context.Background(), pastSchedule(order, 3))

	require.True(t, result.Success)
	assert.Equal(t, domain.AlgorithmTWAP, result.Algorithm)
	assert.Equal(t, 3, result.ChunksExecuted)
	assert.Equal(t, 3, result.ChunksTotal)
	assert.Zero(t, result.ChunksFailed)
	assert.InDelta(t, 3_000, result.ExecutedSizeUSD, 1e-9)
	assert.Equal(t, 3, swap.QuoteCalls)
	assert.Equal(t, 3, swap.SwapCalls)

	// Stub quotes are 1:1, so the mean price is 1.
	assert.InDelta(t, 1.0, result.AvgPrice, 1e-9)

	require.Len(t, result.Chunks, 3)
	for i, c := range result.Chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, domain.ChunkCompleted, c.Status)
		assert.NotEmpty(t, c.Signature)
		assert.Equal(t, c.SizeUSD, c.ActualSizeUSD)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	swap := stub.NewClient()
	runner := NewRunner(swap, &stub.Wallet{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	sched := pastSchedule(order, 3)
	result := runner.Run(ctx, sched)

	assert.False(t, result.Success)
	assert.Zero(t, result.ChunksExecuted)
	assert.Empty(t, result.Chunks, "cancelled chunks are not attempted")
	assert.Zero(t, swap.QuoteCalls, "cancellation before start must not touch the network")

	for _, c := range sched.Chunks {
		assert.Equal(t, domain.ChunkPending, c.Status)
	}
}

func TestRunCancelledMidRun(t *testing.T) {
	swap := stub.NewClient()
	runner := NewRunner(swap, &stub.Wallet{})

	// First chunk due immediately, the rest far in the future.
	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	sched := schedule.NewTWAPBuilder().CreateScheduleAt(order, time.Hour, time.Now().UTC())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	result := runner.Run(ctx, sched)

	assert.True(t, result.Success, "completed chunks count even when the run is cut short")
	assert.Equal(t, 1, result.ChunksExecuted)
	assert.Empty(t, result.PausedReason)
	assert.Equal(t, 1, swap.QuoteCalls)
	assert.Equal(t, domain.ChunkPending, sched.Chunks[1].Status)
}

func TestRunSlippagePause(t *testing.T) {
	swap := stub.NewClient()
	swap.QuoteImpacts = []float64{0.5, 5.0}
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	sched := pastSchedule(order, 3)
	result := runner.Run(context.Background(), sched)

	assert.True(t, result.Success)
	assert.Equal(t, domain.PauseReasonSlippage, result.PausedReason)
	assert.Equal(t, 1, result.ChunksExecuted)
	assert.Len(t, result.Chunks, 1, "the paused chunk is not attempted")
	assert.Equal(t, 2, swap.QuoteCalls)
	assert.Equal(t, 1, swap.SwapCalls)

	// The breaking chunk stays pending and untouched.
	assert.Equal(t, domain.ChunkPending, sched.Chunks[1].Status)
	assert.Equal(t, domain.ChunkPending, sched.Chunks[2].Status)
}

func TestRunPausesOnFirstChunk(t *testing.T) {
	swap := stub.NewClient()
	swap.QuoteImpacts = []float64{9.9}
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	result := runner.Run(context.Background(), pastSchedule(order, 3))

	assert.False(t, result.Success)
	assert.Equal(t, domain.PauseReasonSlippage, result.PausedReason)
	assert.Zero(t, result.ChunksExecuted)
	assert.Empty(t, result.Chunks)
	assert.Equal(t, 1, swap.QuoteCalls)
	assert.Zero(t, swap.SwapCalls)
}

func TestRunQuoteSideMapping(t *testing.T) {
	const wsol = "So11111111111111111111111111111111111111112"

	swap := stub.NewClient()
	runner := NewRunner(swap, &stub.Wallet{})

	buy := domain.NewOrder(testMint, domain.SideBuy, 100)
	runner.Run(context.Background(), pastSchedule(buy, 3))
	require.NotEmpty(t, swap.QuoteRequests)
	assert.Equal(t, wsol, swap.QuoteRequests[0].InputMint)
	assert.Equal(t, testMint, swap.QuoteRequests[0].OutputMint)
	assert.Equal(t, buy.MaxSlippageBps, swap.QuoteRequests[0].SlippageBps)

	sell := domain.NewOrder(testMint, domain.SideSell, 120)
	sellSched := schedule.MarketScheduleAt(sell, time.Now().UTC().Add(-time.Minute))
	runner.Run(context.Background(), sellSched)
	last := swap.QuoteRequests[len(swap.QuoteRequests)-1]
	assert.Equal(t, testMint, last.InputMint)
	assert.Equal(t, wsol, last.OutputMint)

	// USD notional converts to the 6-decimal atomic unit.
	assert.Equal(t, uint64(120_000_000), last.Amount)
}

func TestRunSlippageThresholdIsExclusive(t *testing.T) {
	swap := stub.NewClient()
	swap.QuoteImpacts = []float64{2.0}
	runner := NewRunner(swap, &stub.Wallet{}, WithMaxSlippagePct(2.0))

	order := domain.NewOrder(testMint, domain.SideBuy, 1_000)
	result := runner.Run(context.Background(), pastSchedule(order, 3))

	assert.Empty(t, result.PausedReason, "impact equal to the threshold must not pause")
	assert.Equal(t, 3, result.ChunksExecuted)
}

func TestRunChunkFailureContinues(t *testing.T) {
	swap := stub.NewClient()
	swap.SwapRejections = []string{"", "Insufficient liquidity", ""}
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.NewOrder(testMint, domain.SideSell, 3_000)
	sched := pastSchedule(order, 3)
	result := runner.Run(context.Background(), sched)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.ChunksExecuted)
	assert.Equal(t, 1, result.ChunksFailed)
	assert.Len(t, result.Chunks, 3)
	assert.Equal(t, domain.ChunkFailed, sched.Chunks[1].Status)
	assert.Equal(t, "Insufficient liquidity", sched.Chunks[1].Error)
	assert.Equal(t, domain.ChunkCompleted, sched.Chunks[2].Status)
}

func TestRunQuoteFailureMarksChunkFailed(t *testing.T) {
	swap := stub.NewClient()
	swap.QuoteErr = errors.New("aggregator unreachable")
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	sched := pastSchedule(order, 3)
	result := runner.Run(context.Background(), sched)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.ChunksFailed)
	assert.Zero(t, swap.SwapCalls, "no swap submitted without a quote")
	assert.Contains(t, result.Error, "aggregator unreachable")

	for _, c := range sched.Chunks {
		assert.Equal(t, domain.ChunkFailed, c.Status)
	}
}

func TestRunTransportSwapError(t *testing.T) {
	swap := stub.NewClient()
	swap.SwapErrors = []error{errors.New("connection reset"), nil, nil}
	runner := NewRunner(swap, &stub.Wallet{})

	order := domain.NewOrder(testMint, domain.SideBuy, 3_000)
	sched := pastSchedule(order, 3)
	result := runner.Run(context.Background(), sched)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.ChunksFailed)
	assert.Equal(t, domain.ChunkFailed, sched.Chunks[0].Status)
	assert.Equal(t, "connection reset", sched.Chunks[0].Error)
}
