package execution

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"solana-exec-engine/internal/domain"
	"solana-exec-engine/internal/jupiter"
	"solana-exec-engine/internal/liquidity"
	"solana-exec-engine/internal/market"
	"solana-exec-engine/internal/observability"
	"solana-exec-engine/internal/schedule"
	"solana-exec-engine/internal/solana"
)

// Fallback durations for forced-algorithm runs, where no analyzer
// recommendation carries one.
const (
	defaultTWAPDuration = 30 * time.Minute
	defaultVWAPDuration = 60 * time.Minute
)

// basePriorityFeeMicroLamports is the per-compute-unit fee for a
// low-urgency order.
const basePriorityFeeMicroLamports = 10_000

// zeroLiquidityWarning is attached to results computed without a
// usable pool depth figure.
const zeroLiquidityWarning = "pool liquidity is zero or unavailable"

// ErrUnknownAlgorithm rejects forced-algorithm requests for names the
// engine does not implement.
var ErrUnknownAlgorithm = fmt.Errorf("unknown execution algorithm")

// ErrNoDataSource rejects automatic execution when no market data
// source was configured.
var ErrNoDataSource = fmt.Errorf("no market data source configured")

// ErrOffCurveWallet rejects wallets whose public key is not on the
// ed25519 curve. Off-curve addresses are program-derived and cannot
// sign transactions.
var ErrOffCurveWallet = fmt.Errorf("wallet public key is not on the ed25519 curve")

// Options configures an Engine. Swap is required; everything else has
// a usable zero value.
type Options struct {
	// Swap executes quotes and swaps. Required.
	Swap jupiter.Client

	// Wallet signs swap transactions. May be nil for dry runs against
	// a stub client.
	Wallet jupiter.Wallet

	// Data supplies pool liquidity and volume figures. Optional; when
	// nil, Execute must be given liquidity explicitly and the VWAP
	// override never fires.
	Data market.DataSource

	// Rand drives iceberg size and delay randomization. Nil selects
	// the process-wide source.
	Rand schedule.Rand

	// MaxSlippagePct overrides the circuit-breaker threshold.
	// Zero selects DefaultMaxSlippagePct.
	MaxSlippagePct float64

	Logger  *log.Logger
	Metrics *observability.Metrics
}

// Engine ties the liquidity analyzer, schedule builders and runner
// into a single entry point. Safe for concurrent use: each call works
// on its own order, schedule and result.
type Engine struct {
	analyzer *liquidity.Analyzer
	twap     *schedule.TWAPBuilder
	vwap     *schedule.VWAPBuilder
	iceberg  *schedule.IcebergBuilder
	runner   *Runner
	wallet   jupiter.Wallet
	data     market.DataSource
	logger   *log.Logger
	metrics  *observability.Metrics
}

// New creates an execution engine from opts.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	maxSlippage := opts.MaxSlippagePct
	if maxSlippage == 0 {
		maxSlippage = DefaultMaxSlippagePct
	}

	var volumes liquidity.VolumeSource
	if opts.Data != nil {
		volumes = opts.Data
	}

	runnerOpts := []RunnerOption{
		WithMaxSlippagePct(maxSlippage),
		WithLogger(logger),
	}
	if opts.Metrics != nil {
		runnerOpts = append(runnerOpts, WithMetrics(opts.Metrics))
	}

	return &Engine{
		analyzer: liquidity.NewAnalyzer(volumes, logger),
		twap:     schedule.NewTWAPBuilder(),
		vwap:     schedule.NewVWAPBuilder(),
		iceberg:  schedule.NewIcebergBuilder(schedule.DefaultIcebergConfig(), opts.Rand),
		runner:   NewRunner(opts.Swap, opts.Wallet, runnerOpts...),
		wallet:   opts.Wallet,
		data:     opts.Data,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Execute picks an algorithm for the order based on pool depth and
// urgency, builds the schedule and runs it to completion.
//
// poolLiquidityUSD at or below zero is not an error: the analyzer
// treats the pool as fully impacted and the result carries a warning.
func (e *Engine) Execute(ctx context.Context, order domain.Order, poolLiquidityUSD float64) (*domain.ExecutionResult, error) {
	return e.execute(ctx, order, poolLiquidityUSD, 0)
}

func (e *Engine) execute(ctx context.Context, order domain.Order, poolLiquidityUSD, volume24h float64) (*domain.ExecutionResult, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}
	if err := e.checkWallet(); err != nil {
		return nil, err
	}

	rec := e.analyzer.RecommendWithVolume(ctx, order.Mint, order.SizeUSD, poolLiquidityUSD, order.Urgency, volume24h)
	if e.metrics != nil {
		e.metrics.Recommendations.WithLabelValues(rec.Algorithm).Inc()
	}
	e.logger.Printf("order %s %s $%.2f: %s (%s)", order.Side, order.Mint, order.SizeUSD, rec.Algorithm, rec.Reason)

	duration := time.Duration(rec.EstimatedDurationMins * float64(time.Minute))
	result := e.dispatch(ctx, order, poolLiquidityUSD, rec.Algorithm, duration)
	if poolLiquidityUSD <= 0 {
		result.Warnings = append(result.Warnings, zeroLiquidityWarning)
	}
	return result, nil
}

// ExecuteAuto is Execute with the pool depth and 24h volume fetched
// from the configured market data source.
func (e *Engine) ExecuteAuto(ctx context.Context, order domain.Order) (*domain.ExecutionResult, error) {
	if e.data == nil {
		return nil, ErrNoDataSource
	}
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}
	if err := e.checkWallet(); err != nil {
		return nil, err
	}
	pool, err := e.data.PoolLiquidity(ctx, order.Mint)
	if err != nil {
		return nil, fmt.Errorf("fetch pool liquidity for %s: %w", order.Mint, err)
	}
	volume, err := e.data.Volume24h(ctx, order.Mint)
	if err != nil {
		// Volume is advisory; a failed lookup does not block the run.
		e.logger.Printf("24h volume lookup failed for %s: %v", order.Mint, err)
		volume = 0
	}
	return e.execute(ctx, order, pool, volume)
}

// ExecuteWithAlgorithm bypasses the analyzer and runs the named
// algorithm directly. Unknown names are rejected before any schedule
// is built.
func (e *Engine) ExecuteWithAlgorithm(ctx context.Context, order domain.Order, poolLiquidityUSD float64, algorithm string) (*domain.ExecutionResult, error) {
	if err := ValidateOrder(order); err != nil {
		return nil, err
	}
	if err := e.checkWallet(); err != nil {
		return nil, err
	}

	var duration time.Duration
	switch algorithm {
	case domain.AlgorithmMarket, domain.AlgorithmIceberg:
	case domain.AlgorithmTWAP:
		duration = defaultTWAPDuration
	case domain.AlgorithmVWAP:
		duration = defaultVWAPDuration
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}

	e.logger.Printf("order %s %s $%.2f: forced %s", order.Side, order.Mint, order.SizeUSD, algorithm)
	result := e.dispatch(ctx, order, poolLiquidityUSD, algorithm, duration)
	if poolLiquidityUSD <= 0 {
		result.Warnings = append(result.Warnings, zeroLiquidityWarning)
	}
	return result, nil
}

// dispatch builds the schedule for the chosen algorithm and hands it
// to the runner.
func (e *Engine) dispatch(ctx context.Context, order domain.Order, poolLiquidityUSD float64, algorithm string, duration time.Duration) *domain.ExecutionResult {
	var sched *domain.ExecutionSchedule
	switch algorithm {
	case domain.AlgorithmTWAP:
		sched = e.twap.CreateSchedule(order, duration)
	case domain.AlgorithmVWAP:
		sched = e.vwap.CreateSchedule(order, duration)
	case domain.AlgorithmIceberg:
		sched = e.iceberg.CreateSchedule(order, poolLiquidityUSD)
	default:
		sched = schedule.MarketSchedule(order)
	}
	return e.runner.Run(ctx, sched)
}

// PriorityFee suggests a per-compute-unit priority fee in
// micro-lamports, scaled by order urgency.
func PriorityFee(order domain.Order) uint64 {
	switch order.Urgency {
	case domain.UrgencyHigh:
		return basePriorityFeeMicroLamports * 5
	case domain.UrgencyMedium:
		return basePriorityFeeMicroLamports * 2
	default:
		return basePriorityFeeMicroLamports
	}
}

// ValidateOrder enforces the order contract, including mint format.
func ValidateOrder(order domain.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if !solana.IsValidPubkey(order.Mint) {
		return fmt.Errorf("order mint %q is not a valid base58 public key", order.Mint)
	}
	return nil
}

// checkWallet rejects signing wallets with off-curve public keys
// before any schedule is built. A nil wallet is allowed for dry runs.
func (e *Engine) checkWallet() error {
	if e.wallet == nil {
		return nil
	}
	if key := e.wallet.PublicKey(); !solana.IsOnCurve(key) {
		return fmt.Errorf("%w: %q", ErrOffCurveWallet, key)
	}
	return nil
}
