package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-exec-engine/internal/domain"
	"solana-exec-engine/internal/execution"
	"solana-exec-engine/internal/jupiter"
	jupstub "solana-exec-engine/internal/jupiter/stub"
	"solana-exec-engine/internal/liquidity"
	"solana-exec-engine/internal/market"
	"solana-exec-engine/internal/observability"
	"solana-exec-engine/internal/schedule"
)

func main() {
	mode := flag.String("mode", "plan", "Mode: plan (print recommendation and schedule) or run (execute)")
	mint := flag.String("mint", "", "Token mint address (base58)")
	side := flag.String("side", "BUY", "Order side: BUY or SELL")
	sizeUSD := flag.Float64("size-usd", 0, "Order size in USD")
	urgency := flag.String("urgency", "MEDIUM", "Order urgency: LOW, MEDIUM, or HIGH")
	maxSlippageBps := flag.Int("max-slippage-bps", domain.DefaultMaxSlippageBps, "Per-swap slippage tolerance in bps")
	poolLiquidity := flag.Float64("pool-liquidity", 0, "Pool liquidity in USD (0 = fetch from --data-url)")
	algorithm := flag.String("algorithm", "", "Force algorithm: MARKET, TWAP, VWAP, or ICEBERG (empty = auto)")
	impact := flag.Float64("impact", 0, "Simulated price impact percent per quote (run mode)")
	maxSlippagePct := flag.Float64("max-slippage-pct", execution.DefaultMaxSlippagePct, "Price-impact circuit breaker in percent")
	dataURL := flag.String("data-url", "", "Market data REST base URL")
	wsURL := flag.String("ws-url", "", "Liquidity feed WebSocket URL (optional)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	timeout := flag.Duration("timeout", 0, "Overall deadline for the run (0 = none)")

	flag.Parse()

	logger := log.New(os.Stdout, "[exec] ", log.LstdFlags)

	order := domain.Order{
		Mint:           *mint,
		Side:           domain.Side(strings.ToUpper(*side)),
		SizeUSD:        *sizeUSD,
		Urgency:        domain.Urgency(strings.ToUpper(*urgency)),
		MaxSlippageBps: *maxSlippageBps,
	}
	if err := execution.ValidateOrder(order); err != nil {
		logger.Fatalf("Invalid order: %v", err)
	}

	metrics := startMetrics(*metricsAddr, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if *timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	// First signal cancels the run; chunks already in flight complete.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling run...", sig)
		cancel()
		sig = <-sigCh
		logger.Printf("Received second signal %v, forcing exit", sig)
		os.Exit(1)
	}()

	var data market.DataSource
	if *dataURL != "" {
		data = market.NewHTTPSource(*dataURL)
	}

	pool, err := resolvePoolLiquidity(ctx, logger, order.Mint, *poolLiquidity, data, *wsURL)
	if err != nil {
		logger.Fatalf("Error: %v", err)
	}
	logger.Printf("Pool liquidity for %s: $%.2f", order.Mint, pool)

	switch *mode {
	case "plan":
		err = runPlan(ctx, logger, order, pool, *algorithm, data)
	case "run":
		err = runExecute(ctx, logger, order, pool, *algorithm, *impact, *maxSlippagePct, data, metrics)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}
}

// startMetrics serves /metrics when addr is set and returns the sink.
func startMetrics(addr string, logger *log.Logger) *observability.Metrics {
	if addr == "" {
		return nil
	}

	metrics := observability.NewMetrics("")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		logger.Printf("Starting metrics server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()
	return metrics
}

// resolvePoolLiquidity picks the pool figure from the flag, the live
// feed, or the REST source, in that order.
func resolvePoolLiquidity(ctx context.Context, logger *log.Logger, mint string, flagValue float64, data market.DataSource, wsURL string) (float64, error) {
	if flagValue > 0 {
		return flagValue, nil
	}

	if wsURL != "" {
		watcher, err := market.NewLiquidityWatcher(ctx, wsURL, mint, nil)
		if err != nil {
			return 0, fmt.Errorf("connect liquidity feed: %w", err)
		}
		defer watcher.Close()

		// Give the feed a moment to deliver the first update.
		deadline := time.After(5 * time.Second)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-deadline:
				logger.Println("No liquidity update from feed, falling back to REST")
				return restPoolLiquidity(ctx, mint, data)
			case <-ticker.C:
				if liq, at, ok := watcher.Latest(); ok {
					logger.Printf("Liquidity feed update at %s", at.Format(time.RFC3339))
					return liq, nil
				}
			}
		}
	}

	return restPoolLiquidity(ctx, mint, data)
}

func restPoolLiquidity(ctx context.Context, mint string, data market.DataSource) (float64, error) {
	if data == nil {
		return 0, fmt.Errorf("--pool-liquidity or --data-url is required")
	}
	return data.PoolLiquidity(ctx, mint)
}

// runPlan prints the recommendation and the schedule it implies,
// without executing anything.
func runPlan(ctx context.Context, logger *log.Logger, order domain.Order, pool float64, forced string, data market.DataSource) error {
	var volumes liquidity.VolumeSource
	if data != nil {
		volumes = data
	}
	analyzer := liquidity.NewAnalyzer(volumes, logger)

	rec := analyzer.RecommendWithVolume(ctx, order.Mint, order.SizeUSD, pool, order.Urgency, 0)
	algo := rec.Algorithm
	if forced != "" {
		algo = strings.ToUpper(forced)
	}

	fmt.Printf("Order:      %s %s $%.2f urgency=%s\n", order.Side, order.Mint, order.SizeUSD, order.Urgency)
	fmt.Printf("Impact:     %.4f%% of pool\n", analyzer.Impact(order.SizeUSD, pool)*100)
	fmt.Printf("Algorithm:  %s (%s)\n", algo, rec.Reason)
	fmt.Printf("Confidence: %.2f, est. slippage %.1f bps\n", rec.Confidence, rec.EstimatedSlippageBps)
	fmt.Printf("Priority fee: %d microlamports/CU\n", execution.PriorityFee(order))

	sched := buildSchedule(order, pool, algo, time.Duration(rec.EstimatedDurationMins*float64(time.Minute)))
	if sched == nil {
		return fmt.Errorf("unknown algorithm: %s", algo)
	}

	fmt.Printf("\nSchedule (%d chunks over %s):\n", len(sched.Chunks), sched.Duration().Round(time.Second))
	for _, c := range sched.Chunks {
		fmt.Printf("  #%-3d $%10.2f at %s\n", c.Index, c.SizeUSD, c.ExecuteAt.Format(time.RFC3339))
	}
	return nil
}

func buildSchedule(order domain.Order, pool float64, algo string, duration time.Duration) *domain.ExecutionSchedule {
	switch algo {
	case domain.AlgorithmMarket:
		return schedule.MarketSchedule(order)
	case domain.AlgorithmTWAP:
		if duration <= 0 {
			duration = 30 * time.Minute
		}
		return schedule.NewTWAPBuilder().CreateSchedule(order, duration)
	case domain.AlgorithmVWAP:
		if duration <= 0 {
			duration = 60 * time.Minute
		}
		return schedule.NewVWAPBuilder().CreateSchedule(order, duration)
	case domain.AlgorithmIceberg:
		return schedule.NewIcebergBuilder(schedule.DefaultIcebergConfig(), nil).CreateSchedule(order, pool)
	default:
		return nil
	}
}

// runExecute runs the order through the engine against a simulated
// swap venue. Quotes carry the impact given by --impact and every
// accepted swap succeeds; wiring a signing wallet is the embedder's
// job.
func runExecute(ctx context.Context, logger *log.Logger, order domain.Order, pool float64, forced string, impact, maxSlippagePct float64, data market.DataSource, metrics *observability.Metrics) error {
	swap := jupstub.NewClient()
	swap.QuoteImpacts = []float64{impact}
	var wallet jupiter.Wallet = &jupstub.Wallet{}

	engine := execution.New(execution.Options{
		Swap:           swap,
		Wallet:         wallet,
		Data:           data,
		MaxSlippagePct: maxSlippagePct,
		Logger:         logger,
		Metrics:        metrics,
	})

	var result *domain.ExecutionResult
	var err error
	if forced != "" {
		result, err = engine.ExecuteWithAlgorithm(ctx, order, pool, strings.ToUpper(forced))
	} else {
		result, err = engine.Execute(ctx, order, pool)
	}
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func printResult(r *domain.ExecutionResult) {
	fmt.Printf("\nAlgorithm:  %s\n", r.Algorithm)
	fmt.Printf("Success:    %v\n", r.Success)
	fmt.Printf("Executed:   $%.2f of $%.2f (%.1f%% fill)\n", r.ExecutedSizeUSD, r.TotalSizeUSD, r.FillRate()*100)
	fmt.Printf("Chunks:     %d/%d completed, %d failed\n", r.ChunksExecuted, r.ChunksTotal, r.ChunksFailed)
	fmt.Printf("Duration:   %s\n", r.Duration().Round(time.Millisecond))
	if r.AvgPrice > 0 {
		fmt.Printf("Avg price:  %.6f\n", r.AvgPrice)
	}
	if r.PausedReason != "" {
		fmt.Printf("Paused:     %s\n", r.PausedReason)
	}
	if r.Error != "" {
		fmt.Printf("Error:      %s\n", r.Error)
	}
	for _, w := range r.Warnings {
		fmt.Printf("Warning:    %s\n", w)
	}
}
