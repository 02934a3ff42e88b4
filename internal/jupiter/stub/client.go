// Package stub provides a deterministic jupiter.Client for tests.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-exec-engine/internal/jupiter"
)

// Client implements jupiter.Client with scriptable behavior.
// Scripted slices are consumed per call; when exhausted, the last entry
// repeats. Zero value: every quote has zero impact, every swap succeeds.
type Client struct {
	mu sync.Mutex

	// QuoteImpacts scripts PriceImpactPct per GetQuote call.
	QuoteImpacts []float64
	// QuoteErr, when set, fails every GetQuote call.
	QuoteErr error
	// SwapErrors scripts transport-level ExecuteSwap errors ("" = none).
	SwapErrors []error
	// SwapRejections scripts application-level rejections ("" = success).
	SwapRejections []string

	// Call counters.
	QuoteCalls int
	SwapCalls  int

	// QuoteRequests records every request seen, in order.
	QuoteRequests []jupiter.QuoteRequest
}

// NewClient creates a stub client.
func NewClient() *Client {
	return &Client{}
}

func scriptAt[T any](script []T, call int) (T, bool) {
	var zero T
	if len(script) == 0 {
		return zero, false
	}
	if call >= len(script) {
		return script[len(script)-1], true
	}
	return script[call], true
}

// GetQuote returns a quote with the scripted price impact.
func (c *Client) GetQuote(_ context.Context, req jupiter.QuoteRequest) (*jupiter.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := c.QuoteCalls
	c.QuoteCalls++
	c.QuoteRequests = append(c.QuoteRequests, req)

	if c.QuoteErr != nil {
		return nil, c.QuoteErr
	}

	impact, _ := scriptAt(c.QuoteImpacts, call)
	return &jupiter.Quote{
		InputMint:      req.InputMint,
		OutputMint:     req.OutputMint,
		InAmount:       req.Amount,
		OutAmount:      req.Amount,
		PriceImpactPct: impact,
		SlippageBps:    req.SlippageBps,
	}, nil
}

// ExecuteSwap returns the scripted outcome for this call.
func (c *Client) ExecuteSwap(_ context.Context, _ *jupiter.Quote, _ jupiter.Wallet) (*jupiter.SwapResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	call := c.SwapCalls
	c.SwapCalls++

	if err, ok := scriptAt(c.SwapErrors, call); ok && err != nil {
		return nil, err
	}
	if msg, ok := scriptAt(c.SwapRejections, call); ok && msg != "" {
		return &jupiter.SwapResult{Success: false, Error: msg}, nil
	}

	return &jupiter.SwapResult{
		Success:   true,
		Signature: fmt.Sprintf("stub-sig-%d", call+1),
	}, nil
}

// DefaultWalletAddress is the ed25519 generator point, a well-formed
// on-curve key for wallets that never sign anything real.
const DefaultWalletAddress = "6x5SYnLroiN7WYq8NQYU9KHcH4YjpBbwpUfVu3EB7ieH"

// Wallet is a no-op jupiter.Wallet for tests.
type Wallet struct {
	Address string
}

// PublicKey returns the configured address, or DefaultWalletAddress
// when none was set.
func (w *Wallet) PublicKey() string {
	if w.Address == "" {
		return DefaultWalletAddress
	}
	return w.Address
}

// SignAndSend returns a fixed signature without signing anything.
func (w *Wallet) SignAndSend(_ context.Context, _ string) (string, error) {
	return "stub-wallet-sig", nil
}

// Ensure interfaces are implemented
var (
	_ jupiter.Client = (*Client)(nil)
	_ jupiter.Wallet = (*Wallet)(nil)
)
