// Package jupiter provides the swap/quote client consumed by the
// execution engine, plus the interfaces it is consumed through.
package jupiter

import (
	"context"
	"encoding/json"
)

// QuoteRequest describes a quote lookup for a single swap leg.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // input amount in the mint's smallest unit
	SlippageBps int
}

// Quote is a priced route returned by the aggregator.
type Quote struct {
	InputMint      string
	OutputMint     string
	InAmount       uint64
	OutAmount      uint64
	PriceImpactPct float64 // price impact in percent, e.g. 0.5 = 0.5%
	SlippageBps    int
	Raw            json.RawMessage // full quote response, passed back on swap
}

// Price returns output per input unit, or 0 when undefined.
func (q *Quote) Price() float64 {
	if q.InAmount == 0 {
		return 0
	}
	return float64(q.OutAmount) / float64(q.InAmount)
}

// SwapResult reports the outcome of a submitted swap.
// Success=false with Error set is an application-level rejection;
// transport failures surface as errors from ExecuteSwap instead.
type SwapResult struct {
	Success   bool
	Signature string
	Error     string
}

// Wallet is an opaque signing handle. The engine passes it through to
// the client unmodified.
type Wallet interface {
	// PublicKey returns the wallet address.
	PublicKey() string

	// SignAndSend signs a serialized transaction and submits it,
	// returning the transaction signature.
	SignAndSend(ctx context.Context, txBase64 string) (string, error)
}

// Client is the capability set the execution engine requires from a
// swap venue. Implementations must be stateless and safe for
// concurrent use.
type Client interface {
	// GetQuote prices a swap of the requested amount.
	GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error)

	// ExecuteSwap submits the quoted swap signed by the wallet.
	ExecuteSwap(ctx context.Context, quote *Quote, wallet Wallet) (*SwapResult, error)
}
