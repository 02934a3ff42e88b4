// Package domain contains the pure value types shared by the execution
// engine: orders, chunks, schedules, results and recommendations.
package domain

import (
	"errors"
	"fmt"
)

// Side indicates whether the order buys or sells the token.
type Side string

// Order side constants.
const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Urgency expresses the caller's tradeoff between execution speed and
// price impact.
type Urgency string

// Urgency constants.
const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// DefaultMaxSlippageBps is the default slippage tolerance (1%).
const DefaultMaxSlippageBps = 100

// Validation errors. These indicate programmer errors and fail fast at
// construction time; runtime failures are reported on ExecutionResult.
var (
	ErrEmptyMint      = errors.New("order mint is empty")
	ErrInvalidSide    = errors.New("invalid order side")
	ErrInvalidUrgency = errors.New("invalid order urgency")
	ErrInvalidSize    = errors.New("order size must be positive")
)

// Order is a trade intent: swap SizeUSD worth of value into or out of
// the token identified by Mint. Immutable once created.
type Order struct {
	Mint           string  // token mint address
	Side           Side    // BUY | SELL
	SizeUSD        float64 // notional size in USD, > 0
	Urgency        Urgency // LOW | MEDIUM | HIGH
	MaxSlippageBps int     // slippage tolerance in basis points
}

// NewOrder creates an order with medium urgency and the default
// slippage tolerance.
func NewOrder(mint string, side Side, sizeUSD float64) Order {
	return Order{
		Mint:           mint,
		Side:           side,
		SizeUSD:        sizeUSD,
		Urgency:        UrgencyMedium,
		MaxSlippageBps: DefaultMaxSlippageBps,
	}
}

// Validate checks enum fields and the order size.
func (o Order) Validate() error {
	if o.Mint == "" {
		return ErrEmptyMint
	}
	switch o.Side {
	case SideBuy, SideSell:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSide, o.Side)
	}
	switch o.Urgency {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidUrgency, o.Urgency)
	}
	if o.SizeUSD <= 0 {
		return fmt.Errorf("%w: %.2f", ErrInvalidSize, o.SizeUSD)
	}
	return nil
}
