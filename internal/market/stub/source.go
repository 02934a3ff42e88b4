// Package stub provides a canned market data source for tests and dry
// runs.
package stub

import (
	"context"
	"sync"

	"solana-exec-engine/internal/market"
)

// Source serves fixed per-mint figures. Zero value is usable and
// returns zeros for unknown mints.
type Source struct {
	mu sync.Mutex

	// Liquidity maps mint to pool liquidity in USD.
	Liquidity map[string]float64

	// Volume maps mint to trailing 24h volume in USD.
	Volume map[string]float64

	// Predictability maps mint to a volume predictability score.
	Predictability map[string]float64

	// Err, when set, is returned from every lookup.
	Err error

	// LiquidityCalls counts PoolLiquidity invocations.
	LiquidityCalls int

	// VolumeCalls counts Volume24h invocations.
	VolumeCalls int
}

// PoolLiquidity returns the canned liquidity for mint.
func (s *Source) PoolLiquidity(_ context.Context, mint string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LiquidityCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Liquidity[mint], nil
}

// Volume24h returns the canned 24h volume for mint.
func (s *Source) Volume24h(_ context.Context, mint string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.VolumeCalls++
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Volume[mint], nil
}

// VolumePredictability returns the canned score for mint.
func (s *Source) VolumePredictability(_ context.Context, mint string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return 0, s.Err
	}
	return s.Predictability[mint], nil
}

var _ market.DataSource = (*Source)(nil)
