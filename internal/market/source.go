// Package market supplies pool depth and volume figures for tokens,
// over HTTP for point lookups and WebSocket for streamed updates.
package market

import "context"

// DataSource is the read-side market data contract the engine
// consumes. Implementations must be safe for concurrent use.
type DataSource interface {
	// PoolLiquidity returns the token's deepest pool liquidity in USD.
	PoolLiquidity(ctx context.Context, mint string) (float64, error)

	// Volume24h returns the token's trailing 24h volume in USD.
	Volume24h(ctx context.Context, mint string) (float64, error)

	// VolumePredictability scores how regular the token's volume shape
	// is, in [0,1]. Higher means volume-weighted slicing is viable.
	VolumePredictability(ctx context.Context, mint string) (float64, error)
}
