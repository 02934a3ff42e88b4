package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

// DefaultHTTPTimeout bounds a single pool lookup.
const DefaultHTTPTimeout = 15 * time.Second

// HTTPSource reads pool stats from a REST endpoint exposing
// GET /v1/pools/{mint}.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// HTTPSourceOption configures HTTPSource.
type HTTPSourceOption func(*HTTPSource)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.httpClient = client
	}
}

// WithTimeout sets the request timeout on the default client.
func WithTimeout(timeout time.Duration) HTTPSourceOption {
	return func(s *HTTPSource) {
		s.httpClient.Timeout = timeout
	}
}

// NewHTTPSource creates a source against baseURL.
func NewHTTPSource(baseURL string, opts ...HTTPSourceOption) *HTTPSource {
	s := &HTTPSource{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// poolResponse is the wire shape of a pool stats lookup.
type poolResponse struct {
	Mint            string    `json:"mint"`
	LiquidityUSD    float64   `json:"liquidityUsd"`
	Volume24hUSD    float64   `json:"volume24hUsd"`
	HourlyVolumeUSD []float64 `json:"hourlyVolumeUsd"`
}

// PoolLiquidity returns the token's pool liquidity in USD.
func (s *HTTPSource) PoolLiquidity(ctx context.Context, mint string) (float64, error) {
	pool, err := s.fetchPool(ctx, mint)
	if err != nil {
		return 0, err
	}
	return pool.LiquidityUSD, nil
}

// Volume24h returns the token's trailing 24h volume in USD.
func (s *HTTPSource) Volume24h(ctx context.Context, mint string) (float64, error) {
	pool, err := s.fetchPool(ctx, mint)
	if err != nil {
		return 0, err
	}
	return pool.Volume24hUSD, nil
}

// VolumePredictability scores hourly volume regularity as one minus
// the coefficient of variation, clamped to [0,1]. Missing or flat-zero
// history scores 0.
func (s *HTTPSource) VolumePredictability(ctx context.Context, mint string) (float64, error) {
	pool, err := s.fetchPool(ctx, mint)
	if err != nil {
		return 0, err
	}
	return predictability(pool.HourlyVolumeUSD), nil
}

func (s *HTTPSource) fetchPool(ctx context.Context, mint string) (*poolResponse, error) {
	url := fmt.Sprintf("%s/v1/pools/%s", s.baseURL, mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build pool request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pool request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read pool response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pool lookup for %s: HTTP %d: %s", mint, resp.StatusCode, string(body))
	}

	var pool poolResponse
	if err := json.Unmarshal(body, &pool); err != nil {
		return nil, fmt.Errorf("decode pool response: %w", err)
	}
	return &pool, nil
}

// predictability maps an hourly volume series to [0,1].
func predictability(hourly []float64) float64 {
	if len(hourly) < 2 {
		return 0
	}

	var sum float64
	for _, v := range hourly {
		sum += v
	}
	mean := sum / float64(len(hourly))
	if mean <= 0 {
		return 0
	}

	var variance float64
	for _, v := range hourly {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(hourly))

	score := 1 - math.Sqrt(variance)/mean
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

var _ DataSource = (*HTTPSource)(nil)
