package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// ErrNoRoute is returned when the aggregator finds no route for the
// requested swap.
var ErrNoRoute = errors.New("no route for swap")

// HTTPClient implements Client against the Jupiter v6 REST API.
type HTTPClient struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a new Jupiter REST client.
func NewHTTPClient(endpoint string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one HTTP request with retries and exponential backoff.
// Retried: transport errors, 429, 5xx. Not retried: other statuses.
func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body []byte) ([]byte, error) {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		// Handle rate limiting
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// quoteResponse is the raw REST response for /quote.
// Jupiter encodes amounts as decimal strings.
type quoteResponse struct {
	InputMint      string `json:"inputMint"`
	OutputMint     string `json:"outputMint"`
	InAmount       string `json:"inAmount"`
	OutAmount      string `json:"outAmount"`
	PriceImpactPct string `json:"priceImpactPct"`
	SlippageBps    int    `json:"slippageBps"`
	ErrorMessage   string `json:"error"`
}

// GetQuote prices a swap via GET /quote.
func (c *HTTPClient) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	params := url.Values{}
	params.Set("inputMint", req.InputMint)
	params.Set("outputMint", req.OutputMint)
	params.Set("amount", strconv.FormatUint(req.Amount, 10))
	params.Set("slippageBps", strconv.Itoa(req.SlippageBps))

	raw, err := c.do(ctx, http.MethodGet, c.endpoint+"/quote?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp quoteResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal quote: %w", err)
	}

	if resp.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, resp.ErrorMessage)
	}
	if resp.OutAmount == "" {
		return nil, ErrNoRoute
	}

	inAmount, err := strconv.ParseUint(resp.InAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse inAmount %q: %w", resp.InAmount, err)
	}
	outAmount, err := strconv.ParseUint(resp.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse outAmount %q: %w", resp.OutAmount, err)
	}

	var impact float64
	if resp.PriceImpactPct != "" {
		impact, err = strconv.ParseFloat(resp.PriceImpactPct, 64)
		if err != nil {
			return nil, fmt.Errorf("parse priceImpactPct %q: %w", resp.PriceImpactPct, err)
		}
	}

	return &Quote{
		InputMint:      resp.InputMint,
		OutputMint:     resp.OutputMint,
		InAmount:       inAmount,
		OutAmount:      outAmount,
		PriceImpactPct: impact,
		SlippageBps:    resp.SlippageBps,
		Raw:            json.RawMessage(raw),
	}, nil
}

// swapRequest is the POST /swap payload.
type swapRequest struct {
	QuoteResponse json.RawMessage `json:"quoteResponse"`
	UserPublicKey string          `json:"userPublicKey"`
}

// swapResponse is the raw REST response for /swap.
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
	ErrorMessage    string `json:"error"`
}

// ExecuteSwap builds the swap transaction for the quote, has the wallet
// sign and submit it, and returns the outcome. Application-level
// rejections are reported on SwapResult, not as errors.
func (c *HTTPClient) ExecuteSwap(ctx context.Context, quote *Quote, wallet Wallet) (*SwapResult, error) {
	if quote == nil {
		return nil, errors.New("nil quote")
	}
	if wallet == nil {
		return nil, errors.New("nil wallet")
	}

	body, err := json.Marshal(swapRequest{
		QuoteResponse: quote.Raw,
		UserPublicKey: wallet.PublicKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal swap request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, c.endpoint+"/swap", body)
	if err != nil {
		return nil, err
	}

	var resp swapResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal swap: %w", err)
	}

	if resp.ErrorMessage != "" {
		return &SwapResult{Success: false, Error: resp.ErrorMessage}, nil
	}
	if resp.SwapTransaction == "" {
		return &SwapResult{Success: false, Error: "empty swap transaction"}, nil
	}

	signature, err := wallet.SignAndSend(ctx, resp.SwapTransaction)
	if err != nil {
		return &SwapResult{Success: false, Error: err.Error()}, nil
	}

	return &SwapResult{Success: true, Signature: signature}, nil
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
