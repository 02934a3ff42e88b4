package market

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WatcherConfig configures LiquidityWatcher reconnect and keepalive
// behavior.
type WatcherConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWatcherConfig returns the default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// LiquidityWatcher holds a WebSocket subscription to one token's pool
// liquidity feed and caches the newest figure. Long-running TWAP and
// iceberg runs read the cache instead of re-polling the REST endpoint
// per chunk.
type LiquidityWatcher struct {
	endpoint string
	mint     string
	config   WatcherConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	latest   liquidityUpdate
	hasValue bool
	latestMu sync.RWMutex

	reconnecting atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

type liquidityUpdate struct {
	Mint         string  `json:"mint"`
	LiquidityUSD float64 `json:"liquidityUsd"`
	TimestampMs  int64   `json:"ts"`
}

type watcherSubscribe struct {
	Op   string `json:"op"`
	Mint string `json:"mint"`
}

// NewLiquidityWatcher connects to the feed and subscribes to the mint.
func NewLiquidityWatcher(ctx context.Context, endpoint, mint string, config *WatcherConfig) (*LiquidityWatcher, error) {
	cfg := DefaultWatcherConfig()
	if config != nil {
		cfg = *config
	}

	w := &LiquidityWatcher{
		endpoint: endpoint,
		mint:     mint,
		config:   cfg,
		done:     make(chan struct{}),
	}

	if err := w.connect(ctx); err != nil {
		return nil, err
	}
	if err := w.subscribe(); err != nil {
		w.conn.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.readLoop()

	w.wg.Add(1)
	go w.pingLoop()

	return w, nil
}

// connect establishes the WebSocket connection.
func (w *LiquidityWatcher) connect(ctx context.Context) error {
	w.connMu.Lock()
	defer w.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, w.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	w.conn = conn
	return nil
}

// subscribe sends the subscription frame for the watched mint.
func (w *LiquidityWatcher) subscribe() error {
	w.connMu.Lock()
	defer w.connMu.Unlock()

	if w.conn == nil {
		return fmt.Errorf("not connected")
	}

	w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
	if err := w.conn.WriteJSON(watcherSubscribe{Op: "subscribe", Mint: w.mint}); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Latest returns the newest cached liquidity figure and its feed
// timestamp. ok is false until the first update arrives.
func (w *LiquidityWatcher) Latest() (liquidityUSD float64, at time.Time, ok bool) {
	w.latestMu.RLock()
	defer w.latestMu.RUnlock()

	if !w.hasValue {
		return 0, time.Time{}, false
	}
	return w.latest.LiquidityUSD, time.UnixMilli(w.latest.TimestampMs), true
}

// Close tears down the connection and stops background goroutines.
func (w *LiquidityWatcher) Close() error {
	if w.closed.Swap(true) {
		return nil
	}

	close(w.done)

	w.connMu.Lock()
	if w.conn != nil {
		w.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		w.conn.Close()
	}
	w.connMu.Unlock()

	w.wg.Wait()
	return nil
}

// readLoop reads updates and refreshes the cache, reconnecting with
// exponential backoff on connection errors.
func (w *LiquidityWatcher) readLoop() {
	defer w.wg.Done()

	reconnectDelay := w.config.ReconnectDelay

	for !w.closed.Load() {
		w.connMu.Lock()
		conn := w.conn
		w.connMu.Unlock()

		if conn == nil {
			select {
			case <-w.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(w.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if w.closed.Load() {
				return
			}

			if !w.reconnecting.Swap(true) {
				go w.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > w.config.MaxReconnectDelay {
				reconnectDelay = w.config.MaxReconnectDelay
			}

			select {
			case <-w.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = w.config.ReconnectDelay

		w.handleMessage(message)
	}
}

// reconnect re-dials and re-subscribes after a dropped connection.
func (w *LiquidityWatcher) reconnect(delay time.Duration) {
	defer w.reconnecting.Store(false)

	if w.closed.Load() {
		return
	}

	select {
	case <-w.done:
		return
	case <-time.After(delay):
	}

	w.connMu.Lock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := w.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}
	if err := w.subscribe(); err != nil {
		return
	}
}

// handleMessage parses an update frame and refreshes the cache.
// Frames for other mints and unparseable frames are dropped.
func (w *LiquidityWatcher) handleMessage(message []byte) {
	var update liquidityUpdate
	if err := json.Unmarshal(message, &update); err != nil {
		return
	}
	if update.Mint != w.mint {
		return
	}

	w.latestMu.Lock()
	w.latest = update
	w.hasValue = true
	w.latestMu.Unlock()
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (w *LiquidityWatcher) pingLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.connMu.Lock()
			if w.conn != nil {
				w.conn.SetWriteDeadline(time.Now().Add(w.config.WriteTimeout))
				if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			w.connMu.Unlock()
		}
	}
}
