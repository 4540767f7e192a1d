package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
	"github.com/freelancing-solutions/pump-bot/internal/event"
	"github.com/freelancing-solutions/pump-bot/internal/infra"
)

const (
	maxRetries  = 10
	readTimeout = 90 * time.Second
)

// Executor settles one feed event. Satisfied by engine.Engine.
type Executor interface {
	ApplyFill(ev *event.TradeEvent) error
}

// tradeMessage represents a PumpPortal trade stream payload
type tradeMessage struct {
	Signature   string  `json:"signature"`
	Mint        string  `json:"mint"`
	TxType      string  `json:"txType"` // "buy", "sell", "create"
	TokenAmount float64 `json:"tokenAmount"`
	SolAmount   float64 `json:"solAmount"`
	Timestamp   int64   `json:"timestamp"`
}

// Worker maintains the persistent subscription to the PumpPortal real-time
// trade feed and settles each event against the execution engine.
//
// Events are handled strictly sequentially in arrival order: the read loop
// does not fetch the next message until the current one has settled, so a
// slow handler queues the next event in the connection buffer instead of
// dropping it.
type Worker struct {
	wsURL   string
	mints   []string
	exec    Executor
	metrics *infra.Metrics

	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewWorker creates a new feed gateway worker
func NewWorker(wsURL string, mints []string, exec Executor, metrics *infra.Metrics) *Worker {
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Worker{
		wsURL:   wsURL,
		mints:   mints,
		exec:    exec,
		metrics: metrics,
	}
}

// Connect starts the connection loop. It returns immediately; the worker
// reconnects on any I/O failure and only stops on Disconnect.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			slog.Warn("Feed connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			delay := infra.CalculateBackoff(retryCount)
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0
			}
			w.metrics.RecordFeedReconnect()
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		} else {
			retryCount = 0
			w.readLoop(ctx)
			w.metrics.SetFeedConnected(false)
		}
	}
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	w.metrics.SetFeedConnected(true)
	w.metrics.IncrementConnections()
	slog.Info("Feed connected", slog.Int("subs", len(w.mints)))
	return nil
}

func (w *Worker) subscribe() error {
	msg := map[string]interface{}{"method": "subscribeTokenTrade"}
	if len(w.mints) > 0 {
		msg["keys"] = w.mints
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *Worker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *Worker) readLoop(ctx context.Context) {
	defer w.metrics.DecrementConnections()
	for {
		select {
		case <-ctx.Done():
			w.closeConnection()
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		// Settle before the next read: per-symbol order matches arrival order.
		w.handleMessage(msg)
	}
}

func (w *Worker) handleMessage(msg []byte) {
	var resp tradeMessage
	if json.Unmarshal(msg, &resp) != nil || resp.Mint == "" {
		return
	}

	var side string
	switch resp.TxType {
	case "buy":
		side = domain.SideBuy
	case "sell":
		side = domain.SideSell
	default:
		return // creates and unknown types carry no execution
	}
	if resp.TokenAmount <= 0 {
		return
	}

	quantity := decimal.NewFromFloat(resp.TokenAmount)
	price := decimal.NewFromFloat(resp.SolAmount).Div(quantity)

	ev := event.AcquireTradeEvent()
	ev.Signature = resp.Signature
	ev.Symbol = resp.Mint
	ev.Side = side
	ev.Quantity = quantity
	ev.Price = price
	ev.UnixMs = resp.Timestamp

	if err := w.exec.ApplyFill(ev); err != nil {
		// A refused settlement must not stall ingestion of the next event.
		slog.Warn("Feed fill not settled",
			slog.String("mint", resp.Mint), slog.String("signature", resp.Signature),
			slog.Any("error", err))
	}
	event.ReleaseTradeEvent(ev)
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
	w.connected = false
}

// IsConnected reports whether the subscription is currently established.
// Implements domain.StatusSource.
func (w *Worker) IsConnected(ctx context.Context) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

// Reconnect forces a new connection cycle by closing the current one; the
// connection loop redials with backoff. Implements domain.StatusSource.
func (w *Worker) Reconnect(ctx context.Context) error {
	w.closeConnection()
	return nil
}

// Disconnect stops the worker. The underlying connection is closed and any
// event currently being settled finishes before this returns.
func (w *Worker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
