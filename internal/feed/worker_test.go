package feed

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
	"github.com/freelancing-solutions/pump-bot/internal/event"
	"github.com/freelancing-solutions/pump-bot/internal/infra"
)

// captureExecutor records fills in arrival order.
type captureExecutor struct {
	fills []event.TradeEvent
	err   error
}

func (c *captureExecutor) ApplyFill(ev *event.TradeEvent) error {
	c.fills = append(c.fills, *ev) // copy before pool release
	return c.err
}

func newTestWorker(exec Executor) *Worker {
	return NewWorker("wss://example.invalid/api/data", nil, exec, &infra.Metrics{})
}

func TestWorker_HandleMessage(t *testing.T) {
	exec := &captureExecutor{}
	w := newTestWorker(exec)

	w.handleMessage([]byte(`{
		"signature": "sig-1",
		"mint": "mint-foo",
		"txType": "buy",
		"tokenAmount": 4,
		"solAmount": 8,
		"timestamp": 1700000000000
	}`))

	if len(exec.fills) != 1 {
		t.Fatalf("Expected 1 fill, got %d", len(exec.fills))
	}
	fill := exec.fills[0]
	if fill.Symbol != "mint-foo" || fill.Side != domain.SideBuy {
		t.Errorf("Unexpected fill: %+v", fill)
	}
	if !fill.Quantity.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected quantity 4, got %v", fill.Quantity)
	}
	// Unit price is derived: 8 SOL / 4 tokens.
	if !fill.Price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected price 2, got %v", fill.Price)
	}
	if fill.Signature != "sig-1" || fill.UnixMs != 1700000000000 {
		t.Errorf("Unexpected metadata: %+v", fill)
	}
}

func TestWorker_HandleMessage_Ignored(t *testing.T) {
	cases := []struct {
		name string
		msg  string
	}{
		{"Malformed JSON", `{not json`},
		{"Missing Mint", `{"txType": "buy", "tokenAmount": 1, "solAmount": 1}`},
		{"Create Event", `{"mint": "m", "txType": "create", "tokenAmount": 1, "solAmount": 1}`},
		{"Unknown TxType", `{"mint": "m", "txType": "burn", "tokenAmount": 1, "solAmount": 1}`},
		{"Zero Quantity", `{"mint": "m", "txType": "buy", "tokenAmount": 0, "solAmount": 1}`},
		{"Subscription Ack", `{"message": "Successfully subscribed to token trades"}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			exec := &captureExecutor{}
			w := newTestWorker(exec)
			w.handleMessage([]byte(c.msg))
			if len(exec.fills) != 0 {
				t.Errorf("Message should be ignored, got fill %+v", exec.fills[0])
			}
		})
	}
}

func TestWorker_HandleMessage_SellSide(t *testing.T) {
	exec := &captureExecutor{}
	w := newTestWorker(exec)

	w.handleMessage([]byte(`{"mint": "m", "txType": "sell", "tokenAmount": 10, "solAmount": 5}`))

	if len(exec.fills) != 1 || exec.fills[0].Side != domain.SideSell {
		t.Fatalf("Expected a SELL fill, got %+v", exec.fills)
	}
}

func TestWorker_HandleMessage_RefusedFillDoesNotPanic(t *testing.T) {
	exec := &captureExecutor{err: domain.ErrInsufficientFunds}
	w := newTestWorker(exec)

	// A shortfall is logged and skipped; ingestion continues.
	w.handleMessage([]byte(`{"mint": "m", "txType": "buy", "tokenAmount": 1, "solAmount": 1}`))
	w.handleMessage([]byte(`{"mint": "m", "txType": "buy", "tokenAmount": 2, "solAmount": 2}`))

	if len(exec.fills) != 2 {
		t.Errorf("Both events should reach the executor, got %d", len(exec.fills))
	}
}

func TestWorker_SequentialOrder(t *testing.T) {
	exec := &captureExecutor{}
	w := newTestWorker(exec)

	for i := 1; i <= 5; i++ {
		w.handleMessage([]byte(`{"mint": "m", "txType": "buy", "tokenAmount": ` +
			decimal.NewFromInt(int64(i)).String() + `, "solAmount": 1}`))
	}

	if len(exec.fills) != 5 {
		t.Fatalf("Expected 5 fills, got %d", len(exec.fills))
	}
	for i, fill := range exec.fills {
		if !fill.Quantity.Equal(decimal.NewFromInt(int64(i + 1))) {
			t.Errorf("Fill %d out of order: qty=%v", i, fill.Quantity)
		}
	}
}

func TestWorker_ConnectionState(t *testing.T) {
	w := newTestWorker(&captureExecutor{})
	ctx := context.Background()

	if w.IsConnected(ctx) {
		t.Error("New worker should not report connected")
	}

	w.connected = true
	if !w.IsConnected(ctx) {
		t.Error("Worker should report connected")
	}

	if err := w.Reconnect(ctx); err != nil {
		t.Fatalf("Reconnect failed: %v", err)
	}
	if w.IsConnected(ctx) {
		t.Error("Reconnect should drop the current connection")
	}
}
