package event

import (
	"sync"

	"github.com/shopspring/decimal"
)

// tradeEventPool reduces GC pressure on the feed hot path, where one event is
// allocated per inbound websocket message.
//
// Usage:
//
//	ev := AcquireTradeEvent()
//	ev.Symbol = mint
//	// ... settle event ...
//	ReleaseTradeEvent(ev)  // Return to pool after processing
var tradeEventPool = sync.Pool{
	New: func() interface{} {
		return &TradeEvent{}
	},
}

// AcquireTradeEvent gets a TradeEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireTradeEvent() *TradeEvent {
	return tradeEventPool.Get().(*TradeEvent)
}

// ReleaseTradeEvent returns a TradeEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseTradeEvent(ev *TradeEvent) {
	if ev == nil {
		return
	}
	ev.Signature = ""
	ev.Symbol = ""
	ev.Side = ""
	ev.Quantity = decimal.Zero
	ev.Price = decimal.Zero
	ev.UnixMs = 0

	tradeEventPool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
func Warmup() {
	const batchSize = 256

	evs := make([]*TradeEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		evs = append(evs, AcquireTradeEvent())
	}
	for _, ev := range evs {
		ReleaseTradeEvent(ev)
	}
}
