package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
	"github.com/freelancing-solutions/pump-bot/internal/event"
	"github.com/freelancing-solutions/pump-bot/internal/infra"
	"github.com/freelancing-solutions/pump-bot/internal/ledger"
)

// Engine drives the trade lifecycle against the shared ledger:
// PENDING -> EXECUTED via settle, or PENDING -> CANCELLED via cancel, both
// terminal. It is the entry point for synchronous callers and for the feed
// pipeline, and reports settled trades to the persistence sink best-effort.
type Engine struct {
	ledger  *ledger.Ledger
	sink    domain.TradeSink // Optional
	metrics *infra.Metrics
}

// New creates an engine over the given ledger. sink may be nil.
func New(led *ledger.Ledger, sink domain.TradeSink, metrics *infra.Metrics) *Engine {
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Engine{ledger: led, sink: sink, metrics: metrics}
}

// AddFunds increases the cash balance. Non-positive amounts are rejected.
func (e *Engine) AddFunds(amount decimal.Decimal) error {
	return e.ledger.AddFunds(amount)
}

// PlaceOrder creates a PENDING trade and returns its id.
func (e *Engine) PlaceOrder(symbol, side string, quantity, price decimal.Decimal) (string, error) {
	id, err := e.ledger.RecordOrder(symbol, side, quantity, price)
	if err != nil {
		return "", err
	}
	slog.Info("Order placed",
		slog.String("trade_id", id), slog.String("symbol", symbol),
		slog.String("side", side), slog.String("qty", quantity.String()),
		slog.String("price", price.String()))
	return id, nil
}

// SettleOrder executes a pending trade. settlementPrice is optional for
// manually-initiated settlement and defaults to the requested price.
// Failures are reported as a false result, never as a crash.
func (e *Engine) SettleOrder(tradeID string, settlementPrice *decimal.Decimal) bool {
	start := time.Now()
	if err := e.ledger.Settle(tradeID, settlementPrice); err != nil {
		e.metrics.RecordSettlementRejected()
		slog.Warn("Settlement refused",
			slog.String("trade_id", tradeID), slog.Any("error", err))
		return false
	}
	e.metrics.RecordSettlement(time.Since(start).Nanoseconds())
	e.reportSettled(tradeID)
	return true
}

// CancelOrder flips a pending trade to CANCELLED.
func (e *Engine) CancelOrder(tradeID string) bool {
	if err := e.ledger.Cancel(tradeID); err != nil {
		slog.Warn("Cancel refused",
			slog.String("trade_id", tradeID), slog.Any("error", err))
		return false
	}
	slog.Info("Order cancelled", slog.String("trade_id", tradeID))
	return true
}

// ApplyFill settles one externally-executed trade reported by the feed.
// The execution price is mandatory here: feed-driven settlements never fall
// back to a requested price. When no matching PENDING order exists, the
// order is synthesized first and settled at the reported price.
func (e *Engine) ApplyFill(ev *event.TradeEvent) error {
	e.metrics.RecordEventIngested()

	if ev.Symbol == "" {
		return domain.NewValidationError("symbol", "must not be empty")
	}
	if !domain.ValidSide(ev.Side) {
		return domain.NewValidationError("side", "must be BUY or SELL")
	}
	if !ev.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "must be positive")
	}
	if !ev.Price.IsPositive() {
		return domain.NewValidationError("price", "feed execution price is mandatory")
	}

	tradeID, ok := e.ledger.FindPending(ev.Symbol, ev.Side, ev.Quantity)
	if !ok {
		id, err := e.ledger.RecordOrder(ev.Symbol, ev.Side, ev.Quantity, ev.Price)
		if err != nil {
			return err
		}
		tradeID = id
	}

	price := ev.Price
	if err := e.ledger.Settle(tradeID, &price); err != nil {
		e.metrics.RecordSettlementRejected()
		// A funds/position shortfall leaves the trade PENDING; the caller
		// (the feed read loop) logs and moves on to the next event.
		return err
	}
	e.metrics.RecordSettlement(0)
	e.reportSettled(tradeID)

	slog.Info("External fill settled",
		slog.String("trade_id", tradeID), slog.String("symbol", ev.Symbol),
		slog.String("side", ev.Side), slog.String("price", ev.Price.String()),
		slog.String("signature", ev.Signature))
	return nil
}

// reportSettled writes the settled trade to the persistence sink.
// Fire-and-forget: failures are logged, in-memory state is authoritative.
// Runs outside the ledger lock.
func (e *Engine) reportSettled(tradeID string) {
	if e.sink == nil {
		return
	}
	trade, ok := e.ledger.Trade(tradeID)
	if !ok {
		return
	}
	rec := &domain.TradeRecord{
		ID:         trade.ID,
		Symbol:     trade.Symbol,
		Side:       trade.Side,
		Quantity:   trade.Quantity,
		Price:      trade.Price,
		ExecutedAt: trade.ExecutedAt,
	}
	if err := e.sink.SaveTrade(rec); err != nil {
		slog.Warn("Failed to persist settled trade",
			slog.String("trade_id", trade.ID), slog.Any("error", err))
	}
}

// IsShortfall reports whether err is a funds or position shortfall, as
// opposed to an invalid state transition or bad input.
func IsShortfall(err error) bool {
	return errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrInsufficientPosition)
}

// Read passthroughs. These never observe a partially-applied settlement.

// Position returns the position for a symbol, if any.
func (e *Engine) Position(symbol string) (domain.Position, bool) {
	return e.ledger.Position(symbol)
}

// AllPositions returns all non-flat positions.
func (e *Engine) AllPositions() map[string]domain.Position {
	return e.ledger.AllPositions()
}

// History returns all trades, most recent first.
func (e *Engine) History() []domain.Trade {
	return e.ledger.History()
}

// Balance returns the current cash balance.
func (e *Engine) Balance() decimal.Decimal {
	return e.ledger.Balance()
}

// PortfolioValue returns balance plus mark value of held positions.
func (e *Engine) PortfolioValue(marketPrices map[string]decimal.Decimal) decimal.Decimal {
	return e.ledger.PortfolioValue(marketPrices)
}
