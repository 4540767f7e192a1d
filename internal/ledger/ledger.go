package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
)

// Ledger is the single shared store of trading state: cash balance, the full
// trade set and the position map. All mutation goes through its methods under
// one coarse-grained lock, so a settlement reads and writes balance and
// position atomically with respect to concurrent settlements on any symbol.
//
// Invariants held under the lock:
//   - balance never goes negative
//   - position quantity never goes negative (no shorting)
//   - a trade transitions at most once, PENDING -> EXECUTED|CANCELLED
type Ledger struct {
	mu        sync.RWMutex
	balance   decimal.Decimal
	trades    map[string]*domain.Trade
	order     []string // Trade IDs in creation order
	positions map[string]*domain.Position
}

// New creates an empty ledger with a zero balance.
func New() *Ledger {
	return &Ledger{
		balance:   decimal.Zero,
		trades:    make(map[string]*domain.Trade),
		positions: make(map[string]*domain.Position),
	}
}

// AddFunds increases the cash balance. Non-positive amounts are rejected.
func (l *Ledger) AddFunds(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.NewValidationError("amount", "must be positive")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balance = l.balance.Add(amount)
	return nil
}

// RecordOrder creates a PENDING trade and returns its id. It has no balance
// or position effect until the trade settles.
func (l *Ledger) RecordOrder(symbol, side string, quantity, price decimal.Decimal) (string, error) {
	if symbol == "" {
		return "", domain.NewValidationError("symbol", "must not be empty")
	}
	if !domain.ValidSide(side) {
		return "", domain.NewValidationError("side", "must be BUY or SELL")
	}
	if !quantity.IsPositive() {
		return "", domain.NewValidationError("quantity", "must be positive")
	}
	if price.IsNegative() {
		return "", domain.NewValidationError("price", "must not be negative")
	}

	trade := &domain.Trade{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     price,
		Status:    domain.StatusPending,
		CreatedAt: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades[trade.ID] = trade
	l.order = append(l.order, trade.ID)
	return trade.ID, nil
}

// Settle executes a pending trade atomically: balance and position update
// together or not at all. settlementPrice overrides the requested price when
// non-nil; feed-driven settlements always supply it. On failure the trade is
// left untouched (PENDING for shortfalls).
func (l *Ledger) Settle(tradeID string, settlementPrice *decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	trade, ok := l.trades[tradeID]
	if !ok {
		return domain.ErrUnknownTrade
	}
	if !trade.IsPending() {
		return domain.ErrTradeNotPending
	}

	execPrice := trade.Price
	if settlementPrice != nil {
		if settlementPrice.IsNegative() {
			return domain.NewValidationError("settlement_price", "must not be negative")
		}
		execPrice = *settlementPrice
	}
	cost := execPrice.Mul(trade.Quantity)

	switch trade.Side {
	case domain.SideBuy:
		if l.balance.LessThan(cost) {
			return domain.ErrInsufficientFunds
		}
		l.balance = l.balance.Sub(cost)
		l.position(trade.Symbol).Apply(trade.Quantity, execPrice)
	case domain.SideSell:
		pos, ok := l.positions[trade.Symbol]
		if !ok || !pos.HasAtLeast(trade.Quantity) {
			return domain.ErrInsufficientPosition
		}
		l.balance = l.balance.Add(cost)
		pos.Apply(trade.Quantity.Neg(), execPrice)
	}

	trade.Status = domain.StatusExecuted
	trade.Price = execPrice
	trade.ExecutedAt = time.Now()
	return nil
}

// Cancel flips a pending trade to CANCELLED with no balance or position effect.
func (l *Ledger) Cancel(tradeID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	trade, ok := l.trades[tradeID]
	if !ok {
		return domain.ErrUnknownTrade
	}
	if !trade.IsPending() {
		return domain.ErrTradeNotPending
	}

	trade.Status = domain.StatusCancelled
	return nil
}

// position returns the position record for symbol, creating it lazily.
// Must be called with the write lock held.
func (l *Ledger) position(symbol string) *domain.Position {
	pos, ok := l.positions[symbol]
	if !ok {
		pos = &domain.Position{Symbol: symbol}
		l.positions[symbol] = pos
	}
	return pos
}

// Balance returns the current cash balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Trade returns a copy of the trade with the given id.
func (l *Ledger) Trade(tradeID string) (domain.Trade, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	trade, ok := l.trades[tradeID]
	if !ok {
		return domain.Trade{}, false
	}
	return *trade, true
}

// Position returns a copy of the position for symbol, if one exists.
func (l *Ledger) Position(symbol string) (domain.Position, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	pos, ok := l.positions[symbol]
	if !ok {
		return domain.Position{}, false
	}
	return *pos, true
}

// AllPositions returns copies of all positions with non-zero quantity.
func (l *Ledger) AllPositions() map[string]domain.Position {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]domain.Position)
	for symbol, pos := range l.positions {
		if pos.IsFlat() {
			continue
		}
		result[symbol] = *pos
	}
	return result
}

// History returns copies of all trades ordered by creation time, most
// recent first.
func (l *Ledger) History() []domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.Trade, 0, len(l.order))
	for i := len(l.order) - 1; i >= 0; i-- {
		if trade, ok := l.trades[l.order[i]]; ok {
			result = append(result, *trade)
		}
	}
	return result
}

// FindPending returns the id of the oldest pending trade matching symbol,
// side and quantity. The feed uses it to attach an external execution to an
// order already placed locally.
func (l *Ledger) FindPending(symbol, side string, quantity decimal.Decimal) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, id := range l.order {
		trade := l.trades[id]
		if trade.IsPending() && trade.Symbol == symbol && trade.Side == side &&
			trade.Quantity.Equal(quantity) {
			return id, true
		}
	}
	return "", false
}

// PortfolioValue returns balance plus the mark value of all held positions.
// Positions without a market price are skipped, not treated as zero.
func (l *Ledger) PortfolioValue(marketPrices map[string]decimal.Decimal) decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	value := l.balance
	for symbol, pos := range l.positions {
		if !pos.Quantity.IsPositive() {
			continue
		}
		price, ok := marketPrices[symbol]
		if !ok {
			continue
		}
		value = value.Add(pos.Quantity.Mul(price))
	}
	return value
}

// EvictBefore removes terminal trades created before cutoff and returns how
// many were dropped. Pending trades and all positions are retained.
func (l *Ledger) EvictBefore(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.order[:0]
	evicted := 0
	for _, id := range l.order {
		trade := l.trades[id]
		if trade.IsTerminal() && trade.CreatedAt.Before(cutoff) {
			delete(l.trades, id)
			evicted++
			continue
		}
		kept = append(kept, id)
	}
	l.order = kept
	return evicted
}
