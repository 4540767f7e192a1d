package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade represents a single buy/sell intent against the ledger.
// A trade is created PENDING and transitions exactly once to EXECUTED or
// CANCELLED. After settlement Price holds the settlement price, which may
// differ from the originally requested price.
type Trade struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"` // Token mint address or ticker
	Side       string          `json:"side"`   // "BUY", "SELL"
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Status     string          `json:"status"` // "PENDING", "EXECUTED", "CANCELLED"
	CreatedAt  time.Time       `json:"created_at"`
	ExecutedAt time.Time       `json:"executed_at,omitempty"` // Zero until settled
}

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	StatusPending   = "PENDING"
	StatusExecuted  = "EXECUTED"
	StatusCancelled = "CANCELLED"
)

// IsPending checks whether the trade can still settle or be cancelled.
func (t *Trade) IsPending() bool {
	return t.Status == StatusPending
}

// IsTerminal checks whether the trade reached a final state.
func (t *Trade) IsTerminal() bool {
	return t.Status == StatusExecuted || t.Status == StatusCancelled
}

// Notional returns price * quantity.
func (t *Trade) Notional() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}

// ValidSide reports whether s is a known trade side.
func ValidSide(s string) bool {
	return s == SideBuy || s == SideSell
}
