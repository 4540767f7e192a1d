package event

import "github.com/shopspring/decimal"

// TradeEvent is one externally-executed trade reported by the real-time feed.
type TradeEvent struct {
	Signature string // External transaction id
	Symbol    string // Token mint address
	Side      string // domain.SideBuy / domain.SideSell
	Quantity  decimal.Decimal
	Price     decimal.Decimal // Execution price per unit, in SOL
	UnixMs    int64           // Feed-reported timestamp
}
