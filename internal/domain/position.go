package domain

import "github.com/shopspring/decimal"

// Position is the aggregate holding of one symbol. Quantity is never
// negative (no short positions). A position is created lazily on the first
// executed trade for its symbol and persists even after quantity returns to
// zero, so that history is preserved.
type Position struct {
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AvgPrice    decimal.Decimal `json:"avg_price"`    // Volume-weighted average entry price
	MarketValue decimal.Decimal `json:"market_value"` // Quantity * latest execution price
}

// Apply folds a signed quantity change (positive for BUY, negative for SELL)
// executed at price into the position. Average price recompute:
// if the prior quantity was zero the average becomes the fill price,
// otherwise (prevQty*prevAvg + delta*price) / (prevQty+delta).
// When the resulting quantity is zero the average resets to zero.
func (p *Position) Apply(delta, price decimal.Decimal) {
	if p.Quantity.IsZero() {
		p.Quantity = delta
		p.AvgPrice = price
	} else {
		totalValue := p.Quantity.Mul(p.AvgPrice).Add(delta.Mul(price))
		p.Quantity = p.Quantity.Add(delta)
		if p.Quantity.IsZero() {
			p.AvgPrice = decimal.Zero
		} else {
			p.AvgPrice = totalValue.Div(p.Quantity)
		}
	}
	p.MarketValue = p.Quantity.Mul(price)
}

// HasAtLeast reports whether the position holds at least qty units.
func (p *Position) HasAtLeast(qty decimal.Decimal) bool {
	return p.Quantity.GreaterThanOrEqual(qty)
}

// IsFlat reports whether the position quantity is zero.
func (p *Position) IsFlat() bool {
	return p.Quantity.IsZero()
}
