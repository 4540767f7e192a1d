package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// StatusSource is a dependency whose connectivity is health-checked by the
// maintenance scheduler.
type StatusSource interface {
	IsConnected(ctx context.Context) bool
	Reconnect(ctx context.Context) error
}

// TradeSink receives settled trades for durability. Failures are logged and
// never affect in-memory state.
type TradeSink interface {
	SaveTrade(rec *TradeRecord) error
}

// TokenStatus is a point-in-time view of a launched token from the
// launch platform API.
type TokenStatus struct {
	Mint      string
	Symbol    string
	Name      string
	ImageURL  string
	PriceSol  decimal.Decimal
	MarketCap decimal.Decimal
	Complete  bool
}

// TokenSource provides launched-token status lookups (external API).
type TokenSource interface {
	TokenInfo(ctx context.Context, mint string) (*TokenStatus, error)
}
