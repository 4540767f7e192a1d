package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenInfo represents metadata for a launched token, refreshed periodically
// from the launch platform.
type TokenInfo struct {
	Mint         string          `gorm:"primaryKey" json:"mint"`
	Symbol       string          `gorm:"index" json:"symbol"`
	Name         string          `json:"name"`
	LogoPath     string          `json:"logo_path"`
	IsActive     bool            `gorm:"index" json:"is_active"` // Active trading status
	LastPrice    decimal.Decimal `json:"last_price"`             // In SOL, from last status refresh
	MarketCap    decimal.Decimal `json:"market_cap"`             // In SOL
	Complete     bool            `json:"complete"`               // Bonding curve graduated
	LastSyncedAt time.Time       `json:"last_synced_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TradeRecord is the durable row written for each settled trade.
// Persistence is fire-and-forget: the in-memory ledger is authoritative.
type TradeRecord struct {
	ID         string          `gorm:"primaryKey" json:"id"`
	Symbol     string          `gorm:"index" json:"symbol"`
	Side       string          `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"` // Settlement price
	ExecutedAt time.Time       `gorm:"index" json:"executed_at"`
	CreatedAt  time.Time       `json:"created_at"`
}
