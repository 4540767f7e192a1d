package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPosition_Apply(t *testing.T) {
	t.Run("First Fill Sets Average", func(t *testing.T) {
		pos := Position{Symbol: "FOO"}
		pos.Apply(decimal.NewFromInt(10), decimal.NewFromInt(5))

		if !pos.Quantity.Equal(decimal.NewFromInt(10)) {
			t.Errorf("Expected quantity 10, got %v", pos.Quantity)
		}
		if !pos.AvgPrice.Equal(decimal.NewFromInt(5)) {
			t.Errorf("Expected avg price 5, got %v", pos.AvgPrice)
		}
		if !pos.MarketValue.Equal(decimal.NewFromInt(50)) {
			t.Errorf("Expected market value 50, got %v", pos.MarketValue)
		}
	})

	t.Run("Weighted Average on Add", func(t *testing.T) {
		pos := Position{Symbol: "FOO"}
		pos.Apply(decimal.NewFromInt(10), decimal.NewFromInt(5))
		pos.Apply(decimal.NewFromInt(10), decimal.NewFromInt(7))

		// (10*5 + 10*7) / 20 = 6
		if !pos.AvgPrice.Equal(decimal.NewFromInt(6)) {
			t.Errorf("Expected avg price 6, got %v", pos.AvgPrice)
		}
		if !pos.Quantity.Equal(decimal.NewFromInt(20)) {
			t.Errorf("Expected quantity 20, got %v", pos.Quantity)
		}
	})

	t.Run("Offsetting Sell Resets Average", func(t *testing.T) {
		pos := Position{Symbol: "FOO"}
		pos.Apply(decimal.NewFromInt(4), decimal.NewFromInt(2))
		pos.Apply(decimal.NewFromInt(-4), decimal.NewFromInt(2))

		if !pos.Quantity.IsZero() {
			t.Errorf("Expected flat position, got %v", pos.Quantity)
		}
		if !pos.AvgPrice.IsZero() {
			t.Error("Average price should reset to zero when position is flat")
		}
		if !pos.IsFlat() {
			t.Error("IsFlat should be true")
		}
	})

	t.Run("Partial Sell Keeps Average", func(t *testing.T) {
		pos := Position{Symbol: "FOO"}
		pos.Apply(decimal.NewFromInt(10), decimal.NewFromInt(5))
		pos.Apply(decimal.NewFromInt(-4), decimal.NewFromInt(5))

		// Selling at the entry price must not move the average.
		if !pos.AvgPrice.Equal(decimal.NewFromInt(5)) {
			t.Errorf("Expected avg price 5, got %v", pos.AvgPrice)
		}
		if !pos.Quantity.Equal(decimal.NewFromInt(6)) {
			t.Errorf("Expected quantity 6, got %v", pos.Quantity)
		}
	})
}

func TestPosition_HasAtLeast(t *testing.T) {
	pos := Position{Symbol: "FOO"}
	pos.Apply(decimal.NewFromInt(3), decimal.NewFromInt(1))

	if !pos.HasAtLeast(decimal.NewFromInt(3)) {
		t.Error("Should cover an exact-quantity sell")
	}
	if pos.HasAtLeast(decimal.NewFromInt(4)) {
		t.Error("Should not cover more than held")
	}
}
