package storage

import (
	"os"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
)

func setupTestDB(t *testing.T) *Storage {
	dbName := "test.db"
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(&domain.TokenInfo{}, &domain.TradeRecord{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(dbName)
	})

	return &Storage{db: db}
}

func TestUpsertAndGetToken(t *testing.T) {
	s := setupTestDB(t)

	token := &domain.TokenInfo{
		Mint:      "So11111111111111111111111111111111111111112",
		Symbol:    "TEST",
		Name:      "Test Token",
		IsActive:  true,
		UpdatedAt: time.Now(),
	}

	// 1. Create
	if err := s.UpsertToken(token); err != nil {
		t.Fatalf("UpsertToken failed: %v", err)
	}

	// 2. Get
	fetched, err := s.GetToken(token.Mint)
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched token is nil")
	}
	if fetched.Symbol != "TEST" {
		t.Errorf("expected symbol TEST, got %s", fetched.Symbol)
	}
}

func TestGetToken_NotFound(t *testing.T) {
	s := setupTestDB(t)

	fetched, err := s.GetToken("missing")
	if err != nil {
		t.Fatalf("GetToken failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected nil for missing token")
	}
}

func TestGetActiveTokens(t *testing.T) {
	s := setupTestDB(t)

	s.UpsertToken(&domain.TokenInfo{Mint: "mint-a", Symbol: "A", IsActive: true})
	s.UpsertToken(&domain.TokenInfo{Mint: "mint-b", Symbol: "B", IsActive: true})
	s.UpsertToken(&domain.TokenInfo{Mint: "mint-c", Symbol: "C", IsActive: false})

	active, err := s.GetActiveTokens()
	if err != nil {
		t.Fatalf("GetActiveTokens failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("expected 2 active tokens, got %d", len(active))
	}

	if err := s.DeactivateToken("mint-a"); err != nil {
		t.Fatalf("DeactivateToken failed: %v", err)
	}
	active, _ = s.GetActiveTokens()
	if len(active) != 1 {
		t.Errorf("expected 1 active token after deactivation, got %d", len(active))
	}
}

func TestSaveAndPruneTrades(t *testing.T) {
	s := setupTestDB(t)

	old := &domain.TradeRecord{
		ID:         "trade-old",
		Symbol:     "FOO",
		Side:       domain.SideBuy,
		Quantity:   decimal.NewFromInt(10),
		Price:      decimal.NewFromInt(5),
		ExecutedAt: time.Now().Add(-48 * time.Hour),
	}
	fresh := &domain.TradeRecord{
		ID:         "trade-new",
		Symbol:     "FOO",
		Side:       domain.SideSell,
		Quantity:   decimal.NewFromInt(5),
		Price:      decimal.NewFromInt(6),
		ExecutedAt: time.Now(),
	}

	if err := s.SaveTrade(old); err != nil {
		t.Fatalf("SaveTrade failed: %v", err)
	}
	if err := s.SaveTrade(fresh); err != nil {
		t.Fatalf("SaveTrade failed: %v", err)
	}

	recent, err := s.RecentTrades(10)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(recent))
	}
	if recent[0].ID != "trade-new" {
		t.Error("expected newest trade first")
	}

	// Prune beyond a 24h retention window.
	pruned, err := s.PruneTradesBefore(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneTradesBefore failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned trade, got %d", pruned)
	}

	recent, _ = s.RecentTrades(10)
	if len(recent) != 1 || recent[0].ID != "trade-new" {
		t.Error("expected only the fresh trade to survive pruning")
	}
}

func TestPing(t *testing.T) {
	s := setupTestDB(t)
	if err := s.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
