package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
)

// Storage persists launched-token metadata and settled-trade records.
// It is a fire-and-forget sink: the in-memory ledger never depends on it.
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance. An empty path resolves
// to the default location under the OS config dir.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		resolved, err := getDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
		dbPath = resolved
	}

	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto Migration
	if err := db.AutoMigrate(&domain.TokenInfo{}, &domain.TradeRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "PumpBot", "data", "pumpbot.db"), nil
}

// ======================================================================================
// Token Operations
// ======================================================================================

// UpsertToken creates or updates launched-token metadata
func (s *Storage) UpsertToken(token *domain.TokenInfo) error {
	return s.db.Save(token).Error
}

// GetToken retrieves token metadata by mint address
func (s *Storage) GetToken(mint string) (*domain.TokenInfo, error) {
	var token domain.TokenInfo
	err := s.db.First(&token, "mint = ?", mint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // Not found is not an error
	}
	return &token, err
}

// GetActiveTokens retrieves all tokens still flagged for tracking
func (s *Storage) GetActiveTokens() ([]domain.TokenInfo, error) {
	var tokens []domain.TokenInfo
	err := s.db.Where("is_active = ?", true).Find(&tokens).Error
	return tokens, err
}

// DeactivateToken clears the active flag without deleting history
func (s *Storage) DeactivateToken(mint string) error {
	return s.db.Model(&domain.TokenInfo{}).Where("mint = ?", mint).
		Update("is_active", false).Error
}

// ======================================================================================
// Trade Record Operations
// ======================================================================================

// SaveTrade stores a settled trade. Implements domain.TradeSink.
func (s *Storage) SaveTrade(rec *domain.TradeRecord) error {
	return s.db.Save(rec).Error
}

// RecentTrades returns the latest settled trades, newest first
func (s *Storage) RecentTrades(limit int) ([]domain.TradeRecord, error) {
	var records []domain.TradeRecord
	err := s.db.Order("executed_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// PruneTradesBefore deletes settled-trade rows older than cutoff and returns
// how many were removed
func (s *Storage) PruneTradesBefore(cutoff time.Time) (int64, error) {
	result := s.db.Where("executed_at < ?", cutoff).Delete(&domain.TradeRecord{})
	return result.RowsAffected, result.Error
}

// Ping verifies the underlying connection for health checks
func (s *Storage) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
