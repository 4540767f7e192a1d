package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
	"github.com/freelancing-solutions/pump-bot/internal/infra"
	"github.com/freelancing-solutions/pump-bot/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Portal  *infra.PumpPortalClient
	Logos   *infra.LogoDownloader
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (Config, DB, API clients)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping Pump Bot...")

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Launch platform REST client
	b.Portal = infra.NewPumpPortalClient(cfg.API.PumpPortal.RestURL, cfg.API.PumpPortal.APIKey)

	// 5. Initialize Logo Downloader
	logos, err := infra.NewLogoDownloader()
	if err != nil {
		return err
	}
	b.Logos = logos
	slog.Info("✅ Logo downloader ready")

	return nil
}

// SyncAssets registers the configured mints and fetches their metadata and
// logos in the background so startup never blocks on the launch platform API.
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting token synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent fetches

	for _, mint := range b.Config.Trading.Tokens {
		wg.Add(1)
		go func(mint string) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			token := &domain.TokenInfo{
				Mint:      mint,
				Symbol:    mint, // Default until metadata arrives
				IsActive:  true,
				UpdatedAt: time.Now(),
			}

			// Preserve fields populated by earlier runs
			if existing, _ := b.Storage.GetToken(mint); existing != nil {
				token.Symbol = existing.Symbol
				token.Name = existing.Name
				token.LogoPath = existing.LogoPath
				token.LastSyncedAt = existing.LastSyncedAt
				token.CreatedAt = existing.CreatedAt
			}

			if err := b.Storage.UpsertToken(token); err != nil {
				slog.Error("Failed to upsert token", slog.String("mint", mint), slog.Any("error", err))
			}

			status, err := b.Portal.TokenInfo(ctx, mint)
			if err != nil {
				slog.Warn("Failed to fetch token metadata", slog.String("mint", mint), slog.Any("error", err))
				return
			}
			if status == nil {
				return
			}

			if status.Symbol != "" {
				token.Symbol = status.Symbol
			}
			token.Name = status.Name
			token.LastPrice = status.PriceSol
			token.MarketCap = status.MarketCap
			token.Complete = status.Complete
			token.LastSyncedAt = time.Now()

			if status.ImageURL != "" {
				path, err := b.Logos.DownloadLogo(mint, status.ImageURL)
				if err != nil {
					slog.Warn("Failed to download logo", slog.String("mint", mint), slog.Any("error", err))
				} else if path != "" {
					token.LogoPath = path
				}
			}

			if err := b.Storage.UpsertToken(token); err != nil {
				slog.Error("Failed to update token", slog.String("mint", mint), slog.Any("error", err))
			}
		}(mint)
	}

	wg.Wait()
	slog.Info("✨ Token synchronization completed")
}
