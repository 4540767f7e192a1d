package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freelancing-solutions/pump-bot/internal/app"
	"github.com/freelancing-solutions/pump-bot/internal/domain"
	"github.com/freelancing-solutions/pump-bot/internal/engine"
	"github.com/freelancing-solutions/pump-bot/internal/event"
	"github.com/freelancing-solutions/pump-bot/internal/feed"
	"github.com/freelancing-solutions/pump-bot/internal/infra"
	"github.com/freelancing-solutions/pump-bot/internal/ledger"
	"github.com/freelancing-solutions/pump-bot/internal/maintenance"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Token Sync
	go bootstrap.SyncAssets(ctx)

	// 5. Ledger & Execution Engine
	event.Warmup()
	led := ledger.New()
	eng := engine.New(led, bootstrap.Storage, infra.GlobalMetrics)

	if cfg.Trading.InitialBalance.IsPositive() {
		if err := eng.AddFunds(cfg.Trading.InitialBalance); err != nil {
			slog.Error("Failed to fund ledger", slog.Any("error", err))
			os.Exit(1)
		}
		slog.InfoContext(ctx, "✅ Ledger funded",
			slog.String("balance", cfg.Trading.InitialBalance.String()))
	}

	// 6. Real-time Trade Feed (Gateway)
	feedWorker := feed.NewWorker(cfg.API.PumpPortal.WSURL, cfg.Trading.Tokens, eng, infra.GlobalMetrics)
	if err := feedWorker.Connect(ctx); err != nil {
		slog.Error("Failed to start feed worker", slog.Any("error", err))
	}
	defer feedWorker.Disconnect()
	slog.InfoContext(ctx, "✅ Trade feed started", slog.Int("tokens", len(cfg.Trading.Tokens)))

	// 7. Maintenance Scheduler
	solana := infra.NewSolanaClient(cfg.API.Solana.RPCURL)
	scheduler := maintenance.NewScheduler(
		time.Duration(cfg.Maintenance.IntervalSec)*time.Second,
		time.Duration(cfg.Maintenance.RetentionHours)*time.Hour,
		led,
		bootstrap.Storage,
		bootstrap.Portal,
		map[string]domain.StatusSource{
			"feed":   feedWorker,
			"solana": solana,
		},
		infra.GlobalMetrics,
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()
	slog.InfoContext(ctx, "✅ Maintenance scheduler started")

	slog.InfoContext(ctx, "✨ Pump Bot fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
