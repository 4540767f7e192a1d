package maintenance

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freelancing-solutions/pump-bot/internal/domain"
	"github.com/freelancing-solutions/pump-bot/internal/infra"
	"github.com/freelancing-solutions/pump-bot/internal/ledger"
)

const stopGrace = 5 * time.Second

// TokenStore is the registry slice of the storage layer the scheduler needs.
type TokenStore interface {
	GetActiveTokens() ([]domain.TokenInfo, error)
	UpsertToken(token *domain.TokenInfo) error
	PruneTradesBefore(cutoff time.Time) (int64, error)
	Ping() error
}

// Scheduler runs periodic housekeeping: token status refresh, stale trade
// eviction, and connection health checks. Subtasks are isolated; one failing
// never blocks the others, and the tick cadence is never disturbed.
type Scheduler struct {
	interval  time.Duration
	retention time.Duration

	ledger  *ledger.Ledger
	store   TokenStore
	tokens  domain.TokenSource
	health  map[string]domain.StatusSource
	metrics *infra.Metrics

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

// NewScheduler creates a scheduler. store, tokens, and health entries may be
// nil or empty; the corresponding subtasks become no-ops.
func NewScheduler(interval, retention time.Duration, led *ledger.Ledger, store TokenStore,
	tokens domain.TokenSource, health map[string]domain.StatusSource, metrics *infra.Metrics) *Scheduler {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if metrics == nil {
		metrics = infra.GlobalMetrics
	}
	return &Scheduler{
		interval:  interval,
		retention: retention,
		ledger:    led,
		store:     store,
		tokens:    tokens,
		health:    health,
		metrics:   metrics,
	}
}

// Start launches the tick loop. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		slog.Info("Maintenance scheduler started",
			slog.Duration("interval", s.interval), slog.Duration("retention", s.retention))

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for an in-flight tick to finish, bounded
// by a grace period so shutdown never hangs on a stuck subtask.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	select {
	case <-s.done:
	case <-time.After(stopGrace):
		slog.Warn("Maintenance scheduler stop timed out")
	}
}

// tick runs one maintenance cycle. Each subtask catches its own errors.
func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	s.refreshTokenStatuses(ctx)
	s.evictStale()
	s.healthChecks(ctx)
	s.PortfolioSnapshot()

	snap := s.metrics.Snapshot()
	slog.Info("Maintenance cycle completed",
		slog.Duration("elapsed", time.Since(start)),
		slog.Uint64("events_ingested", snap.EventsIngested),
		slog.Uint64("trades_settled", snap.TradesSettled),
		slog.Uint64("settlements_rejected", snap.SettlementsRejected),
		slog.Uint64("feed_reconnects", snap.FeedReconnects))
}

// refreshTokenStatuses pulls current metadata for every tracked token and
// updates the registry. Tokens that left the bonding curve stay active; the
// Complete flag records graduation.
func (s *Scheduler) refreshTokenStatuses(ctx context.Context) {
	if s.store == nil || s.tokens == nil {
		return
	}

	active, err := s.store.GetActiveTokens()
	if err != nil {
		s.metrics.RecordMaintenanceFailure()
		slog.Error("Failed to load active tokens", slog.Any("error", err))
		return
	}

	for i := range active {
		token := &active[i]

		var status *domain.TokenStatus
		err := infra.Retry(ctx, "token status", infra.DefaultRetryAttempts, infra.DefaultRetryBase, func(ctx context.Context) error {
			var fetchErr error
			status, fetchErr = s.tokens.TokenInfo(ctx, token.Mint)
			return fetchErr
		})
		if err != nil {
			s.metrics.RecordMaintenanceFailure()
			slog.Warn("Token status refresh failed",
				slog.String("mint", token.Mint), slog.Any("error", err))
			continue
		}
		if status == nil {
			continue
		}

		if status.Symbol != "" {
			token.Symbol = status.Symbol
		}
		if status.Name != "" {
			token.Name = status.Name
		}
		token.LastPrice = status.PriceSol
		token.MarketCap = status.MarketCap
		token.Complete = status.Complete
		token.LastSyncedAt = time.Now()

		if err := s.store.UpsertToken(token); err != nil {
			s.metrics.RecordMaintenanceFailure()
			slog.Warn("Token status save failed",
				slog.String("mint", token.Mint), slog.Any("error", err))
		}
	}
}

// evictStale removes terminal trades older than the retention window from
// the in-memory ledger and the durable record store. Pending trades and
// positions are never touched.
func (s *Scheduler) evictStale() {
	cutoff := time.Now().Add(-s.retention)

	if s.ledger != nil {
		if evicted := s.ledger.EvictBefore(cutoff); evicted > 0 {
			slog.Info("Evicted stale trades", slog.Int("count", evicted))
		}
	}

	if s.store != nil {
		pruned, err := s.store.PruneTradesBefore(cutoff)
		if err != nil {
			s.metrics.RecordMaintenanceFailure()
			slog.Warn("Trade record pruning failed", slog.Any("error", err))
		} else if pruned > 0 {
			slog.Info("Pruned stale trade records", slog.Int64("count", pruned))
		}
	}
}

// healthChecks verifies every registered connection and attempts recovery
// for any that report down.
func (s *Scheduler) healthChecks(ctx context.Context) {
	for name, source := range s.health {
		if source.IsConnected(ctx) {
			continue
		}

		slog.Warn("Connection down, attempting recovery", slog.String("source", name))
		err := infra.Retry(ctx, name+" reconnect", infra.DefaultRetryAttempts, infra.DefaultRetryBase, func(ctx context.Context) error {
			return source.Reconnect(ctx)
		})
		if err != nil {
			s.metrics.RecordMaintenanceFailure()
			slog.Error("Connection recovery failed",
				slog.String("source", name), slog.Any("error", err))
		}
	}

	if s.store != nil {
		if err := s.store.Ping(); err != nil {
			s.metrics.RecordMaintenanceFailure()
			slog.Error("Storage health check failed", slog.Any("error", err))
		}
	}
}

// PortfolioSnapshot marks open positions against the latest registry prices
// and logs the result. Exposed for the periodic stats report.
func (s *Scheduler) PortfolioSnapshot() {
	if s.ledger == nil || s.store == nil {
		return
	}

	tokens, err := s.store.GetActiveTokens()
	if err != nil {
		return
	}
	prices := make(map[string]decimal.Decimal, len(tokens))
	for _, tok := range tokens {
		if tok.LastPrice.IsPositive() {
			prices[tok.Mint] = tok.LastPrice
		}
	}

	slog.Info("Portfolio snapshot",
		slog.String("balance", s.ledger.Balance().String()),
		slog.String("value", s.ledger.PortfolioValue(prices).String()),
		slog.Int("positions", len(s.ledger.AllPositions())))
}
