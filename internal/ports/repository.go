package ports

import (
	"context"
	"time"

	"zoneGridBot/internal/domain"
)

// ZoneRepository defines the interface for reading and administering zone
// configuration. The engine itself only reads; updates come from the
// operator surface.
type ZoneRepository interface {
	// FindByStatus retrieves all zones with the given status, ordered by price_low.
	FindByStatus(ctx context.Context, status domain.ZoneStatus) ([]*domain.Zone, error)
	// UpdateStatus changes the status of a zone by its ID.
	UpdateStatus(ctx context.Context, id int64, status domain.ZoneStatus) error
	// UpdateCapital changes the allocated capital of a zone by its ID.
	UpdateCapital(ctx context.Context, id int64, capital float64) error
}

// TradeRepository defines the interface for storing and retrieving trades.
type TradeRepository interface {
	// Create saves a new OPEN trade and returns its assigned ID.
	Create(ctx context.Context, trade *domain.Trade) (int64, error)
	// CloseTrade persists the exit fields of a closed trade in a single update.
	CloseTrade(ctx context.Context, trade *domain.Trade) error
	// FindByStatus retrieves all trades with the given status, oldest first.
	FindByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.Trade, error)
	// FindOpenByZone retrieves the open trades belonging to a zone.
	FindOpenByZone(ctx context.Context, zoneName string) ([]*domain.Trade, error)
}

// SettingsRepository defines the interface for the singleton hot-reloaded
// bot settings row.
type SettingsRepository interface {
	// Get reads the current settings. Returns ErrNotFound when the row is missing.
	Get(ctx context.Context) (*domain.BotSettings, error)
	// Update replaces the settings row (used by the operator surface and tests).
	Update(ctx context.Context, settings *domain.BotSettings) error
}

// SnapshotRepository defines the interface for append-only portfolio snapshots.
type SnapshotRepository interface {
	// Create appends a snapshot and returns its assigned ID.
	Create(ctx context.Context, snap *domain.PortfolioSnapshot) (int64, error)
	// PeakEquity returns the maximum total equity across all recorded
	// snapshots, or 0 when no history exists.
	PeakEquity(ctx context.Context) (float64, error)
	// FindRecent retrieves the most recent snapshots, newest first.
	FindRecent(ctx context.Context, limit int) ([]*domain.PortfolioSnapshot, error)
}

// BaselineRepository provides the buy-and-hold reference used by the
// snapshotter. Returns 0 values when no baseline is configured.
type BaselineRepository interface {
	// Baseline returns the configured baseline price and initial capital for a symbol.
	Baseline(ctx context.Context, symbol string) (price float64, initialCapital float64, err error)
}

// ClosedTradePayload is the notification emitted after a trade closes.
type ClosedTradePayload struct {
	TradeID         int64              `json:"trade_id"`
	Mode            domain.TradingMode `json:"mode"`
	Pair            string             `json:"pair"`
	EntryPrice      float64            `json:"entry_price"`
	ExitPrice       float64            `json:"exit_price"`
	Quantity        float64            `json:"quantity"`
	PnLUSDT         float64            `json:"pnl_usdt"`
	EntryRSI        float64            `json:"rsi_entry"`
	ExitRSI         float64            `json:"rsi_exit"`
	DurationMinutes float64            `json:"duration_minutes"`
	MarketRegime    domain.Regime      `json:"market_regime"`
	Timestamp       time.Time          `json:"timestamp"`
}

// TradeNotifier receives close events. Delivery is best-effort and must never
// block the decision loop; failures are dropped after logging.
type TradeNotifier interface {
	// NotifyClose enqueues a close event for delivery.
	NotifyClose(payload ClosedTradePayload)
	// Close flushes pending notifications and stops the worker.
	Close()
}
