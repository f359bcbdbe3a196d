package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Store owns the SQLite connection and hands out the per-port repositories.
// All repositories share the single connection; SQLite serializes writes
// internally.
type Store struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite store.
type Config struct {
	DBPath string
	Logger ports.Logger
	// DefaultSettings seeds the singleton settings row when the table is
	// empty. Nil leaves the table unseeded.
	DefaultSettings *domain.BotSettings
}

// NewStore opens (or creates) the database, initializes the schema and seeds
// the settings row.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite store")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/zone_grid_bot.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally; the Go driver benefits from a
	// single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	store := &Store{db: db, logger: cfg.Logger}

	if err := store.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
		return nil, err
	}

	if cfg.DefaultSettings != nil {
		if err := store.seedSettings(context.Background(), cfg.DefaultSettings); err != nil {
			db.Close()
			cfg.Logger.Error(context.Background(), err, "SQLite store initialization failed")
			return nil, err
		}
	}

	return store, nil
}

// initializeSchema creates tables if they don't exist.
func (s *Store) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS zones_config (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		zone_name TEXT NOT NULL UNIQUE,
		price_low REAL NOT NULL,
		price_high REAL NOT NULL,
		capital_allocated REAL NOT NULL,
		status TEXT NOT NULL DEFAULT 'Inactive'
	);

	CREATE TABLE IF NOT EXISTS trade_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		zone_name TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL DEFAULT NULL,
		quantity REAL NOT NULL,
		status TEXT NOT NULL,
		rsi_entry REAL NOT NULL,
		rsi_exit REAL DEFAULT NULL,
		pnl_usdt REAL DEFAULT NULL,
		pnl_percent REAL DEFAULT NULL,
		fee_usdt REAL NOT NULL DEFAULT 0,
		total_usdt REAL NOT NULL,
		close_reason TEXT DEFAULT NULL,
		created_at TIMESTAMP NOT NULL,
		exit_at TIMESTAMP DEFAULT NULL
	);

	CREATE TABLE IF NOT EXISTS bot_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		rsi_limit REAL NOT NULL,
		take_profit_usdt REAL NOT NULL,
		grid_step_usdt REAL NOT NULL,
		trade_cooldown_seconds INTEGER NOT NULL,
		trade_size_usdt REAL NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS portfolio_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		price REAL NOT NULL,
		total_equity REAL NOT NULL,
		realized_pnl REAL NOT NULL,
		unrealized_pnl REAL NOT NULL,
		total_fees_paid REAL NOT NULL,
		open_trade_count INTEGER NOT NULL,
		total_position_base REAL NOT NULL,
		total_position_quote REAL NOT NULL,
		peak_equity REAL NOT NULL,
		current_drawdown_pct REAL NOT NULL,
		baseline_price REAL NOT NULL DEFAULT 0,
		baseline_return_pct REAL NOT NULL DEFAULT 0,
		snapshot_time TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS baseline_prices (
		symbol TEXT PRIMARY KEY,
		baseline_price REAL NOT NULL,
		initial_capital REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trade_log_status ON trade_log (status);
	CREATE INDEX IF NOT EXISTS idx_trade_log_zone_status ON trade_log (zone_name, status);
	CREATE INDEX IF NOT EXISTS idx_zones_config_status ON zones_config (status, price_low);
	CREATE INDEX IF NOT EXISTS idx_snapshots_time ON portfolio_snapshots (snapshot_time);
	`
	_, err := s.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// seedSettings inserts the singleton settings row if it is missing.
func (s *Store) seedSettings(ctx context.Context, defaults *domain.BotSettings) error {
	const query = `
	INSERT OR IGNORE INTO bot_settings
		(id, rsi_limit, take_profit_usdt, grid_step_usdt, trade_cooldown_seconds, trade_size_usdt, is_active, updated_at)
	VALUES (1, ?, ?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		defaults.RSILimit, defaults.TakeProfitUSDT, defaults.GridStepUSDT,
		int64(defaults.TradeCooldown.Seconds()), defaults.TradeSizeUSDT,
		boolToInt(defaults.IsActive), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		s.logger.Info(ctx, "Seeded default bot settings", map[string]interface{}{
			"rsiLimit":   defaults.RSILimit,
			"takeProfit": defaults.TakeProfitUSDT,
			"gridStep":   defaults.GridStepUSDT,
		})
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		s.logger.Info(context.Background(), "Closing SQLite database connection")
		return s.db.Close()
	}
	return nil
}

// Zones returns the zone repository backed by this store.
func (s *Store) Zones() *ZoneRepo { return &ZoneRepo{store: s} }

// Trades returns the trade repository backed by this store.
func (s *Store) Trades() *TradeRepo { return &TradeRepo{store: s} }

// Settings returns the settings repository backed by this store.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{store: s} }

// Snapshots returns the snapshot repository backed by this store.
func (s *Store) Snapshots() *SnapshotRepo { return &SnapshotRepo{store: s} }

// Baselines returns the baseline repository backed by this store.
func (s *Store) Baselines() *BaselineRepo { return &BaselineRepo{store: s} }

// --- ZoneRepository Implementation ---

// ZoneRepo implements ports.ZoneRepository.
type ZoneRepo struct {
	store *Store
}

// FindByStatus retrieves all zones with the given status, ordered by price_low.
func (r *ZoneRepo) FindByStatus(ctx context.Context, status domain.ZoneStatus) ([]*domain.Zone, error) {
	const query = `
	SELECT id, zone_name, price_low, price_high, capital_allocated, status
	FROM zones_config
	WHERE status = ?
	ORDER BY price_low ASC`

	rows, err := r.store.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query zones with status %s: %w", status, err)
	}
	defer rows.Close()

	zones := make([]*domain.Zone, 0)
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone during FindByStatus: %w", err)
		}
		zones = append(zones, zone)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zone rows: %w", err)
	}
	return zones, nil
}

// UpdateStatus changes the status of a zone by its ID.
func (r *ZoneRepo) UpdateStatus(ctx context.Context, id int64, status domain.ZoneStatus) error {
	const query = `UPDATE zones_config SET status = ? WHERE id = ?`

	result, err := r.store.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of zone ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for zone ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("zone ID %d not found for status update: %w", id, ports.ErrNotFound)
	}
	r.store.logger.Debug(ctx, "Zone status updated", map[string]interface{}{"zoneID": id, "status": status})
	return nil
}

// UpdateCapital changes the allocated capital of a zone by its ID.
func (r *ZoneRepo) UpdateCapital(ctx context.Context, id int64, capital float64) error {
	const query = `UPDATE zones_config SET capital_allocated = ? WHERE id = ?`

	result, err := r.store.db.ExecContext(ctx, query, capital, id)
	if err != nil {
		return fmt.Errorf("failed to update capital of zone ID %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for zone ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("zone ID %d not found for capital update: %w", id, ports.ErrNotFound)
	}
	r.store.logger.Debug(ctx, "Zone capital updated", map[string]interface{}{"zoneID": id, "capital": capital})
	return nil
}

// Create inserts a zone row; used by the operator surface and tests.
func (r *ZoneRepo) Create(ctx context.Context, zone *domain.Zone) (int64, error) {
	const query = `
	INSERT INTO zones_config (zone_name, price_low, price_high, capital_allocated, status)
	VALUES (?, ?, ?, ?, ?)`

	result, err := r.store.db.ExecContext(ctx, query,
		zone.Name, zone.PriceLow, zone.PriceHigh, zone.CapitalAllocated, zone.Status)
	if err != nil {
		return 0, fmt.Errorf("failed to insert zone %q: %w", zone.Name, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for zone %q: %w", zone.Name, err)
	}
	zone.ID = id
	return id, nil
}

// --- TradeRepository Implementation ---

// TradeRepo implements ports.TradeRepository.
type TradeRepo struct {
	store *Store
}

// Create saves a new OPEN trade and returns its assigned ID.
func (r *TradeRepo) Create(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trade_log (zone_name, entry_price, quantity, status, rsi_entry, fee_usdt, total_usdt, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.store.db.ExecContext(ctx, query,
		trade.ZoneName, trade.EntryPrice, trade.Quantity, trade.Status,
		trade.EntryRSI, trade.FeeUSDT, trade.TotalUSDT, trade.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for zone %q: %w", trade.ZoneName, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade in zone %q: %w", trade.ZoneName, err)
	}
	trade.ID = id
	r.store.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "zone": trade.ZoneName})
	return id, nil
}

// CloseTrade persists the exit fields of a closed trade in a single update.
// Only an OPEN row can be closed; closing an unknown or already closed trade
// returns ErrNotFound.
func (r *TradeRepo) CloseTrade(ctx context.Context, trade *domain.Trade) error {
	const query = `
	UPDATE trade_log
	SET status = ?, exit_price = ?, rsi_exit = ?, pnl_usdt = ?, pnl_percent = ?,
	    fee_usdt = ?, close_reason = ?, exit_at = ?
	WHERE id = ? AND status = ?`

	result, err := r.store.db.ExecContext(ctx, query,
		trade.Status, trade.ExitPrice, trade.ExitRSI, trade.PnLUSDT, trade.PnLPercent,
		trade.FeeUSDT, trade.CloseReason, trade.ExitAt,
		trade.ID, domain.TradeStatusOpen)
	if err != nil {
		return fmt.Errorf("failed to close trade ID %d: %w", trade.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for close of trade ID %d: %w", trade.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("open trade ID %d not found for close: %w", trade.ID, ports.ErrNotFound)
	}
	r.store.logger.Debug(ctx, "Trade closed", map[string]interface{}{"tradeID": trade.ID, "reason": trade.CloseReason, "pnl": trade.PnLUSDT})
	return nil
}

// FindByStatus retrieves all trades with the given status, oldest first.
func (r *TradeRepo) FindByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.Trade, error) {
	const query = tradeColumns + `
	WHERE status = ?
	ORDER BY created_at ASC, id ASC`

	rows, err := r.store.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades with status %s: %w", status, err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// FindOpenByZone retrieves the open trades belonging to a zone, oldest first.
func (r *TradeRepo) FindOpenByZone(ctx context.Context, zoneName string) ([]*domain.Trade, error) {
	const query = tradeColumns + `
	WHERE zone_name = ? AND status = ?
	ORDER BY created_at ASC, id ASC`

	rows, err := r.store.db.QueryContext(ctx, query, zoneName, domain.TradeStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to query open trades for zone %q: %w", zoneName, err)
	}
	defer rows.Close()
	return collectTrades(rows)
}

// --- SettingsRepository Implementation ---

// SettingsRepo implements ports.SettingsRepository over the singleton row.
type SettingsRepo struct {
	store *Store
}

// Get reads the singleton settings row.
func (r *SettingsRepo) Get(ctx context.Context) (*domain.BotSettings, error) {
	const query = `
	SELECT rsi_limit, take_profit_usdt, grid_step_usdt, trade_cooldown_seconds, trade_size_usdt, is_active, updated_at
	FROM bot_settings
	WHERE id = 1`

	s := &domain.BotSettings{}
	var cooldownSeconds int64
	var isActive int
	err := r.store.db.QueryRowContext(ctx, query).Scan(
		&s.RSILimit, &s.TakeProfitUSDT, &s.GridStepUSDT, &cooldownSeconds, &s.TradeSizeUSDT, &isActive, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bot settings row missing: %w", ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query bot settings: %w", err)
	}
	s.TradeCooldown = time.Duration(cooldownSeconds) * time.Second
	s.IsActive = isActive != 0
	return s, nil
}

// Update replaces the singleton settings row.
func (r *SettingsRepo) Update(ctx context.Context, settings *domain.BotSettings) error {
	const query = `
	INSERT OR REPLACE INTO bot_settings
		(id, rsi_limit, take_profit_usdt, grid_step_usdt, trade_cooldown_seconds, trade_size_usdt, is_active, updated_at)
	VALUES (1, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.store.db.ExecContext(ctx, query,
		settings.RSILimit, settings.TakeProfitUSDT, settings.GridStepUSDT,
		int64(settings.TradeCooldown.Seconds()), settings.TradeSizeUSDT,
		boolToInt(settings.IsActive), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update bot settings: %w", err)
	}
	r.store.logger.Debug(ctx, "Bot settings updated", map[string]interface{}{"isActive": settings.IsActive})
	return nil
}

// --- SnapshotRepository Implementation ---

// SnapshotRepo implements ports.SnapshotRepository as an append-only log.
type SnapshotRepo struct {
	store *Store
}

// Create appends a portfolio snapshot and returns its assigned ID.
func (r *SnapshotRepo) Create(ctx context.Context, snap *domain.PortfolioSnapshot) (int64, error) {
	const query = `
	INSERT INTO portfolio_snapshots
		(symbol, price, total_equity, realized_pnl, unrealized_pnl, total_fees_paid,
		 open_trade_count, total_position_base, total_position_quote, peak_equity,
		 current_drawdown_pct, baseline_price, baseline_return_pct, snapshot_time)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.store.db.ExecContext(ctx, query,
		snap.Symbol, snap.Price, snap.TotalEquity, snap.RealizedPnL, snap.UnrealizedPnL,
		snap.TotalFeesPaid, snap.OpenTradeCount, snap.TotalPositionBase, snap.TotalPositionQuote,
		snap.PeakEquity, snap.CurrentDrawdownPct, snap.BaselinePrice, snap.BaselineReturnPct,
		snap.SnapshotTime)
	if err != nil {
		return 0, fmt.Errorf("failed to insert portfolio snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for snapshot: %w", err)
	}
	snap.ID = id
	return id, nil
}

// PeakEquity returns the maximum total equity across all recorded snapshots,
// or 0 when no history exists.
func (r *SnapshotRepo) PeakEquity(ctx context.Context) (float64, error) {
	const query = `SELECT COALESCE(MAX(total_equity), 0) FROM portfolio_snapshots`
	var peak float64
	if err := r.store.db.QueryRowContext(ctx, query).Scan(&peak); err != nil {
		return 0, fmt.Errorf("failed to query peak equity: %w", err)
	}
	return peak, nil
}

// FindRecent retrieves the most recent snapshots, newest first.
func (r *SnapshotRepo) FindRecent(ctx context.Context, limit int) ([]*domain.PortfolioSnapshot, error) {
	const query = `
	SELECT id, symbol, price, total_equity, realized_pnl, unrealized_pnl, total_fees_paid,
	       open_trade_count, total_position_base, total_position_quote, peak_equity,
	       current_drawdown_pct, baseline_price, baseline_return_pct, snapshot_time
	FROM portfolio_snapshots
	ORDER BY snapshot_time DESC, id DESC
	LIMIT ?`

	rows, err := r.store.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer rows.Close()

	snaps := make([]*domain.PortfolioSnapshot, 0)
	for rows.Next() {
		snap := &domain.PortfolioSnapshot{}
		err := rows.Scan(
			&snap.ID, &snap.Symbol, &snap.Price, &snap.TotalEquity, &snap.RealizedPnL,
			&snap.UnrealizedPnL, &snap.TotalFeesPaid, &snap.OpenTradeCount,
			&snap.TotalPositionBase, &snap.TotalPositionQuote, &snap.PeakEquity,
			&snap.CurrentDrawdownPct, &snap.BaselinePrice, &snap.BaselineReturnPct,
			&snap.SnapshotTime)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot during FindRecent: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snaps, nil
}

// --- BaselineRepository Implementation ---

// BaselineRepo implements ports.BaselineRepository.
type BaselineRepo struct {
	store *Store
}

// Baseline returns the configured baseline price and initial capital for a
// symbol, or zero values when no baseline is configured.
func (r *BaselineRepo) Baseline(ctx context.Context, symbol string) (float64, float64, error) {
	const query = `SELECT baseline_price, initial_capital FROM baseline_prices WHERE symbol = ?`

	var price, capital float64
	err := r.store.db.QueryRowContext(ctx, query, symbol).Scan(&price, &capital)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("failed to query baseline for symbol %s: %w", symbol, err)
	}
	return price, capital, nil
}

// Set stores or replaces the buy-and-hold reference for a symbol.
func (r *BaselineRepo) Set(ctx context.Context, symbol string, price, initialCapital float64) error {
	const query = `
	INSERT OR REPLACE INTO baseline_prices (symbol, baseline_price, initial_capital)
	VALUES (?, ?, ?)`

	if _, err := r.store.db.ExecContext(ctx, query, symbol, price, initialCapital); err != nil {
		return fmt.Errorf("failed to set baseline for symbol %s: %w", symbol, err)
	}
	return nil
}

// --- Helper Scan Functions ---

const tradeColumns = `
	SELECT id, zone_name, entry_price, COALESCE(exit_price, 0), quantity, status,
	       rsi_entry, COALESCE(rsi_exit, 0), COALESCE(pnl_usdt, 0), COALESCE(pnl_percent, 0),
	       fee_usdt, total_usdt, close_reason, created_at, exit_at
	FROM trade_log`

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanZone scans a row into a domain.Zone struct.
func scanZone(s scanner) (*domain.Zone, error) {
	z := &domain.Zone{}
	var status string
	err := s.Scan(&z.ID, &z.Name, &z.PriceLow, &z.PriceHigh, &z.CapitalAllocated, &status)
	if err != nil {
		return nil, err
	}
	z.Status = domain.ZoneStatus(status)
	return z, nil
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var status string
	var closeReason sql.NullString
	var exitAt sql.NullTime
	err := s.Scan(
		&t.ID, &t.ZoneName, &t.EntryPrice, &t.ExitPrice, &t.Quantity, &status,
		&t.EntryRSI, &t.ExitRSI, &t.PnLUSDT, &t.PnLPercent,
		&t.FeeUSDT, &t.TotalUSDT, &closeReason, &t.CreatedAt, &exitAt)
	if err != nil {
		return nil, err
	}
	t.Status = domain.TradeStatus(status)
	if closeReason.Valid {
		t.CloseReason = domain.CloseReason(closeReason.String)
	}
	if exitAt.Valid {
		t.ExitAt = exitAt.Time
	}
	return t, nil
}

func collectTrades(rows *sql.Rows) ([]*domain.Trade, error) {
	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade row: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
