package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"zoneGridBot/config"
	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/engine"
	"zoneGridBot/internal/portfolio"
	"zoneGridBot/internal/ports"
	"zoneGridBot/internal/regime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// fakeExchange serves a fixed price and fills orders at it. Kline requests
// fail, which drives the analyzer into its fail-soft defaults.
type fakeExchange struct {
	mu     sync.Mutex
	price  float64
	orders []*ports.OrderResponse
}

func (f *fakeExchange) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price, nil
}

func (f *fakeExchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	return nil, errors.New("no kline data in test")
}

func (f *fakeExchange) GetLotStep(ctx context.Context, symbol string) (float64, error) {
	return 0.0001, nil
}

func (f *fakeExchange) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*ports.OrderResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order := &ports.OrderResponse{
		OrderID:        "test-1",
		Symbol:         symbol,
		Side:           side,
		AvgPrice:       f.price,
		ExecutedQty:    quantity,
		CumulativeCost: f.price * quantity,
		Status:         "FILLED",
		Timestamp:      time.Now(),
	}
	f.orders = append(f.orders, order)
	return order, nil
}

func (f *fakeExchange) Ping(ctx context.Context) error { return nil }

func (f *fakeExchange) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeExchange) setPrice(p float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = p
}

type fakeZones struct {
	zones []*domain.Zone
}

func (f *fakeZones) FindByStatus(ctx context.Context, status domain.ZoneStatus) ([]*domain.Zone, error) {
	return f.zones, nil
}

func (f *fakeZones) UpdateStatus(ctx context.Context, id int64, status domain.ZoneStatus) error {
	return errors.New("not implemented")
}

func (f *fakeZones) UpdateCapital(ctx context.Context, id int64, capital float64) error {
	return errors.New("not implemented")
}

type fakeTrades struct {
	mu     sync.Mutex
	nextID int64
	trades map[int64]*domain.Trade
}

func newFakeTrades() *fakeTrades {
	return &fakeTrades{nextID: 1, trades: make(map[int64]*domain.Trade)}
}

func (f *fakeTrades) Create(ctx context.Context, trade *domain.Trade) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trade.ID = f.nextID
	f.nextID++
	f.trades[trade.ID] = trade
	return trade.ID, nil
}

func (f *fakeTrades) CloseTrade(ctx context.Context, trade *domain.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades[trade.ID] = trade
	return nil
}

func (f *fakeTrades) FindByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.Trade
	for _, t := range f.trades {
		if t.Status == status {
			result = append(result, t)
		}
	}
	return result, nil
}

func (f *fakeTrades) FindOpenByZone(ctx context.Context, zoneName string) ([]*domain.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*domain.Trade
	for _, t := range f.trades {
		if t.IsOpen() && t.ZoneName == zoneName {
			result = append(result, t)
		}
	}
	return result, nil
}

type fakeSettings struct {
	mu       sync.Mutex
	settings *domain.BotSettings
}

func (f *fakeSettings) Get(ctx context.Context) (*domain.BotSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy := *f.settings
	return &copy, nil
}

func (f *fakeSettings) Update(ctx context.Context, settings *domain.BotSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = settings
	return nil
}

type fakeSnapshots struct {
	mu      sync.Mutex
	created int
}

func (f *fakeSnapshots) Create(ctx context.Context, snap *domain.PortfolioSnapshot) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	return int64(f.created), nil
}

func (f *fakeSnapshots) PeakEquity(ctx context.Context) (float64, error) { return 0, nil }

func (f *fakeSnapshots) FindRecent(ctx context.Context, limit int) ([]*domain.PortfolioSnapshot, error) {
	return nil, nil
}

func (f *fakeSnapshots) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created
}

func testConfig() *config.Config {
	return &config.Config{
		Mode:                  domain.ModePaper,
		Symbol:                "BTCUSDT",
		PollInterval:          10 * time.Millisecond,
		SnapshotInterval:      time.Hour,
		ErrorBackoff:          time.Millisecond,
		FeeRate:               0.001,
		MaxTradeQty:           0.001,
		BreakevenBufferUSDT:   10,
		SecureTriggerFraction: 0.5,
		OccupancyTolerance:    10,
		BearRSIThreshold:      30,
	}
}

func testService(t *testing.T, cfg *config.Config, exchange *fakeExchange, trades *fakeTrades, zones *fakeZones, settings *fakeSettings, snapshots *fakeSnapshots) *Service {
	t.Helper()

	analyzer, err := regime.New(regime.Config{
		Symbol:        cfg.Symbol,
		TrendInterval: "1h",
		TrendLimit:    300,
		EMAPeriod:     200,
		ADXPeriod:     14,
		ADXThreshold:  25,
		RSIInterval:   "5m",
		RSILimit:      100,
		RSIPeriod:     14,
	}, exchange, nopLogger{})
	require.NoError(t, err)

	entry, err := engine.NewEntryEngine(engine.EntryConfig{
		Symbol:             cfg.Symbol,
		Mode:               cfg.Mode,
		FeeRate:            cfg.FeeRate,
		MaxTradeQty:        cfg.MaxTradeQty,
		BearRSIThreshold:   cfg.BearRSIThreshold,
		OccupancyTolerance: cfg.OccupancyTolerance,
	}, exchange, trades, nopLogger{})
	require.NoError(t, err)

	exit, err := engine.NewExitEngine(engine.ExitConfig{
		Symbol:                cfg.Symbol,
		Mode:                  cfg.Mode,
		FeeRate:               cfg.FeeRate,
		BreakevenBufferUSDT:   cfg.BreakevenBufferUSDT,
		SecureTriggerFraction: cfg.SecureTriggerFraction,
	}, exchange, trades, nil, nopLogger{})
	require.NoError(t, err)

	snapshotter, err := portfolio.NewSnapshotter(cfg.Symbol, exchange, trades, snapshots, nil, nopLogger{})
	require.NoError(t, err)

	svc, err := NewService(cfg, nopLogger{}, exchange, zones, trades, settings, analyzer, entry, exit, snapshotter)
	require.NoError(t, err)
	return svc
}

func activeSettings() *fakeSettings {
	return &fakeSettings{settings: &domain.BotSettings{
		RSILimit:       60,
		TakeProfitUSDT: 200,
		GridStepUSDT:   200,
		TradeCooldown:  5 * time.Minute,
		TradeSizeUSDT:  20,
		IsActive:       true,
	}}
}

func runBriefly(t *testing.T, svc *Service, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, svc.Start(ctx))
}

func TestService_TickOpensTradeInsideZone(t *testing.T) {
	exchange := &fakeExchange{price: 40000}
	trades := newFakeTrades()
	zones := &fakeZones{zones: []*domain.Zone{{
		ID: 1, Name: "Accumulation A", PriceLow: 40000, PriceHigh: 42000,
		CapitalAllocated: 100, Status: domain.ZoneStatusActive,
	}}}
	settings := activeSettings()
	snapshots := &fakeSnapshots{}

	svc := testService(t, testConfig(), exchange, trades, zones, settings, snapshots)
	runBriefly(t, svc, 100*time.Millisecond)

	// With failing kline data the analyzer degrades to SIDEWAYS and a
	// neutral RSI of 50, which is below the limit of 60, so the first tick
	// buys at the zone bottom. The cooldown blocks every later tick.
	open, err := trades.FindByStatus(context.Background(), domain.TradeStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Accumulation A", open[0].ZoneName)
	assert.Equal(t, 40000.0, open[0].EntryPrice)
	assert.Equal(t, 1, exchange.orderCount())
	assert.Equal(t, 1, snapshots.count(), "first tick captures the initial snapshot")
}

func TestService_PausedSettingsSkipEverything(t *testing.T) {
	exchange := &fakeExchange{price: 40000}
	trades := newFakeTrades()
	zones := &fakeZones{zones: []*domain.Zone{{
		ID: 1, Name: "Accumulation A", PriceLow: 40000, PriceHigh: 42000,
		CapitalAllocated: 100, Status: domain.ZoneStatusActive,
	}}}
	settings := activeSettings()
	settings.settings.IsActive = false
	snapshots := &fakeSnapshots{}

	svc := testService(t, testConfig(), exchange, trades, zones, settings, snapshots)
	runBriefly(t, svc, 60*time.Millisecond)

	assert.Zero(t, exchange.orderCount())
	assert.Zero(t, snapshots.count(), "a paused bot does not snapshot either")
}

func TestService_PriceOutsideZonesPlacesNoOrders(t *testing.T) {
	exchange := &fakeExchange{price: 50000}
	trades := newFakeTrades()
	zones := &fakeZones{zones: []*domain.Zone{{
		ID: 1, Name: "Accumulation A", PriceLow: 40000, PriceHigh: 42000,
		CapitalAllocated: 100, Status: domain.ZoneStatusActive,
	}}}

	svc := testService(t, testConfig(), exchange, trades, zones, activeSettings(), &fakeSnapshots{})
	runBriefly(t, svc, 60*time.Millisecond)

	assert.Zero(t, exchange.orderCount())
}

func TestService_ExitRunsEvenOutsideZones(t *testing.T) {
	exchange := &fakeExchange{price: 42300}
	trades := newFakeTrades()
	zones := &fakeZones{zones: []*domain.Zone{{
		ID: 1, Name: "Accumulation A", PriceLow: 40000, PriceHigh: 42000,
		CapitalAllocated: 100, Status: domain.ZoneStatusActive,
	}}}

	// A position opened near the zone top has its target above the zone;
	// the exit pass must close it while the price is outside every zone.
	trade, err := domain.NewOpenTrade("Accumulation A", 42000, 0.0005, 0.021, 40, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = trades.Create(context.Background(), trade)
	require.NoError(t, err)

	svc := testService(t, testConfig(), exchange, trades, zones, activeSettings(), &fakeSnapshots{})
	runBriefly(t, svc, 100*time.Millisecond)

	closed, err := trades.FindByStatus(context.Background(), domain.TradeStatusClosed)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, domain.CloseReasonTakeProfit, closed[0].CloseReason)
	assert.Equal(t, 42300.0, closed[0].ExitPrice)
}

// TestService_CloseDoesNotFreeBudgetSameTick pins the pass ordering: entry
// always evaluates against the open set as it stood before this tick's
// exits, so capital freed by a close is only spendable from the next tick on.
func TestService_CloseDoesNotFreeBudgetSameTick(t *testing.T) {
	exchange := &fakeExchange{price: 40150}
	trades := newFakeTrades()
	zones := &fakeZones{zones: []*domain.Zone{{
		ID: 1, Name: "Accumulation A", PriceLow: 40000, PriceHigh: 42000,
		CapitalAllocated: 25, Status: domain.ZoneStatusActive,
	}}}

	// One open position worth 20 USDT; the 25 USDT budget cannot take a
	// second 20 USDT entry while it is open.
	trade, err := domain.NewOpenTrade("Accumulation A", 40000, 0.0005, 0.02, 40, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = trades.Create(context.Background(), trade)
	require.NoError(t, err)

	svc := testService(t, testConfig(), exchange, trades, zones, activeSettings(), &fakeSnapshots{})

	// Tick 1: 40150 crosses the secure trigger; entry stays budget-blocked.
	require.NoError(t, svc.tick(context.Background(), time.Now()))
	assert.Zero(t, exchange.orderCount())

	// Tick 2: the retrace to 40005 triggers the breakeven close. The entry
	// pass saw the position still open, so only the SELL may execute.
	exchange.setPrice(40005)
	require.NoError(t, svc.tick(context.Background(), time.Now()))

	assert.Equal(t, 1, exchange.orderCount(), "a close must not fund a same-tick re-entry")
	open, err := trades.FindByStatus(context.Background(), domain.TradeStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, open)
	closed, err := trades.FindByStatus(context.Background(), domain.TradeStatusClosed)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, domain.CloseReasonBreakevenProtect, closed[0].CloseReason)
}

func TestSelectZone_LowestMatchWins(t *testing.T) {
	zones := []*domain.Zone{
		{Name: "Low", PriceLow: 40000, PriceHigh: 42000, Status: domain.ZoneStatusActive},
		{Name: "Overlap", PriceLow: 41000, PriceHigh: 43000, Status: domain.ZoneStatusActive},
	}

	z := selectZone(zones, 41500)
	require.NotNil(t, z)
	assert.Equal(t, "Low", z.Name)

	assert.Nil(t, selectZone(zones, 39000))
	assert.Nil(t, selectZone(nil, 41000))
}
