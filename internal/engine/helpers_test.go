package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// fakeExchange fills every market order at the configured price.
type fakeExchange struct {
	price    float64
	lotStep  float64
	orderErr error
	orders   []*ports.OrderResponse
}

func (f *fakeExchange) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return f.price, nil
}

func (f *fakeExchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	return nil, errors.New("not used in engine tests")
}

func (f *fakeExchange) GetLotStep(ctx context.Context, symbol string) (float64, error) {
	return f.lotStep, nil
}

func (f *fakeExchange) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*ports.OrderResponse, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	order := &ports.OrderResponse{
		OrderID:        "fake-1",
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

// fakeTradeRepo keeps trades in memory.
type fakeTradeRepo struct {
	mu        sync.Mutex
	nextID    int64
	trades    map[int64]*domain.Trade
	createErr error
	closeErr  error
}

func newFakeTradeRepo() *fakeTradeRepo {
	return &fakeTradeRepo{nextID: 1, trades: make(map[int64]*domain.Trade)}
}

func (f *fakeTradeRepo) Create(ctx context.Context, trade *domain.Trade) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	trade.ID = f.nextID
	f.nextID++
	f.trades[trade.ID] = trade
	return trade.ID, nil
}

func (f *fakeTradeRepo) CloseTrade(ctx context.Context, trade *domain.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closeErr != nil {
		return f.closeErr
	}
	f.trades[trade.ID] = trade
	return nil
}

func (f *fakeTradeRepo) FindByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.Trade, error) {
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

func (f *fakeTradeRepo) FindOpenByZone(ctx context.Context, zoneName string) ([]*domain.Trade, error) {
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

// fakeNotifier records close payloads.
type fakeNotifier struct {
	mu       sync.Mutex
	payloads []ports.ClosedTradePayload
}

func (f *fakeNotifier) NotifyClose(payload ports.ClosedTradePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

func (f *fakeNotifier) Close() {}

func defaultSettings() *domain.BotSettings {
	return &domain.BotSettings{
		RSILimit:       60,
		TakeProfitUSDT: 200,
		GridStepUSDT:   200,
		TradeCooldown:  5 * time.Minute,
		TradeSizeUSDT:  20,
		IsActive:       true,
	}
}

func activeZone() *domain.Zone {
	return &domain.Zone{
		ID:               1,
		Name:             "Accumulation A",
		PriceLow:         40000,
		PriceHigh:        42000,
		CapitalAllocated: 100,
		Status:           domain.ZoneStatusActive,
	}
}

func sideways() domain.RegimeReading {
	return domain.RegimeReading{Regime: domain.RegimeSideways, Strength: 15}
}

func newTestEntryEngine(ex *fakeExchange, repo *fakeTradeRepo) *EntryEngine {
	e, err := NewEntryEngine(EntryConfig{
		Symbol:             "BTCUSDT",
		Mode:               domain.ModePaper,
		FeeRate:            0.001,
		MaxTradeQty:        0.001,
		BearRSIThreshold:   30,
		OccupancyTolerance: 10,
	}, ex, repo, nopLogger{})
	if err != nil {
		panic(err)
	}
	return e
}

func newTestExitEngine(ex *fakeExchange, repo *fakeTradeRepo, notifier ports.TradeNotifier) *ExitEngine {
	e, err := NewExitEngine(ExitConfig{
		Symbol:                "BTCUSDT",
		Mode:                  domain.ModePaper,
		FeeRate:               0.001,
		BreakevenBufferUSDT:   10,
		SecureTriggerFraction: 0.5,
	}, ex, repo, notifier, nopLogger{})
	if err != nil {
		panic(err)
	}
	return e
}
