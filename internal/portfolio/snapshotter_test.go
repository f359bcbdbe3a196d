package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (nopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (nopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

type stubExchange struct {
	price    float64
	priceErr error
}

func (s *stubExchange) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return s.price, s.priceErr
}

func (s *stubExchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	return nil, errors.New("not implemented")
}

func (s *stubExchange) GetLotStep(ctx context.Context, symbol string) (float64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubExchange) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*ports.OrderResponse, error) {
	return nil, errors.New("not implemented")
}

func (s *stubExchange) Ping(ctx context.Context) error { return nil }

type stubTrades struct {
	open   []*domain.Trade
	closed []*domain.Trade
}

func (s *stubTrades) Create(ctx context.Context, trade *domain.Trade) (int64, error) {
	return 0, errors.New("not implemented")
}

func (s *stubTrades) CloseTrade(ctx context.Context, trade *domain.Trade) error {
	return errors.New("not implemented")
}

func (s *stubTrades) FindByStatus(ctx context.Context, status domain.TradeStatus) ([]*domain.Trade, error) {
	if status == domain.TradeStatusOpen {
		return s.open, nil
	}
	return s.closed, nil
}

func (s *stubTrades) FindOpenByZone(ctx context.Context, zoneName string) ([]*domain.Trade, error) {
	return nil, errors.New("not implemented")
}

type stubSnapshots struct {
	peak    float64
	peakErr error
	created []*domain.PortfolioSnapshot
}

func (s *stubSnapshots) Create(ctx context.Context, snap *domain.PortfolioSnapshot) (int64, error) {
	s.created = append(s.created, snap)
	snap.ID = int64(len(s.created))
	return snap.ID, nil
}

func (s *stubSnapshots) PeakEquity(ctx context.Context) (float64, error) {
	return s.peak, s.peakErr
}

func (s *stubSnapshots) FindRecent(ctx context.Context, limit int) ([]*domain.PortfolioSnapshot, error) {
	return nil, errors.New("not implemented")
}

type stubBaseline struct {
	price   float64
	capital float64
	err     error
}

func (s *stubBaseline) Baseline(ctx context.Context, symbol string) (float64, float64, error) {
	return s.price, s.capital, s.err
}

func openTrade(entry, qty, fee float64) *domain.Trade {
	return &domain.Trade{
		ZoneName:   "Accumulation A",
		EntryPrice: entry,
		Quantity:   qty,
		Status:     domain.TradeStatusOpen,
		FeeUSDT:    fee,
		TotalUSDT:  entry * qty,
		CreatedAt:  time.Now().Add(-time.Hour),
	}
}

func closedTrade(pnl, fee float64) *domain.Trade {
	return &domain.Trade{
		ZoneName: "Accumulation A",
		Status:   domain.TradeStatusClosed,
		PnLUSDT:  pnl,
		FeeUSDT:  fee,
	}
}

func TestCapture_ComputesPortfolioState(t *testing.T) {
	exchange := &stubExchange{price: 41000}
	trades := &stubTrades{
		open: []*domain.Trade{
			openTrade(40000, 0.0005, 0.02),
			openTrade(40200, 0.0004, 0.016),
		},
		closed: []*domain.Trade{
			closedTrade(0.06, 0.04),
			closedTrade(-0.04, 0.04),
		},
	}
	snapshots := &stubSnapshots{peak: 1000.5}
	baseline := &stubBaseline{price: 40000, capital: 1000}

	s, err := NewSnapshotter("BTCUSDT", exchange, trades, snapshots, baseline, nopLogger{})
	require.NoError(t, err)

	now := time.Now()
	snap, err := s.Capture(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, snapshots.created, 1)

	// Unrealized: (41000-40000)*0.0005 + (41000-40200)*0.0004 = 0.5 + 0.32.
	assert.InDelta(t, 0.82, snap.UnrealizedPnL, 1e-9)
	assert.InDelta(t, 0.02, snap.RealizedPnL, 1e-9)
	assert.InDelta(t, 0.116, snap.TotalFeesPaid, 1e-9)
	assert.InDelta(t, 1000.84, snap.TotalEquity, 1e-9)
	assert.Equal(t, 2, snap.OpenTradeCount)
	assert.InDelta(t, 0.0009, snap.TotalPositionBase, 1e-12)
	assert.InDelta(t, 41000*0.0009, snap.TotalPositionQuote, 1e-9)

	// Current equity exceeds the stored peak, so the peak advances.
	assert.InDelta(t, 1000.84, snap.PeakEquity, 1e-9)
	assert.Zero(t, snap.CurrentDrawdownPct)

	assert.InDelta(t, 40000, snap.BaselinePrice, 1e-9)
	assert.InDelta(t, 2.5, snap.BaselineReturnPct, 1e-9)
	assert.Equal(t, now.UTC(), snap.SnapshotTime)
}

func TestCapture_DrawdownAgainstHistoricalPeak(t *testing.T) {
	exchange := &stubExchange{price: 39000}
	trades := &stubTrades{
		open: []*domain.Trade{openTrade(40000, 0.01, 0.4)},
	}
	snapshots := &stubSnapshots{peak: 1005}
	baseline := &stubBaseline{price: 40000, capital: 1000}

	s, err := NewSnapshotter("BTCUSDT", exchange, trades, snapshots, baseline, nopLogger{})
	require.NoError(t, err)

	snap, err := s.Capture(context.Background(), time.Now())
	require.NoError(t, err)

	// Equity 1000 - 10 = 990 against a peak of 1005.
	assert.InDelta(t, 990, snap.TotalEquity, 1e-9)
	assert.InDelta(t, 1005, snap.PeakEquity, 1e-9)
	assert.InDelta(t, (1005.0-990)/1005*100, snap.CurrentDrawdownPct, 1e-9)
	assert.InDelta(t, -2.5, snap.BaselineReturnPct, 1e-9)
}

func TestCapture_NoBaselineConfigured(t *testing.T) {
	exchange := &stubExchange{price: 41000}
	trades := &stubTrades{closed: []*domain.Trade{closedTrade(5, 0.1)}}
	snapshots := &stubSnapshots{}

	s, err := NewSnapshotter("BTCUSDT", exchange, trades, snapshots, nil, nopLogger{})
	require.NoError(t, err)

	snap, err := s.Capture(context.Background(), time.Now())
	require.NoError(t, err)

	// Without initial capital the equity is just the PnL sum.
	assert.InDelta(t, 5, snap.TotalEquity, 1e-9)
	assert.Zero(t, snap.BaselinePrice)
	assert.Zero(t, snap.BaselineReturnPct)
}

func TestCapture_BaselineErrorDegradesGracefully(t *testing.T) {
	exchange := &stubExchange{price: 41000}
	trades := &stubTrades{}
	snapshots := &stubSnapshots{}
	baseline := &stubBaseline{err: errors.New("table missing")}

	s, err := NewSnapshotter("BTCUSDT", exchange, trades, snapshots, baseline, nopLogger{})
	require.NoError(t, err)

	snap, err := s.Capture(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, snap.BaselinePrice)
	assert.Zero(t, snap.TotalEquity)
	assert.Zero(t, snap.CurrentDrawdownPct)
}

func TestCapture_PriceFetchErrorAborts(t *testing.T) {
	exchange := &stubExchange{priceErr: errors.New("venue down")}
	snapshots := &stubSnapshots{}

	s, err := NewSnapshotter("BTCUSDT", exchange, &stubTrades{}, snapshots, nil, nopLogger{})
	require.NoError(t, err)

	_, err = s.Capture(context.Background(), time.Now())
	require.Error(t, err)
	assert.Empty(t, snapshots.created)
}
