package paperexchange

import (
	"context"
	"errors"
	"strings"
	"testing"

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

type stubMarket struct {
	price    float64
	priceErr error
	orders   int
}

func (s *stubMarket) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return s.price, s.priceErr
}

func (s *stubMarket) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	return nil, nil
}

func (s *stubMarket) GetLotStep(ctx context.Context, symbol string) (float64, error) {
	return 0.0001, nil
}

func (s *stubMarket) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*ports.OrderResponse, error) {
	s.orders++
	return nil, errors.New("paper trading must never place real orders")
}

func (s *stubMarket) Ping(ctx context.Context) error { return nil }

func TestPlaceMarketOrder_SynthesizesFill(t *testing.T) {
	market := &stubMarket{price: 40000}
	e, err := New(market, nopLogger{})
	require.NoError(t, err)

	resp, err := e.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.Buy, 0.0005)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.OrderID, "paper-"))
	assert.Equal(t, "FILLED", resp.Status)
	assert.Equal(t, 40000.0, resp.AvgPrice)
	assert.Equal(t, 0.0005, resp.ExecutedQty)
	assert.InDelta(t, 20.0, resp.CumulativeCost, 1e-9)
	assert.Zero(t, market.orders, "no real order may reach the venue")

	// Each synthetic fill gets its own order ID.
	second, err := e.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.Sell, 0.0005)
	require.NoError(t, err)
	assert.NotEqual(t, resp.OrderID, second.OrderID)
}

func TestPlaceMarketOrder_PriceErrorPropagates(t *testing.T) {
	market := &stubMarket{priceErr: errors.New("venue down")}
	e, err := New(market, nopLogger{})
	require.NoError(t, err)

	_, err = e.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.Buy, 0.0005)
	require.Error(t, err)
	assert.Zero(t, market.orders)
}

func TestPlaceMarketOrder_RejectsNonPositiveQuantity(t *testing.T) {
	e, err := New(&stubMarket{price: 40000}, nopLogger{})
	require.NoError(t, err)

	_, err = e.PlaceMarketOrder(context.Background(), "BTCUSDT", domain.Buy, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}
