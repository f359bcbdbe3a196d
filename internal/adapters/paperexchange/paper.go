package paperexchange

import (
	"context"
	"fmt"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"

	"github.com/google/uuid"
)

// Exchange is a paper-trading wrapper around a real exchange client. Market
// data calls pass through untouched; orders never reach the venue and are
// synthesized as immediate fills at the current ticker price.
type Exchange struct {
	market ports.ExchangeClient
	logger ports.Logger
}

// New creates a paper exchange delegating market data to the given client.
func New(market ports.ExchangeClient, logger ports.Logger) (*Exchange, error) {
	if market == nil {
		return nil, fmt.Errorf("market data client is required for paper exchange")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for paper exchange")
	}
	return &Exchange{market: market, logger: logger}, nil
}

// GetTickerPrice delegates to the underlying market data client.
func (e *Exchange) GetTickerPrice(ctx context.Context, symbol string) (float64, error) {
	return e.market.GetTickerPrice(ctx, symbol)
}

// GetKlines delegates to the underlying market data client.
func (e *Exchange) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Kline, error) {
	return e.market.GetKlines(ctx, symbol, interval, limit)
}

// GetLotStep delegates to the underlying market data client.
func (e *Exchange) GetLotStep(ctx context.Context, symbol string) (float64, error) {
	return e.market.GetLotStep(ctx, symbol)
}

// PlaceMarketOrder synthesizes a FILLED order at the current ticker price.
func (e *Exchange) PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*ports.OrderResponse, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %.8f", ports.ErrInvalidRequest, quantity)
	}

	price, err := e.market.GetTickerPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("paper fill needs a reference price: %w", err)
	}

	resp := &ports.OrderResponse{
		OrderID:        "paper-" + uuid.NewString(),
		Symbol:         symbol,
		Side:           side,
		AvgPrice:       price,
		ExecutedQty:    quantity,
		CumulativeCost: price * quantity,
		Status:         "FILLED",
		Timestamp:      time.Now().UTC(),
	}
	e.logger.Info(ctx, "Paper order filled", map[string]interface{}{
		"orderID":  resp.OrderID,
		"symbol":   symbol,
		"side":     side,
		"price":    price,
		"quantity": quantity,
	})
	return resp, nil
}

// Ping delegates to the underlying market data client.
func (e *Exchange) Ping(ctx context.Context) error {
	return e.market.Ping(ctx)
}
