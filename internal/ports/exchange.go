package ports

import (
	"context"
	"time"

	"zoneGridBot/internal/domain"
)

// OrderResponse represents the essential details of an order fill.
type OrderResponse struct {
	OrderID        string    // Exchange's order ID (synthetic in paper mode)
	Symbol         string    // Symbol for the order
	Side           domain.OrderSide
	AvgPrice       float64   // Average filled price
	ExecutedQty    float64   // Quantity filled (base units)
	CumulativeCost float64   // Filled notional in quote currency
	Status         string    // Order status (e.g., FILLED)
	Timestamp      time.Time // Time the fill was recorded
}

// ExchangeClient defines the interface for market data retrieval and order
// execution. This abstraction decouples the decision engine from the concrete
// venue; the paper adapter implements it without contacting a live exchange.
type ExchangeClient interface {
	// GetTickerPrice retrieves the last ticker price for a given symbol.
	GetTickerPrice(ctx context.Context, symbol string) (float64, error)

	// GetKlines retrieves historical klines/candlestick data for the given
	// symbol, ordered oldest to newest.
	GetKlines(ctx context.Context, symbol string, interval string, limit int) ([]*domain.Kline, error)

	// GetLotStep retrieves the minimum order-quantity increment for a symbol.
	GetLotStep(ctx context.Context, symbol string) (float64, error)

	// PlaceMarketOrder places a market order and returns the fill details.
	PlaceMarketOrder(ctx context.Context, symbol string, side domain.OrderSide, quantity float64) (*OrderResponse, error)

	// Ping checks connectivity to the venue.
	Ping(ctx context.Context) error
}
