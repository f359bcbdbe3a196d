package portfolio

import (
	"context"
	"fmt"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"
)

// Snapshotter captures an append-only record of portfolio equity, PnL and
// drawdown at a fixed interval. It reads, it never trades.
type Snapshotter struct {
	symbol    string
	exchange  ports.ExchangeClient
	trades    ports.TradeRepository
	snapshots ports.SnapshotRepository
	baselines ports.BaselineRepository
	logger    ports.Logger
}

// NewSnapshotter creates a snapshotter. The baseline repository may be nil
// when no buy-and-hold reference is configured.
func NewSnapshotter(symbol string, exchange ports.ExchangeClient, trades ports.TradeRepository, snapshots ports.SnapshotRepository, baselines ports.BaselineRepository, logger ports.Logger) (*Snapshotter, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	if exchange == nil || trades == nil || snapshots == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for snapshotter")
	}
	return &Snapshotter{
		symbol:    symbol,
		exchange:  exchange,
		trades:    trades,
		snapshots: snapshots,
		baselines: baselines,
		logger:    logger,
	}, nil
}

// Capture computes the current portfolio state and appends one snapshot.
// The returned snapshot carries the assigned ID.
func (s *Snapshotter) Capture(ctx context.Context, now time.Time) (*domain.PortfolioSnapshot, error) {
	price, err := s.exchange.GetTickerPrice(ctx, s.symbol)
	if err != nil {
		return nil, fmt.Errorf("fetching price for snapshot: %w", err)
	}

	open, err := s.trades.FindByStatus(ctx, domain.TradeStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("loading open trades for snapshot: %w", err)
	}
	closed, err := s.trades.FindByStatus(ctx, domain.TradeStatusClosed)
	if err != nil {
		return nil, fmt.Errorf("loading closed trades for snapshot: %w", err)
	}

	snap := s.build(ctx, price, open, closed, now)

	if _, err := s.snapshots.Create(ctx, snap); err != nil {
		return nil, fmt.Errorf("persisting snapshot: %w", err)
	}

	s.logger.Info(ctx, "Portfolio snapshot captured", map[string]interface{}{
		"price":       snap.Price,
		"equity":      snap.TotalEquity,
		"realized":    snap.RealizedPnL,
		"unrealized":  snap.UnrealizedPnL,
		"openTrades":  snap.OpenTradeCount,
		"drawdownPct": snap.CurrentDrawdownPct,
	})
	return snap, nil
}

func (s *Snapshotter) build(ctx context.Context, price float64, open, closed []*domain.Trade, now time.Time) *domain.PortfolioSnapshot {
	var unrealized, positionBase, positionQuote, fees float64
	for _, t := range open {
		unrealized += (price - t.EntryPrice) * t.Quantity
		positionBase += t.Quantity
		positionQuote += price * t.Quantity
		fees += t.FeeUSDT
	}

	var realized float64
	for _, t := range closed {
		realized += t.PnLUSDT
		fees += t.FeeUSDT
	}

	baselinePrice, initialCapital := s.baseline(ctx)

	equity := initialCapital + realized + unrealized

	peak := s.historicalPeak(ctx)
	if equity > peak {
		peak = equity
	}

	var drawdown float64
	if peak > 0 {
		drawdown = (peak - equity) / peak * 100
		if drawdown < 0 {
			drawdown = 0
		}
	}

	var baselineReturn float64
	if baselinePrice > 0 {
		baselineReturn = (price - baselinePrice) / baselinePrice * 100
	}

	return &domain.PortfolioSnapshot{
		Symbol:             s.symbol,
		Price:              price,
		TotalEquity:        equity,
		RealizedPnL:        realized,
		UnrealizedPnL:      unrealized,
		TotalFeesPaid:      fees,
		OpenTradeCount:     len(open),
		TotalPositionBase:  positionBase,
		TotalPositionQuote: positionQuote,
		PeakEquity:         peak,
		CurrentDrawdownPct: drawdown,
		BaselinePrice:      baselinePrice,
		BaselineReturnPct:  baselineReturn,
		SnapshotTime:       now.UTC(),
	}
}

func (s *Snapshotter) baseline(ctx context.Context) (price, initialCapital float64) {
	if s.baselines == nil {
		return 0, 0
	}
	price, initialCapital, err := s.baselines.Baseline(ctx, s.symbol)
	if err != nil {
		// A missing baseline degrades the snapshot, it does not block it.
		s.logger.Warn(ctx, "Baseline lookup failed, snapshot proceeds without it", map[string]interface{}{
			"error": err.Error(),
		})
		return 0, 0
	}
	return price, initialCapital
}

func (s *Snapshotter) historicalPeak(ctx context.Context) float64 {
	peak, err := s.snapshots.PeakEquity(ctx)
	if err != nil {
		s.logger.Warn(ctx, "Peak equity lookup failed, using current equity as peak", map[string]interface{}{
			"error": err.Error(),
		})
		return 0
	}
	return peak
}
