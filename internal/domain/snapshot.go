package domain

import "time"

// PortfolioSnapshot is an immutable, timestamped record of portfolio equity,
// PnL and drawdown. Snapshots are appended on a fixed interval and never
// mutated.
type PortfolioSnapshot struct {
	ID                 int64
	Symbol             string
	Price              float64 // Market price at capture time
	TotalEquity        float64 // Initial capital + realized + unrealized PnL
	RealizedPnL        float64 // Sum of net PnL over closed trades
	UnrealizedPnL      float64 // Sum of (price - entry) x qty over open trades
	TotalFeesPaid      float64 // Sum of fees over all trades, open and closed
	OpenTradeCount     int
	TotalPositionBase  float64 // Open position size in base units
	TotalPositionQuote float64 // Open position value in quote currency
	PeakEquity         float64 // Highest equity ever recorded, including this one
	CurrentDrawdownPct float64 // (peak - equity) / peak * 100, never negative
	BaselinePrice      float64 // Buy-and-hold reference price (0 when unset)
	BaselineReturnPct  float64 // Market return vs. baseline (0 when unset)
	SnapshotTime       time.Time
}
