package domain

import "time"

// BotSettings is the singleton hot-reloaded configuration row. It is mutated
// by the operator surface and re-read at the top of every tick, so changes
// take effect without a restart.
type BotSettings struct {
	RSILimit       float64       // Entry blocked when RSI is at or above this value
	TakeProfitUSDT float64       // Profit target per trade in quote currency
	GridStepUSDT   float64       // Spacing between grid levels
	TradeCooldown  time.Duration // Minimum time between two BUYs
	TradeSizeUSDT  float64       // Notional size of each entry
	IsActive       bool          // Master switch; false pauses all decisions
	UpdatedAt      time.Time
}

// Regime is a coarse trend classification derived from trend strength (ADX)
// and price position relative to a long moving average.
type Regime string

const (
	RegimeSideways  Regime = "SIDEWAYS"
	RegimeBullTrend Regime = "BULL_TREND"
	RegimeBearTrend Regime = "BEAR_TREND"
)

// RegimeReading pairs a regime classification with the trend strength that
// produced it.
type RegimeReading struct {
	Regime   Regime
	Strength float64 // ADX value; 0 when the reading is a fail-soft default
}
