package regime

import (
	"context"
	"fmt"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"
	"zoneGridBot/internal/strategy/indicators"
)

// Config holds parameters for market regime classification.
type Config struct {
	Symbol        string
	TrendInterval string  // Coarse timeframe for trend reading, e.g. "1h"
	TrendLimit    int     // Klines fetched for the trend window, e.g. 300
	EMAPeriod     int     // e.g. 200
	ADXPeriod     int     // e.g. 14
	ADXThreshold  float64 // ADX below this reads as sideways, e.g. 25
	RSIInterval   string  // Fine timeframe for the momentum filter, e.g. "5m"
	RSILimit      int     // Klines fetched for the RSI window, e.g. 100
	RSIPeriod     int     // e.g. 14
}

// Analyzer classifies the market into a coarse regime from trend strength
// (ADX) and price position against a long EMA, and computes the momentum
// filter (RSI) on a finer timeframe. Both readings fail soft: on any fetch
// or computation error the analyzer degrades to SIDEWAYS / neutral RSI,
// which narrows entries rather than loosening them.
type Analyzer struct {
	cfg    Config
	market ports.ExchangeClient
	logger ports.Logger
	ema    *indicators.MovingAverage
	adx    *indicators.ADX
	rsi    *indicators.RSI
}

// New creates a regime analyzer.
func New(cfg Config, market ports.ExchangeClient, logger ports.Logger) (*Analyzer, error) {
	if market == nil || logger == nil {
		return nil, fmt.Errorf("market client and logger are required for regime analyzer")
	}
	if cfg.EMAPeriod <= 0 || cfg.ADXPeriod <= 0 || cfg.RSIPeriod <= 0 {
		return nil, fmt.Errorf("indicator periods must be positive")
	}
	if cfg.ADXThreshold <= 0 {
		return nil, fmt.Errorf("ADX threshold must be positive")
	}

	ema := indicators.NewMovingAverage(indicators.MovingAverageConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.EMAPeriod},
		Type:            indicators.ExponentialMovingAverage,
	})
	adx := indicators.NewADX(indicators.ADXConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.ADXPeriod},
	})
	rsi := indicators.NewRSI(indicators.RSIConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.RSIPeriod},
	})

	if cfg.TrendLimit < ema.RequiredDataPoints() {
		return nil, fmt.Errorf("trend window (%d) is smaller than the EMA requirement (%d)", cfg.TrendLimit, ema.RequiredDataPoints())
	}
	if cfg.RSILimit < rsi.RequiredDataPoints() {
		return nil, fmt.Errorf("RSI window (%d) is smaller than the RSI requirement (%d)", cfg.RSILimit, rsi.RequiredDataPoints())
	}

	return &Analyzer{cfg: cfg, market: market, logger: logger, ema: ema, adx: adx, rsi: rsi}, nil
}

// Analyze fetches the trend window and classifies the current regime.
func (a *Analyzer) Analyze(ctx context.Context) domain.RegimeReading {
	fallback := domain.RegimeReading{Regime: domain.RegimeSideways, Strength: 0}

	klines, err := a.market.GetKlines(ctx, a.cfg.Symbol, a.cfg.TrendInterval, a.cfg.TrendLimit)
	if err != nil {
		a.logger.Warn(ctx, "Regime kline fetch failed, degrading to SIDEWAYS", map[string]interface{}{"error": err.Error()})
		return fallback
	}
	if len(klines) == 0 {
		a.logger.Warn(ctx, "Regime kline fetch returned no data, degrading to SIDEWAYS")
		return fallback
	}

	emaValue, err := a.ema.Calculate(ctx, klines)
	if err != nil {
		a.logger.Warn(ctx, "EMA calculation failed, degrading to SIDEWAYS", map[string]interface{}{"error": err.Error()})
		return fallback
	}
	adxValue, err := a.adx.Calculate(ctx, klines)
	if err != nil {
		a.logger.Warn(ctx, "ADX calculation failed, degrading to SIDEWAYS", map[string]interface{}{"error": err.Error()})
		return fallback
	}

	return Classify(klines[len(klines)-1].Close, emaValue, adxValue, a.cfg.ADXThreshold)
}

// Classify is the pure classification rule: weak trend strength reads as
// sideways regardless of price; a strong trend is bullish above the long EMA
// and bearish at or below it.
func Classify(close, ema, adx, adxThreshold float64) domain.RegimeReading {
	reading := domain.RegimeReading{Strength: adx}
	switch {
	case adx < adxThreshold:
		reading.Regime = domain.RegimeSideways
	case close > ema:
		reading.Regime = domain.RegimeBullTrend
	default:
		reading.Regime = domain.RegimeBearTrend
	}
	return reading
}

// MomentumRSI computes the fine-timeframe RSI used by the entry gate.
// Falls back to the neutral value on any failure.
func (a *Analyzer) MomentumRSI(ctx context.Context) float64 {
	klines, err := a.market.GetKlines(ctx, a.cfg.Symbol, a.cfg.RSIInterval, a.cfg.RSILimit)
	if err != nil {
		a.logger.Warn(ctx, "RSI kline fetch failed, using neutral value", map[string]interface{}{"error": err.Error()})
		return indicators.NeutralRSI
	}
	value, err := a.rsi.Calculate(ctx, klines)
	if err != nil {
		a.logger.Warn(ctx, "RSI calculation failed, using neutral value", map[string]interface{}{"error": err.Error()})
		return indicators.NeutralRSI
	}
	return value
}
