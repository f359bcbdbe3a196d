package indicators

import (
	"context"
	"fmt"
	"math"

	"zoneGridBot/internal/domain"
)

// ADXConfig holds configuration for the Average Directional Index indicator
type ADXConfig struct {
	IndicatorConfig
}

// ADX implements the Average Directional Index, a measure of trend strength
// regardless of direction. Values below ~25 indicate a ranging market.
type ADX struct {
	BaseIndicator
}

// NewADX creates a new Average Directional Index indicator instance
func NewADX(config ADXConfig) *ADX {
	return &ADX{BaseIndicator: BaseIndicator{Config: config.IndicatorConfig}}
}

// Name returns the name of the indicator
func (a *ADX) Name() string {
	return "ADX"
}

// RequiredDataPoints returns the minimum number of klines needed for
// calculation. The ADX needs one full period of directional movement to seed
// the smoothed DI lines and a second period of DX values to seed the ADX.
func (a *ADX) RequiredDataPoints() int {
	return 2*a.Config.Period + 1
}

// Calculate computes the ADX value using Wilder's smoothing method.
func (a *ADX) Calculate(ctx context.Context, klines []*domain.Kline) (float64, error) {
	period := a.Config.Period
	if len(klines) < a.RequiredDataPoints() {
		return 0, fmt.Errorf("not enough data points for ADX calculation: need %d, got %d", a.RequiredDataPoints(), len(klines))
	}

	n := len(klines) - 1
	trueRange := make([]float64, n)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < len(klines); i++ {
		high := klines[i].High
		low := klines[i].Low
		prevClose := klines[i-1].Close

		upMove := high - klines[i-1].High
		downMove := klines[i-1].Low - low
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}

		tr1 := high - low
		tr2 := math.Abs(high - prevClose)
		tr3 := math.Abs(low - prevClose)
		trueRange[i-1] = math.Max(tr1, math.Max(tr2, tr3))
	}

	// Seed the smoothed sums over the first period.
	var smTR, smPlusDM, smMinusDM float64
	for i := 0; i < period; i++ {
		smTR += trueRange[i]
		smPlusDM += plusDM[i]
		smMinusDM += minusDM[i]
	}

	dx := func() float64 {
		if smTR == 0 {
			return 0
		}
		plusDI := 100 * smPlusDM / smTR
		minusDI := 100 * smMinusDM / smTR
		sum := plusDI + minusDI
		if sum == 0 {
			return 0
		}
		return 100 * math.Abs(plusDI-minusDI) / sum
	}

	dxValues := make([]float64, 0, n-period+1)
	dxValues = append(dxValues, dx())

	for i := period; i < n; i++ {
		smTR = smTR - smTR/float64(period) + trueRange[i]
		smPlusDM = smPlusDM - smPlusDM/float64(period) + plusDM[i]
		smMinusDM = smMinusDM - smMinusDM/float64(period) + minusDM[i]
		dxValues = append(dxValues, dx())
	}

	if len(dxValues) < period {
		return 0, fmt.Errorf("not enough DX values (%d) to smooth ADX for period %d", len(dxValues), period)
	}

	// ADX seeds as the simple average of the first period of DX values, then
	// continues with Wilder smoothing.
	adx := 0.0
	for i := 0; i < period; i++ {
		adx += dxValues[i]
	}
	adx /= float64(period)
	for i := period; i < len(dxValues); i++ {
		adx = (adx*float64(period-1) + dxValues[i]) / float64(period)
	}
	return adx, nil
}
