package grid

import (
	"testing"
	"time"

	"zoneGridBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testZone(low, high float64) *domain.Zone {
	return &domain.Zone{
		ID:               1,
		Name:             "Test Zone",
		PriceLow:         low,
		PriceHigh:        high,
		CapitalAllocated: 100,
		Status:           domain.ZoneStatusActive,
	}
}

func openTrade(entry float64) *domain.Trade {
	t, _ := domain.NewOpenTrade("Test Zone", entry, 0.001, 0.02, 45, time.Now())
	return t
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name     string
		zone     *domain.Zone
		step     float64
		expected []float64
		wantErr  bool
	}{
		{
			name:     "even division includes both endpoints",
			zone:     testZone(40000, 42000),
			step:     500,
			expected: []float64{40000, 40500, 41000, 41500, 42000},
		},
		{
			name:     "uneven division truncates at high bound",
			zone:     testZone(40000, 41100),
			step:     500,
			expected: []float64{40000, 40500, 41000},
		},
		{
			name:     "step larger than band yields only the low bound",
			zone:     testZone(40000, 40100),
			step:     500,
			expected: []float64{40000},
		},
		{
			name:    "zero step is rejected",
			zone:    testZone(40000, 42000),
			step:    0,
			wantErr: true,
		},
		{
			name:    "inverted bounds are rejected",
			zone:    testZone(42000, 40000),
			step:    200,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levels, err := Levels(tt.zone, tt.step)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, levels)

			// Sequence must be strictly increasing with uniform gaps.
			for i := 1; i < len(levels); i++ {
				assert.Greater(t, levels[i], levels[i-1])
				assert.InDelta(t, tt.step, levels[i]-levels[i-1], 1e-9)
			}
		})
	}
}

func TestLevelsFractionalStepIncludesTopLevel(t *testing.T) {
	// (40001-40000)/0.1 lands just under 10 in float64; the top level must
	// not be dropped.
	levels, err := Levels(testZone(40000, 40001), 0.1)
	require.NoError(t, err)
	require.Len(t, levels, 11)
	assert.InDelta(t, 40000.0, levels[0], 1e-9)
	assert.InDelta(t, 40001.0, levels[10], 1e-9)
	for i := 1; i < len(levels); i++ {
		assert.InDelta(t, 0.1, levels[i]-levels[i-1], 1e-9)
	}
}

func TestIsOccupied(t *testing.T) {
	trades := []*domain.Trade{openTrade(40005)}

	tests := []struct {
		name     string
		level    float64
		expected bool
	}{
		{name: "entry within tolerance above level", level: 40000, expected: true},
		{name: "entry within tolerance below level", level: 40010, expected: true},
		{name: "entry exactly at tolerance boundary is free", level: 40015, expected: false},
		{name: "far level is free", level: 40200, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOccupied(tt.level, trades, DefaultOccupancyTolerance))
		})
	}
}

func TestIsOccupiedIgnoresClosedTrades(t *testing.T) {
	tr := openTrade(40000)
	require.NoError(t, tr.Close(40200, 0.001, 55, domain.CloseReasonTakeProfit, time.Now()))
	assert.False(t, IsOccupied(40000, []*domain.Trade{tr}, DefaultOccupancyTolerance))
}

func TestSelectEntryLevel(t *testing.T) {
	zone := testZone(40000, 42000)
	levels, err := Levels(zone, 200)
	require.NoError(t, err)

	tests := []struct {
		name      string
		price     float64
		open      []*domain.Trade
		wantLevel float64
		wantOK    bool
	}{
		{
			name:      "price exactly on a level selects that level",
			price:     40000,
			wantLevel: 40000,
			wantOK:    true,
		},
		{
			name:      "price inside a bucket selects the level above",
			price:     40350,
			wantLevel: 40400,
			wantOK:    true,
		},
		{
			name:   "occupied level is skipped and nothing else qualifies",
			price:  40400,
			open:   []*domain.Trade{openTrade(40398)},
			wantOK: false,
		},
		{
			name:   "price below the whole grid finds nothing",
			price:  39000,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := SelectEntryLevel(levels, tt.price, 200, DefaultOccupancyTolerance, tt.open)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLevel, level)
			}
		})
	}
}
