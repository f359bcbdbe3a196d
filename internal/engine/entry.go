package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/grid"
	"zoneGridBot/internal/ports"
)

// BlockReason explains why an entry was not taken this tick.
type BlockReason string

const (
	BlockNone           BlockReason = ""
	BlockCooldown       BlockReason = "COOLDOWN"
	BlockBudget         BlockReason = "BUDGET"
	BlockMomentum       BlockReason = "MOMENTUM"
	BlockNoLevel        BlockReason = "NO_ELIGIBLE_LEVEL"
	BlockExecutionError BlockReason = "EXECUTION_ERROR"
)

// EntryConfig holds the static parameters of the entry engine.
type EntryConfig struct {
	Symbol             string
	Mode               domain.TradingMode
	FeeRate            float64 // e.g. 0.001
	MaxTradeQty        float64 // Hard ceiling on order quantity in base units
	BearRSIThreshold   float64 // Stricter RSI bound applied in a bear trend, e.g. 30
	OccupancyTolerance float64 // Absolute price tolerance for level occupancy
}

// TickInput carries the per-tick market and portfolio context into the
// entry evaluation. Settings are the hot-reloaded values for this tick.
type TickInput struct {
	Price        float64
	RSI          float64
	Regime       domain.RegimeReading
	Zone         *domain.Zone
	ZoneInvested float64 // Sum of open-trade notional in this zone
	Settings     *domain.BotSettings
	OpenTrades   []*domain.Trade
	LotStep      float64
	Now          time.Time
}

// EntryDecision is the structured outcome of one entry evaluation.
type EntryDecision struct {
	Executed bool
	Level    float64
	Trade    *domain.Trade // nil in dry-run mode or when persistence failed
	Blocked  BlockReason
	Detail   string
}

// EntryEngine decides BUY eligibility and level selection. At most one BUY
// is issued per tick; the first failing gate blocks the whole tick.
type EntryEngine struct {
	cfg      EntryConfig
	exchange ports.ExchangeClient
	trades   ports.TradeRepository
	logger   ports.Logger
}

// NewEntryEngine creates an entry engine.
func NewEntryEngine(cfg EntryConfig, exchange ports.ExchangeClient, trades ports.TradeRepository, logger ports.Logger) (*EntryEngine, error) {
	if exchange == nil || trades == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for entry engine")
	}
	if cfg.FeeRate < 0 {
		return nil, fmt.Errorf("fee rate must not be negative")
	}
	if cfg.MaxTradeQty <= 0 {
		return nil, fmt.Errorf("max trade quantity must be positive")
	}
	if cfg.OccupancyTolerance <= 0 {
		cfg.OccupancyTolerance = grid.DefaultOccupancyTolerance
	}
	if cfg.BearRSIThreshold <= 0 {
		cfg.BearRSIThreshold = 30
	}
	return &EntryEngine{cfg: cfg, exchange: exchange, trades: trades, logger: logger}, nil
}

// Evaluate runs the gate sequence and, when all gates pass and an eligible
// grid level exists, executes one BUY.
func (e *EntryEngine) Evaluate(ctx context.Context, in TickInput, st *State) EntryDecision {
	settings := in.Settings

	// Gate 1: cooldown.
	if remaining := st.CooldownRemaining(in.Now, settings.TradeCooldown); remaining > 0 {
		return EntryDecision{Blocked: BlockCooldown, Detail: fmt.Sprintf("%.0fs left", remaining.Seconds())}
	}

	// Gate 2: zone budget.
	if in.ZoneInvested+settings.TradeSizeUSDT > in.Zone.CapitalAllocated {
		return EntryDecision{
			Blocked: BlockBudget,
			Detail:  fmt.Sprintf("invested %.2f + size %.2f > allocated %.2f", in.ZoneInvested, settings.TradeSizeUSDT, in.Zone.CapitalAllocated),
		}
	}

	// Gate 3: momentum, with a stricter bound in a bear trend.
	rsiBound := settings.RSILimit
	if in.Regime.Regime == domain.RegimeBearTrend {
		rsiBound = e.cfg.BearRSIThreshold
	}
	if in.RSI >= rsiBound {
		return EntryDecision{
			Blocked: BlockMomentum,
			Detail:  fmt.Sprintf("RSI %.2f >= %.2f in %s", in.RSI, rsiBound, in.Regime.Regime),
		}
	}

	// Gate 4: level selection.
	levels, err := grid.Levels(in.Zone, settings.GridStepUSDT)
	if err != nil {
		e.logger.Error(ctx, err, "Grid generation failed", map[string]interface{}{"zone": in.Zone.Name})
		return EntryDecision{Blocked: BlockExecutionError, Detail: err.Error()}
	}
	level, ok := grid.SelectEntryLevel(levels, in.Price, settings.GridStepUSDT, e.cfg.OccupancyTolerance, in.OpenTrades)
	if !ok {
		return EntryDecision{Blocked: BlockNoLevel}
	}

	return e.executeBuy(ctx, in, st, level)
}

func (e *EntryEngine) executeBuy(ctx context.Context, in TickInput, st *State, level float64) EntryDecision {
	settings := in.Settings

	qty := settings.TradeSizeUSDT / in.Price
	if qty > e.cfg.MaxTradeQty {
		qty = e.cfg.MaxTradeQty
	}
	qty = roundDownToStep(qty, in.LotStep)
	if qty <= 0 {
		return EntryDecision{Blocked: BlockExecutionError, Detail: "quantity rounds to zero at current price"}
	}

	e.logger.Info(ctx, "BUY signal", map[string]interface{}{
		"zone":     in.Zone.Name,
		"level":    level,
		"price":    in.Price,
		"quantity": qty,
		"rsi":      in.RSI,
		"regime":   in.Regime.Regime,
	})

	if e.cfg.Mode == domain.ModeDryRun {
		// Cooldown advances even in dry-run so the cadence matches live behavior.
		st.MarkTraded(in.Now)
		return EntryDecision{Executed: true, Level: level}
	}

	order, err := e.exchange.PlaceMarketOrder(ctx, e.cfg.Symbol, domain.Buy, qty)
	if err != nil {
		e.logger.Error(ctx, err, "BUY order failed", map[string]interface{}{"level": level, "quantity": qty})
		return EntryDecision{Blocked: BlockExecutionError, Detail: err.Error()}
	}
	st.MarkTraded(in.Now)

	avgPrice := order.AvgPrice
	if avgPrice == 0 && order.ExecutedQty > 0 {
		avgPrice = order.CumulativeCost / order.ExecutedQty
	}
	if avgPrice == 0 {
		avgPrice = in.Price
	}

	entryFee := order.CumulativeCost * e.cfg.FeeRate
	trade, err := domain.NewOpenTrade(in.Zone.Name, avgPrice, order.ExecutedQty, entryFee, in.RSI, in.Now)
	if err != nil {
		e.logger.Error(ctx, err, "Fill produced an invalid trade", map[string]interface{}{"orderID": order.OrderID})
		return EntryDecision{Blocked: BlockExecutionError, Detail: err.Error()}
	}

	if _, err := e.trades.Create(ctx, trade); err != nil {
		// The fill went through but the record is missing; this needs operator
		// attention rather than a silent retry.
		e.logger.Error(ctx, err, "Failed to persist BUY, position exists without a record", map[string]interface{}{
			"orderID":                order.OrderID,
			"reconciliationRequired": true,
		})
		return EntryDecision{Executed: true, Level: level}
	}

	e.logger.Info(ctx, "BUY executed and recorded", map[string]interface{}{
		"tradeID":  trade.ID,
		"zone":     in.Zone.Name,
		"level":    level,
		"avgPrice": avgPrice,
		"quantity": trade.Quantity,
	})
	return EntryDecision{Executed: true, Level: level, Trade: trade}
}

// roundDownToStep floors a quantity to the exchange's lot-size increment.
func roundDownToStep(qty, step float64) float64 {
	if step <= 0 {
		return qty
	}
	steps := math.Floor(qty/step + 1e-9)
	return steps * step
}
