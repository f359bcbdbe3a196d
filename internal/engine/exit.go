package engine

import (
	"context"
	"fmt"
	"time"

	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/ports"
)

// ExitConfig holds the static parameters of the exit engine.
type ExitConfig struct {
	Symbol                string
	Mode                  domain.TradingMode
	FeeRate               float64
	BreakevenBufferUSDT   float64 // Buffer above entry covering round-trip fees, e.g. 10
	SecureTriggerFraction float64 // Fraction of the profit target that secures a trade, e.g. 0.5
}

// ExitInput carries the per-tick context for exit evaluation.
type ExitInput struct {
	Price      float64
	RSI        float64
	Regime     domain.RegimeReading
	Settings   *domain.BotSettings
	OpenTrades []*domain.Trade
	Now        time.Time
}

// ExitOutcome summarizes what the exit pass did this tick.
type ExitOutcome struct {
	Closed       []*domain.Trade
	NewlySecured []int64
}

// ExitEngine runs the smart-exit state machine over every open trade:
// OPEN -> SECURED once price reaches the secure trigger, then CLOSED either
// via breakeven protection or the full profit target. The breakeven check
// runs before the target check for each trade.
type ExitEngine struct {
	cfg      ExitConfig
	exchange ports.ExchangeClient
	trades   ports.TradeRepository
	notifier ports.TradeNotifier
	logger   ports.Logger
}

// NewExitEngine creates an exit engine. The notifier may be nil when close
// notifications are not configured.
func NewExitEngine(cfg ExitConfig, exchange ports.ExchangeClient, trades ports.TradeRepository, notifier ports.TradeNotifier, logger ports.Logger) (*ExitEngine, error) {
	if exchange == nil || trades == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for exit engine")
	}
	if cfg.FeeRate < 0 {
		return nil, fmt.Errorf("fee rate must not be negative")
	}
	if cfg.BreakevenBufferUSDT <= 0 {
		cfg.BreakevenBufferUSDT = 10
	}
	if cfg.SecureTriggerFraction <= 0 || cfg.SecureTriggerFraction >= 1 {
		cfg.SecureTriggerFraction = 0.5
	}
	return &ExitEngine{cfg: cfg, exchange: exchange, trades: trades, notifier: notifier, logger: logger}, nil
}

// Evaluate walks the open trades once, applying the state machine to each.
func (e *ExitEngine) Evaluate(ctx context.Context, in ExitInput, st *State) ExitOutcome {
	var out ExitOutcome
	tp := in.Settings.TakeProfitUSDT

	for _, trade := range in.OpenTrades {
		if st.NeedsReconciliation(trade.ID) {
			// Already sold on the venue; the log row is stale until the
			// operator reconciles it. Never sell again.
			e.logger.Warn(ctx, "Skipping trade awaiting reconciliation", map[string]interface{}{
				"tradeID": trade.ID,
			})
			continue
		}

		entry := trade.EntryPrice
		target := entry + tp
		secureTrigger := entry + tp*e.cfg.SecureTriggerFraction

		if in.Price >= secureTrigger {
			if st.MarkSecured(trade.ID) {
				e.logger.Info(ctx, "Trade secured, breakeven protection armed", map[string]interface{}{
					"tradeID": trade.ID,
					"entry":   entry,
					"trigger": secureTrigger,
				})
				out.NewlySecured = append(out.NewlySecured, trade.ID)
			}
		}

		if st.IsSecured(trade.ID) {
			breakeven := entry + e.cfg.BreakevenBufferUSDT
			if in.Price <= breakeven {
				e.logger.Info(ctx, "Breakeven trigger hit, closing to protect funds", map[string]interface{}{
					"tradeID":   trade.ID,
					"entry":     entry,
					"breakeven": breakeven,
					"price":     in.Price,
				})
				if e.closeTrade(ctx, trade, in, st, domain.CloseReasonBreakevenProtect) {
					out.Closed = append(out.Closed, trade)
				}
				continue
			}
		}

		if in.Price >= target {
			if e.closeTrade(ctx, trade, in, st, domain.CloseReasonTakeProfit) {
				out.Closed = append(out.Closed, trade)
			}
		}
	}
	return out
}

// closeTrade executes the SELL, persists the close fields in one update and
// emits the close notification. Returns true when the trade was closed.
func (e *ExitEngine) closeTrade(ctx context.Context, trade *domain.Trade, in ExitInput, st *State, reason domain.CloseReason) bool {
	if e.cfg.Mode == domain.ModeDryRun {
		e.logger.Info(ctx, "Dry-run SELL skipped", map[string]interface{}{
			"tradeID":      trade.ID,
			"price":        in.Price,
			"estimatedPnL": (in.Price - trade.EntryPrice) * trade.Quantity,
		})
		return false
	}

	order, err := e.exchange.PlaceMarketOrder(ctx, e.cfg.Symbol, domain.Sell, trade.Quantity)
	if err != nil {
		// The position stays open; it will be re-evaluated next tick.
		e.logger.Error(ctx, err, "SELL order failed", map[string]interface{}{"tradeID": trade.ID})
		return false
	}

	exitPrice := order.AvgPrice
	if exitPrice == 0 && order.ExecutedQty > 0 {
		exitPrice = order.CumulativeCost / order.ExecutedQty
	}
	if exitPrice == 0 {
		exitPrice = in.Price
	}

	if err := trade.Close(exitPrice, e.cfg.FeeRate, in.RSI, reason, in.Now); err != nil {
		e.logger.Error(ctx, err, "Close computation rejected", map[string]interface{}{"tradeID": trade.ID})
		return false
	}

	if err := e.trades.CloseTrade(ctx, trade); err != nil {
		// Economically closed on the venue but still recorded OPEN. Retrying
		// could double-close, so surface it and leave it to the operator.
		e.logger.Error(ctx, err, "Position closed on venue but persistence failed", map[string]interface{}{
			"tradeID":                trade.ID,
			"exitPrice":              exitPrice,
			"reconciliationRequired": true,
		})
		st.MarkReconciliation(trade.ID)
		st.ClearSecured(trade.ID)
		return false
	}

	st.ClearSecured(trade.ID)
	e.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"tradeID":   trade.ID,
		"reason":    reason,
		"exitPrice": exitPrice,
		"netPnL":    trade.PnLUSDT,
		"fee":       trade.FeeUSDT,
	})

	if e.notifier != nil {
		e.notifier.NotifyClose(ports.ClosedTradePayload{
			TradeID:         trade.ID,
			Mode:            e.cfg.Mode,
			Pair:            e.cfg.Symbol,
			EntryPrice:      trade.EntryPrice,
			ExitPrice:       trade.ExitPrice,
			Quantity:        trade.Quantity,
			PnLUSDT:         trade.PnLUSDT,
			EntryRSI:        trade.EntryRSI,
			ExitRSI:         trade.ExitRSI,
			DurationMinutes: trade.Duration(in.Now).Minutes(),
			MarketRegime:    in.Regime.Regime,
			Timestamp:       in.Now.UTC(),
		})
	}
	return true
}
