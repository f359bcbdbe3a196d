package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"zoneGridBot/config"
	"zoneGridBot/internal/adapters/logger"
	"zoneGridBot/internal/adapters/sqlite"
	"zoneGridBot/internal/analytics"
	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/utils"
)

// Offline performance report over the trade log. Reads the same database the
// bot writes, so it can run while the bot is live.
func main() {
	initialBalance := flag.Float64("balance", 0, "Initial balance for the equity curve (defaults to the stored baseline capital)")
	snapshotCount := flag.Int("snapshots", 5, "Recent portfolio snapshots to print")
	csvPath := flag.String("csv", "", "Optional path to export all trades as CSV")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  "warn", // Keep report output clean
		Output: "console",
	})
	defer appLogger.Sync()

	// 3. Open the Store
	store, err := sqlite.NewStore(sqlite.Config{
		DBPath:          cfg.DBPath,
		Logger:          appLogger,
		DefaultSettings: &cfg.DefaultSettings,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to open database store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// 4. Load trades
	closed, err := store.Trades().FindByStatus(ctx, domain.TradeStatusClosed)
	if err != nil {
		log.Fatalf("FATAL: Failed to load closed trades: %v", err)
	}
	open, err := store.Trades().FindByStatus(ctx, domain.TradeStatusOpen)
	if err != nil {
		log.Fatalf("FATAL: Failed to load open trades: %v", err)
	}

	// 5. Resolve the starting balance
	balance := *initialBalance
	if balance == 0 {
		_, capital, err := store.Baselines().Baseline(ctx, cfg.Symbol)
		if err != nil {
			log.Fatalf("FATAL: Failed to load baseline: %v", err)
		}
		balance = capital
	}

	metrics := analytics.AnalyzePerformance(closed, balance)
	printReport(cfg.Symbol, balance, metrics, len(open))

	// 6. Recent snapshots
	if *snapshotCount > 0 {
		snaps, err := store.Snapshots().FindRecent(ctx, *snapshotCount)
		if err != nil {
			log.Fatalf("FATAL: Failed to load snapshots: %v", err)
		}
		printSnapshots(snaps)
	}

	// 7. Optional CSV export
	if *csvPath != "" {
		all := append(append([]*domain.Trade{}, closed...), open...)
		if err := utils.WriteTradesToCSV(all, *csvPath); err != nil {
			log.Fatalf("FATAL: Failed to write CSV: %v", err)
		}
		fmt.Printf("\nExported %d trades to %s\n", len(all), *csvPath)
	}
}

func printReport(symbol string, balance float64, m *analytics.PerformanceMetrics, openCount int) {
	fmt.Printf("=== Performance Report: %s ===\n\n", symbol)
	fmt.Printf("Closed Trades:      %d (open: %d)\n", m.TotalTrades, openCount)
	if m.TotalTrades == 0 {
		fmt.Println("No closed trades yet.")
		return
	}
	fmt.Printf("Win Rate:           %.1f%% (%d wins / %d losses)\n", m.WinRate*100, m.WinningTrades, m.LosingTrades)
	fmt.Printf("Net Profit:         %.4f USDT\n", m.TotalProfit)
	fmt.Printf("Fees Paid:          %.4f USDT\n", m.TotalFees)
	fmt.Printf("Final Balance:      %.4f USDT (ROI %.2f%%)\n", m.FinalBalance, m.ReturnOnInvestment*100)
	fmt.Printf("Max Drawdown:       %.2f%%\n", m.MaxDrawdown*100)
	fmt.Printf("Profit Factor:      %.2f\n", m.ProfitFactor)
	fmt.Printf("Avg Win / Loss:     %.4f / %.4f USDT\n", m.AverageWin, m.AverageLoss)
	fmt.Printf("Expectancy:         %.4f USDT per trade\n", m.Expectancy)
	fmt.Printf("Consecutive W/L:    %d / %d\n", m.MaxConsecutiveWins, m.MaxConsecutiveLosses)
	fmt.Printf("Avg Hold Time:      %s\n", m.AverageTradeDuration.Round(time.Minute))

	fmt.Println("\nClose Reasons:")
	for reason, count := range m.CloseReasons {
		fmt.Printf("  %-20s %d\n", reason, count)
	}

	fmt.Println("\nPer-Zone Net Profit:")
	for zone, pnl := range m.ZoneReturns {
		fmt.Printf("  %-20s %.4f USDT\n", zone, pnl)
	}

	fmt.Println("\nMonthly Returns:")
	for _, mr := range m.GetMonthlyReturns() {
		fmt.Printf("  %s  %.4f USDT\n", mr.Month.Format("2006-01"), mr.Return)
	}
}

func printSnapshots(snaps []*domain.PortfolioSnapshot) {
	if len(snaps) == 0 {
		return
	}
	fmt.Println("\nRecent Portfolio Snapshots:")
	fmt.Printf("  %-20s %10s %12s %12s %12s %8s\n", "time", "price", "equity", "realized", "unrealized", "dd%")
	for _, s := range snaps {
		fmt.Printf("  %-20s %10.2f %12.4f %12.4f %12.4f %8.2f\n",
			s.SnapshotTime.Format("2006-01-02 15:04"), s.Price, s.TotalEquity, s.RealizedPnL, s.UnrealizedPnL, s.CurrentDrawdownPct)
	}
}
