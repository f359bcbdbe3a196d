package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"zoneGridBot/config"
	"zoneGridBot/internal/adapters/binanceclient"
	"zoneGridBot/internal/adapters/logger"
	"zoneGridBot/internal/utils"
)

func main() {
	symbolFlag := flag.String("symbol", "", "Symbol to fetch (defaults to the configured SYMBOL)")
	interval := flag.String("interval", "1h", "Kline interval, e.g. 5m, 1h, 1d")
	limit := flag.Int("limit", 1000, "Number of klines to fetch")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	symbol := cfg.Symbol
	if *symbolFlag != "" {
		symbol = *symbolFlag
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Output: "console",
	})
	defer appLogger.Sync()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	fmt.Printf("Fetching %d %s klines for %s...\n", *limit, *interval, symbol)
	klines, err := binanceClient.GetKlines(context.Background(), symbol, *interval, *limit)
	if err != nil {
		appLogger.Error(context.Background(), err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(context.Background(), "Fetched klines", map[string]interface{}{"count": len(klines)})

	filename := fmt.Sprintf("data/%s_%s_%s.csv", symbol, *interval, time.Now().Format("20060102"))
	if err := utils.WriteKlinesToCSV(klines, filename); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
}
