package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"zoneGridBot/config"
	"zoneGridBot/internal/adapters/binanceclient"
	"zoneGridBot/internal/adapters/logger"
	"zoneGridBot/internal/adapters/paperexchange"
	"zoneGridBot/internal/adapters/sqlite"
	"zoneGridBot/internal/adapters/webhook"
	"zoneGridBot/internal/app"
	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/engine"
	"zoneGridBot/internal/portfolio"
	"zoneGridBot/internal/ports"
	"zoneGridBot/internal/regime"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		Output:     cfg.LogOutput,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	defer appLogger.Sync()
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel, "output": cfg.LogOutput})

	// 3. Initialize Store (Database Adapter)
	store, err := sqlite.NewStore(sqlite.Config{
		DBPath:          cfg.DBPath,
		Logger:          appLogger,
		DefaultSettings: &cfg.DefaultSettings,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database store")
		log.Fatalf("FATAL: Failed to initialize database store: %v", err) // Also log to stderr
	}
	defer func() {
		if err := store.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database store")
		}
	}()
	appLogger.Info(context.Background(), "Database store initialized")

	// 4. Initialize Exchange Client (Binance Adapter)
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

	// In PAPER and DRY_RUN modes orders never reach the venue; market data
	// still comes from the real client.
	var exchange ports.ExchangeClient = binanceClient
	if cfg.Mode != domain.ModeLive {
		exchange, err = paperexchange.New(binanceClient, appLogger)
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize paper exchange")
			log.Fatalf("FATAL: Failed to initialize paper exchange: %v", err)
		}
	}
	appLogger.Info(context.Background(), "Exchange client initialized", map[string]interface{}{"mode": cfg.Mode})

	// 5. Initialize Regime Analyzer
	analyzer, err := regime.New(regime.Config{
		Symbol:        cfg.Symbol,
		TrendInterval: cfg.TrendInterval,
		TrendLimit:    cfg.TrendLimit,
		EMAPeriod:     cfg.EMAPeriod,
		ADXPeriod:     cfg.ADXPeriod,
		ADXThreshold:  cfg.ADXThreshold,
		RSIInterval:   cfg.RSIInterval,
		RSILimit:      cfg.RSIWindow,
		RSIPeriod:     cfg.RSIPeriod,
	}, exchange, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize regime analyzer")
		log.Fatalf("FATAL: Failed to initialize regime analyzer: %v", err)
	}

	// 6. Initialize Notifier (optional)
	var notifier ports.TradeNotifier
	if cfg.WebhookURL != "" {
		webhookNotifier, err := webhook.New(webhook.Config{
			URL:    cfg.WebhookURL,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize webhook notifier")
			log.Fatalf("FATAL: Failed to initialize webhook notifier: %v", err)
		}
		defer webhookNotifier.Close()
		notifier = webhookNotifier
		appLogger.Info(context.Background(), "Webhook notifier initialized")
	}

	// 7. Initialize Engines
	entryEngine, err := engine.NewEntryEngine(engine.EntryConfig{
		Symbol:             cfg.Symbol,
		Mode:               cfg.Mode,
		FeeRate:            cfg.FeeRate,
		MaxTradeQty:        cfg.MaxTradeQty,
		BearRSIThreshold:   cfg.BearRSIThreshold,
		OccupancyTolerance: cfg.OccupancyTolerance,
	}, exchange, store.Trades(), appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize entry engine")
		log.Fatalf("FATAL: Failed to initialize entry engine: %v", err)
	}

	exitEngine, err := engine.NewExitEngine(engine.ExitConfig{
		Symbol:                cfg.Symbol,
		Mode:                  cfg.Mode,
		FeeRate:               cfg.FeeRate,
		BreakevenBufferUSDT:   cfg.BreakevenBufferUSDT,
		SecureTriggerFraction: cfg.SecureTriggerFraction,
	}, exchange, store.Trades(), notifier, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize exit engine")
		log.Fatalf("FATAL: Failed to initialize exit engine: %v", err)
	}

	// 8. Initialize Portfolio Snapshotter
	snapshotter, err := portfolio.NewSnapshotter(cfg.Symbol, exchange, store.Trades(), store.Snapshots(), store.Baselines(), appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize portfolio snapshotter")
		log.Fatalf("FATAL: Failed to initialize portfolio snapshotter: %v", err)
	}

	// 9. Initialize Application Service
	service, err := app.NewService(
		cfg,
		appLogger,
		exchange,
		store.Zones(),
		store.Trades(),
		store.Settings(),
		analyzer,
		entryEngine,
		exitEngine,
		snapshotter,
	)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize service")
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}
	appLogger.Info(context.Background(), "Zone grid service initialized")

	// 10. Start the Service
	if err := service.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Service exited with error")
		log.Fatalf("FATAL: Service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
