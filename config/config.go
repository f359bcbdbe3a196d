package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"zoneGridBot/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Execution
	Mode   domain.TradingMode // LIVE, PAPER or DRY_RUN
	Symbol string

	// Loop timing
	PollInterval     time.Duration // Decision tick cadence
	SnapshotInterval time.Duration // Portfolio snapshot cadence
	ErrorBackoff     time.Duration // Extra sleep after a failed tick

	// Entry / exit parameters
	FeeRate               float64 // Taker fee rate, e.g. 0.001
	MaxTradeQty           float64 // Hard ceiling on order quantity in base units
	BreakevenBufferUSDT   float64 // Breakeven protection buffer above entry
	SecureTriggerFraction float64 // Fraction of the profit target that arms protection
	OccupancyTolerance    float64 // Grid level occupancy tolerance in quote units
	BearRSIThreshold      float64 // RSI bound applied in a bear trend

	// Regime analysis
	TrendInterval string // Kline interval for EMA/ADX, e.g. "1h"
	TrendLimit    int    // Klines fetched for the trend window
	EMAPeriod     int
	ADXPeriod     int
	ADXThreshold  float64
	RSIInterval   string // Kline interval for entry momentum, e.g. "5m"
	RSIWindow     int    // Klines fetched for the RSI window
	RSIPeriod     int

	// Hot-reloaded settings defaults (seed the bot_settings row)
	DefaultSettings domain.BotSettings

	// Database
	DBPath string

	// Notifications
	WebhookURL string // Empty disables close notifications

	// Logging
	LogLevel      string
	LogOutput     string // console, file, both
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Execution mode first: it decides whether API keys are mandatory.
	modeStr := strings.ToUpper(getEnv("TRADING_MODE", string(domain.ModePaper)))
	switch domain.TradingMode(modeStr) {
	case domain.ModeLive, domain.ModePaper, domain.ModeDryRun:
		cfg.Mode = domain.TradingMode(modeStr)
	default:
		errs = append(errs, fmt.Sprintf("invalid TRADING_MODE %q (want LIVE, PAPER or DRY_RUN)", modeStr))
	}

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true) // Default to testnet for safety

	if cfg.Mode == domain.ModeLive {
		if cfg.APIKey == "" {
			errs = append(errs, "BINANCE_API_KEY must be set in LIVE mode")
		}
		if cfg.SecretKey == "" {
			errs = append(errs, "BINANCE_API_SECRET must be set in LIVE mode")
		}
	}

	cfg.Symbol = getEnv("SYMBOL", "BTCUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}

	// Loop timing
	pollSeconds := getEnvAsInt("POLL_INTERVAL_SECONDS", 60)
	if pollSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	cfg.PollInterval = time.Duration(pollSeconds) * time.Second

	snapshotSeconds := getEnvAsInt("SNAPSHOT_INTERVAL_SECONDS", 3600)
	if snapshotSeconds <= 0 {
		errs = append(errs, "SNAPSHOT_INTERVAL_SECONDS must be positive")
	}
	cfg.SnapshotInterval = time.Duration(snapshotSeconds) * time.Second

	backoffSeconds := getEnvAsInt("ERROR_BACKOFF_SECONDS", 30)
	if backoffSeconds < 0 {
		errs = append(errs, "ERROR_BACKOFF_SECONDS cannot be negative")
	}
	cfg.ErrorBackoff = time.Duration(backoffSeconds) * time.Second

	// Entry / exit parameters
	cfg.FeeRate, err = getEnvAsFloatRequired("FEE_RATE", 0.001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FEE_RATE: %v", err))
	} else if cfg.FeeRate < 0 || cfg.FeeRate >= 1.0 {
		errs = append(errs, "FEE_RATE must be in [0.0, 1.0)")
	}

	cfg.MaxTradeQty, err = getEnvAsFloatRequired("MAX_TRADE_QTY", 0.001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MAX_TRADE_QTY: %v", err))
	} else if cfg.MaxTradeQty <= 0 {
		errs = append(errs, "MAX_TRADE_QTY must be positive")
	}

	cfg.BreakevenBufferUSDT, err = getEnvAsFloatRequired("BREAKEVEN_BUFFER_USDT", 10.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BREAKEVEN_BUFFER_USDT: %v", err))
	} else if cfg.BreakevenBufferUSDT <= 0 {
		errs = append(errs, "BREAKEVEN_BUFFER_USDT must be positive")
	}

	cfg.SecureTriggerFraction, err = getEnvAsFloatRequired("SECURE_TRIGGER_FRACTION", 0.5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SECURE_TRIGGER_FRACTION: %v", err))
	} else if cfg.SecureTriggerFraction <= 0 || cfg.SecureTriggerFraction >= 1.0 {
		errs = append(errs, "SECURE_TRIGGER_FRACTION must be between 0.0 and 1.0 (exclusive)")
	}

	cfg.OccupancyTolerance, err = getEnvAsFloatRequired("OCCUPANCY_TOLERANCE_USDT", 10.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid OCCUPANCY_TOLERANCE_USDT: %v", err))
	} else if cfg.OccupancyTolerance <= 0 {
		errs = append(errs, "OCCUPANCY_TOLERANCE_USDT must be positive")
	}

	cfg.BearRSIThreshold = getEnvAsFloat("BEAR_RSI_THRESHOLD", 30.0)
	if cfg.BearRSIThreshold <= 0 || cfg.BearRSIThreshold > 100 {
		errs = append(errs, "BEAR_RSI_THRESHOLD must be between 0 and 100")
	}

	// Regime analysis
	cfg.TrendInterval = getEnv("TREND_INTERVAL", "1h")
	cfg.TrendLimit = getEnvAsInt("TREND_LIMIT", 300)
	cfg.EMAPeriod = getEnvAsInt("EMA_PERIOD", 200)
	cfg.ADXPeriod = getEnvAsInt("ADX_PERIOD", 14)
	cfg.ADXThreshold = getEnvAsFloat("ADX_THRESHOLD", 25.0)
	cfg.RSIInterval = getEnv("RSI_INTERVAL", "5m")
	cfg.RSIWindow = getEnvAsInt("RSI_WINDOW", 100)
	cfg.RSIPeriod = getEnvAsInt("RSI_PERIOD", 14)
	if cfg.EMAPeriod <= 0 || cfg.ADXPeriod <= 0 || cfg.RSIPeriod <= 0 || cfg.TrendLimit <= 0 || cfg.RSIWindow <= 0 {
		errs = append(errs, "regime periods (EMA, ADX, RSI) and kline windows must be positive")
	}

	// Hot settings defaults (only used to seed an empty bot_settings row)
	cfg.DefaultSettings = domain.BotSettings{
		RSILimit:       getEnvAsFloat("DEFAULT_RSI_LIMIT", 60.0),
		TakeProfitUSDT: getEnvAsFloat("DEFAULT_TAKE_PROFIT_USDT", 200.0),
		GridStepUSDT:   getEnvAsFloat("DEFAULT_GRID_STEP_USDT", 200.0),
		TradeCooldown:  time.Duration(getEnvAsInt("DEFAULT_TRADE_COOLDOWN_SECONDS", 300)) * time.Second,
		TradeSizeUSDT:  getEnvAsFloat("DEFAULT_TRADE_SIZE_USDT", 20.0),
		IsActive:       getEnvAsBool("DEFAULT_IS_ACTIVE", true),
	}
	if cfg.DefaultSettings.RSILimit <= 0 || cfg.DefaultSettings.RSILimit > 100 {
		errs = append(errs, "DEFAULT_RSI_LIMIT must be between 0 and 100")
	}
	if cfg.DefaultSettings.TakeProfitUSDT <= 0 {
		errs = append(errs, "DEFAULT_TAKE_PROFIT_USDT must be positive")
	}
	if cfg.DefaultSettings.GridStepUSDT <= 0 {
		errs = append(errs, "DEFAULT_GRID_STEP_USDT must be positive")
	}
	if cfg.DefaultSettings.TradeSizeUSDT <= 0 {
		errs = append(errs, "DEFAULT_TRADE_SIZE_USDT must be positive")
	}
	if cfg.DefaultSettings.TradeCooldown < 0 {
		errs = append(errs, "DEFAULT_TRADE_COOLDOWN_SECONDS cannot be negative")
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/zone_grid_bot.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Notifications (optional)
	cfg.WebhookURL = getEnv("WEBHOOK_URL", "")

	// Logging
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogOutput = getEnv("LOG_OUTPUT", "console")
	cfg.LogFile = getEnv("LOG_FILE", "./logs/zone_grid_bot.log")
	cfg.LogMaxSizeMB = getEnvAsInt("LOG_MAX_SIZE_MB", 100)
	cfg.LogMaxBackups = getEnvAsInt("LOG_MAX_BACKUPS", 3)
	cfg.LogMaxAgeDays = getEnvAsInt("LOG_MAX_AGE_DAYS", 28)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
