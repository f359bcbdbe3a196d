package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zoneGridBot/config"
	"zoneGridBot/internal/domain"
	"zoneGridBot/internal/engine"
	"zoneGridBot/internal/portfolio"
	"zoneGridBot/internal/ports"
	"zoneGridBot/internal/regime"
)

// Service orchestrates the decision loop: one single-goroutine tick every
// poll interval, re-reading the hot settings, classifying the market regime
// and running the entry and exit engines. All trading decisions happen
// inside the tick; nothing else mutates trading state.
type Service struct {
	cfg         *config.Config
	logger      ports.Logger
	exchange    ports.ExchangeClient
	zones       ports.ZoneRepository
	trades      ports.TradeRepository
	settings    ports.SettingsRepository
	analyzer    *regime.Analyzer
	entry       *engine.EntryEngine
	exit        *engine.ExitEngine
	snapshotter *portfolio.Snapshotter

	state        *engine.State
	lotStep      float64
	lastSnapshot time.Time
}

// NewService creates the application service instance.
func NewService(
	cfg *config.Config,
	logger ports.Logger,
	exchange ports.ExchangeClient,
	zones ports.ZoneRepository,
	trades ports.TradeRepository,
	settings ports.SettingsRepository,
	analyzer *regime.Analyzer,
	entry *engine.EntryEngine,
	exit *engine.ExitEngine,
	snapshotter *portfolio.Snapshotter,
) (*Service, error) {
	if cfg == nil || logger == nil || exchange == nil || zones == nil || trades == nil ||
		settings == nil || analyzer == nil || entry == nil || exit == nil || snapshotter == nil {
		return nil, fmt.Errorf("missing required dependencies for Service")
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("configuration PollInterval must be positive")
	}
	if cfg.SnapshotInterval <= 0 {
		return nil, fmt.Errorf("configuration SnapshotInterval must be positive")
	}

	return &Service{
		cfg:         cfg,
		logger:      logger,
		exchange:    exchange,
		zones:       zones,
		trades:      trades,
		settings:    settings,
		analyzer:    analyzer,
		entry:       entry,
		exit:        exit,
		snapshotter: snapshotter,
		state:       engine.NewState(),
	}, nil
}

// Start runs the decision loop until the context is canceled or a shutdown
// signal arrives.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info(ctx, "Starting zone grid service...", map[string]interface{}{
		"symbol":       s.cfg.Symbol,
		"mode":         s.cfg.Mode,
		"pollInterval": s.cfg.PollInterval.String(),
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	// --- Initialization Steps ---
	// 1. Verify exchange connectivity.
	if err := s.exchange.Ping(ctx); err != nil {
		s.logger.Error(ctx, err, "Exchange connectivity check failed")
		return fmt.Errorf("exchange ping failed: %w", err)
	}
	s.logger.Info(ctx, "Exchange connectivity verified")

	// 2. Resolve the lot step once; it only changes with exchange rule
	// updates, not per tick.
	step, err := s.exchange.GetLotStep(ctx, s.cfg.Symbol)
	if err != nil {
		s.logger.Warn(ctx, "Could not resolve lot step, quantities will not be rounded", map[string]interface{}{
			"symbol": s.cfg.Symbol,
			"error":  err.Error(),
		})
	} else {
		s.lotStep = step
		s.logger.Info(ctx, "Lot step resolved", map[string]interface{}{"symbol": s.cfg.Symbol, "lotStep": step})
	}

	// 3. Report open positions carried over from a previous run.
	open, err := s.trades.FindByStatus(ctx, domain.TradeStatusOpen)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load open trades at startup")
		return fmt.Errorf("failed to query open trades: %w", err)
	}
	s.logger.Info(ctx, "Initial state synchronized", map[string]interface{}{"openTrades": len(open)})

	// --- Main Loop ---
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// First tick immediately instead of waiting a full interval.
	if err := s.safeTick(ctx); err != nil {
		s.backoff(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Zone grid service stopped.")
			return nil
		case <-ticker.C:
			if err := s.safeTick(ctx); err != nil {
				s.backoff(ctx, err)
			}
		}
	}
}

// safeTick runs one tick, converting panics into errors so a single bad
// tick cannot kill the loop.
func (s *Service) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panicked: %v", r)
		}
	}()

	tickCtx, cancel := context.WithTimeout(ctx, s.cfg.PollInterval)
	defer cancel()
	return s.tick(tickCtx, time.Now())
}

// backoff logs a failed tick and sleeps the configured extra delay.
func (s *Service) backoff(ctx context.Context, err error) {
	s.logger.Error(ctx, err, "Tick failed, backing off", map[string]interface{}{
		"backoff": s.cfg.ErrorBackoff.String(),
	})
	select {
	case <-ctx.Done():
	case <-time.After(s.cfg.ErrorBackoff):
	}
}

// tick is one full decision pass.
func (s *Service) tick(ctx context.Context, now time.Time) error {
	// 1. Hot-reload the operator settings.
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	if !settings.IsActive {
		s.logger.Debug(ctx, "Bot is paused via settings, skipping tick")
		return nil
	}

	// 2. Periodic portfolio snapshot. Failure degrades reporting only.
	if now.Sub(s.lastSnapshot) >= s.cfg.SnapshotInterval {
		if _, err := s.snapshotter.Capture(ctx, now); err != nil {
			s.logger.Warn(ctx, "Portfolio snapshot failed", map[string]interface{}{"error": err.Error()})
		}
		// Advance regardless so a broken snapshot path cannot retry every tick.
		s.lastSnapshot = now
	}

	// 3. Market context.
	price, err := s.exchange.GetTickerPrice(ctx, s.cfg.Symbol)
	if err != nil {
		return fmt.Errorf("fetching ticker price: %w", err)
	}
	reading := s.analyzer.Analyze(ctx)
	rsi := s.analyzer.MomentumRSI(ctx)

	// 4. Entry evaluation inside the zone containing the price. Entry runs
	// before exits so it acts on the pre-exit open set: a close later in the
	// same tick must not free budget or a grid level for an immediate
	// re-entry.
	zones, err := s.zones.FindByStatus(ctx, domain.ZoneStatusActive)
	if err != nil {
		return fmt.Errorf("loading active zones: %w", err)
	}
	if zone := selectZone(zones, price); zone == nil {
		s.logger.Debug(ctx, "Price is outside all active zones", map[string]interface{}{"price": price})
	} else {
		openInZone, err := s.trades.FindOpenByZone(ctx, zone.Name)
		if err != nil {
			return fmt.Errorf("loading open trades for zone %q: %w", zone.Name, err)
		}
		var invested float64
		for _, t := range openInZone {
			invested += t.TotalUSDT
		}

		decision := s.entry.Evaluate(ctx, engine.TickInput{
			Price:        price,
			RSI:          rsi,
			Regime:       reading,
			Zone:         zone,
			ZoneInvested: invested,
			Settings:     settings,
			OpenTrades:   openInZone,
			LotStep:      s.lotStep,
			Now:          now,
		}, s.state)
		if decision.Blocked != engine.BlockNone {
			s.logger.Debug(ctx, "Entry blocked", map[string]interface{}{
				"reason": decision.Blocked,
				"detail": decision.Detail,
				"zone":   zone.Name,
				"price":  price,
			})
		}
	}

	// 5. Exit evaluation runs after entry on every tick, whether or not a
	// zone matched: open positions must be managed even when the price
	// drifts out of all zones (a take-profit target can sit above the zone
	// top).
	allOpen, err := s.trades.FindByStatus(ctx, domain.TradeStatusOpen)
	if err != nil {
		return fmt.Errorf("loading open trades: %w", err)
	}
	exitOut := s.exit.Evaluate(ctx, engine.ExitInput{
		Price:      price,
		RSI:        rsi,
		Regime:     reading,
		Settings:   settings,
		OpenTrades: allOpen,
		Now:        now,
	}, s.state)
	if len(exitOut.Closed) > 0 {
		s.logger.Info(ctx, "Exit pass closed trades", map[string]interface{}{
			"closed": len(exitOut.Closed),
			"price":  price,
		})
	}
	return nil
}

// selectZone returns the first active zone containing the price. Zones come
// back ordered by price_low, so overlapping zones resolve to the lowest one.
func selectZone(zones []*domain.Zone, price float64) *domain.Zone {
	for _, z := range zones {
		if z.Contains(price) {
			return z
		}
	}
	return nil
}
