package domain

import (
	"fmt"
	"time"
)

// Trade represents one open-to-close position created by the entry engine.
// A trade is OPEN from creation until the exit engine closes it; the exit
// fields (ExitPrice, PnLUSDT, PnLPercent, ExitRSI, ExitAt) are only
// meaningful once Status is CLOSED.
type Trade struct {
	ID         int64       // Unique identifier (from DB)
	ZoneName   string      // Back-reference to the zone the entry was made in
	EntryPrice float64     // Average fill price of the entry order
	Quantity   float64     // Position size in base units
	Status     TradeStatus // OPEN or CLOSED
	EntryRSI   float64     // Momentum reading at entry
	ExitRSI    float64     // Momentum reading at exit (set on close)
	ExitPrice  float64     // Average fill price of the exit order (set on close)
	PnLUSDT    float64     // Net profit after fees (set on close)
	PnLPercent float64     // Net profit relative to entry notional (set on close)
	FeeUSDT    float64     // Fees paid; entry fee at open, round-trip estimate after close
	TotalUSDT  float64     // Notional value at entry (entry price x quantity)
	CreatedAt  time.Time   // Entry timestamp
	ExitAt     time.Time   // Exit timestamp (zero while open)

	CloseReason CloseReason // Why the trade was closed (empty while open)
}

// NewOpenTrade constructs a freshly opened trade, enforcing entry invariants.
func NewOpenTrade(zoneName string, entryPrice, quantity, entryFee, entryRSI float64, at time.Time) (*Trade, error) {
	if zoneName == "" {
		return nil, fmt.Errorf("trade must reference a zone")
	}
	if entryPrice <= 0 {
		return nil, fmt.Errorf("entry price must be positive, got %.4f", entryPrice)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %.8f", quantity)
	}
	if entryFee < 0 {
		return nil, fmt.Errorf("entry fee must not be negative, got %.4f", entryFee)
	}
	return &Trade{
		ZoneName:   zoneName,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		Status:     TradeStatusOpen,
		EntryRSI:   entryRSI,
		FeeUSDT:    entryFee,
		TotalUSDT:  entryPrice * quantity,
		CreatedAt:  at,
	}, nil
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == TradeStatusOpen
}

// Close transitions the trade to CLOSED, computing the trade economics from
// the exit fill. All exit fields are set together; closing an already closed
// trade is an error (a trade is never re-opened).
func (t *Trade) Close(exitPrice, feeRate, exitRSI float64, reason CloseReason, at time.Time) error {
	if t.Status == TradeStatusClosed {
		return fmt.Errorf("trade %d is already closed", t.ID)
	}
	if exitPrice <= 0 {
		return fmt.Errorf("exit price must be positive, got %.4f", exitPrice)
	}

	entryNotional := t.EntryPrice * t.Quantity
	exitNotional := exitPrice * t.Quantity
	gross := exitNotional - entryNotional
	fee := (entryNotional + exitNotional) * feeRate
	net := gross - fee

	t.Status = TradeStatusClosed
	t.ExitPrice = exitPrice
	t.ExitRSI = exitRSI
	t.PnLUSDT = net
	t.FeeUSDT = fee
	t.CloseReason = reason
	t.ExitAt = at
	if entryNotional > 0 {
		t.PnLPercent = net / entryNotional * 100
	}
	return nil
}

// Duration returns how long the trade was (or has been) held.
func (t *Trade) Duration(now time.Time) time.Duration {
	if t.Status == TradeStatusClosed {
		return t.ExitAt.Sub(t.CreatedAt)
	}
	return now.Sub(t.CreatedAt)
}
