package engine

import "time"

// State is the process-local mutable state threaded through each tick:
// the cooldown timestamp of the last BUY, the set of trade IDs that have
// crossed the secure trigger, and the set of trade IDs whose SELL filled but
// whose close failed to persist. It is owned by the scheduler and mutated
// only by the single loop goroutine, so no locking is required.
//
// The secured set is intentionally not persisted; a restart rebuilds it as
// prices cross the trigger again (see DESIGN.md).
type State struct {
	lastTradeTime time.Time
	secured       map[int64]struct{}
	reconcile     map[int64]struct{}
}

// NewState creates an empty tick state.
func NewState() *State {
	return &State{
		secured:   make(map[int64]struct{}),
		reconcile: make(map[int64]struct{}),
	}
}

// CooldownRemaining returns how much of the trade cooldown is still left,
// or 0 when trading is allowed.
func (s *State) CooldownRemaining(now time.Time, cooldown time.Duration) time.Duration {
	if s.lastTradeTime.IsZero() {
		return 0
	}
	remaining := cooldown - now.Sub(s.lastTradeTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MarkTraded records the timestamp of a BUY for cooldown tracking.
func (s *State) MarkTraded(now time.Time) {
	s.lastTradeTime = now
}

// MarkSecured adds a trade to the secured set. Returns true when the trade
// was newly secured, false when it was already a member (idempotent).
func (s *State) MarkSecured(tradeID int64) bool {
	if _, ok := s.secured[tradeID]; ok {
		return false
	}
	s.secured[tradeID] = struct{}{}
	return true
}

// IsSecured reports whether a trade has crossed the secure trigger.
func (s *State) IsSecured(tradeID int64) bool {
	_, ok := s.secured[tradeID]
	return ok
}

// ClearSecured removes a trade from the secured set (on close).
func (s *State) ClearSecured(tradeID int64) {
	delete(s.secured, tradeID)
}

// SecuredCount returns the number of currently secured trades.
func (s *State) SecuredCount() int {
	return len(s.secured)
}

// MarkReconciliation quarantines a trade whose SELL filled on the venue but
// whose close could not be persisted. Such a trade is still recorded OPEN in
// the log, so retrying the exit would sell a position that no longer exists.
// The quarantine holds until an operator fixes the trade log and restarts.
func (s *State) MarkReconciliation(tradeID int64) {
	s.reconcile[tradeID] = struct{}{}
}

// NeedsReconciliation reports whether a trade is quarantined.
func (s *State) NeedsReconciliation(tradeID int64) bool {
	_, ok := s.reconcile[tradeID]
	return ok
}
