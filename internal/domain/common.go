package domain

// OrderSide represents the side of an order (BUY or SELL).
type OrderSide string

const (
	Buy  OrderSide = "BUY"
	Sell OrderSide = "SELL"
)

// TradeStatus represents the lifecycle state of a trade record.
type TradeStatus string

const (
	TradeStatusOpen   TradeStatus = "OPEN"
	TradeStatusClosed TradeStatus = "CLOSED"
)

// ZoneStatus represents the operator-controlled state of a trading zone.
type ZoneStatus string

const (
	ZoneStatusActive   ZoneStatus = "Active"
	ZoneStatusInactive ZoneStatus = "Inactive"
	ZoneStatusReserve  ZoneStatus = "Reserve"
)

// CloseReason indicates why a trade was closed.
type CloseReason string

const (
	CloseReasonTakeProfit       CloseReason = "TAKE_PROFIT"
	CloseReasonBreakevenProtect CloseReason = "BREAKEVEN_PROTECT"
	CloseReasonManual           CloseReason = "MANUAL"
	CloseReasonUnknown          CloseReason = "UNKNOWN"
)

// TradingMode selects how orders are executed.
type TradingMode string

const (
	ModeLive   TradingMode = "LIVE"
	ModePaper  TradingMode = "PAPER"
	ModeDryRun TradingMode = "DRY_RUN"
)
