package models

import "github.com/shopspring/decimal"

// Event types published on the outbound bus.
const (
	EventTypeOrderPlaced    = "OrderPlaced"
	EventTypeTradeExecuted  = "TradeExecuted"
	EventTypeOrderCancelled = "OrderCancelled"
)

// EngineEvent is the tagged union published for every command outcome, in
// generation order.
type EngineEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// OrderPlacedData confirms admission of an order and echoes its public fields.
type OrderPlacedData struct {
	OrderID  uint64          `json:"order_id"`
	UserID   uint64          `json:"user_id"`
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Side     OrderSide       `json:"side"`
}

// TradeExecutedData carries one executed trade.
type TradeExecutedData struct {
	Trade *Trade `json:"trade"`
}

// OrderCancelledData reports the outcome of a Cancel command. Success is
// false when the id never existed, already filled, or was already cancelled;
// Symbol is set only on success.
type OrderCancelledData struct {
	OrderID uint64 `json:"order_id"`
	Success bool   `json:"success"`
	Symbol  string `json:"symbol,omitempty"`
}

// OrderPlacedEvent wraps an order into its placement event.
func OrderPlacedEvent(o *Order) EngineEvent {
	return EngineEvent{
		Type: EventTypeOrderPlaced,
		Data: OrderPlacedData{
			OrderID:  o.ID,
			UserID:   o.UserID,
			Symbol:   o.Symbol,
			Price:    o.Price,
			Quantity: o.Quantity,
			Side:     o.Side,
		},
	}
}

// TradeExecutedEvent wraps a trade into its execution event.
func TradeExecutedEvent(t *Trade) EngineEvent {
	return EngineEvent{Type: EventTypeTradeExecuted, Data: TradeExecutedData{Trade: t}}
}

// OrderCancelledEvent reports a cancellation outcome.
func OrderCancelledEvent(orderID uint64, success bool, symbol string) EngineEvent {
	return EngineEvent{Type: EventTypeOrderCancelled, Data: OrderCancelledData{OrderID: orderID, Success: success, Symbol: symbol}}
}
