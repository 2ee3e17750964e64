package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Command types accepted on the inbound bus.
const (
	CommandTypePlace  = "Place"
	CommandTypeCancel = "Cancel"
)

// Command is the tagged union delivered by the message bus, one per message.
type Command struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// PlaceData is the payload of a Place command. Price and quantity travel as
// strings on the wire to keep decimal values exact.
type PlaceData struct {
	ID           uint64           `json:"id"`
	UserID       uint64           `json:"user_id"`
	Symbol       string           `json:"symbol"`
	Side         OrderSide        `json:"side"`
	Type         OrderType        `json:"order_type"`
	Price        decimal.Decimal  `json:"price"`
	Quantity     decimal.Decimal  `json:"quantity"`
	TriggerPrice *decimal.Decimal `json:"trigger_price,omitempty"`
}

// CancelData is the payload of a Cancel command. It carries no symbol; the
// engine resolves the owning book through its order index.
type CancelData struct {
	OrderID uint64 `json:"order_id"`
}

// Order builds the engine-side order for a Place payload.
func (d *PlaceData) Order() *Order {
	o := NewOrder(d.ID, d.UserID, d.Symbol, d.Side, d.Type, d.Price, d.Quantity)
	o.TriggerPrice = d.TriggerPrice
	return o
}
