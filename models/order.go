package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide represents the side of an order (buy or sell)
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType represents the type of order
type OrderType string

const (
	OrderTypeLimit     OrderType = "limit"
	OrderTypeMarket    OrderType = "market"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// OrderStatus represents the current status of an order
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCancelled       OrderStatus = "cancelled"
	OrderStatusRejected        OrderStatus = "rejected"
)

// Order represents a trading order in the system. IDs are assigned upstream
// by the gateway and are unique per book instance.
type Order struct {
	ID             uint64           `json:"id"`
	UserID         uint64           `json:"user_id"`
	Symbol         string           `json:"symbol"`
	Side           OrderSide        `json:"side"`
	Type           OrderType        `json:"order_type"`
	Price          decimal.Decimal  `json:"price"`
	Quantity       decimal.Decimal  `json:"quantity"`
	FilledQuantity decimal.Decimal  `json:"filled_quantity"`
	TriggerPrice   *decimal.Decimal `json:"trigger_price,omitempty"`
	Status         OrderStatus      `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// NewOrder creates a new Order instance with default values
func NewOrder(id, userID uint64, symbol string, side OrderSide, orderType OrderType, price, quantity decimal.Decimal) *Order {
	now := time.Now()
	return &Order{
		ID:             id,
		UserID:         userID,
		Symbol:         symbol,
		Side:           side,
		Type:           orderType,
		Price:          price,
		Quantity:       quantity,
		FilledQuantity: decimal.Zero,
		Status:         OrderStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewStopLimitOrder creates a dormant stop-limit order. The order sits in the
// stop book until the last traded price touches trigger, then becomes a limit
// order at price.
func NewStopLimitOrder(id, userID uint64, symbol string, side OrderSide, price, quantity, trigger decimal.Decimal) *Order {
	o := NewOrder(id, userID, symbol, side, OrderTypeStopLimit, price, quantity)
	o.TriggerPrice = &trigger
	return o
}

// IsValid validates the order fields
func (o *Order) IsValid() bool {
	if o.Symbol == "" {
		return false
	}

	if o.Side != OrderSideBuy && o.Side != OrderSideSell {
		return false
	}

	if o.Type != OrderTypeLimit && o.Type != OrderTypeMarket && o.Type != OrderTypeStopLimit {
		return false
	}

	if o.Quantity.LessThanOrEqual(decimal.Zero) {
		return false
	}

	// Market orders ignore the price field entirely
	if o.Type != OrderTypeMarket && o.Price.LessThanOrEqual(decimal.Zero) {
		return false
	}

	// A stop-limit order is meaningless without a trigger
	if o.Type == OrderTypeStopLimit {
		if o.TriggerPrice == nil || o.TriggerPrice.LessThanOrEqual(decimal.Zero) {
			return false
		}
	}

	if o.FilledQuantity.GreaterThan(o.Quantity) {
		return false
	}

	return true
}

// RemainingQuantity returns the unfilled quantity of the order
func (o *Order) RemainingQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// IsFilled checks if the order is completely filled
func (o *Order) IsFilled() bool {
	return o.FilledQuantity.Equal(o.Quantity)
}

// IsPartiallyFilled checks if the order is partially filled
func (o *Order) IsPartiallyFilled() bool {
	return o.FilledQuantity.GreaterThan(decimal.Zero) && o.FilledQuantity.LessThan(o.Quantity)
}

// Fill updates the order with a fill amount
func (o *Order) Fill(quantity decimal.Decimal) {
	o.FilledQuantity = o.FilledQuantity.Add(quantity)
	o.UpdatedAt = time.Now()

	if o.IsFilled() {
		o.Status = OrderStatusFilled
	} else if o.IsPartiallyFilled() {
		o.Status = OrderStatusPartiallyFilled
	}
}

// Cancel marks the order as cancelled
func (o *Order) Cancel() {
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
}

// Reject marks the order as rejected
func (o *Order) Reject() {
	o.Status = OrderStatusRejected
	o.UpdatedAt = time.Now()
}
