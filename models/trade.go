package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade represents a matched trade between two orders. The price is always
// the resting (maker) order's price. Trades are immutable once created.
type Trade struct {
	TradeID     uuid.UUID       `json:"trade_id"`
	Symbol      string          `json:"symbol"`
	BuyOrderID  uint64          `json:"buy_order_id"`
	SellOrderID uint64          `json:"sell_order_id"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewTrade creates a new trade with a fresh engine-lifetime-unique id.
func NewTrade(buyOrderID, sellOrderID uint64, symbol string, price, quantity decimal.Decimal) *Trade {
	return &Trade{
		TradeID:     uuid.New(),
		Symbol:      symbol,
		BuyOrderID:  buyOrderID,
		SellOrderID: sellOrderID,
		Price:       price,
		Quantity:    quantity,
		Timestamp:   time.Now(),
	}
}
