package engine

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/models"
)

var (
	// ErrMissingTrigger rejects a stop-limit order admitted without a
	// trigger price. The book state is untouched.
	ErrMissingTrigger = errors.New("stop-limit order requires a trigger price")

	// ErrInvalidOrder rejects an order that fails basic field validation.
	ErrInvalidOrder = errors.New("invalid order")
)

// ProcessOrder runs an incoming order through the book and returns the trades
// it produced, in execution order. Stop-limit orders go dormant and yield no
// trades; limit and market orders match immediately. If any trade executed,
// stop triggers are evaluated against the last trade price and cascade trades
// are appended.
func (ob *OrderBook) ProcessOrder(order *models.Order) ([]*models.Trade, error) {
	if !order.IsValid() {
		order.Reject()
		if order.Type == models.OrderTypeStopLimit && order.TriggerPrice == nil {
			return nil, ErrMissingTrigger
		}
		return nil, ErrInvalidOrder
	}

	if order.Type == models.OrderTypeStopLimit {
		ob.addStopOrder(order)
		return nil, nil
	}

	trades := ob.match(order)

	if len(trades) > 0 {
		trades = append(trades, ob.checkTriggers(*ob.lastPrice)...)
	}

	return trades, nil
}

// match walks the opposite side best-price-first and consumes resting orders
// oldest-first. A limit remainder rests; a market remainder is discarded.
func (ob *OrderBook) match(order *models.Order) []*models.Trade {
	trades := make([]*models.Trade, 0)

	for order.RemainingQuantity().GreaterThan(decimal.Zero) {
		var opposite *BookSide
		var bestLevel *PriceLevel
		if order.Side == models.OrderSideBuy {
			opposite = ob.Asks
			bestLevel = opposite.GetBestPrice(false)
		} else {
			opposite = ob.Bids
			bestLevel = opposite.GetBestPrice(true)
		}

		if bestLevel == nil {
			break
		}

		// A market order is always eligible; a limit order only if its
		// price crosses the level. Levels are scanned best-first, so the
		// first ineligible level ends the scan.
		if order.Type == models.OrderTypeLimit {
			crosses := order.Price.GreaterThanOrEqual(bestLevel.Price)
			if order.Side == models.OrderSideSell {
				crosses = order.Price.LessThanOrEqual(bestLevel.Price)
			}
			if !crosses {
				break
			}
		}

		trades = append(trades, ob.matchAgainstLevel(order, bestLevel, opposite)...)
	}

	if order.RemainingQuantity().GreaterThan(decimal.Zero) {
		switch order.Type {
		case models.OrderTypeLimit:
			ob.AddLimitOrder(order)
		case models.OrderTypeMarket:
			// Market remainder never rests.
			if order.FilledQuantity.IsZero() {
				order.Reject()
			}
		}
	}

	return trades
}

// matchAgainstLevel fills the incoming order against one price level in FIFO
// order. Trades execute at the resting order's price.
func (ob *OrderBook) matchAgainstLevel(order *models.Order, level *PriceLevel, side *BookSide) []*models.Trade {
	trades := make([]*models.Trade, 0)

	element := level.Orders.Front()
	for element != nil && order.RemainingQuantity().GreaterThan(decimal.Zero) {
		next := element.Next()
		resting := element.Value.(*models.Order)

		matchQty := decimal.Min(order.RemainingQuantity(), resting.RemainingQuantity())
		tradePrice := resting.Price

		var trade *models.Trade
		if order.Side == models.OrderSideBuy {
			trade = models.NewTrade(order.ID, resting.ID, ob.Symbol, tradePrice, matchQty)
		} else {
			trade = models.NewTrade(resting.ID, order.ID, ob.Symbol, tradePrice, matchQty)
		}

		order.Fill(matchQty)
		resting.Fill(matchQty)
		level.Volume = level.Volume.Sub(matchQty)

		lastPrice := tradePrice
		ob.lastPrice = &lastPrice

		trades = append(trades, trade)

		if resting.IsFilled() {
			level.Orders.Remove(element)
			delete(ob.locations, resting.ID)
		} else {
			// The resting order keeps its place at the front; the
			// incoming order is exhausted.
			break
		}

		element = next
	}

	if level.IsEmpty() {
		side.RemovePriceLevel(level.Price)
	}

	return trades
}
