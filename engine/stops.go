package engine

import (
	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/metrics"
	"github.com/CypherAli/My-project/models"
)

// addStopOrder parks a stop-limit order in the stop book for its side, keyed
// by trigger price, and records a dormant location so it stays cancellable.
// The caller guarantees the trigger price is present.
func (ob *OrderBook) addStopOrder(order *models.Order) {
	trigger := *order.TriggerPrice

	side := ob.stopAsks
	if order.Side == models.OrderSideBuy {
		side = ob.stopBids
	}

	level := side.GetOrCreatePriceLevel(trigger)
	element := level.AddOrder(order)

	ob.locations[order.ID] = &OrderLocation{
		Side:    order.Side,
		Level:   level,
		Element: element,
		Dormant: true,
	}
}

// checkTriggers fires every stop order whose trigger is touched by the new
// last traded price, converts it to a limit order and resubmits it through
// matching. Cascades run on an explicit work queue to a fixed point: each
// fired order leaves the stop book before resubmission, so it can never
// re-trigger itself, and trades produced by a fired order can arm further
// triggers at the then-current last price.
func (ob *OrderBook) checkTriggers(newPrice decimal.Decimal) []*models.Trade {
	trades := make([]*models.Trade, 0)

	price := newPrice
	ob.lastPrice = &price

	queue := ob.collectTriggered(newPrice)

	for i := 0; i < len(queue); i++ {
		fired := queue[i]
		fired.Type = models.OrderTypeLimit

		executed := ob.match(fired)
		trades = append(trades, executed...)

		if len(executed) > 0 {
			queue = append(queue, ob.collectTriggered(*ob.lastPrice)...)
		}
	}

	return trades
}

// collectTriggered removes and returns every dormant order armed by price:
// sell stops with trigger >= price first, then buy stops with trigger <=
// price, each group scanned in ascending trigger order with arrival order
// preserved within a level.
func (ob *OrderBook) collectTriggered(price decimal.Decimal) []*models.Order {
	var levels []*PriceLevel

	ob.stopAsks.AscendGreaterOrEqual(price, func(item btree.Item) bool {
		levels = append(levels, item.(*PriceLevel))
		return true
	})

	fired := ob.drainStopLevels(ob.stopAsks, levels)

	levels = levels[:0]
	ob.stopBids.Ascend(func(item btree.Item) bool {
		level := item.(*PriceLevel)
		if level.Price.GreaterThan(price) {
			return false
		}
		levels = append(levels, level)
		return true
	})

	return append(fired, ob.drainStopLevels(ob.stopBids, levels)...)
}

func (ob *OrderBook) drainStopLevels(side *BookSide, levels []*PriceLevel) []*models.Order {
	var fired []*models.Order

	for _, level := range levels {
		for element := level.Orders.Front(); element != nil; element = element.Next() {
			order := element.Value.(*models.Order)
			delete(ob.locations, order.ID)
			metrics.StopOrdersTriggeredTotal.WithLabelValues(ob.Symbol, string(order.Side)).Inc()
			fired = append(fired, order)
		}
		side.RemovePriceLevel(level.Price)
	}

	return fired
}

// StopOrderCount returns the number of dormant stop orders on one side.
func (ob *OrderBook) StopOrderCount(side models.OrderSide) int {
	tree := ob.stopAsks
	if side == models.OrderSideBuy {
		tree = ob.stopBids
	}

	count := 0
	tree.Ascend(func(item btree.Item) bool {
		count += item.(*PriceLevel).Orders.Len()
		return true
	})
	return count
}
