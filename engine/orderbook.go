package engine

import (
	"container/list"
	"fmt"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/models"
)

// PriceLevel is an ordered (by arrival) queue of resting orders sharing a
// price. In the stop books the price is the trigger price.
type PriceLevel struct {
	Price  decimal.Decimal
	Orders *list.List
	Volume decimal.Decimal
}

// NewPriceLevel creates a new price level
func NewPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		Price:  price,
		Orders: list.New(),
		Volume: decimal.Zero,
	}
}

// AddOrder appends an order to the end of the queue (time priority).
func (pl *PriceLevel) AddOrder(order *models.Order) *list.Element {
	element := pl.Orders.PushBack(order)
	pl.Volume = pl.Volume.Add(order.RemainingQuantity())
	return element
}

// RemoveOrder removes an order from the queue.
func (pl *PriceLevel) RemoveOrder(element *list.Element) {
	if element == nil {
		return
	}
	order := element.Value.(*models.Order)
	pl.Volume = pl.Volume.Sub(order.RemainingQuantity())
	pl.Orders.Remove(element)
}

func (pl *PriceLevel) IsEmpty() bool {
	return pl.Orders.Len() == 0
}

func (pl *PriceLevel) Less(than btree.Item) bool {
	other := than.(*PriceLevel)
	return pl.Price.LessThan(other.Price)
}

// BookSide holds the price levels of one side of a book, ordered by price.
type BookSide struct {
	tree *btree.BTree
}

func NewBookSide() *BookSide {
	return &BookSide{
		tree: btree.New(32),
	}
}

func (bs *BookSide) GetOrCreatePriceLevel(price decimal.Decimal) *PriceLevel {
	searchLevel := &PriceLevel{Price: price}

	if item := bs.tree.Get(searchLevel); item != nil {
		return item.(*PriceLevel)
	}

	newLevel := NewPriceLevel(price)
	bs.tree.ReplaceOrInsert(newLevel)
	return newLevel
}

func (bs *BookSide) GetPriceLevel(price decimal.Decimal) *PriceLevel {
	searchLevel := &PriceLevel{Price: price}
	if item := bs.tree.Get(searchLevel); item != nil {
		return item.(*PriceLevel)
	}
	return nil
}

// RemovePriceLevel removes a price level from the tree
func (bs *BookSide) RemovePriceLevel(price decimal.Decimal) {
	bs.tree.Delete(&PriceLevel{Price: price})
}

// GetBestPrice returns the best price level (highest for bids, lowest for asks)
func (bs *BookSide) GetBestPrice(isBid bool) *PriceLevel {
	var item btree.Item
	if isBid {
		item = bs.tree.Max()
	} else {
		item = bs.tree.Min()
	}

	if item != nil {
		return item.(*PriceLevel)
	}
	return nil
}

// Ascend iterates through price levels in ascending order
func (bs *BookSide) Ascend(iterator btree.ItemIterator) {
	bs.tree.Ascend(iterator)
}

// AscendGreaterOrEqual iterates ascending from the given price onward.
func (bs *BookSide) AscendGreaterOrEqual(price decimal.Decimal, iterator btree.ItemIterator) {
	bs.tree.AscendGreaterOrEqual(&PriceLevel{Price: price}, iterator)
}

// Descend iterates through price levels in descending order
func (bs *BookSide) Descend(iterator btree.ItemIterator) {
	bs.tree.Descend(iterator)
}

// Len returns the number of price levels
func (bs *BookSide) Len() int {
	return bs.tree.Len()
}

// OrderLocation tracks where an order rests so it can be cancelled in O(1).
// Dormant marks entries living in a stop book, keyed by trigger price.
type OrderLocation struct {
	Side    models.OrderSide
	Level   *PriceLevel
	Element *list.Element
	Dormant bool
}

// OrderBook is the matching core for a single symbol: two tradable sides, two
// dormant stop sides, and a location index covering all four. It has no
// internal locking; correctness relies on a single writer applying commands
// one at a time.
type OrderBook struct {
	Symbol string
	Bids   *BookSide // buy orders, best = max price
	Asks   *BookSide // sell orders, best = min price

	stopBids *BookSide // dormant buy stops, keyed by trigger price
	stopAsks *BookSide // dormant sell stops, keyed by trigger price

	locations map[uint64]*OrderLocation

	lastPrice *decimal.Decimal
}

// NewOrderBook creates an empty order book for a symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol:    symbol,
		Bids:      NewBookSide(),
		Asks:      NewBookSide(),
		stopBids:  NewBookSide(),
		stopAsks:  NewBookSide(),
		locations: make(map[uint64]*OrderLocation),
	}
}

// AddLimitOrder inserts a limit order at the tail of its side/price queue and
// records its location. It performs no matching.
func (ob *OrderBook) AddLimitOrder(order *models.Order) {
	side := ob.Asks
	if order.Side == models.OrderSideBuy {
		side = ob.Bids
	}

	level := side.GetOrCreatePriceLevel(order.Price)
	element := level.AddOrder(order)

	ob.locations[order.ID] = &OrderLocation{
		Side:    order.Side,
		Level:   level,
		Element: element,
	}
}

// CancelOrder removes a resting or dormant order by id. Returns false without
// side effects if the id is unknown (never existed, already filled, or
// already cancelled); that is a normal outcome, not an error.
func (ob *OrderBook) CancelOrder(orderID uint64) bool {
	location, exists := ob.locations[orderID]
	if !exists {
		return false
	}

	order := location.Element.Value.(*models.Order)
	side := ob.sideFor(location)

	if side.GetPriceLevel(location.Level.Price) == nil {
		panic(fmt.Sprintf("orderbook %s: location index references missing price level %s for order %d",
			ob.Symbol, location.Level.Price, orderID))
	}

	location.Level.RemoveOrder(location.Element)
	if location.Level.IsEmpty() {
		side.RemovePriceLevel(location.Level.Price)
	}

	delete(ob.locations, orderID)
	order.Cancel()

	return true
}

func (ob *OrderBook) sideFor(location *OrderLocation) *BookSide {
	if location.Dormant {
		if location.Side == models.OrderSideBuy {
			return ob.stopBids
		}
		return ob.stopAsks
	}
	if location.Side == models.OrderSideBuy {
		return ob.Bids
	}
	return ob.Asks
}

// HasOrder reports whether an order id currently rests in the book (tradable
// or dormant).
func (ob *OrderBook) HasOrder(orderID uint64) bool {
	_, exists := ob.locations[orderID]
	return exists
}

// Size returns the total number of resting and dormant orders.
func (ob *OrderBook) Size() int {
	return len(ob.locations)
}

// LastPrice returns the last traded price, or nil before the first trade.
func (ob *OrderBook) LastPrice() *decimal.Decimal {
	if ob.lastPrice == nil {
		return nil
	}
	p := *ob.lastPrice
	return &p
}

// GetBestBid returns the highest bid price, or nil if there are no bids.
func (ob *OrderBook) GetBestBid() *decimal.Decimal {
	if level := ob.Bids.GetBestPrice(true); level != nil {
		p := level.Price
		return &p
	}
	return nil
}

// GetBestAsk returns the lowest ask price, or nil if there are no asks.
func (ob *OrderBook) GetBestAsk() *decimal.Decimal {
	if level := ob.Asks.GetBestPrice(false); level != nil {
		p := level.Price
		return &p
	}
	return nil
}

// DepthLevel is one aggregated price level of a depth snapshot.
type DepthLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// GetDepth returns the top price levels on one side, best price first, with
// the total resting quantity per level.
func (ob *OrderBook) GetDepth(limit int, side models.OrderSide) []DepthLevel {
	levels := make([]DepthLevel, 0, limit)

	collect := func(item btree.Item) bool {
		if len(levels) >= limit {
			return false
		}
		level := item.(*PriceLevel)
		levels = append(levels, DepthLevel{Price: level.Price, Quantity: level.Volume})
		return true
	}

	if side == models.OrderSideBuy {
		ob.Bids.Descend(collect)
	} else {
		ob.Asks.Ascend(collect)
	}

	return levels
}
