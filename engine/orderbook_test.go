package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/models"
)

func limitOrder(id uint64, side models.OrderSide, price, qty int64) *models.Order {
	return models.NewOrder(id, 1, "BTC/USD", side, models.OrderTypeLimit,
		decimal.NewFromInt(price), decimal.NewFromInt(qty))
}

func marketOrder(id uint64, side models.OrderSide, qty int64) *models.Order {
	return models.NewOrder(id, 1, "BTC/USD", side, models.OrderTypeMarket,
		decimal.Zero, decimal.NewFromInt(qty))
}

func stopLimitOrder(id uint64, side models.OrderSide, price, qty, trigger int64) *models.Order {
	return models.NewStopLimitOrder(id, 1, "BTC/USD", side,
		decimal.NewFromInt(price), decimal.NewFromInt(qty), decimal.NewFromInt(trigger))
}

func mustProcess(t *testing.T, ob *OrderBook, order *models.Order) []*models.Trade {
	t.Helper()
	trades, err := ob.ProcessOrder(order)
	if err != nil {
		t.Fatalf("ProcessOrder(%d) failed: %v", order.ID, err)
	}
	return trades
}

func TestNewOrderBook(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	if ob.Symbol != "BTC/USD" {
		t.Errorf("Expected symbol BTC/USD, got %s", ob.Symbol)
	}
	if ob.Size() != 0 {
		t.Errorf("Expected empty order book, got size %d", ob.Size())
	}
	if ob.LastPrice() != nil {
		t.Error("Expected no last price before the first trade")
	}
}

func TestAddLimitOrderBothSides(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	ob.AddLimitOrder(limitOrder(1, models.OrderSideBuy, 50000, 2))
	ob.AddLimitOrder(limitOrder(2, models.OrderSideSell, 51000, 1))

	if ob.Size() != 2 {
		t.Errorf("Expected size 2, got %d", ob.Size())
	}

	bestBid := ob.GetBestBid()
	if bestBid == nil || !bestBid.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("Expected best bid 50000, got %v", bestBid)
	}

	bestAsk := ob.GetBestAsk()
	if bestAsk == nil || !bestAsk.Equal(decimal.NewFromInt(51000)) {
		t.Errorf("Expected best ask 51000, got %v", bestAsk)
	}
}

func TestCancelOrder(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	order := limitOrder(1, models.OrderSideBuy, 50000, 2)
	ob.AddLimitOrder(order)

	if !ob.CancelOrder(1) {
		t.Fatal("Expected cancel of resting order to succeed")
	}
	if order.Status != models.OrderStatusCancelled {
		t.Errorf("Expected status cancelled, got %s", order.Status)
	}
	if ob.Size() != 0 {
		t.Errorf("Expected empty book after cancel, got size %d", ob.Size())
	}
	if ob.GetBestBid() != nil {
		t.Error("Expected empty bid side after cancelling the only order")
	}

	// A second cancel of the same id reports failure without side effects.
	if ob.CancelOrder(1) {
		t.Error("Expected repeated cancel to fail")
	}
}

func TestCancelUnknownOrder(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	if ob.CancelOrder(999) {
		t.Error("Expected cancel of unknown id to fail")
	}
}

func TestCancelKeepsLevelWithRemainingOrders(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	ob.AddLimitOrder(limitOrder(1, models.OrderSideBuy, 50000, 2))
	ob.AddLimitOrder(limitOrder(2, models.OrderSideBuy, 50000, 3))

	if !ob.CancelOrder(1) {
		t.Fatal("Expected cancel to succeed")
	}

	depth := ob.GetDepth(10, models.OrderSideBuy)
	if len(depth) != 1 {
		t.Fatalf("Expected one remaining price level, got %d", len(depth))
	}
	if !depth[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected remaining level quantity 3, got %s", depth[0].Quantity)
	}
}

func TestGetDepthOrdering(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	ob.AddLimitOrder(limitOrder(1, models.OrderSideBuy, 49980, 1))
	ob.AddLimitOrder(limitOrder(2, models.OrderSideBuy, 50000, 2))
	ob.AddLimitOrder(limitOrder(3, models.OrderSideBuy, 49990, 3))
	ob.AddLimitOrder(limitOrder(4, models.OrderSideSell, 50020, 1))
	ob.AddLimitOrder(limitOrder(5, models.OrderSideSell, 50010, 2))

	bids := ob.GetDepth(10, models.OrderSideBuy)
	wantBids := []int64{50000, 49990, 49980}
	if len(bids) != len(wantBids) {
		t.Fatalf("Expected %d bid levels, got %d", len(wantBids), len(bids))
	}
	for i, want := range wantBids {
		if !bids[i].Price.Equal(decimal.NewFromInt(want)) {
			t.Errorf("Bid level %d: expected price %d, got %s", i, want, bids[i].Price)
		}
	}

	asks := ob.GetDepth(10, models.OrderSideSell)
	wantAsks := []int64{50010, 50020}
	if len(asks) != len(wantAsks) {
		t.Fatalf("Expected %d ask levels, got %d", len(wantAsks), len(asks))
	}
	for i, want := range wantAsks {
		if !asks[i].Price.Equal(decimal.NewFromInt(want)) {
			t.Errorf("Ask level %d: expected price %d, got %s", i, want, asks[i].Price)
		}
	}
}

func TestGetDepthAggregatesLevelVolume(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	ob.AddLimitOrder(limitOrder(1, models.OrderSideBuy, 50000, 2))
	ob.AddLimitOrder(limitOrder(2, models.OrderSideBuy, 50000, 3))

	depth := ob.GetDepth(10, models.OrderSideBuy)
	if len(depth) != 1 {
		t.Fatalf("Expected one level, got %d", len(depth))
	}
	if !depth[0].Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected aggregated quantity 5, got %s", depth[0].Quantity)
	}
}

func TestGetDepthRespectsLimit(t *testing.T) {
	ob := NewOrderBook("BTC/USD")

	for i := uint64(1); i <= 5; i++ {
		ob.AddLimitOrder(limitOrder(i, models.OrderSideSell, 50000+int64(i)*10, 1))
	}

	depth := ob.GetDepth(3, models.OrderSideSell)
	if len(depth) != 3 {
		t.Fatalf("Expected 3 levels, got %d", len(depth))
	}
	if !depth[0].Price.Equal(decimal.NewFromInt(50010)) {
		t.Errorf("Expected best ask 50010 first, got %s", depth[0].Price)
	}
}
