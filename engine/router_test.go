package engine

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/models"
)

func placeCommand(t *testing.T, data models.PlaceData) *models.Command {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal place data: %v", err)
	}
	return &models.Command{Type: models.CommandTypePlace, Data: raw}
}

func cancelCommand(t *testing.T, orderID uint64) *models.Command {
	t.Helper()
	raw, err := json.Marshal(models.CancelData{OrderID: orderID})
	if err != nil {
		t.Fatalf("Failed to marshal cancel data: %v", err)
	}
	return &models.Command{Type: models.CommandTypeCancel, Data: raw}
}

func placeLimit(t *testing.T, e *Engine, id uint64, symbol string, side models.OrderSide, price, qty int64) []models.EngineEvent {
	t.Helper()
	return e.ProcessCommand(placeCommand(t, models.PlaceData{
		ID:       id,
		UserID:   1,
		Symbol:   symbol,
		Side:     side,
		Type:     models.OrderTypeLimit,
		Price:    decimal.NewFromInt(price),
		Quantity: decimal.NewFromInt(qty),
	}))
}

func TestPlaceEmitsOrderPlaced(t *testing.T) {
	e := NewEngine()

	events := placeLimit(t, e, 1, "BTC/USD", models.OrderSideBuy, 50000, 1)

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Type != models.EventTypeOrderPlaced {
		t.Errorf("Expected OrderPlaced, got %s", events[0].Type)
	}

	placed, ok := events[0].Data.(models.OrderPlacedData)
	if !ok {
		t.Fatalf("Unexpected event data type %T", events[0].Data)
	}
	if placed.OrderID != 1 || placed.Symbol != "BTC/USD" {
		t.Errorf("Unexpected placed data: %+v", placed)
	}
}

func TestPlaceMatchEmitsTradeEvents(t *testing.T) {
	e := NewEngine()

	placeLimit(t, e, 1, "BTC/USD", models.OrderSideSell, 50000, 1)
	events := placeLimit(t, e, 2, "BTC/USD", models.OrderSideBuy, 50000, 1)

	if len(events) != 2 {
		t.Fatalf("Expected OrderPlaced + TradeExecuted, got %d events", len(events))
	}
	if events[0].Type != models.EventTypeOrderPlaced {
		t.Errorf("Expected first event OrderPlaced, got %s", events[0].Type)
	}
	if events[1].Type != models.EventTypeTradeExecuted {
		t.Errorf("Expected second event TradeExecuted, got %s", events[1].Type)
	}

	trade := events[1].Data.(models.TradeExecutedData).Trade
	if trade.BuyOrderID != 2 || trade.SellOrderID != 1 {
		t.Errorf("Unexpected trade parties: buy=%d sell=%d", trade.BuyOrderID, trade.SellOrderID)
	}
}

func TestTradeIDsUniqueAcrossBooks(t *testing.T) {
	e := NewEngine()

	placeLimit(t, e, 1, "BTC/USD", models.OrderSideSell, 50000, 1)
	first := placeLimit(t, e, 2, "BTC/USD", models.OrderSideBuy, 50000, 1)

	placeLimit(t, e, 3, "ETH/USD", models.OrderSideSell, 3000, 1)
	second := placeLimit(t, e, 4, "ETH/USD", models.OrderSideBuy, 3000, 1)

	tradeA := first[1].Data.(models.TradeExecutedData).Trade
	tradeB := second[1].Data.(models.TradeExecutedData).Trade
	if tradeA.TradeID == tradeB.TradeID {
		t.Error("Expected distinct trade ids across books")
	}
}

func TestCancelWithoutSymbolResolvesBook(t *testing.T) {
	e := NewEngine()

	placeLimit(t, e, 1, "BTC/USD", models.OrderSideBuy, 50000, 1)
	placeLimit(t, e, 2, "ETH/USD", models.OrderSideBuy, 3000, 1)

	events := e.ProcessCommand(cancelCommand(t, 2))

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	cancelled := events[0].Data.(models.OrderCancelledData)
	if !cancelled.Success {
		t.Error("Expected cancel to succeed")
	}
	if cancelled.Symbol != "ETH/USD" {
		t.Errorf("Expected symbol ETH/USD on cancel event, got %q", cancelled.Symbol)
	}

	if e.GetOrderBook("ETH/USD").HasOrder(2) {
		t.Error("Expected order 2 removed from the ETH/USD book")
	}
	if !e.GetOrderBook("BTC/USD").HasOrder(1) {
		t.Error("Expected order 1 untouched in the BTC/USD book")
	}
}

func TestCancelUnknownOrderReportsFailure(t *testing.T) {
	e := NewEngine()

	events := e.ProcessCommand(cancelCommand(t, 999))

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	cancelled := events[0].Data.(models.OrderCancelledData)
	if cancelled.Success {
		t.Error("Expected cancel of unknown order to report failure")
	}
	if cancelled.OrderID != 999 {
		t.Errorf("Expected order_id 999, got %d", cancelled.OrderID)
	}
}

func TestCancelFilledOrderReportsFailure(t *testing.T) {
	e := NewEngine()

	placeLimit(t, e, 1, "BTC/USD", models.OrderSideSell, 50000, 1)
	placeLimit(t, e, 2, "BTC/USD", models.OrderSideBuy, 50000, 1)

	events := e.ProcessCommand(cancelCommand(t, 1))

	cancelled := events[0].Data.(models.OrderCancelledData)
	if cancelled.Success {
		t.Error("Expected cancel of a filled order to report failure")
	}
}

func TestFullyConsumedMarketOrderNotCancellable(t *testing.T) {
	e := NewEngine()

	placeLimit(t, e, 1, "BTC/USD", models.OrderSideSell, 50000, 1)
	e.ProcessCommand(placeCommand(t, models.PlaceData{
		ID:       2,
		UserID:   1,
		Symbol:   "BTC/USD",
		Side:     models.OrderSideBuy,
		Type:     models.OrderTypeMarket,
		Quantity: decimal.NewFromInt(1),
	}))

	events := e.ProcessCommand(cancelCommand(t, 2))
	if events[0].Data.(models.OrderCancelledData).Success {
		t.Error("Expected market order to never be cancellable")
	}
}

func TestRejectedStopEmitsNoEvents(t *testing.T) {
	e := NewEngine()

	// Stop-limit without trigger_price is rejected at admission.
	events := e.ProcessCommand(placeCommand(t, models.PlaceData{
		ID:       1,
		UserID:   1,
		Symbol:   "BTC/USD",
		Side:     models.OrderSideSell,
		Type:     models.OrderTypeStopLimit,
		Price:    decimal.NewFromInt(48900),
		Quantity: decimal.NewFromInt(1),
	}))

	if len(events) != 0 {
		t.Errorf("Expected no events for rejected order, got %d", len(events))
	}
}

func TestCancelDormantStopThroughRouter(t *testing.T) {
	e := NewEngine()

	trigger := decimal.NewFromInt(49000)
	events := e.ProcessCommand(placeCommand(t, models.PlaceData{
		ID:           1,
		UserID:       1,
		Symbol:       "BTC/USD",
		Side:         models.OrderSideSell,
		Type:         models.OrderTypeStopLimit,
		Price:        decimal.NewFromInt(48900),
		Quantity:     decimal.NewFromInt(1),
		TriggerPrice: &trigger,
	}))
	if len(events) != 1 || events[0].Type != models.EventTypeOrderPlaced {
		t.Fatalf("Expected a single OrderPlaced event, got %+v", events)
	}

	cancelEvents := e.ProcessCommand(cancelCommand(t, 1))
	if !cancelEvents[0].Data.(models.OrderCancelledData).Success {
		t.Error("Expected dormant stop to be cancellable")
	}
}

func TestUnknownCommandTypeDropped(t *testing.T) {
	e := NewEngine()

	events := e.ProcessCommand(&models.Command{Type: "Modify", Data: json.RawMessage(`{}`)})
	if events != nil {
		t.Errorf("Expected no events for unknown command type, got %d", len(events))
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	e := NewEngine()

	events := e.ProcessCommand(&models.Command{Type: models.CommandTypePlace, Data: json.RawMessage(`{not json`)})
	if events != nil {
		t.Errorf("Expected no events for malformed payload, got %d", len(events))
	}
}

func TestBooksAreIsolatedPerSymbol(t *testing.T) {
	e := NewEngine()

	placeLimit(t, e, 1, "BTC/USD", models.OrderSideSell, 50000, 1)
	events := placeLimit(t, e, 2, "ETH/USD", models.OrderSideBuy, 50000, 1)

	// A crossing price on a different symbol must not match.
	if len(events) != 1 {
		t.Fatalf("Expected no cross-symbol match, got %d events", len(events))
	}

	symbols := e.Symbols()
	if len(symbols) != 2 {
		t.Errorf("Expected 2 open books, got %d", len(symbols))
	}
}
