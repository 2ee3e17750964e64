package engine

import (
	"encoding/json"
	"errors"

	"github.com/CypherAli/My-project/logging"
	"github.com/CypherAli/My-project/metrics"
	"github.com/CypherAli/My-project/models"
)

// Engine routes commands to per-symbol order books and turns their results
// into events. It owns every book exclusively: ProcessCommand is synchronous
// and must be driven by a single caller, which is the whole concurrency
// model. The bus consumer is that caller in production.
type Engine struct {
	books map[string]*OrderBook

	// symbols maps a live order id to the symbol of the book holding it,
	// so a Cancel carrying only an id resolves in O(1) instead of a scan
	// across every open book.
	symbols map[uint64]string
}

// NewEngine creates an engine with no open books.
func NewEngine() *Engine {
	return &Engine{
		books:   make(map[string]*OrderBook),
		symbols: make(map[uint64]string),
	}
}

// ProcessCommand applies one command to completion and returns the resulting
// events in generation order.
func (e *Engine) ProcessCommand(cmd *models.Command) []models.EngineEvent {
	switch cmd.Type {
	case models.CommandTypePlace:
		var data models.PlaceData
		if err := unmarshalData(cmd.Data, &data); err != nil {
			logging.LogCommandDropped(cmd.Type, err)
			metrics.CommandsDroppedTotal.WithLabelValues(cmd.Type).Inc()
			return nil
		}
		return e.processPlace(data.Order())

	case models.CommandTypeCancel:
		var data models.CancelData
		if err := unmarshalData(cmd.Data, &data); err != nil {
			logging.LogCommandDropped(cmd.Type, err)
			metrics.CommandsDroppedTotal.WithLabelValues(cmd.Type).Inc()
			return nil
		}
		return e.processCancel(data.OrderID)

	default:
		logging.LogCommandDropped(cmd.Type, errors.New("unknown command type"))
		metrics.CommandsDroppedTotal.WithLabelValues("unknown").Inc()
		return nil
	}
}

func (e *Engine) processPlace(order *models.Order) []models.EngineEvent {
	book, exists := e.books[order.Symbol]
	if !exists {
		book = NewOrderBook(order.Symbol)
		e.books[order.Symbol] = book
	}

	metrics.OrdersReceivedTotal.WithLabelValues(order.Symbol, string(order.Side), string(order.Type)).Inc()

	trades, err := book.ProcessOrder(order)
	if err != nil {
		logging.LogOrderRejected(order.ID, order.Symbol, err)
		metrics.OrdersRejectedTotal.WithLabelValues(order.Symbol, err.Error()).Inc()
		return nil
	}

	if book.HasOrder(order.ID) {
		e.symbols[order.ID] = order.Symbol
	}
	for _, trade := range trades {
		if !book.HasOrder(trade.BuyOrderID) {
			delete(e.symbols, trade.BuyOrderID)
		}
		if !book.HasOrder(trade.SellOrderID) {
			delete(e.symbols, trade.SellOrderID)
		}
	}

	events := make([]models.EngineEvent, 0, len(trades)+1)
	events = append(events, models.OrderPlacedEvent(order))
	for _, trade := range trades {
		metrics.TradesExecutedTotal.WithLabelValues(trade.Symbol).Inc()
		events = append(events, models.TradeExecutedEvent(trade))
	}

	e.updateBookMetrics(book)

	return events
}

func (e *Engine) processCancel(orderID uint64) []models.EngineEvent {
	success := false
	cancelledFrom := ""

	if symbol, known := e.symbols[orderID]; known {
		if book, exists := e.books[symbol]; exists {
			success = book.CancelOrder(orderID)
			e.updateBookMetrics(book)
		}
		if success {
			cancelledFrom = symbol
		}
		delete(e.symbols, orderID)
	}

	logging.LogOrderCancelled(orderID, success)
	metrics.OrdersCancelledTotal.WithLabelValues(boolLabel(success)).Inc()

	return []models.EngineEvent{models.OrderCancelledEvent(orderID, success, cancelledFrom)}
}

// GetOrderBook returns the book for a symbol, or nil if none exists. The
// returned book must only be read from the command-processing goroutine.
func (e *Engine) GetOrderBook(symbol string) *OrderBook {
	return e.books[symbol]
}

// Symbols lists the symbols with an open book.
func (e *Engine) Symbols() []string {
	symbols := make([]string, 0, len(e.books))
	for symbol := range e.books {
		symbols = append(symbols, symbol)
	}
	return symbols
}

func (e *Engine) updateBookMetrics(book *OrderBook) {
	metrics.UpdateOrderbookDepth(book.Symbol, "buy", float64(book.Bids.Len()))
	metrics.UpdateOrderbookDepth(book.Symbol, "sell", float64(book.Asks.Len()))

	bestBid, bestAsk := 0.0, 0.0
	if p := book.GetBestBid(); p != nil {
		bestBid, _ = p.Float64()
	}
	if p := book.GetBestAsk(); p != nil {
		bestAsk, _ = p.Float64()
	}
	metrics.UpdateBestPrices(book.Symbol, bestBid, bestAsk)
}

func unmarshalData(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errors.New("empty command payload")
	}
	return json.Unmarshal(raw, v)
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
