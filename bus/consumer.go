package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CypherAli/My-project/cache"
	"github.com/CypherAli/My-project/engine"
	"github.com/CypherAli/My-project/logging"
	"github.com/CypherAli/My-project/metrics"
	"github.com/CypherAli/My-project/models"
	"github.com/CypherAli/My-project/validation"
)

// Consumer subscribes to the inbound command channel and drives the engine.
// It is the engine's single caller: every command is decoded, validated,
// applied, and its events published before the next message is read. All
// downstream writes (events, trades cache, snapshots) are best-effort.
type Consumer struct {
	redis     *cache.RedisCache
	engine    *engine.Engine
	publisher *Publisher
	trades    *cache.TradesCache
	snapshots *cache.SnapshotPublisher

	commandsChannel string
	snapshotDepth   int
}

type ConsumerConfig struct {
	CommandsChannel string
	SnapshotDepth   int
}

func NewConsumer(redis *cache.RedisCache, eng *engine.Engine, publisher *Publisher,
	trades *cache.TradesCache, snapshots *cache.SnapshotPublisher, config ConsumerConfig) *Consumer {
	return &Consumer{
		redis:           redis,
		engine:          eng,
		publisher:       publisher,
		trades:          trades,
		snapshots:       snapshots,
		commandsChannel: config.CommandsChannel,
		snapshotDepth:   config.SnapshotDepth,
	}
}

// Run subscribes and processes commands until the context is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	pubsub := c.redis.GetClient().Subscribe(ctx, c.commandsChannel)
	defer pubsub.Close()

	// Fail fast if the subscription could not be established.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	logging.GetLogger().WithFields(logrus.Fields{
		"event":   "consumer_started",
		"channel": c.commandsChannel,
	}).Info("Command consumer subscribed")

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			logging.GetLogger().WithField("event", logging.EventServerStopped).Info("Command consumer stopped")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.handleMessage(ctx, []byte(msg.Payload))
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, payload []byte) {
	start := time.Now()

	var cmd models.Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		logging.LogCommandDropped("unknown", err)
		metrics.CommandsDroppedTotal.WithLabelValues("unknown").Inc()
		return
	}

	if err := c.validate(&cmd); err != nil {
		logging.LogCommandDropped(cmd.Type, err)
		metrics.CommandsDroppedTotal.WithLabelValues(cmd.Type).Inc()
		return
	}

	events := c.engine.ProcessCommand(&cmd)
	c.publisher.PublishEvents(ctx, events)
	c.recordTrades(ctx, events)
	c.refreshSnapshots(ctx, events)

	metrics.CommandsProcessedTotal.WithLabelValues(cmd.Type).Inc()
	metrics.CommandLatencySeconds.WithLabelValues(cmd.Type).Observe(time.Since(start).Seconds())
}

// validate rejects malformed payloads before they reach the engine. Unknown
// command types pass through; the engine drops them with its own accounting.
func (c *Consumer) validate(cmd *models.Command) error {
	switch cmd.Type {
	case models.CommandTypePlace:
		var data models.PlaceData
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			return err
		}
		return validation.ValidatePlace(&data)
	case models.CommandTypeCancel:
		var data models.CancelData
		if err := json.Unmarshal(cmd.Data, &data); err != nil {
			return err
		}
		return validation.ValidateCancel(&data)
	default:
		return nil
	}
}

func (c *Consumer) recordTrades(ctx context.Context, events []models.EngineEvent) {
	for _, event := range events {
		if event.Type != models.EventTypeTradeExecuted {
			continue
		}
		data, ok := event.Data.(models.TradeExecutedData)
		if !ok {
			continue
		}

		trade := data.Trade
		logging.LogTradeExecuted(trade.TradeID.String(), trade.Symbol,
			trade.BuyOrderID, trade.SellOrderID, trade.Price.String(), trade.Quantity.String())

		if err := c.trades.RecordTrade(ctx, trade); err != nil {
			logging.LogPublishError("trades_cache", err)
			metrics.PublishFailuresTotal.WithLabelValues("trades_cache").Inc()
		}
	}
}

// refreshSnapshots rebuilds the depth snapshot of every symbol a command
// touched. Reading the live book here is safe: this runs on the same
// goroutine that mutates it.
func (c *Consumer) refreshSnapshots(ctx context.Context, events []models.EngineEvent) {
	symbols := make(map[string]struct{})
	for _, event := range events {
		switch data := event.Data.(type) {
		case models.OrderPlacedData:
			symbols[data.Symbol] = struct{}{}
		case models.TradeExecutedData:
			symbols[data.Trade.Symbol] = struct{}{}
		case models.OrderCancelledData:
			if data.Success {
				symbols[data.Symbol] = struct{}{}
			}
		}
	}

	for symbol := range symbols {
		book := c.engine.GetOrderBook(symbol)
		if book == nil {
			continue
		}

		snapshot := &cache.OrderbookSnapshot{
			Symbol: symbol,
			Bids:   toSnapshotLevels(book.GetDepth(c.snapshotDepth, models.OrderSideBuy)),
			Asks:   toSnapshotLevels(book.GetDepth(c.snapshotDepth, models.OrderSideSell)),
		}

		if err := c.snapshots.Update(ctx, snapshot); err != nil {
			logging.LogPublishError("snapshot", err)
			metrics.PublishFailuresTotal.WithLabelValues("snapshot").Inc()
		}
	}
}

func toSnapshotLevels(levels []engine.DepthLevel) []cache.PriceLevel {
	out := make([]cache.PriceLevel, 0, len(levels))
	for _, level := range levels {
		out = append(out, cache.PriceLevel{Price: level.Price, Quantity: level.Quantity})
	}
	return out
}
