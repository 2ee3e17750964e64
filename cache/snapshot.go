package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel is one aggregated level of a depth snapshot.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderbookSnapshot mirrors the top of a book for external consumers. The
// gateway reads it from redis and fans it out over websockets; the engine
// never reads it back.
type OrderbookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}

// SnapshotPublisher stores depth snapshots under orderbook:<symbol> and
// announces each update on ob_update:<symbol>. Both writes are best-effort:
// a failure is reported to the caller for logging and metrics, never for
// rollback.
type SnapshotPublisher struct {
	redis      *RedisCache
	keyBuilder *KeyBuilder
	ttl        time.Duration
}

func NewSnapshotPublisher(redis *RedisCache, ttl time.Duration) *SnapshotPublisher {
	return &SnapshotPublisher{
		redis:      redis,
		keyBuilder: NewKeyBuilder("trading"),
		ttl:        ttl,
	}
}

// Update writes the snapshot and publishes the update notification.
func (sp *SnapshotPublisher) Update(ctx context.Context, snapshot *OrderbookSnapshot) error {
	snapshot.Timestamp = time.Now()

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("snapshot marshal failed for %s: %w", snapshot.Symbol, err)
	}

	key := sp.keyBuilder.OrderbookKey(snapshot.Symbol)
	if err := sp.redis.Set(ctx, key, payload, sp.ttl); err != nil {
		return fmt.Errorf("snapshot store failed for %s: %w", snapshot.Symbol, err)
	}

	channel := sp.keyBuilder.OrderbookChannel(snapshot.Symbol)
	if err := sp.redis.Publish(ctx, channel, payload); err != nil {
		return fmt.Errorf("snapshot publish failed for %s: %w", snapshot.Symbol, err)
	}

	return nil
}

// GetOrderbook retrieves the cached snapshot for a symbol.
func (sp *SnapshotPublisher) GetOrderbook(ctx context.Context, symbol string) (*OrderbookSnapshot, error) {
	var snapshot OrderbookSnapshot
	if err := sp.redis.GetJSON(ctx, sp.keyBuilder.OrderbookKey(symbol), &snapshot); err != nil {
		return nil, fmt.Errorf("orderbook cache miss for %s: %w", symbol, err)
	}
	return &snapshot, nil
}
