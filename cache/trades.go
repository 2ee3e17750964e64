package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/CypherAli/My-project/models"
)

// TradesCache keeps the most recent trades per symbol in a capped redis
// list, newest first, for the gateway's trade-history views.
type TradesCache struct {
	redis      *RedisCache
	keyBuilder *KeyBuilder
	maxTrades  int64
	ttl        time.Duration
}

type TradesCacheConfig struct {
	MaxTrades int64
	TTL       time.Duration
}

func DefaultTradesCacheConfig() *TradesCacheConfig {
	return &TradesCacheConfig{
		MaxTrades: 100,
		TTL:       24 * time.Hour,
	}
}

func NewTradesCache(redis *RedisCache, config *TradesCacheConfig) *TradesCache {
	if config == nil {
		config = DefaultTradesCacheConfig()
	}

	return &TradesCache{
		redis:      redis,
		keyBuilder: NewKeyBuilder("trading"),
		maxTrades:  config.MaxTrades,
		ttl:        config.TTL,
	}
}

// RecordTrade prepends a trade to its symbol's list and trims to capacity.
func (tc *TradesCache) RecordTrade(ctx context.Context, trade *models.Trade) error {
	payload, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("failed to marshal trade %s: %w", trade.TradeID, err)
	}

	key := tc.keyBuilder.TradesKey(trade.Symbol)
	client := tc.redis.GetClient()

	pipe := client.Pipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, tc.maxTrades-1)
	pipe.Expire(ctx, key, tc.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record trade for %s: %w", trade.Symbol, err)
	}

	return nil
}

// GetRecent returns up to limit recent trades for a symbol, newest first.
func (tc *TradesCache) GetRecent(ctx context.Context, symbol string, limit int64) ([]models.Trade, error) {
	if limit <= 0 || limit > tc.maxTrades {
		limit = tc.maxTrades
	}

	key := tc.keyBuilder.TradesKey(symbol)
	raw, err := tc.redis.GetClient().LRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trades for %s: %w", symbol, err)
	}

	trades := make([]models.Trade, 0, len(raw))
	for _, item := range raw {
		var trade models.Trade
		if err := json.Unmarshal([]byte(item), &trade); err != nil {
			return nil, fmt.Errorf("corrupt trade entry for %s: %w", symbol, err)
		}
		trades = append(trades, trade)
	}

	return trades, nil
}
