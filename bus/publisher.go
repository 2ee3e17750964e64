package bus

import (
	"context"
	"encoding/json"

	"github.com/CypherAli/My-project/cache"
	"github.com/CypherAli/My-project/logging"
	"github.com/CypherAli/My-project/metrics"
	"github.com/CypherAli/My-project/models"
)

// Publisher pushes engine events onto the outbound redis channel. Publishing
// is best-effort: a failure is logged and counted, never propagated back into
// command processing, so book state can never diverge from what the engine
// decided.
type Publisher struct {
	redis   *cache.RedisCache
	channel string
}

func NewPublisher(redis *cache.RedisCache, channel string) *Publisher {
	return &Publisher{
		redis:   redis,
		channel: channel,
	}
}

// PublishEvents sends each event as its own message, preserving order.
func (p *Publisher) PublishEvents(ctx context.Context, events []models.EngineEvent) {
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			logging.LogPublishError("events", err)
			metrics.PublishFailuresTotal.WithLabelValues("events").Inc()
			continue
		}

		if err := p.redis.Publish(ctx, p.channel, payload); err != nil {
			logging.LogPublishError("events", err)
			metrics.PublishFailuresTotal.WithLabelValues("events").Inc()
		}
	}
}
