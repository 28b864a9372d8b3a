package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"qaboard/contexts/community-experience/answer-service/ports"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes answer envelopes as JSON on Redis pub/sub
// channels named <prefix><topic>.
type RedisPublisher struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

type RedisOptions struct {
	Addr          string
	Password      string
	DB            int
	ChannelPrefix string
}

// NewRedisPublisher connects and pings the server before returning.
func NewRedisPublisher(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return NewRedisPublisherFromClient(client, opts.ChannelPrefix, logger), nil
}

func NewRedisPublisherFromClient(client *redis.Client, prefix string, logger *slog.Logger) *RedisPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisPublisher{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (p *RedisPublisher) Channel(topic string) string {
	return p.prefix + topic
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.EventID, err)
	}
	receivers, err := p.client.Publish(ctx, p.Channel(topic), payload).Result()
	if err != nil {
		p.logger.Error("redis publish failed",
			"event", "redis_publish_failed",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return fmt.Errorf("publish to redis: %w", err)
	}
	p.logger.Debug("event published",
		"event", "redis_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"receivers", receivers,
	)
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
