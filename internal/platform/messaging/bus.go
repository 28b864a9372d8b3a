package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"qaboard/contexts/community-experience/answer-service/ports"

	"github.com/cespare/xxhash/v2"
)

var ErrTopicMismatch = errors.New("event type does not match topic")

// Bus is the in-process answer event bus. Every consumer group on a topic
// receives each event once. Inside a group the member is chosen by hashing
// the envelope's partition key, so all events of one question reach the same
// member in publish order. A full member queue drops the event.
type Bus struct {
	mu         sync.RWMutex
	topics     map[string]map[string]*groupMembers
	dropped    map[string]uint64
	bufferSize int
	logger     *slog.Logger
}

type groupMembers struct {
	members []chan ports.EventEnvelope
}

func NewBus(bufferSize int, logger *slog.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 128
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		topics:     make(map[string]map[string]*groupMembers),
		dropped:    make(map[string]uint64),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event ports.EventEnvelope) error {
	if event.EventType != "" && event.EventType != topic {
		return fmt.Errorf("%w: %s on %s", ErrTopicMismatch, event.EventType, topic)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	targets := make(map[string]chan ports.EventEnvelope, len(b.topics[topic]))
	for group, members := range b.topics[topic] {
		if len(members.members) > 0 {
			targets[group] = members.members[partitionIndex(event.PartitionKey, len(members.members))]
		}
	}
	b.mu.RUnlock()

	for group, member := range targets {
		select {
		case member <- event:
		default:
			b.mu.Lock()
			b.dropped[topic]++
			b.mu.Unlock()
			b.logger.Warn("dropping event for slow consumer group",
				"event", "bus_publish_drop",
				"module", "internal/platform/messaging",
				"layer", "platform",
				"topic", topic,
				"consumer_group", group,
				"event_id", event.EventID,
				"partition_key", event.PartitionKey,
			)
		}
	}

	b.logger.Debug("event published",
		"event", "bus_publish",
		"module", "internal/platform/messaging",
		"layer", "platform",
		"topic", topic,
		"event_id", event.EventID,
		"partition_key", event.PartitionKey,
		"consumer_groups", len(targets),
	)
	return nil
}

// Subscribe adds a member to consumerGroup on topic until ctx is cancelled.
// Each member handles its events sequentially.
func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	if topic == "" || consumerGroup == "" {
		return errors.New("topic and consumer group are required")
	}
	queue := make(chan ports.EventEnvelope, b.bufferSize)
	b.addMember(topic, consumerGroup, queue)

	go func() {
		defer b.removeMember(topic, consumerGroup, queue)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-queue:
				if err := handler(ctx, event); err != nil {
					b.logger.Error("consumer handler failed",
						"event", "bus_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

// Dropped reports how many deliveries on topic were dropped because a
// consumer group member was full.
func (b *Bus) Dropped(topic string) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped[topic]
}

func (b *Bus) memberCount(topic string, consumerGroup string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	group, ok := b.topics[topic][consumerGroup]
	if !ok {
		return 0
	}
	return len(group.members)
}

func (b *Bus) addMember(topic string, consumerGroup string, queue chan ports.EventEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	groups, ok := b.topics[topic]
	if !ok {
		groups = make(map[string]*groupMembers)
		b.topics[topic] = groups
	}
	group, ok := groups[consumerGroup]
	if !ok {
		group = &groupMembers{}
		groups[consumerGroup] = group
	}
	group.members = append(group.members, queue)
}

func (b *Bus) removeMember(topic string, consumerGroup string, queue chan ports.EventEnvelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	group, ok := b.topics[topic][consumerGroup]
	if !ok {
		return
	}
	kept := group.members[:0]
	for _, member := range group.members {
		if member != queue {
			kept = append(kept, member)
		}
	}
	group.members = kept
	if len(kept) == 0 {
		delete(b.topics[topic], consumerGroup)
	}
}

func partitionIndex(key string, members int) int {
	if members <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(members))
}
