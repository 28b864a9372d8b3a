package workers

import (
	"context"
	"log/slog"

	application "qaboard/contexts/community-experience/answer-service/application"
	"qaboard/contexts/community-experience/answer-service/ports"
)

const defaultConsumerGroup = "answer-service-event-relay"

// EventRelay forwards answer events from the in-process bus to an external
// publisher so request handlers never wait on the broker.
type EventRelay struct {
	Subscriber    ports.EventSubscriber
	Publisher     ports.EventPublisher
	ConsumerGroup string
	Logger        *slog.Logger
}

func (r EventRelay) Start(ctx context.Context) error {
	group := r.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}
	for _, topic := range ports.AnswerTopics {
		if err := r.Subscriber.Subscribe(ctx, topic, group, r.forward); err != nil {
			return err
		}
	}
	application.ResolveLogger(r.Logger).Info("answer event relay started",
		"event", "answer_event_relay_started",
		"module", "community-experience/answer-service",
		"layer", "worker",
		"consumer_group", group,
		"topic_count", len(ports.AnswerTopics),
	)
	return nil
}

func (r EventRelay) forward(ctx context.Context, event ports.EventEnvelope) error {
	if err := r.Publisher.Publish(ctx, event.EventType, event); err != nil {
		application.ResolveLogger(r.Logger).Error("answer event relay failed",
			"event", "answer_event_relay_failed",
			"module", "community-experience/answer-service",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
