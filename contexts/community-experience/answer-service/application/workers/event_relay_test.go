package workers

import (
	"context"
	"errors"
	"testing"

	"qaboard/contexts/community-experience/answer-service/ports"
)

type captureSubscriber struct {
	topics   []string
	groups   []string
	handlers []func(context.Context, ports.EventEnvelope) error
}

func (s *captureSubscriber) Subscribe(
	_ context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.topics = append(s.topics, topic)
	s.groups = append(s.groups, consumerGroup)
	s.handlers = append(s.handlers, handler)
	return nil
}

type capturePublisher struct {
	topics []string
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func TestEventRelaySubscribesToEveryAnswerTopic(t *testing.T) {
	subscriber := &captureSubscriber{}
	relay := EventRelay{Subscriber: subscriber, Publisher: &capturePublisher{}}

	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if len(subscriber.topics) != len(ports.AnswerTopics) {
		t.Fatalf("expected %d subscriptions, got %d", len(ports.AnswerTopics), len(subscriber.topics))
	}
	for i, topic := range ports.AnswerTopics {
		if subscriber.topics[i] != topic || subscriber.groups[i] != defaultConsumerGroup {
			t.Fatalf("unexpected subscription %d: %s/%s", i, subscriber.topics[i], subscriber.groups[i])
		}
	}
}

func TestEventRelayForwardsUnderEventType(t *testing.T) {
	subscriber := &captureSubscriber{}
	publisher := &capturePublisher{}
	relay := EventRelay{Subscriber: subscriber, Publisher: publisher, ConsumerGroup: "custom"}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := subscriber.handlers[0](context.Background(), ports.EventEnvelope{
		EventID:   "evt-1",
		EventType: ports.TopicAnswerVoted,
	})
	if err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != ports.TopicAnswerVoted {
		t.Fatalf("expected forward to answer.voted, got %v", publisher.topics)
	}
	if subscriber.groups[0] != "custom" {
		t.Fatalf("expected custom consumer group, got %s", subscriber.groups[0])
	}
}

func TestEventRelayReturnsPublisherError(t *testing.T) {
	subscriber := &captureSubscriber{}
	publishErr := errors.New("broker down")
	relay := EventRelay{Subscriber: subscriber, Publisher: &capturePublisher{err: publishErr}}
	if err := relay.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	err := subscriber.handlers[0](context.Background(), ports.EventEnvelope{EventType: ports.TopicAnswerCreated})
	if !errors.Is(err, publishErr) {
		t.Fatalf("expected publisher error, got %v", err)
	}
}
