package commands

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	application "qaboard/contexts/community-experience/answer-service/application"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	"qaboard/contexts/community-experience/answer-service/ports"
)

func newAnswerEnvelope(
	eventID string,
	eventType string,
	questionID int64,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Partitioned by question so one question's answer feed stays ordered.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "answer-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "question_id",
		PartitionKey:     strconv.FormatInt(questionID, 10),
		Data:             payload,
	}, nil
}

// publish is best effort: the mutation is already committed, so failures are
// logged and swallowed.
func (uc AnswerUseCase) publish(ctx context.Context, eventType string, answer entities.Answer, data map[string]any) {
	if uc.Events == nil || uc.IDGen == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)

	eventID, err := uc.IDGen.NewID(ctx)
	if err == nil {
		var envelope ports.EventEnvelope
		envelope, err = newAnswerEnvelope(eventID, eventType, answer.QuestionID, uc.now(), data)
		if err == nil {
			err = uc.Events.Publish(ctx, eventType, envelope)
		}
	}
	if err != nil {
		logger.Warn("answer event publish failed",
			"event", "answer_event_publish_failed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"event_type", eventType,
			"answer_id", answer.AnswerID,
			"error", err.Error(),
		)
	}
}
