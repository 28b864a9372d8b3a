package ports

import (
	"context"
	"encoding/json"
	"time"

	"qaboard/contexts/community-experience/answer-service/domain/entities"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest addresses a 0-based page of Size items.
type PageRequest struct {
	Page int
	Size int
}

// Offset assumes the request has already been normalized.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

type AnswerRepository interface {
	CreateAnswer(ctx context.Context, answer entities.Answer) (entities.Answer, error)
	GetAnswer(ctx context.Context, answerID int64) (entities.Answer, error)
	UpdateAnswerContent(ctx context.Context, answerID int64, content string, modifiedAt time.Time) error
	DeleteAnswer(ctx context.Context, answerID int64) error
	AddVoter(ctx context.Context, answerID int64, userID int64) (bool, error)
	ListAnswersByQuestion(ctx context.Context, questionID int64, page PageRequest) (entities.AnswerPage, error)
	ListAnswersByQuestionOrderedByVoteCount(ctx context.Context, questionID int64, page PageRequest) (entities.AnswerPage, error)
}

type QuestionReader interface {
	GetQuestion(ctx context.Context, questionID int64) (entities.Question, error)
}

type UserReader interface {
	GetUserByUsername(ctx context.Context, username string) (entities.SiteUser, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Answer event topics. The event type of each envelope equals its topic.
const (
	TopicAnswerCreated  = "answer.created"
	TopicAnswerModified = "answer.modified"
	TopicAnswerDeleted  = "answer.deleted"
	TopicAnswerVoted    = "answer.voted"
)

var AnswerTopics = []string{
	TopicAnswerCreated,
	TopicAnswerModified,
	TopicAnswerDeleted,
	TopicAnswerVoted,
}

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
