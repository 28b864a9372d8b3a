package commands

import (
	"context"
	"log/slog"
	"time"

	application "qaboard/contexts/community-experience/answer-service/application"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	"qaboard/contexts/community-experience/answer-service/ports"
)

// VoteResult reports whether the vote added the user to the voter set. A
// repeated vote leaves the set unchanged and reports Added=false.
type VoteResult struct {
	Answer entities.Answer
	Added  bool
}

// AnswerUseCase applies answer mutations. Callers resolve entities and run
// ownership checks before invoking it; every method performs exactly one
// repository mutation.
type AnswerUseCase struct {
	Answers ports.AnswerRepository
	Events  ports.EventPublisher
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// Create persists a new answer under question. author may be nil.
func (uc AnswerUseCase) Create(
	ctx context.Context,
	question entities.Question,
	content string,
	author *entities.SiteUser,
) (entities.Answer, error) {
	logger := application.ResolveLogger(uc.Logger)
	if question.QuestionID <= 0 || content == "" {
		logger.Warn("answer create validation failed",
			"event", "answer_create_validation_failed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"question_id", question.QuestionID,
		)
		return entities.Answer{}, domainerrors.ErrInvalidAnswerInput
	}

	answer := entities.Answer{
		QuestionID: question.QuestionID,
		Content:    content,
		CreatedAt:  uc.now(),
	}
	if author != nil {
		authorID := author.UserID
		answer.AuthorID = &authorID
	}

	created, err := uc.Answers.CreateAnswer(ctx, answer)
	if err != nil {
		logger.Error("answer create failed",
			"event", "answer_create_failed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"question_id", question.QuestionID,
			"error", err.Error(),
		)
		return entities.Answer{}, err
	}

	logger.Info("answer created",
		"event", "answer_created",
		"module", "community-experience/answer-service",
		"layer", "application",
		"answer_id", created.AnswerID,
		"question_id", created.QuestionID,
		"author_id", optionalID(created.AuthorID),
	)
	uc.publish(ctx, ports.TopicAnswerCreated, created, map[string]any{
		"answer_id":   created.AnswerID,
		"question_id": created.QuestionID,
		"author_id":   created.AuthorID,
	})
	return created, nil
}

// Modify replaces the answer content. Question, author and id are untouched.
func (uc AnswerUseCase) Modify(ctx context.Context, answer entities.Answer, content string) (entities.Answer, error) {
	logger := application.ResolveLogger(uc.Logger)
	if content == "" {
		return entities.Answer{}, domainerrors.ErrInvalidAnswerInput
	}

	modifiedAt := uc.now()
	if err := uc.Answers.UpdateAnswerContent(ctx, answer.AnswerID, content, modifiedAt); err != nil {
		logger.Error("answer modify failed",
			"event", "answer_modify_failed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"answer_id", answer.AnswerID,
			"error", err.Error(),
		)
		return entities.Answer{}, err
	}

	answer.Content = content
	answer.ModifiedAt = &modifiedAt
	logger.Info("answer modified",
		"event", "answer_modified",
		"module", "community-experience/answer-service",
		"layer", "application",
		"answer_id", answer.AnswerID,
		"question_id", answer.QuestionID,
	)
	uc.publish(ctx, ports.TopicAnswerModified, answer, map[string]any{
		"answer_id":   answer.AnswerID,
		"question_id": answer.QuestionID,
	})
	return answer, nil
}

func (uc AnswerUseCase) Delete(ctx context.Context, answer entities.Answer) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.Answers.DeleteAnswer(ctx, answer.AnswerID); err != nil {
		logger.Error("answer delete failed",
			"event", "answer_delete_failed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"answer_id", answer.AnswerID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("answer deleted",
		"event", "answer_deleted",
		"module", "community-experience/answer-service",
		"layer", "application",
		"answer_id", answer.AnswerID,
		"question_id", answer.QuestionID,
	)
	uc.publish(ctx, ports.TopicAnswerDeleted, answer, map[string]any{
		"answer_id":   answer.AnswerID,
		"question_id": answer.QuestionID,
	})
	return nil
}

// Vote adds voter to the answer's voter set; repeats are a no-op.
func (uc AnswerUseCase) Vote(ctx context.Context, answer entities.Answer, voter entities.SiteUser) (VoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if voter.UserID <= 0 {
		return VoteResult{}, domainerrors.ErrInvalidAnswerInput
	}

	added, err := uc.Answers.AddVoter(ctx, answer.AnswerID, voter.UserID)
	if err != nil {
		logger.Error("answer vote failed",
			"event", "answer_vote_failed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"answer_id", answer.AnswerID,
			"user_id", voter.UserID,
			"error", err.Error(),
		)
		return VoteResult{}, err
	}
	if added && !answer.HasVoter(voter.UserID) {
		answer.VoterIDs = append(append([]int64(nil), answer.VoterIDs...), voter.UserID)
	}

	if !added {
		logger.Info("answer vote already recorded",
			"event", "answer_vote_replayed",
			"module", "community-experience/answer-service",
			"layer", "application",
			"answer_id", answer.AnswerID,
			"user_id", voter.UserID,
		)
		return VoteResult{Answer: answer, Added: false}, nil
	}

	logger.Info("answer voted",
		"event", "answer_voted",
		"module", "community-experience/answer-service",
		"layer", "application",
		"answer_id", answer.AnswerID,
		"user_id", voter.UserID,
		"vote_count", answer.VoteCount(),
	)
	uc.publish(ctx, ports.TopicAnswerVoted, answer, map[string]any{
		"answer_id":   answer.AnswerID,
		"question_id": answer.QuestionID,
		"user_id":     voter.UserID,
	})
	return VoteResult{Answer: answer, Added: true}, nil
}

func (uc AnswerUseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

func optionalID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
