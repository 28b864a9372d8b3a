package queries

import (
	"context"
	"math"
	"strings"

	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	"qaboard/contexts/community-experience/answer-service/ports"
)

type ListAnswersQuery struct {
	QuestionID int64
	Page       int
	Size       int
	Order      entities.AnswerOrder
}

// AnswerQueries serves the read side: single lookups and per-question pages.
type AnswerQueries struct {
	Answers         ports.AnswerRepository
	DefaultPageSize int
}

func (uc AnswerQueries) GetAnswer(ctx context.Context, answerID int64) (entities.Answer, error) {
	if answerID <= 0 {
		return entities.Answer{}, domainerrors.ErrAnswerNotFound
	}
	return uc.Answers.GetAnswer(ctx, answerID)
}

func (uc AnswerQueries) ListAnswers(ctx context.Context, query ListAnswersQuery) (entities.AnswerPage, error) {
	page, err := NormalizePage(ports.PageRequest{Page: query.Page, Size: query.Size}, uc.DefaultPageSize)
	if err != nil {
		return entities.AnswerPage{}, err
	}
	order, err := ParseOrder(string(query.Order))
	if err != nil {
		return entities.AnswerPage{}, err
	}

	if order == entities.AnswerOrderVoteCount {
		return uc.Answers.ListAnswersByQuestionOrderedByVoteCount(ctx, query.QuestionID, page)
	}
	return uc.Answers.ListAnswersByQuestion(ctx, query.QuestionID, page)
}

// NormalizePage rejects negative pages, applies the default size, clamps
// oversized requests to ports.MaxPageSize and rejects pages whose offset
// would overflow int.
func NormalizePage(page ports.PageRequest, defaultSize int) (ports.PageRequest, error) {
	if page.Page < 0 {
		return ports.PageRequest{}, domainerrors.ErrInvalidPageRequest
	}
	if defaultSize <= 0 {
		defaultSize = ports.DefaultPageSize
	}
	if page.Size <= 0 {
		page.Size = defaultSize
	}
	if page.Size > ports.MaxPageSize {
		page.Size = ports.MaxPageSize
	}
	if page.Page > math.MaxInt/page.Size {
		return ports.PageRequest{}, domainerrors.ErrInvalidPageRequest
	}
	return page, nil
}

func ParseOrder(raw string) (entities.AnswerOrder, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(entities.AnswerOrderCreated):
		return entities.AnswerOrderCreated, nil
	case string(entities.AnswerOrderVoteCount), "votes":
		return entities.AnswerOrderVoteCount, nil
	default:
		return "", domainerrors.ErrInvalidPageRequest
	}
}
