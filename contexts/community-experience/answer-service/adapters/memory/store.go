package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	"qaboard/contexts/community-experience/answer-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	answers      map[int64]entities.Answer
	nextAnswerID int64

	questions map[int64]entities.Question
	users     map[string]entities.SiteUser
}

func NewStore(seed []entities.Answer) *Store {
	answers := make(map[int64]entities.Answer, len(seed))
	var maxID int64
	for _, answer := range seed {
		answers[answer.AnswerID] = cloneAnswer(answer)
		if answer.AnswerID > maxID {
			maxID = answer.AnswerID
		}
	}
	return &Store{
		answers:      answers,
		nextAnswerID: maxID,
		questions:    make(map[int64]entities.Question),
		users:        make(map[string]entities.SiteUser),
	}
}

func (s *Store) SetQuestion(question entities.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[question.QuestionID] = entities.Question{
		QuestionID: question.QuestionID,
		Subject:    strings.TrimSpace(question.Subject),
	}
}

func (s *Store) SetUser(user entities.SiteUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.Username)] = entities.SiteUser{
		UserID:   user.UserID,
		Username: strings.TrimSpace(user.Username),
	}
}

func (s *Store) CreateAnswer(_ context.Context, answer entities.Answer) (entities.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAnswerID++
	answer.AnswerID = s.nextAnswerID
	answer.VoterIDs = nil
	s.answers[answer.AnswerID] = cloneAnswer(answer)
	return cloneAnswer(answer), nil
}

func (s *Store) GetAnswer(_ context.Context, answerID int64) (entities.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[answerID]
	if !ok {
		return entities.Answer{}, domainerrors.ErrAnswerNotFound
	}
	return cloneAnswer(answer), nil
}

func (s *Store) UpdateAnswerContent(_ context.Context, answerID int64, content string, modifiedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, ok := s.answers[answerID]
	if !ok {
		return domainerrors.ErrAnswerNotFound
	}
	modified := modifiedAt.UTC()
	answer.Content = content
	answer.ModifiedAt = &modified
	s.answers[answerID] = answer
	return nil
}

func (s *Store) DeleteAnswer(_ context.Context, answerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[answerID]; !ok {
		return domainerrors.ErrAnswerNotFound
	}
	delete(s.answers, answerID)
	return nil
}

func (s *Store) AddVoter(_ context.Context, answerID int64, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, ok := s.answers[answerID]
	if !ok {
		return false, domainerrors.ErrAnswerNotFound
	}
	if answer.HasVoter(userID) {
		return false, nil
	}
	answer.VoterIDs = append(answer.VoterIDs, userID)
	s.answers[answerID] = answer
	return true, nil
}

func (s *Store) ListAnswersByQuestion(_ context.Context, questionID int64, page ports.PageRequest) (entities.AnswerPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.answersForQuestion(questionID)
	sortAnswersByCreation(items)
	return cutPage(items, page), nil
}

func (s *Store) ListAnswersByQuestionOrderedByVoteCount(
	_ context.Context,
	questionID int64,
	page ports.PageRequest,
) (entities.AnswerPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.answersForQuestion(questionID)
	sortAnswersByCreation(items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].VoteCount() > items[j].VoteCount()
	})
	return cutPage(items, page), nil
}

func (s *Store) GetQuestion(_ context.Context, questionID int64) (entities.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[questionID]
	if !ok {
		return entities.Question{}, domainerrors.ErrQuestionNotFound
	}
	return question, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (entities.SiteUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(username)]
	if !ok {
		return entities.SiteUser{}, domainerrors.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) answersForQuestion(questionID int64) []entities.Answer {
	items := make([]entities.Answer, 0)
	for _, answer := range s.answers {
		if answer.QuestionID == questionID {
			items = append(items, cloneAnswer(answer))
		}
	}
	return items
}

func sortAnswersByCreation(items []entities.Answer) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].AnswerID < items[j].AnswerID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}

func cutPage(items []entities.Answer, page ports.PageRequest) entities.AnswerPage {
	if page.Size <= 0 {
		page.Size = ports.DefaultPageSize
	}
	total := int64(len(items))
	start := page.Offset()
	if start < 0 || start > len(items) {
		start = len(items)
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return entities.NewAnswerPage(items[start:end], page.Page, page.Size, total)
}

func cloneAnswer(answer entities.Answer) entities.Answer {
	if answer.AuthorID != nil {
		authorID := *answer.AuthorID
		answer.AuthorID = &authorID
	}
	if answer.ModifiedAt != nil {
		modified := *answer.ModifiedAt
		answer.ModifiedAt = &modified
	}
	answer.VoterIDs = append([]int64(nil), answer.VoterIDs...)
	return answer
}

var _ ports.AnswerRepository = (*Store)(nil)
var _ ports.QuestionReader = (*Store)(nil)
var _ ports.UserReader = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
