package bootstrap

import (
	"context"
	"errors"
	"testing"

	"qaboard/contexts/community-experience/answer-service/adapters/memory"
	"qaboard/contexts/community-experience/answer-service/application/commands"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	"qaboard/contexts/community-experience/answer-service/ports"
	"qaboard/internal/platform/config"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":      ":8080",
		"9090":  ":9090",
		":7070": ":7070",
		" 80 ":  ":80",
	}
	for input, want := range cases {
		if got := normalizeAddr(input); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildAPIRequiresDSN(t *testing.T) {
	if _, err := BuildAPI(context.Background(), config.Config{}); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestSeedValidatesOptionsBeforeConnecting(t *testing.T) {
	cfg := config.Config{PostgresDSN: "postgres://unused"}
	cases := []SeedOptions{
		{QuestionID: 0, Count: 1, Content: "x"},
		{QuestionID: 300, Count: 0, Content: "x"},
		{QuestionID: 300, Count: 1, Content: " "},
	}
	for _, opts := range cases {
		if _, err := Seed(context.Background(), cfg, opts); err == nil {
			t.Fatalf("expected %+v to be rejected", opts)
		}
	}
}

func TestSeedAnswersCreatesAuthorlessAnswers(t *testing.T) {
	store := memory.NewStore(nil)
	question := entities.Question{QuestionID: 300, Subject: "seeded"}
	store.SetQuestion(question)
	uc := commands.AnswerUseCase{Answers: store, Clock: store}

	created, err := seedAnswers(context.Background(), uc, question, 30, "no content")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if created != 30 {
		t.Fatalf("expected 30 created, got %d", created)
	}

	page, err := store.ListAnswersByQuestion(context.Background(), 300, ports.PageRequest{Page: 0, Size: 100})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.TotalElements != 30 {
		t.Fatalf("expected 30 answers, got %d", page.TotalElements)
	}
	for _, answer := range page.Items {
		if answer.AuthorID != nil || answer.Content != "no content" {
			t.Fatalf("unexpected seeded answer %+v", answer)
		}
	}
}

type failingAnswers struct {
	ports.AnswerRepository
	err error
}

func (f failingAnswers) CreateAnswer(context.Context, entities.Answer) (entities.Answer, error) {
	return entities.Answer{}, f.err
}

func TestSeedAnswersStopsAtFirstFailure(t *testing.T) {
	uc := commands.AnswerUseCase{Answers: failingAnswers{err: domainerrors.ErrQuestionNotFound}}

	created, err := seedAnswers(context.Background(), uc, entities.Question{QuestionID: 300}, 5, "x")
	if !errors.Is(err, domainerrors.ErrQuestionNotFound) {
		t.Fatalf("expected wrapped ErrQuestionNotFound, got %v", err)
	}
	if created != 0 {
		t.Fatalf("expected nothing created, got %d", created)
	}
}
