package httpadapter_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	answerservice "qaboard/contexts/community-experience/answer-service"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	httptransport "qaboard/contexts/community-experience/answer-service/transport/http"
)

func newModule(t *testing.T) answerservice.Module {
	t.Helper()
	module := answerservice.NewInMemoryModule(nil, nil, nil)
	module.Store.SetQuestion(entities.Question{QuestionID: 300, Subject: "How do I page answers?"})
	module.Store.SetUser(entities.SiteUser{UserID: 1, Username: "alice"})
	module.Store.SetUser(entities.SiteUser{UserID: 2, Username: "bob"})
	return module
}

func createAnswer(t *testing.T, module answerservice.Module, username string, content string) entities.Answer {
	t.Helper()
	outcome, err := module.Handler.CreateAnswerHandler(context.Background(), username, 300, httptransport.AnswerForm{Content: content})
	if err != nil {
		t.Fatalf("create answer failed: %v", err)
	}
	if outcome.Kind != httptransport.OutcomeRedirect {
		t.Fatalf("expected redirect outcome, got %+v", outcome)
	}
	var questionID, answerID int64
	if _, err := fmt.Sscanf(outcome.Target, "/question/detail/%d#anser_%d", &questionID, &answerID); err != nil {
		t.Fatalf("unexpected redirect target %q: %v", outcome.Target, err)
	}
	answer, err := module.Store.GetAnswer(context.Background(), answerID)
	if err != nil {
		t.Fatalf("created answer not persisted: %v", err)
	}
	return answer
}

func TestCreateAnswerRedirectsToAnswerAnchor(t *testing.T) {
	module := newModule(t)

	answer := createAnswer(t, module, "alice", "use pages")
	if answer.QuestionID != 300 || answer.Content != "use pages" {
		t.Fatalf("unexpected answer %+v", answer)
	}
	if answer.AuthorID == nil || *answer.AuthorID != 1 {
		t.Fatalf("expected alice as author, got %v", answer.AuthorID)
	}
}

func TestCreateAnswerWithEmptyContentRedisplaysQuestion(t *testing.T) {
	module := newModule(t)

	outcome, err := module.Handler.CreateAnswerHandler(context.Background(), "alice", 300, httptransport.AnswerForm{})
	if err != nil {
		t.Fatalf("expected render outcome, got error %v", err)
	}
	if outcome.Kind != httptransport.OutcomeRender || outcome.View != httptransport.ViewQuestionDetail {
		t.Fatalf("expected question_detail render, got %+v", outcome)
	}
	if outcome.Model == nil || outcome.Model.Question == nil || outcome.Model.Question.QuestionID != 300 {
		t.Fatalf("expected question context in model, got %+v", outcome.Model)
	}
	if len(outcome.Errors) != 1 || outcome.Errors[0].Field != "content" || outcome.Errors[0].Rule != "required" {
		t.Fatalf("expected required content error, got %+v", outcome.Errors)
	}

	page, _ := module.Handler.ListAnswersHandler(context.Background(), 300, httptransport.ListAnswersRequest{})
	if page.TotalElements != 0 {
		t.Fatalf("expected no answer persisted, got %d", page.TotalElements)
	}
}

func TestCreateAnswerRequiresCallerAndQuestion(t *testing.T) {
	module := newModule(t)

	_, err := module.Handler.CreateAnswerHandler(context.Background(), "", 300, httptransport.AnswerForm{Content: "x"})
	if !errors.Is(err, domainerrors.ErrAuthenticationRequired) {
		t.Fatalf("expected ErrAuthenticationRequired, got %v", err)
	}
	_, err = module.Handler.CreateAnswerHandler(context.Background(), "alice", 999, httptransport.AnswerForm{Content: "x"})
	if !errors.Is(err, domainerrors.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestModifyFormPrefillsContentForAuthor(t *testing.T) {
	module := newModule(t)
	answer := createAnswer(t, module, "alice", "original")

	outcome, err := module.Handler.ModifyFormHandler(context.Background(), "alice", answer.AnswerID)
	if err != nil {
		t.Fatalf("modify form failed: %v", err)
	}
	if outcome.View != httptransport.ViewAnswerForm || outcome.Model.Form.Content != "original" {
		t.Fatalf("expected prefilled answer_form, got %+v", outcome)
	}
}

func TestNonAuthorCannotModifyOrDelete(t *testing.T) {
	module := newModule(t)
	answer := createAnswer(t, module, "alice", "original")

	if _, err := module.Handler.ModifyFormHandler(context.Background(), "bob", answer.AnswerID); !errors.Is(err, domainerrors.ErrModifyForbidden) {
		t.Fatalf("expected ErrModifyForbidden on form, got %v", err)
	}
	if _, err := module.Handler.ModifyAnswerHandler(context.Background(), "bob", answer.AnswerID, httptransport.AnswerForm{Content: "hijack"}); !errors.Is(err, domainerrors.ErrModifyForbidden) {
		t.Fatalf("expected ErrModifyForbidden on submit, got %v", err)
	}
	if _, err := module.Handler.ModifyAnswerHandler(context.Background(), "bob", answer.AnswerID, httptransport.AnswerForm{}); !errors.Is(err, domainerrors.ErrModifyForbidden) {
		t.Fatalf("expected ErrModifyForbidden before validation redisplay, got %v", err)
	}
	if _, err := module.Handler.DeleteAnswerHandler(context.Background(), "bob", answer.AnswerID); !errors.Is(err, domainerrors.ErrDeleteForbidden) {
		t.Fatalf("expected ErrDeleteForbidden, got %v", err)
	}

	stored, err := module.Store.GetAnswer(context.Background(), answer.AnswerID)
	if err != nil {
		t.Fatalf("answer should still exist: %v", err)
	}
	if stored.Content != "original" || stored.ModifiedAt != nil {
		t.Fatalf("expected untouched answer, got %+v", stored)
	}
}

func TestAuthorModifyRedirectsToQuestion(t *testing.T) {
	module := newModule(t)
	answer := createAnswer(t, module, "alice", "original")

	outcome, err := module.Handler.ModifyAnswerHandler(context.Background(), "alice", answer.AnswerID, httptransport.AnswerForm{Content: "edited"})
	if err != nil {
		t.Fatalf("modify failed: %v", err)
	}
	if outcome.Kind != httptransport.OutcomeRedirect || outcome.Target != "/question/detail/300" {
		t.Fatalf("expected redirect to question, got %+v", outcome)
	}
	stored, _ := module.Store.GetAnswer(context.Background(), answer.AnswerID)
	if stored.Content != "edited" || stored.QuestionID != 300 || *stored.AuthorID != 1 {
		t.Fatalf("unexpected stored answer %+v", stored)
	}
}

func TestAuthorModifyWithEmptyContentRedisplaysForm(t *testing.T) {
	module := newModule(t)
	answer := createAnswer(t, module, "alice", "original")

	outcome, err := module.Handler.ModifyAnswerHandler(context.Background(), "alice", answer.AnswerID, httptransport.AnswerForm{})
	if err != nil {
		t.Fatalf("expected render outcome, got %v", err)
	}
	if outcome.View != httptransport.ViewAnswerForm || !outcome.HasErrors() {
		t.Fatalf("expected answer_form with errors, got %+v", outcome)
	}
	stored, _ := module.Store.GetAnswer(context.Background(), answer.AnswerID)
	if stored.Content != "original" {
		t.Fatalf("expected content unchanged, got %q", stored.Content)
	}
}

func TestAuthorDeleteRemovesAnswer(t *testing.T) {
	module := newModule(t)
	answer := createAnswer(t, module, "alice", "original")

	outcome, err := module.Handler.DeleteAnswerHandler(context.Background(), "alice", answer.AnswerID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if outcome.Target != "/question/detail/300" {
		t.Fatalf("unexpected redirect %q", outcome.Target)
	}
	if _, err := module.Handler.GetAnswerHandler(context.Background(), answer.AnswerID); !errors.Is(err, domainerrors.ErrAnswerNotFound) {
		t.Fatalf("expected ErrAnswerNotFound after delete, got %v", err)
	}
}

func TestVoteAllowsAnyUserOncePerUser(t *testing.T) {
	module := newModule(t)
	answer := createAnswer(t, module, "alice", "original")

	for _, username := range []string{"alice", "bob", "bob"} {
		outcome, err := module.Handler.VoteAnswerHandler(context.Background(), username, answer.AnswerID)
		if err != nil {
			t.Fatalf("vote by %s failed: %v", username, err)
		}
		if outcome.Target != "/question/detail/300" {
			t.Fatalf("unexpected redirect %q", outcome.Target)
		}
	}

	resp, err := module.Handler.GetAnswerHandler(context.Background(), answer.AnswerID)
	if err != nil {
		t.Fatalf("get answer failed: %v", err)
	}
	if resp.VoteCount != 2 {
		t.Fatalf("expected 2 distinct voters, got %d", resp.VoteCount)
	}
}

func TestListAnswersByVoteOrder(t *testing.T) {
	module := newModule(t)
	quiet := createAnswer(t, module, "alice", "quiet")
	popular := createAnswer(t, module, "alice", "popular")
	for _, username := range []string{"alice", "bob"} {
		if _, err := module.Handler.VoteAnswerHandler(context.Background(), username, popular.AnswerID); err != nil {
			t.Fatalf("vote failed: %v", err)
		}
	}

	resp, err := module.Handler.ListAnswersHandler(context.Background(), 300, httptransport.ListAnswersRequest{Sort: "vote"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].AnswerID != popular.AnswerID || resp.Items[1].AnswerID != quiet.AnswerID {
		t.Fatalf("expected popular answer first, got %+v", resp.Items)
	}

	if _, err := module.Handler.ListAnswersHandler(context.Background(), 300, httptransport.ListAnswersRequest{Page: "abc"}); !errors.Is(err, domainerrors.ErrInvalidPageRequest) {
		t.Fatalf("expected ErrInvalidPageRequest, got %v", err)
	}
}

// Mirrors the data-seeding scenario: 30 author-less answers on question 300
// must all be reachable by paging.
func TestThirtyAuthorlessAnswersAreRetrievableAcrossPages(t *testing.T) {
	module := newModule(t)
	question, err := module.Store.GetQuestion(context.Background(), 300)
	if err != nil {
		t.Fatalf("question lookup failed: %v", err)
	}
	for i := 1; i <= 30; i++ {
		if _, err := module.Handler.Answers.Create(context.Background(), question, "no content", nil); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	seen := make(map[int64]struct{})
	for page := 0; ; page++ {
		resp, err := module.Handler.ListAnswersHandler(context.Background(), 300, httptransport.ListAnswersRequest{
			Page: fmt.Sprint(page),
			Size: "7",
		})
		if err != nil {
			t.Fatalf("list page %d failed: %v", page, err)
		}
		for _, item := range resp.Items {
			if item.Content != "no content" || item.AuthorID != nil {
				t.Fatalf("unexpected answer %+v", item)
			}
			seen[item.AnswerID] = struct{}{}
		}
		if !resp.HasNext {
			if resp.TotalElements != 30 || resp.TotalPages != 5 {
				t.Fatalf("expected total=30 pages=5, got total=%d pages=%d", resp.TotalElements, resp.TotalPages)
			}
			break
		}
	}
	if len(seen) != 30 {
		t.Fatalf("expected 30 distinct answers, got %d", len(seen))
	}
}

func TestListAnswersRejectsPageBeyondAddressableRange(t *testing.T) {
	module := newModule(t)
	createAnswer(t, module, "alice", "only")

	_, err := module.Handler.ListAnswersHandler(context.Background(), 300, httptransport.ListAnswersRequest{
		Page: "1000000000000000000",
		Size: "10",
	})
	if !errors.Is(err, domainerrors.ErrInvalidPageRequest) {
		t.Fatalf("expected ErrInvalidPageRequest, got %v", err)
	}
}
