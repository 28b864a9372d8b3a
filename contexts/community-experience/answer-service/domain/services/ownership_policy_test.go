package services

import (
	"errors"
	"testing"

	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
)

func TestEnsureAuthorAllowsAuthor(t *testing.T) {
	authorID := int64(7)
	answer := entities.Answer{AnswerID: 1, QuestionID: 3, AuthorID: &authorID}

	if err := EnsureAuthor(answer, entities.SiteUser{UserID: 7, Username: "alice"}, domainerrors.ErrModifyForbidden); err != nil {
		t.Fatalf("expected author to pass ownership check, got %v", err)
	}
}

func TestEnsureAuthorRejectsOtherUser(t *testing.T) {
	authorID := int64(7)
	answer := entities.Answer{AnswerID: 1, QuestionID: 3, AuthorID: &authorID}

	err := EnsureAuthor(answer, entities.SiteUser{UserID: 8, Username: "bob"}, domainerrors.ErrDeleteForbidden)
	if !errors.Is(err, domainerrors.ErrDeleteForbidden) {
		t.Fatalf("expected ErrDeleteForbidden, got %v", err)
	}
}

func TestEnsureAuthorRejectsAuthorlessAnswer(t *testing.T) {
	answer := entities.Answer{AnswerID: 1, QuestionID: 3}

	err := EnsureAuthor(answer, entities.SiteUser{UserID: 0}, domainerrors.ErrModifyForbidden)
	if !errors.Is(err, domainerrors.ErrModifyForbidden) {
		t.Fatalf("expected ErrModifyForbidden for author-less answer, got %v", err)
	}
}
