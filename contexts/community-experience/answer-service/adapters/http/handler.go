package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "qaboard/contexts/community-experience/answer-service/application"
	"qaboard/contexts/community-experience/answer-service/application/commands"
	"qaboard/contexts/community-experience/answer-service/application/queries"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	"qaboard/contexts/community-experience/answer-service/domain/services"
	"qaboard/contexts/community-experience/answer-service/ports"
	httptransport "qaboard/contexts/community-experience/answer-service/transport/http"
)

// Handler is the request-facing side of the answer module. It validates
// forms, resolves the acting user, enforces ownership and turns each action
// into a navigation outcome.
type Handler struct {
	Answers   commands.AnswerUseCase
	Queries   queries.AnswerQueries
	Questions ports.QuestionReader
	Users     ports.UserReader
	Logger    *slog.Logger
}

// CreateAnswerHandler godoc
// @Summary Create an answer
// @Description Creates an answer under a question and redirects to the new answer anchor.
// @Tags answers
// @Accept x-www-form-urlencoded
// @Produce json
// @Param X-User-Id header string true "Authenticated username"
// @Param question_id path int true "Question id"
// @Param content formData string true "Answer content"
// @Success 302 {string} string "Redirect to /question/detail/{question_id}#anser_{answer_id}"
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.Outcome
// @Router /answer/create/{question_id} [post]
func (h Handler) CreateAnswerHandler(
	ctx context.Context,
	username string,
	questionID int64,
	form httptransport.AnswerForm,
) (httptransport.Outcome, error) {
	logger := application.ResolveLogger(h.Logger)
	if err := requireCaller(username); err != nil {
		return httptransport.Outcome{}, err
	}

	question, err := h.Questions.GetQuestion(ctx, questionID)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	author, err := h.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return httptransport.Outcome{}, err
	}

	fieldErrors, err := validateForm(form)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	if len(fieldErrors) > 0 {
		logger.Info("answer create form rejected",
			"event", "http_answer_create_invalid_form",
			"module", "community-experience/answer-service",
			"layer", "transport",
			"question_id", question.QuestionID,
			"username", username,
		)
		return renderQuestionDetail(question, form, fieldErrors), nil
	}

	answer, err := h.Answers.Create(ctx, question, form.Content, &author)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	return redirect(fmt.Sprintf("/question/detail/%d#anser_%d", answer.QuestionID, answer.AnswerID)), nil
}

// ModifyFormHandler godoc
// @Summary Answer edit form
// @Description Returns the edit form prefilled with the current content. Author only.
// @Tags answers
// @Produce json
// @Param X-User-Id header string true "Authenticated username"
// @Param id path int true "Answer id"
// @Success 200 {object} httptransport.Outcome
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /answer/modify/{id} [get]
func (h Handler) ModifyFormHandler(ctx context.Context, username string, answerID int64) (httptransport.Outcome, error) {
	answer, err := h.ownedAnswer(ctx, username, answerID, domainerrors.ErrModifyForbidden)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	return renderAnswerForm(answer.AnswerID, httptransport.AnswerForm{Content: answer.Content}, nil), nil
}

// ModifyAnswerHandler godoc
// @Summary Modify an answer
// @Description Replaces the answer content. Author only.
// @Tags answers
// @Accept x-www-form-urlencoded
// @Produce json
// @Param X-User-Id header string true "Authenticated username"
// @Param id path int true "Answer id"
// @Param content formData string true "Answer content"
// @Success 302 {string} string "Redirect to /question/detail/{question_id}"
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.Outcome
// @Router /answer/modify/{id} [post]
func (h Handler) ModifyAnswerHandler(
	ctx context.Context,
	username string,
	answerID int64,
	form httptransport.AnswerForm,
) (httptransport.Outcome, error) {
	answer, err := h.ownedAnswer(ctx, username, answerID, domainerrors.ErrModifyForbidden)
	if err != nil {
		return httptransport.Outcome{}, err
	}

	fieldErrors, err := validateForm(form)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	if len(fieldErrors) > 0 {
		return renderAnswerForm(answer.AnswerID, form, fieldErrors), nil
	}

	modified, err := h.Answers.Modify(ctx, answer, form.Content)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	return redirect(questionDetailPath(modified.QuestionID)), nil
}

// DeleteAnswerHandler godoc
// @Summary Delete an answer
// @Description Deletes the answer and its votes. Author only.
// @Tags answers
// @Produce json
// @Param X-User-Id header string true "Authenticated username"
// @Param id path int true "Answer id"
// @Success 302 {string} string "Redirect to /question/detail/{question_id}"
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /answer/delete/{id} [get]
func (h Handler) DeleteAnswerHandler(ctx context.Context, username string, answerID int64) (httptransport.Outcome, error) {
	answer, err := h.ownedAnswer(ctx, username, answerID, domainerrors.ErrDeleteForbidden)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	if err := h.Answers.Delete(ctx, answer); err != nil {
		return httptransport.Outcome{}, err
	}
	return redirect(questionDetailPath(answer.QuestionID)), nil
}

// VoteAnswerHandler godoc
// @Summary Vote for an answer
// @Description Adds the caller to the answer's voters. Repeated votes are ignored.
// @Tags answers
// @Produce json
// @Param X-User-Id header string true "Authenticated username"
// @Param id path int true "Answer id"
// @Success 302 {string} string "Redirect to /question/detail/{question_id}"
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /answer/vote/{id} [get]
func (h Handler) VoteAnswerHandler(ctx context.Context, username string, answerID int64) (httptransport.Outcome, error) {
	if err := requireCaller(username); err != nil {
		return httptransport.Outcome{}, err
	}
	answer, err := h.Queries.GetAnswer(ctx, answerID)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	voter, err := h.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return httptransport.Outcome{}, err
	}
	if _, err := h.Answers.Vote(ctx, answer, voter); err != nil {
		return httptransport.Outcome{}, err
	}
	return redirect(questionDetailPath(answer.QuestionID)), nil
}

// GetAnswerHandler godoc
// @Summary Get an answer
// @Tags answers
// @Produce json
// @Param id path int true "Answer id"
// @Success 200 {object} httptransport.AnswerResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /answer/{id} [get]
func (h Handler) GetAnswerHandler(ctx context.Context, answerID int64) (httptransport.AnswerResponse, error) {
	answer, err := h.Queries.GetAnswer(ctx, answerID)
	if err != nil {
		return httptransport.AnswerResponse{}, err
	}
	return mapAnswer(answer), nil
}

// ListAnswersHandler godoc
// @Summary List answers of a question
// @Description Returns a page of answers in creation order or by descending vote count.
// @Tags answers
// @Produce json
// @Param question_id path int true "Question id"
// @Param page query int false "0-based page index"
// @Param size query int false "Page size (max 100)"
// @Param sort query string false "created (default) or vote"
// @Success 200 {object} httptransport.ListAnswersResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /answer/list/{question_id} [get]
func (h Handler) ListAnswersHandler(
	ctx context.Context,
	questionID int64,
	req httptransport.ListAnswersRequest,
) (httptransport.ListAnswersResponse, error) {
	page, err := parseOptionalInt(req.Page)
	if err != nil {
		return httptransport.ListAnswersResponse{}, err
	}
	size, err := parseOptionalInt(req.Size)
	if err != nil {
		return httptransport.ListAnswersResponse{}, err
	}
	order, err := queries.ParseOrder(req.Sort)
	if err != nil {
		return httptransport.ListAnswersResponse{}, err
	}
	if _, err := h.Questions.GetQuestion(ctx, questionID); err != nil {
		return httptransport.ListAnswersResponse{}, err
	}

	result, err := h.Queries.ListAnswers(ctx, queries.ListAnswersQuery{
		QuestionID: questionID,
		Page:       page,
		Size:       size,
		Order:      order,
	})
	if err != nil {
		return httptransport.ListAnswersResponse{}, err
	}

	items := make([]httptransport.AnswerResponse, 0, len(result.Items))
	for _, answer := range result.Items {
		items = append(items, mapAnswer(answer))
	}
	return httptransport.ListAnswersResponse{
		QuestionID:    questionID,
		Sort:          string(order),
		Page:          result.Page,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
		HasNext:       result.HasNext(),
		HasPrevious:   result.HasPrevious(),
		Items:         items,
	}, nil
}

// ownedAnswer loads the answer and the caller and fails with denied unless
// the caller is the author.
func (h Handler) ownedAnswer(ctx context.Context, username string, answerID int64, denied error) (entities.Answer, error) {
	logger := application.ResolveLogger(h.Logger)
	if err := requireCaller(username); err != nil {
		return entities.Answer{}, err
	}
	answer, err := h.Queries.GetAnswer(ctx, answerID)
	if err != nil {
		return entities.Answer{}, err
	}
	caller, err := h.Users.GetUserByUsername(ctx, username)
	if err != nil {
		return entities.Answer{}, err
	}
	if err := services.EnsureAuthor(answer, caller, denied); err != nil {
		logger.Warn("answer ownership check failed",
			"event", "http_answer_ownership_denied",
			"module", "community-experience/answer-service",
			"layer", "transport",
			"answer_id", answer.AnswerID,
			"username", username,
			"reason", err.Error(),
		)
		return entities.Answer{}, err
	}
	return answer, nil
}

func requireCaller(username string) error {
	if strings.TrimSpace(username) == "" {
		return domainerrors.ErrAuthenticationRequired
	}
	return nil
}

func redirect(target string) httptransport.Outcome {
	return httptransport.Outcome{
		Kind:   httptransport.OutcomeRedirect,
		Target: target,
	}
}

func renderQuestionDetail(
	question entities.Question,
	form httptransport.AnswerForm,
	fieldErrors []httptransport.FieldError,
) httptransport.Outcome {
	return httptransport.Outcome{
		Kind: httptransport.OutcomeRender,
		View: httptransport.ViewQuestionDetail,
		Model: &httptransport.ViewModel{
			Question: &httptransport.QuestionView{
				QuestionID: question.QuestionID,
				Subject:    question.Subject,
			},
			Form: &form,
		},
		Errors: fieldErrors,
	}
}

func renderAnswerForm(answerID int64, form httptransport.AnswerForm, fieldErrors []httptransport.FieldError) httptransport.Outcome {
	return httptransport.Outcome{
		Kind: httptransport.OutcomeRender,
		View: httptransport.ViewAnswerForm,
		Model: &httptransport.ViewModel{
			AnswerID: answerID,
			Form:     &form,
		},
		Errors: fieldErrors,
	}
}

func questionDetailPath(questionID int64) string {
	return fmt.Sprintf("/question/detail/%d", questionID)
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.ErrInvalidPageRequest
	}
	return value, nil
}

func mapAnswer(answer entities.Answer) httptransport.AnswerResponse {
	voters := answer.VoterIDs
	if voters == nil {
		voters = []int64{}
	}
	resp := httptransport.AnswerResponse{
		AnswerID:   answer.AnswerID,
		QuestionID: answer.QuestionID,
		AuthorID:   answer.AuthorID,
		Content:    answer.Content,
		VoteCount:  answer.VoteCount(),
		VoterIDs:   voters,
		CreatedAt:  answer.CreatedAt.UTC().Format(time.RFC3339),
	}
	if answer.ModifiedAt != nil {
		resp.ModifiedAt = answer.ModifiedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
