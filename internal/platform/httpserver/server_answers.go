package httpserver

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	domainerrors "qaboard/contexts/community-experience/answer-service/domain/errors"
	answerhttp "qaboard/contexts/community-experience/answer-service/transport/http"
)

const userHeader = "X-User-Id"

func (s *Server) handleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "question_id")
	if !ok {
		return
	}
	form, ok := readAnswerForm(w, r)
	if !ok {
		return
	}
	outcome, err := s.answers.Handler.CreateAnswerHandler(r.Context(), r.Header.Get(userHeader), questionID, form)
	s.writeOutcome(w, r, outcome, err)
}

func (s *Server) handleModifyForm(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := s.answers.Handler.ModifyFormHandler(r.Context(), r.Header.Get(userHeader), answerID)
	s.writeOutcome(w, r, outcome, err)
}

func (s *Server) handleModifyAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	form, ok := readAnswerForm(w, r)
	if !ok {
		return
	}
	outcome, err := s.answers.Handler.ModifyAnswerHandler(r.Context(), r.Header.Get(userHeader), answerID, form)
	s.writeOutcome(w, r, outcome, err)
}

func (s *Server) handleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := s.answers.Handler.DeleteAnswerHandler(r.Context(), r.Header.Get(userHeader), answerID)
	s.writeOutcome(w, r, outcome, err)
}

func (s *Server) handleVoteAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	outcome, err := s.answers.Handler.VoteAnswerHandler(r.Context(), r.Header.Get(userHeader), answerID)
	s.writeOutcome(w, r, outcome, err)
}

func (s *Server) handleListAnswers(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "question_id")
	if !ok {
		return
	}
	query := r.URL.Query()
	resp, err := s.answers.Handler.ListAnswersHandler(r.Context(), questionID, answerhttp.ListAnswersRequest{
		Page: query.Get("page"),
		Size: query.Get("size"),
		Sort: query.Get("sort"),
	})
	if err != nil {
		s.writeAnswerDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAnswer(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	resp, err := s.answers.Handler.GetAnswerHandler(r.Context(), answerID)
	if err != nil {
		s.writeAnswerDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeOutcome turns a navigation outcome into a 302, or into the view model
// as JSON. A render carrying field errors is a rejected submission (422).
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, outcome answerhttp.Outcome, err error) {
	if err != nil {
		s.writeAnswerDomainError(w, r, err)
		return
	}
	switch outcome.Kind {
	case answerhttp.OutcomeRedirect:
		http.Redirect(w, r, outcome.Target, http.StatusFound)
	case answerhttp.OutcomeRender:
		status := http.StatusOK
		if outcome.HasErrors() {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, outcome)
	default:
		s.writeAnswerDomainError(w, r, errors.New("unknown outcome kind"))
	}
}

func (s *Server) writeAnswerDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrAuthenticationRequired):
		writeAnswerError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, domainerrors.ErrModifyForbidden),
		errors.Is(err, domainerrors.ErrDeleteForbidden):
		writeAnswerError(w, http.StatusBadRequest, "no_permission", err.Error())
	case errors.Is(err, domainerrors.ErrAnswerNotFound),
		errors.Is(err, domainerrors.ErrQuestionNotFound),
		errors.Is(err, domainerrors.ErrUserNotFound):
		writeAnswerError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domainerrors.ErrInvalidAnswerInput),
		errors.Is(err, domainerrors.ErrInvalidPageRequest):
		writeAnswerError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("answer request failed",
			"event", "http_answer_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Header.Get(requestIDHeader),
			"error", err.Error(),
		)
		writeAnswerError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeAnswerError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, answerhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	value, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		writeAnswerError(w, http.StatusBadRequest, "invalid_request", name+" must be an integer")
		return 0, false
	}
	return value, true
}

// readAnswerForm accepts url-encoded and multipart forms, or a JSON body when
// the request says so.
func readAnswerForm(w http.ResponseWriter, r *http.Request) (answerhttp.AnswerForm, bool) {
	var form answerhttp.AnswerForm
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			writeAnswerError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
			return answerhttp.AnswerForm{}, false
		}
		return form, true
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeAnswerError(w, http.StatusBadRequest, "invalid_form", "request body must be a valid form")
			return answerhttp.AnswerForm{}, false
		}
	} else if err := r.ParseForm(); err != nil {
		writeAnswerError(w, http.StatusBadRequest, "invalid_form", "request body must be a valid form")
		return answerhttp.AnswerForm{}, false
	}
	form.Content = r.PostForm.Get("content")
	return form, true
}
