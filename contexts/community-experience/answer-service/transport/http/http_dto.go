package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnswerForm is the submitted answer body for create and modify.
type AnswerForm struct {
	Content string `json:"content" form:"content" validate:"required"`
}

type OutcomeKind string

const (
	OutcomeRedirect OutcomeKind = "redirect"
	OutcomeRender   OutcomeKind = "render"
)

const (
	ViewQuestionDetail = "question_detail"
	ViewAnswerForm     = "answer_form"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Outcome is the navigation result of an answer action: either a redirect
// target or a view to render with its model.
type Outcome struct {
	Kind   OutcomeKind  `json:"kind"`
	Target string       `json:"target,omitempty"`
	View   string       `json:"view,omitempty"`
	Model  *ViewModel   `json:"model,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

func (o Outcome) HasErrors() bool {
	return len(o.Errors) > 0
}

type ViewModel struct {
	Question *QuestionView `json:"question,omitempty"`
	AnswerID int64         `json:"answer_id,omitempty"`
	Form     *AnswerForm   `json:"form,omitempty"`
}

type QuestionView struct {
	QuestionID int64  `json:"question_id"`
	Subject    string `json:"subject"`
}

type ListAnswersRequest struct {
	Page string
	Size string
	Sort string
}

type AnswerResponse struct {
	AnswerID   int64   `json:"answer_id"`
	QuestionID int64   `json:"question_id"`
	AuthorID   *int64  `json:"author_id"`
	Content    string  `json:"content"`
	VoteCount  int     `json:"vote_count"`
	VoterIDs   []int64 `json:"voter_ids"`
	CreatedAt  string  `json:"created_at"`
	ModifiedAt string  `json:"modified_at,omitempty"`
}

type ListAnswersResponse struct {
	QuestionID    int64            `json:"question_id"`
	Sort          string           `json:"sort"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
	TotalElements int64            `json:"total_elements"`
	TotalPages    int              `json:"total_pages"`
	HasNext       bool             `json:"has_next"`
	HasPrevious   bool             `json:"has_previous"`
	Items         []AnswerResponse `json:"items"`
}
