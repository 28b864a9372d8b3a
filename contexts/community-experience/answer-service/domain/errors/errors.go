package errors

import "errors"

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidAnswerInput     = errors.New("invalid answer input")
	ErrInvalidPageRequest     = errors.New("invalid page request")
	ErrAnswerNotFound         = errors.New("answer not found")
	ErrQuestionNotFound       = errors.New("question not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrModifyForbidden        = errors.New("no permission to modify")
	ErrDeleteForbidden        = errors.New("no permission to delete")
)
