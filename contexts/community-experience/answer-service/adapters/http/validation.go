package httpadapter

import (
	"errors"
	"reflect"
	"strings"

	httptransport "qaboard/contexts/community-experience/answer-service/transport/http"

	"github.com/go-playground/validator/v10"
)

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return validate
}

// validateForm returns nil when the form is valid, otherwise one FieldError
// per failed constraint.
func validateForm(form httptransport.AnswerForm) ([]httptransport.FieldError, error) {
	err := formValidator.Struct(form)
	if err == nil {
		return nil, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, err
	}
	fieldErrors := make([]httptransport.FieldError, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fieldErrors = append(fieldErrors, httptransport.FieldError{
			Field:   fieldErr.Field(),
			Rule:    fieldErr.Tag(),
			Message: fieldMessage(fieldErr),
		})
	}
	return fieldErrors, nil
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	default:
		return fieldErr.Field() + " is invalid"
	}
}
