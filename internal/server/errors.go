package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-editor/internal/schemas"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUpstream indicates the model call failed
type ErrUpstream struct {
	Action string
	Cause  error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s: model request failed: %v", e.Action, e.Cause)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Cause
}

// ErrMalformedOutput indicates the model answered with JSON that does not match its schema
type ErrMalformedOutput struct {
	Action string
	Cause  error
}

func (e *ErrMalformedOutput) Error() string {
	return fmt.Sprintf("%s: malformed model output: %v", e.Action, e.Cause)
}

func (e *ErrMalformedOutput) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		upstream   *ErrUpstream
		malformed  *ErrMalformedOutput
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &malformed), errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// validationMessage flattens validator and schema errors into one line
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return strings.Join(msgs, "; ")
	}
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		msgs := make([]string, 0, len(schemaErr.Errors))
		for _, fe := range schemaErr.Errors {
			msgs = append(msgs, fe.Field+": "+fe.Message)
		}
		return strings.Join(msgs, "; ")
	}
	return err.Error()
}
