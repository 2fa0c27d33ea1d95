package domain

import (
	"errors"
	"net/http"
)

// Error codes carried by AppError.
const (
	CodeNotFound        = 1
	CodeAlreadyExists   = 2
	CodeValidation      = 3
	CodeInternal        = 4
	CodeInvalidArgument = 5
	CodeForbidden       = 6
)

var codeStatus = map[int]int{
	CodeNotFound:        http.StatusNotFound,
	CodeAlreadyExists:   http.StatusConflict,
	CodeValidation:      http.StatusBadRequest,
	CodeInvalidArgument: http.StatusBadRequest,
	CodeForbidden:       http.StatusForbidden,
	CodeInternal:        http.StatusInternalServerError,
}

// AppError is a failure the API reports to clients. Message is safe to
// expose; Err keeps the underlying cause for logs.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// Sentinel errors. Compare with the Is helpers, which match on code and so
// also accept errors built by NewAppError.
var (
	ErrNotFound        = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists   = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation      = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal        = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrInvalidArgument = &AppError{Code: CodeInvalidArgument, Message: "invalid argument"}
	ErrForbidden       = &AppError{Code: CodeForbidden, Message: "forbidden"}
)

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// InvalidArgument reports a caller contract violation such as a page number
// below 1 or a missing gender.
func InvalidArgument(message string) *AppError {
	return NewAppError(CodeInvalidArgument, message, nil)
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) (int, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return 0, false
	}
	return appErr.Code, true
}

func hasCode(err error, code int) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

func IsNotFound(err error) bool        { return hasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool   { return hasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool      { return hasCode(err, CodeValidation) }
func IsInternal(err error) bool        { return hasCode(err, CodeInternal) }
func IsInvalidArgument(err error) bool { return hasCode(err, CodeInvalidArgument) }
func IsForbidden(err error) bool       { return hasCode(err, CodeForbidden) }

// HTTPStatusCode maps err to a response status. Anything that is not an
// AppError with a known code is a 500.
func HTTPStatusCode(err error) int {
	if c, ok := CodeOf(err); ok {
		if status, known := codeStatus[c]; known {
			return status
		}
	}
	return http.StatusInternalServerError
}
