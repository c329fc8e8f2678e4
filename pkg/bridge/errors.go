package bridge

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	InvalidInput   ErrorKind = "invalid_input"
	Authentication ErrorKind = "authentication"
	Fetch          ErrorKind = "fetch"
	UnknownTask    ErrorKind = "unknown_task"
	InvalidModule  ErrorKind = "invalid_module"
	Upload         ErrorKind = "upload"
	DetailFetch    ErrorKind = "detail_fetch"
)

var (
	ErrInvalidInput   = &Error{Kind: InvalidInput}
	ErrAuthentication = &Error{Kind: Authentication}
	ErrFetch          = &Error{Kind: Fetch}
	ErrUnknownTask    = &Error{Kind: UnknownTask}
	ErrInvalidModule  = &Error{Kind: InvalidModule}
	ErrUpload         = &Error{Kind: Upload}
	ErrDetailFetch    = &Error{Kind: DetailFetch}
)

type Error struct {
	Kind          ErrorKind
	Message       string
	InternalError error
	// Status is the remote HTTP status when the error came from a response.
	Status int
}

func NewError(kind ErrorKind, message string, internal error) *Error {
	return &Error{Kind: kind, Message: message, InternalError: internal}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.InternalError != nil {
		return fmt.Sprintf("%s: %s", msg, e.InternalError)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.InternalError
}

// Is matches any *Error of the same kind, so the Err* sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Rejected reports whether the remote refused the credentials.
func (e *Error) Rejected() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HttpCode maps an error to the status the local API answers with.
func HttpCode(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case InvalidInput, InvalidModule:
		return http.StatusBadRequest
	case Authentication:
		return http.StatusUnauthorized
	case UnknownTask:
		return http.StatusNotFound
	case Fetch, Upload, DetailFetch:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
