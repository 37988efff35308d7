package files

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures surfaced to API clients.
type ErrorKind string

const (
	KindUnknownStorage    ErrorKind = "UnknownStorageError"
	KindInvalidPath       ErrorKind = "InvalidPathError"
	KindNotFound          ErrorKind = "NotFoundError"
	KindConflict          ErrorKind = "ConflictError"
	KindNotImplemented    ErrorKind = "NotImplementedError"
	KindUnsupportedAction ErrorKind = "UnsupportedActionError"
	KindBadRequest        ErrorKind = "BadRequestError"
	KindReadOnly          ErrorKind = "ReadOnlyError"
	KindConfiguration     ErrorKind = "ConfigurationError"
	KindBackend           ErrorKind = "BackendError"
)

// HTTPStatus returns the response status for the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindUnknownStorage, KindNotFound:
		return http.StatusNotFound
	case KindInvalidPath, KindUnsupportedAction, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotImplemented:
		return http.StatusNotImplemented
	case KindReadOnly:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Error is the typed error returned by the registry, the path resolver and
// the storage manager. Err keeps the backend cause for logging only.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrUnknownStorage    = &Error{Kind: KindUnknownStorage}
	ErrInvalidPath       = &Error{Kind: KindInvalidPath}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrNotImplemented    = &Error{Kind: KindNotImplemented}
	ErrUnsupportedAction = &Error{Kind: KindUnsupportedAction}
	ErrBadRequest        = &Error{Kind: KindBadRequest}
	ErrReadOnly          = &Error{Kind: KindReadOnly}
	ErrConfiguration     = &Error{Kind: KindConfiguration}
	ErrBackend           = &Error{Kind: KindBackend}
)

// Errorf builds a typed error with a formatted client-facing message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a typed error that keeps cause for logs.
func Wrap(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf reports the kind of err; untyped errors are backend errors.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindBackend
}

// MessageOf returns the client-facing message of err. Causes of untyped
// errors are not exposed.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return "storage operation failed"
}
