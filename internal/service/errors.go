package service

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies a business-rule failure. Handlers map kinds onto HTTP
// statuses; anything that is not an *Error is a server error.
type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindInvalidToken         Kind = "invalid_token"
	KindForbidden            Kind = "forbidden"
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation_error"
	KindDuplicateApplication Kind = "duplicate_application"
	KindServer               Kind = "server_error"
)

// Error is a taxonomy failure with a human readable description.
type Error struct {
	Kind        Kind
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrForbidden)
// holds regardless of the description.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons.
var (
	ErrUnauthenticated      = &Error{Kind: KindUnauthenticated}
	ErrInvalidToken         = &Error{Kind: KindInvalidToken}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrValidation           = &Error{Kind: KindValidation}
	ErrDuplicateApplication = &Error{Kind: KindDuplicateApplication}
)

// Validation builds a validation error. Handlers use it for binding failures.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// KindOf returns the taxonomy kind of err, or KindServer.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServer
}

// ParseID decodes an identifier rendered by the API. Anything that is not a
// positive decimal int64 cannot name a record, so it reports NotFound.
func ParseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, newError(KindNotFound, "%s not found", what)
	}
	return id, nil
}
