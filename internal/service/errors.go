package service

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindValidation        Kind = "VALIDATION_FAILED"
	KindStoreUnavailable  Kind = "STORE_UNAVAILABLE"
	KindPartialConsistent Kind = "PARTIAL_CONSISTENCY_FAILURE"
)

var (
	ErrInternal        = errors.New("internal server error")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrForbidden       = errors.New("not allowed")
)

// Error is returned by every service operation. Message is safe to show to
// clients; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(entity string, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s(%s) not found", entity, id)}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: err.Error(), Err: err}
}

func Validation(field string, reason string) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf("%s: %s", field, reason)}
}

func StoreUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: ErrInternal.Error(), Err: err}
}

// PartialFailureError reports a multi-entity operation that could neither
// finish nor be rolled back. TaskID names the repair task left in the journal.
type PartialFailureError struct {
	Op        string
	TaskID    string
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially applied (completed: %s, failed: %s)", e.Op, strings.Join(e.Completed, ","), e.Failed)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Unknown errors are treated as store failures.
func KindOf(err error) Kind {
	var partial *PartialFailureError
	if errors.As(err, &partial) {
		return KindPartialConsistent
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}

	return KindStoreUnavailable
}
