// Package apperr defines the error taxonomy shared by services and handlers.
// Services return *Error values; handlers translate them with Status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindDuplicateField
	KindDuplicateID
	KindInvalidRole
	KindInvalidReference
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindTransactionAborted
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateField:
		return "duplicate_field"
	case KindDuplicateID:
		return "duplicate_id"
	case KindInvalidRole:
		return "invalid_role"
	case KindInvalidReference:
		return "invalid_reference"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindTransactionAborted:
		return "transaction_aborted"
	default:
		return "internal"
	}
}

// Error carries a Kind, an optional field name, and a user-facing message.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for a Kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindDuplicateField, KindInvalidRole, KindInvalidReference:
		return http.StatusBadRequest
	case KindDuplicateID:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Status maps any error to an HTTP status. Errors outside the taxonomy are 500.
func Status(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Status()
	}
	return http.StatusInternalServerError
}

// KindOf reports the Kind of err, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ValidationField(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func DuplicateField(field string) *Error {
	return &Error{Kind: KindDuplicateField, Field: field, Message: fmt.Sprintf("%s already exists", field)}
}

func DuplicateID(err error) *Error {
	return &Error{Kind: KindDuplicateID, Message: "could not allocate a unique faculty id, please retry", Err: err}
}

func InvalidRole(msg string) *Error {
	return &Error{Kind: KindInvalidRole, Field: "role", Message: msg}
}

func InvalidReference(field, msg string) *Error {
	return &Error{Kind: KindInvalidReference, Field: field, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", what)}
}

func TransactionAborted(err error) *Error {
	return &Error{Kind: KindTransactionAborted, Message: "transaction aborted, no changes were saved", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}
