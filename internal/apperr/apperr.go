// Package apperr is the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindDuplicateEntity
	KindUpdateFailed
	KindUnauthorized
)

var kindNames = map[Kind]string{
	KindInternal:        "InternalError",
	KindInvalidInput:    "InvalidInput",
	KindNotFound:        "NotFound",
	KindDuplicateEntity: "DuplicateEntity",
	KindUpdateFailed:    "UpdateFailed",
	KindUnauthorized:    "Unauthorized",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// HTTPStatus status code reported for the kind
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput, KindDuplicateEntity:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUpdateFailed:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// FieldErrors field name to its messages
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

type Error struct {
	Kind    Kind
	Message string
	Fields  FieldErrors
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

const (
	MsgInvalidInput = "Invalid input data."
	MsgInternal     = "Something went wrong on the server. Please try again later!"
)

func InvalidInput(fields FieldErrors) *Error {
	return &Error{Kind: KindInvalidInput, Message: MsgInvalidInput, Fields: fields}
}

// InvalidField single field failure
func InvalidField(field, message string) *Error {
	return InvalidInput(FieldErrors{field: {message}})
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Duplicate(message string, err error) *Error {
	return &Error{Kind: KindDuplicateEntity, Message: message, Err: err}
}

func UpdateFailed(message string) *Error {
	return &Error{Kind: KindUpdateFailed, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Internal wraps an unexpected failure; message is shown to clients, err only logged.
func Internal(message string, err error) *Error {
	if message == "" {
		message = MsgInternal
	}
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As extracts the *Error from an error chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns KindInternal for errors outside the taxonomy
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
