// Package apperr defines the error kinds returned by services and how they map to HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind struct {
	Name   string
	Status int
}

var (
	KindValidation = Kind{"ValidationError", http.StatusBadRequest}
	KindAuth       = Kind{"AuthError", http.StatusUnauthorized}
	KindForbidden  = Kind{"ForbiddenError", http.StatusForbidden}
	KindNotFound   = Kind{"NotFoundError", http.StatusNotFound}
	KindConflict   = Kind{"ConflictError", http.StatusConflict}
	KindUpload     = Kind{"UploadError", http.StatusBadRequest}
	KindInternal   = Kind{"InternalError", http.StatusInternalServerError}
)

type Error struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Name, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Name, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Status() int {
	return e.Kind.Status
}

// Validation is returned before any store call is made.
func Validation(details string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Details: details}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Upload(err error) *Error {
	return &Error{Kind: KindUpload, Message: "File upload failed", Err: err}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// From returns err as an *Error, wrapping unknown errors as InternalError.
func From(err error, fallback string) *Error {
	var appErr *Error

	if errors.As(err, &appErr) {
		return appErr
	}

	return Internal(fallback, err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
