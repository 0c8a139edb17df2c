// Package apperrors defines the error kinds the service layer returns and
// the HTTP boundary translates to status codes. Unresolved catalog
// references are deliberately not represented here: they are handled by
// substitution or omission inside the services and never surface as errors.
package apperrors

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindPermissionDenied
	KindValidationFailed
	KindConflict
)

// Error is a structured, user-presentable failure: a kind plus a stable
// snake_case code and optional details (e.g. a field violations map).
// Internal causes are wrapped so logs keep them without exposing them.
type Error struct {
	Kind    Kind
	Code    string
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.cause.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(code string) *Error {
	return &Error{Kind: KindNotFound, Code: code}
}

func PermissionDenied(code string) *Error {
	return &Error{Kind: KindPermissionDenied, Code: code}
}

func Validation(code string, details any) *Error {
	return &Error{Kind: KindValidationFailed, Code: code, Details: details}
}

func Conflict(code string) *Error {
	return &Error{Kind: KindConflict, Code: code}
}

// Wrap attaches an underlying cause, keeping the kind and code.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Details: e.Details, cause: cause}
}

// KindOf extracts the kind from an error chain; KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf extracts the stable code, or "internal_error" for plain errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}

// DetailsOf extracts structured details, if any.
func DetailsOf(err error) any {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return nil
}
