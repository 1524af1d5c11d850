// Package apperr defines the error taxonomy shared by every layer.
// Callers branch on the kind: validation and business-rule failures are
// corrected by changing the request, not-found supports skip-vs-abort
// decisions, and storage errors wrap the persistence cause unchanged.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindBusinessRule
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// With attaches a context field (offending SKU, count, ...) so callers
// can build actionable messages without parsing the error string.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = map[string]any{}
	}
	e.Fields[key] = value
	return e
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func BusinessRule(msg string) *Error {
	return &Error{Kind: KindBusinessRule, Message: msg}
}

func BusinessRulef(format string, args ...any) *Error {
	return &Error{Kind: KindBusinessRule, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity, id string) *Error {
	e := &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", entity, id)}
	return e.With("entity", entity).With("id", id)
}

func Storage(msg string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: msg, cause: cause}
}

func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func IsValidation(err error) bool   { return IsKind(err, KindValidation) }
func IsBusinessRule(err error) bool { return IsKind(err, KindBusinessRule) }
func IsNotFound(err error) bool     { return IsKind(err, KindNotFound) }
func IsStorage(err error) bool      { return IsKind(err, KindStorage) }
