package market

import (
	"errors"
	"fmt"
)

// Kind categorizes a marketplace failure.
type Kind string

const (
	KindUnauthenticated          Kind = "unauthenticated"
	KindNotFound                 Kind = "not_found"
	KindForbidden                Kind = "forbidden"
	KindInvalidInput             Kind = "invalid_input"
	KindInvalidCategory          Kind = "invalid_category"
	KindInvalidBudget            Kind = "invalid_budget"
	KindInvalidRate              Kind = "invalid_rate"
	KindJobNotOpen               Kind = "job_not_open"
	KindSelfApplicationForbidden Kind = "self_application_forbidden"
	KindDuplicateApplication     Kind = "duplicate_application"
	KindAlreadyDecided           Kind = "already_decided"
	KindStoreUnavailable         Kind = "store_unavailable"
)

// Error is the only error type returned by Catalog and Workflow operations.
// It supports errors.Is against the sentinels below, which match by Kind.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input field for validation kinds.
	Field string
	// Cause is the underlying store error for KindStoreUnavailable.
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	return errors.As(target, &t) && t.Kind == e.Kind
}

var (
	ErrUnauthenticated          = &Error{Kind: KindUnauthenticated, Message: "authentication required"}
	ErrNotFound                 = &Error{Kind: KindNotFound, Message: "not found"}
	ErrForbidden                = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrInvalidInput             = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrInvalidCategory          = &Error{Kind: KindInvalidCategory, Message: "invalid category"}
	ErrInvalidBudget            = &Error{Kind: KindInvalidBudget, Message: "invalid budget"}
	ErrInvalidRate              = &Error{Kind: KindInvalidRate, Message: "invalid proposed rate"}
	ErrJobNotOpen               = &Error{Kind: KindJobNotOpen, Message: "job is not open for applications"}
	ErrSelfApplicationForbidden = &Error{Kind: KindSelfApplicationForbidden, Message: "cannot apply to your own job"}
	ErrDuplicateApplication     = &Error{Kind: KindDuplicateApplication, Message: "already applied to this job"}
	ErrAlreadyDecided           = &Error{Kind: KindAlreadyDecided, Message: "application already decided"}
	ErrStoreUnavailable         = &Error{Kind: KindStoreUnavailable, Message: "store unavailable"}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidField(kind Kind, field, message string) *Error {
	return &Error{Kind: kind, Message: message, Field: field}
}

// storeError wraps a persistence failure. A nil err yields nil.
func storeError(err error, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStoreUnavailable, Message: op, Cause: err}
}

// KindOf returns the Kind carried by err, or "" when err is not a marketplace error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether a caller may retry the request unchanged.
// Only store outages qualify; every other kind is terminal for the request.
func IsRetryable(err error) bool {
	return KindOf(err) == KindStoreUnavailable
}

// IsValidation reports whether err rejects malformed request data.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindInvalidInput, KindInvalidCategory, KindInvalidBudget, KindInvalidRate:
		return true
	}
	return false
}
