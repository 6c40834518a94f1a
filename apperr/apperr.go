// Package apperr holds the stable error vocabulary surfaced to dApps and the
// translator that maps transport and remote failures onto it.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a stable local error kind
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindWalletUnavailable Kind = "WalletUnavailable"
	KindTimeout           Kind = "Timeout"
	KindTransport         Kind = "TransportError"
	KindNotFound          Kind = "NotFound"
	KindUnauthorized      Kind = "Unauthorized"
	KindForbidden         Kind = "Forbidden"
	KindBadRequest        Kind = "BadRequest"
	KindUnknown           Kind = "Unknown"
	// KindSuperseded marks a stale synchronizer fetch. It never reaches callers.
	KindSuperseded Kind = "Superseded"
)

// Disposition tells a dApp what it can do about a failure
type Disposition string

const (
	FixRequest Disposition = "fix_request"
	Retry      Disposition = "retry"
	Final      Disposition = "final"
)

type kindInfo struct {
	status      int
	message     string
	disposition Disposition
}

var kinds = map[Kind]kindInfo{
	KindValidation:        {422, "The request is invalid.", FixRequest},
	KindWalletUnavailable: {423, "No wallet is available to sign this request.", Final},
	KindTimeout:           {408, "Request timed out. Please try again.", Retry},
	KindTransport:         {500, "Something went wrong. Please try again.", Retry},
	KindNotFound:          {404, "We couldn't find the object you were looking for.", Final},
	KindUnauthorized:      {401, "API key is missing or invalid. Please check your API key.", Final},
	KindForbidden:         {403, "This resource has been restricted. Please check your permissions.", Final},
	KindBadRequest:        {400, "The request you provided is invalid.", FixRequest},
	KindUnknown:           {500, "Something went wrong. Please try again.", Retry},
	KindSuperseded:        {409, "The result was superseded by a newer request.", Retry},
}

// Kinds lists every kind of the vocabulary
func Kinds() []Kind {
	return []Kind{
		KindValidation, KindWalletUnavailable, KindTimeout, KindTransport, KindNotFound,
		KindUnauthorized, KindForbidden, KindBadRequest, KindUnknown, KindSuperseded,
	}
}

// Status returns the HTTP-like status associated with the kind
func (k Kind) Status() int {
	if info, ok := kinds[k]; ok {
		return info.status
	}
	return kinds[KindUnknown].status
}

// Disposition returns whether the caller should fix, retry or give up
func (k Kind) Disposition() Disposition {
	if info, ok := kinds[k]; ok {
		return info.disposition
	}
	return Retry
}

// DefaultMessage returns the user facing message for the kind
func (k Kind) DefaultMessage() string {
	if info, ok := kinds[k]; ok {
		return info.message
	}
	return kinds[KindUnknown].message
}

// Error is a failure expressed in the local vocabulary
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending request field for validation errors
	Field string
	// Code is the remote error code the failure was translated from, if any
	Code string

	cause error
}

// New creates an error of the given kind with the default message
func New(kind Kind) *Error {
	return &Error{Kind: kind, Message: kind.DefaultMessage()}
}

// Newf creates an error of the given kind with a formatted message
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that keeps cause for errors.Is/As
func Wrap(kind Kind, cause error, message string) *Error {
	if message == "" {
		message = kind.DefaultMessage()
	}
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation reports an invalid request field
func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP-like status of the error kind
func (e *Error) Status() int {
	return e.Kind.Status()
}

// Is matches another *Error by kind, so sentinels like ErrNotFound work with errors.Is
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Field == ""
}

// Kind sentinels for errors.Is. They carry no message so they match any error of the kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrWalletUnavailable = &Error{Kind: KindWalletUnavailable}
	ErrTimeout           = &Error{Kind: KindTimeout}
	ErrTransport         = &Error{Kind: KindTransport}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrBadRequest        = &Error{Kind: KindBadRequest}
	ErrUnknown           = &Error{Kind: KindUnknown}
	ErrSuperseded        = &Error{Kind: KindSuperseded}
)

// KindOf returns the kind of err after translation
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return Translate(err).Kind
}
