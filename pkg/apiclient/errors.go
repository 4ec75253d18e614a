package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork means the request never produced a response.
	KindNetwork Kind = iota + 1
	// KindHTTP is a non-2xx response.
	KindHTTP
	// KindParse is a response body that was not the expected JSON.
	KindParse
	// KindValidation is a request rejected before it was sent.
	KindValidation
	// KindAuthExpired is a response saying the bearer token is no longer valid.
	KindAuthExpired
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	case KindAuthExpired:
		return "auth_expired"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that does not succeed.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " %d", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so callers can write errors.Is(err, apiclient.ErrAuthExpired).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Status == 0 || t.Status == e.Status)
}

// Sentinels for errors.Is.
var (
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrHTTP        = &Error{Kind: KindHTTP}
	ErrParse       = &Error{Kind: KindParse}
	ErrValidation  = &Error{Kind: KindValidation}
	ErrAuthExpired = &Error{Kind: KindAuthExpired}
	ErrNotFound    = &Error{Kind: KindHTTP, Status: 404}
)

// NewValidationError wraps a client-side validation failure.
func NewValidationError(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// Message returns the text to show the user for err: the server's message for
// HTTP and validation failures when one was sent, otherwise fallback. Network
// and parse failures always use fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return fallback
	}
	switch apiErr.Kind {
	case KindHTTP, KindValidation, KindAuthExpired:
		if strings.TrimSpace(apiErr.Message) != "" {
			return apiErr.Message
		}
	}
	return fallback
}

// Ambiguous reports whether err leaves it unknown if the server acted on the
// request: the call may have been delivered but no answer was read.
func Ambiguous(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return true
	}
	switch apiErr.Kind {
	case KindNetwork, KindParse:
		return true
	case KindHTTP:
		return apiErr.Status >= 500
	}
	return false
}
