package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed call.
type Kind int

// Failure kinds.
const (
	// KindNetwork means no response was obtained (timeout, DNS, refused connection).
	KindNetwork Kind = iota + 1
	// KindServer means a non-2xx response carried a structured detail message.
	KindServer
	// KindUnexpected means a non-2xx response without detail, or an undecodable body.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindUnexpected:
		return "unexpected response"
	default:
		return "unknown"
	}
}

// Error is the normalized failure returned by every Client call.
type Error struct {
	Kind       Kind
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	b.WriteString(" error")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message converts any call failure into the single user-facing string stored
// by a controller. Server detail is surfaced verbatim; everything else uses fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindServer && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
