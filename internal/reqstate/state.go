// Package reqstate models the lifecycle of a single asynchronous request.
package reqstate

// Phase identifies which variant a State holds.
type Phase int

// Request phases.
const (
	Idle Phase = iota
	Loading
	Success
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a tagged union of Idle, Loading, Success(value) and Failed(message).
// Fields are unexported so that a payload or message can only exist alongside
// the phase that owns it.
type State[T any] struct {
	phase   Phase
	value   T
	message string
}

// NewIdle returns the Idle variant.
func NewIdle[T any]() State[T] {
	return State[T]{phase: Idle}
}

// NewLoading returns the Loading variant.
func NewLoading[T any]() State[T] {
	return State[T]{phase: Loading}
}

// NewSuccess returns the Success variant carrying v.
func NewSuccess[T any](v T) State[T] {
	return State[T]{phase: Success, value: v}
}

// NewFailed returns the Failed variant carrying a user-facing message.
func NewFailed[T any](message string) State[T] {
	return State[T]{phase: Failed, message: message}
}

// Phase reports the active variant.
func (s State[T]) Phase() Phase {
	return s.phase
}

// IsLoading reports whether a request is in flight.
func (s State[T]) IsLoading() bool {
	return s.phase == Loading
}

// Value returns the payload when the state is Success.
func (s State[T]) Value() (T, bool) {
	if s.phase != Success {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Message returns the failure message when the state is Failed.
func (s State[T]) Message() (string, bool) {
	if s.phase != Failed {
		return "", false
	}
	return s.message, true
}
