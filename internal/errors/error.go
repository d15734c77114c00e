package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryTracking  Category = "tracking"
	CategoryScheduler Category = "scheduler"
	CategoryReconcile Category = "reconcile"
	CategoryWatch     Category = "watch"
)

// Diagnostic codes for the runtime. Use New to build errors from them.
const (
	// CodeTrackingError: a getter threw during dependency tracking.
	CodeTrackingError = "E001"

	// CodeSchedulerCycle: a watcher re-enqueued itself beyond the flush
	// ceiling within one flush.
	CodeSchedulerCycle = "E002"

	// CodeMalformedTree: a rendering watcher produced something that is
	// not a single tree description.
	CodeMalformedTree = "E003"

	// CodeDuplicateKeys: sibling tree descriptions share a key.
	CodeDuplicateKeys = "E004"

	// CodeBadWatchPath: a watch path expression failed to parse.
	CodeBadWatchPath = "E005"
)

// Error is a structured error with a stable code, a category and an
// optional fix suggestion.
type Error struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (tracking, scheduler, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg = msg + ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// WithDetail adds a detailed explanation to the error.
func (e *Error) WithDetail(d string) *Error {
	e.Detail = d
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *Error) Wrap(err error) *Error {
	e.Wrapped = err
	return e
}

// New creates an Error from a registered error code.
func New(code string) *Error {
	template, ok := registry[code]
	if !ok {
		return &Error{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Error{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new Error with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an Error with the given code.
func FromError(err error, code string) *Error {
	if err == nil {
		return nil
	}
	if se, ok := err.(*Error); ok {
		return se
	}
	return New(code).Wrap(err)
}
