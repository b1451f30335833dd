package docroute

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bjaus/docroute/internal/dispatch"
)

// Configuration errors. Route construction reports them by panicking with an
// error that wraps one of these, so a recovered value can be matched with
// errors.Is. They always indicate a mistake in how routes were assembled.
var (
	ErrDuplicatePath       = dispatch.ErrDuplicatePath
	ErrMethodOverlap       = dispatch.ErrMethodOverlap
	ErrDuplicateFallback   = dispatch.ErrDuplicateFallback
	ErrInvalidPath         = dispatch.ErrInvalidPath
	ErrInvalidMethodFilter = dispatch.ErrInvalidMethod
	ErrComponentConflict   = errors.New("conflicting component definition")
	ErrConsumed            = errors.New("router already consumed")
	ErrFinalized           = errors.New("router already finalized")
)

// ErrUnresolvedRef is wrapped by Document.Validate failures.
var ErrUnresolvedRef = errors.New("unresolved schema reference")

// Sentinel errors for request binding.
var (
	ErrBindPath   = errors.New("bind path")
	ErrBindQuery  = errors.New("bind query")
	ErrBindHeader = errors.New("bind header")
	ErrBindCookie = errors.New("bind cookie")
	ErrBindBody   = errors.New("bind body")
)

// StatusCoder is implemented by errors or responses that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement StatusCoder.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}
