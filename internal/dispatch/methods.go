// Package dispatch is the request-serving half of a docroute tree. It keeps
// handlers keyed by path and verb, enforces the same collision rules as the
// document half, and compiles into a net/http.ServeMux once construction is
// done.
package dispatch

import (
	"errors"
	"fmt"
	"net/http"
)

// Configuration errors raised (via panic) while building a tree.
var (
	ErrDuplicatePath     = errors.New("duplicate path")
	ErrMethodOverlap     = errors.New("overlapping method registration")
	ErrDuplicateFallback = errors.New("duplicate fallback")
	ErrInvalidPath       = errors.New("invalid path")
	ErrInvalidMethod     = errors.New("invalid method")
)

// Verbs lists the methods a Methods set can hold, in document order.
var Verbs = []string{
	http.MethodGet,
	http.MethodPut,
	http.MethodPost,
	http.MethodDelete,
	http.MethodOptions,
	http.MethodHead,
	http.MethodPatch,
	http.MethodTrace,
}

// Methods holds the handlers for a single path.
type Methods struct {
	handlers map[string]http.Handler
	fallback http.Handler
}

// NewMethods returns an empty method set.
func NewMethods() *Methods {
	return &Methods{handlers: make(map[string]http.Handler)}
}

// On installs h for every method in methods. Registering a method twice panics.
func (m *Methods) On(methods []string, h http.Handler) {
	for _, method := range methods {
		if !knownVerb(method) {
			panic(fmt.Errorf("%w: unsupported method %q", ErrInvalidMethod, method))
		}
		if _, ok := m.handlers[method]; ok {
			panic(fmt.Errorf("%w: %s already registered", ErrMethodOverlap, method))
		}
	}
	for _, method := range methods {
		m.handlers[method] = h
	}
}

// Fallback installs h for every method without an explicit handler.
func (m *Methods) Fallback(h http.Handler) {
	if m.fallback != nil {
		panic(fmt.Errorf("%w: method set already has a fallback", ErrDuplicateFallback))
	}
	m.fallback = h
}

// Merge moves other's handlers into m. The explicit method sets must be
// disjoint and at most one side may carry a fallback.
func (m *Methods) Merge(other *Methods) {
	for method := range other.handlers {
		if _, ok := m.handlers[method]; ok {
			panic(fmt.Errorf("%w: %s registered on both sides of merge", ErrMethodOverlap, method))
		}
	}
	if m.fallback != nil && other.fallback != nil {
		panic(fmt.Errorf("%w: both method sets define a fallback", ErrDuplicateFallback))
	}
	for method, h := range other.handlers {
		m.handlers[method] = h
	}
	if other.fallback != nil {
		m.fallback = other.fallback
	}
}

// Handler returns the handler registered for method, or nil.
func (m *Methods) Handler(method string) http.Handler {
	return m.handlers[method]
}

// HasFallback reports whether a fallback handler is installed.
func (m *Methods) HasFallback() bool {
	return m.fallback != nil
}

// Len reports the number of explicitly registered methods.
func (m *Methods) Len() int {
	return len(m.handlers)
}

func knownVerb(method string) bool {
	for _, v := range Verbs {
		if v == method {
			return true
		}
	}
	return false
}
