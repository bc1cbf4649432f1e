// Package middleware provides the HTTP middleware stack shared by every
// mounted module along with the CORS, logging, recovery, and body limit
// middleware themselves.
package middleware

import (
	"net/http"
	"slices"
)

// Func wraps an http.Handler.
type Func = func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware. The first middleware
// added is the outermost when applied.
type System interface {
	Use(mw Func)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	funcs []Func
}

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

// Chain creates a System holding mws in order.
func Chain(mws ...Func) System {
	return &stack{funcs: append([]Func(nil), mws...)}
}

func (s *stack) Use(fn Func) {
	s.funcs = append(s.funcs, fn)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, fn := range slices.Backward(s.funcs) {
		handler = fn(handler)
	}
	return handler
}
