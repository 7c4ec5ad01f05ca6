package middleware

import "net/http"

// Chain wraps a handler in middleware so that the first middleware listed is
// the outermost one at request time.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
