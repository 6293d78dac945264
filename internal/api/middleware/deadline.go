package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds the request context. Unlike chi's Timeout it never writes a
// response itself: the opportunity engine degrades to defaults and still answers.
func Deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
