package middleware

import (
	"fmt"
	"net/http"

	"spinachlang-api/internal/memory"
)

// BodyLimitMiddleware rejects requests with a declared body larger than limit
// and caps the bytes read from bodies of unknown length.
func BodyLimitMiddleware(limit memory.Memory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit.Bytes() {
				msg := fmt.Sprintf("Request body must not be larger than %s", limit)
				http.Error(w, msg, http.StatusRequestEntityTooLarge)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit.Bytes())
			next.ServeHTTP(w, r)
		})
	}
}
