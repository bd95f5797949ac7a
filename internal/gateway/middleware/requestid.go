package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader is the response header carrying the generated request ID,
// useful for correlating a client-observed response with server logs.
const RequestIDHeader = "X-Echo-Request-Id"

// RequestID stamps every response with a fresh UUID unless the caller
// already supplied one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
