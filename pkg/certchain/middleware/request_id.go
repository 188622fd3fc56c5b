package middleware

import (
	"context"
	"net/http"

	"github.com/certchain/certchain/pkg/util"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags every request with a short id, reusing the caller's one when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = util.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}
