package api

import (
	"net/http"
	"time"

	"github.com/certchain/certchain/pkg/certchain/middleware"
	"github.com/sirupsen/logrus"
)

const maxLoggedBody = 512

// statusRecorder remembers what the handler answered. Bodies are kept only for
// failed requests, since those are plain-text error messages.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int
	failure []byte
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status >= http.StatusBadRequest && len(r.failure) < maxLoggedBody {
		r.failure = append(r.failure, b[:min(len(b), maxLoggedBody-len(r.failure))]...)
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += n
	return n, err
}

// Log writes one access line per request. Client errors go to warn, server
// errors to error, everything else to debug.
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		entry := logrus.WithFields(logrus.Fields{
			"request_id": middleware.RequestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"bytes":      rec.written,
			"elapsed":    time.Since(start).String(),
		})

		switch {
		case rec.status >= http.StatusInternalServerError:
			entry.Errorf("request failed: %s", rec.failure)
		case rec.status >= http.StatusBadRequest:
			entry.Warnf("request rejected: %s", rec.failure)
		default:
			entry.Debug("request served")
		}
	})
}
