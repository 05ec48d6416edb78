package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type contextKey int

const (
	loggerKey contextKey = iota
	requestIDKey
)

type middleware func(http.Handler) http.Handler

// chain applies middlewares so the first one is outermost
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// requestID tags every request with an id, echoed in X-Request-ID
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// accessLog attaches a request-scoped logger and logs each completed request
func accessLog(base logrus.FieldLogger) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, _ := r.Context().Value(requestIDKey).(string)
			log := base.WithField("request_id", id)

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			defer func() {
				log.WithFields(logrus.Fields{
					"method":   r.Method,
					"path":     r.URL.Path,
					"status":   rec.Status(),
					"bytes":    rec.bytes,
					"duration": time.Since(start).Round(time.Millisecond),
				}).Info("Request completed")
			}()

			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey, log)))
		})
	}
}

// recoverer turns handler panics into 500s. http.ErrAbortHandler is re-raised
// so the server drops the connection.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}
			loggerFrom(r.Context()).WithField("panic", rv).Error("Handler panicked")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

func loggerFrom(ctx context.Context) logrus.FieldLogger {
	if log, ok := ctx.Value(loggerKey).(logrus.FieldLogger); ok {
		return log
	}
	return logrus.StandardLogger()
}

// statusRecorder captures the status code and body size
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Unwrap lets http.ResponseController reach the underlying writer
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
