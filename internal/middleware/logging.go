package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/pkg/logging"
)

// CorrelationHeader carries the request correlation ID in both directions
const CorrelationHeader = "X-Correlation-ID"

// LoggingMiddleware provides HTTP request logging with correlation IDs
type LoggingMiddleware struct {
	logger *logging.Logger
}

// NewLoggingMiddleware creates a new logging middleware instance
func NewLoggingMiddleware(logger *logging.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger: logger,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and size
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	n, err := rw.ResponseWriter.Write(data)
	rw.bytes += n
	return n, err
}

// LogRequests wraps an HTTP handler with request logging and correlation ID injection
func (lm *LoggingMiddleware) LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		correlationID := correlationIDFrom(r)
		ctx := context.WithValue(r.Context(), logging.CorrelationIDKey, correlationID)
		r = r.WithContext(ctx)
		w.Header().Set(CorrelationHeader, correlationID)

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		lm.logger.WithContext(ctx).WithFields(logrus.Fields{
			"component":      "http",
			"operation":      "request_start",
			"method":         r.Method,
			"path":           r.URL.Path,
			"query":          r.URL.RawQuery,
			"content_length": r.ContentLength,
			"client_ip":      getClientIP(r),
			"user_agent":     r.UserAgent(),
		}).Debug("HTTP request started")

		next.ServeHTTP(rw, r)

		lm.logger.LogAPIRequest(
			ctx,
			r.Method,
			r.URL.Path,
			getClientIP(r),
			r.UserAgent(),
			rw.statusCode,
			time.Since(start).Milliseconds(),
		)
	})
}

// correlationIDFrom reuses a caller-supplied UUID or mints a new one
func correlationIDFrom(r *http.Request) string {
	if incoming := r.Header.Get(CorrelationHeader); incoming != "" {
		if id, err := uuid.Parse(incoming); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}
