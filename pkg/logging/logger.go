package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/pkg/config"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	// CorrelationIDKey is the context key for correlation IDs
	CorrelationIDKey ContextKey = "correlation_id"
)

const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Logger wraps logrus.Logger with parse-service helpers
type Logger struct {
	*logrus.Logger
}

func jsonFormatter() *logrus.JSONFormatter {
	return &logrus.JSONFormatter{
		TimestampFormat: timestampFormat,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	}
}

// NewLogger creates a logger configured from the logging section
func NewLogger(cfg config.LoggingConfig) *Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timestampFormat,
		})
	} else {
		// anything other than text gets structured output
		logger.SetFormatter(jsonFormatter())
	}

	if strings.EqualFold(cfg.Output, "stderr") {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return &Logger{Logger: logger}
}

// WithCorrelationID adds a correlation ID to the logger context
func (l *Logger) WithCorrelationID(correlationID string) *logrus.Entry {
	return l.WithField("correlation_id", correlationID)
}

// WithContext extracts correlation ID from context and adds it to the logger
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok && correlationID != "" {
		return l.WithCorrelationID(correlationID)
	}
	return l.WithFields(logrus.Fields{})
}

// WithComponent adds a component field to the logger for better categorization
func (l *Logger) WithComponent(component string) *logrus.Entry {
	return l.WithField("component", component)
}

// WithOperation adds an operation field to the logger for tracking specific operations
func (l *Logger) WithOperation(operation string) *logrus.Entry {
	return l.WithField("operation", operation)
}

// LogParse records the outcome of one page parse
func (l *Logger) LogParse(ctx context.Context, kind string, inputBytes int, elapsed time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"component":   "parser",
		"operation":   "parse_" + kind,
		"page_kind":   kind,
		"input_bytes": inputBytes,
		"duration_ms": elapsed.Milliseconds(),
	})

	if err != nil {
		entry.WithError(err).Warn("Page parse failed")
		return
	}
	entry.Info("Page parsed")
}

// LogClassification records the outcome assigned to a server message
func (l *Logger) LogClassification(ctx context.Context, kind, outcome string, confidence float64) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"component":  "classifier",
		"operation":  "classify_" + kind,
		"outcome":    outcome,
		"confidence": confidence,
	})

	if outcome == "unknown" {
		entry.Warn("Message did not match a known outcome")
		return
	}
	entry.Info("Message classified")
}

// LogSecurityEvent logs security-related events
func (l *Logger) LogSecurityEvent(ctx context.Context, eventType, clientIP, userAgent, details string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"component":  "security",
		"operation":  "security_event",
		"event_type": eventType,
		"client_ip":  clientIP,
		"user_agent": userAgent,
		"details":    details,
	}).Warn("Security event detected")
}

// LogAPIRequest logs API request details
func (l *Logger) LogAPIRequest(ctx context.Context, method, path, clientIP, userAgent string, statusCode int, duration int64) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"component":   "http",
		"operation":   "api_request",
		"method":      method,
		"path":        path,
		"client_ip":   clientIP,
		"user_agent":  userAgent,
		"status_code": statusCode,
		"duration_ms": duration,
	})

	switch {
	case statusCode >= 500:
		entry.Error("API request completed with server error")
	case statusCode >= 400:
		entry.Warn("API request completed with client error")
	default:
		entry.Info("API request completed successfully")
	}
}

// SetOutput allows changing the output destination (useful for testing)
func (l *Logger) SetOutput(output io.Writer) {
	l.Logger.SetOutput(output)
}
