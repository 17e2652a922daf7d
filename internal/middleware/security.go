package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/pkg/logging"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured
const DefaultMaxBodyBytes int64 = 8 << 20

// SecurityMiddleware provides header hardening, rate limiting and input checks
type SecurityMiddleware struct {
	logger       *logging.Logger
	rateLimiter  *RateLimiter
	maxBodyBytes int64
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(logger *logging.Logger, rateLimiter *RateLimiter, maxBodyBytes int64) *SecurityMiddleware {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &SecurityMiddleware{
		logger:       logger,
		rateLimiter:  rateLimiter,
		maxBodyBytes: maxBodyBytes,
	}
}

// SecurityHeaders adds security headers to all responses
func (sm *SecurityMiddleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// the service only returns JSON and plain text
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Cache-Control", "no-store")

		if r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimit implements rate limiting per IP address
func (sm *SecurityMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)

		if !sm.rateLimiter.Allow(clientIP) {
			sm.logger.LogSecurityEvent(r.Context(), "rate_limit_exceeded", clientIP, r.UserAgent(),
				r.Method+" "+r.URL.Path)

			w.Header().Set("Retry-After", strconv.Itoa(sm.rateLimiter.RetryAfter()))
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// InputValidation rejects suspicious URLs and oversized bodies. Request bodies
// are raw HTML and are never pattern-checked.
func (sm *SecurityMiddleware) InputValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if containsSuspiciousPatterns(r.URL.Path) {
			sm.reject(w, r, "suspicious_path", r.URL.Path, "Invalid request", http.StatusBadRequest)
			return
		}

		for key, values := range r.URL.Query() {
			for _, value := range values {
				if containsSuspiciousPatterns(key) || containsSuspiciousPatterns(value) {
					sm.reject(w, r, "suspicious_parameter", key, "Invalid request parameters", http.StatusBadRequest)
					return
				}
			}
		}

		if r.ContentLength > sm.maxBodyBytes {
			sm.reject(w, r, "body_too_large", strconv.FormatInt(r.ContentLength, 10),
				"Request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		// bodies with unknown length are still capped while being read
		r.Body = http.MaxBytesReader(w, r.Body, sm.maxBodyBytes)

		next.ServeHTTP(w, r)
	})
}

func (sm *SecurityMiddleware) reject(w http.ResponseWriter, r *http.Request, eventType, details, message string, status int) {
	sm.logger.WithContext(r.Context()).WithFields(logrus.Fields{
		"component":  "security",
		"operation":  "input_validation",
		"event_type": eventType,
		"client_ip":  getClientIP(r),
		"method":     r.Method,
		"path":       r.URL.Path,
		"details":    details,
	}).Warn("Request rejected")

	http.Error(w, message, status)
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if colon := strings.LastIndex(ip, ":"); colon != -1 {
		ip = ip[:colon]
	}
	return ip
}

var suspiciousPatterns = []string{
	"<script",
	"javascript:",
	"vbscript:",
	"onload=",
	"onerror=",
	"../",
	"..\\",
	"union select",
	"drop table",
	"--",
	"/*",
	"'",
	"\"",
	";",
	"`",
	"$(",
	"${",
	"<%",
	"<?",
}

// containsSuspiciousPatterns checks URL parts for common attack patterns
func containsSuspiciousPatterns(input string) bool {
	inputLower := strings.ToLower(input)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(inputLower, pattern) {
			return true
		}
	}
	return false
}
