package middleware

import (
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestSecurity(rps, burst int, maxBody int64) *SecurityMiddleware {
	logger, _ := newTestLogger("error")
	return NewSecurityMiddleware(logger, NewRateLimiter(rps, burst), maxBody)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	sm := newTestSecurity(10, 20, 0)
	defer sm.rateLimiter.Close()
	handler := sm.SecurityHeaders(okHandler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/kinds", http.NoBody))

	expectedHeaders := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	}
	for header, expectedValue := range expectedHeaders {
		if got := w.Header().Get(header); got != expectedValue {
			t.Errorf("Expected header %s to be %s, got %s", header, expectedValue, got)
		}
	}
	if hsts := w.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("Expected HSTS header to be empty for HTTP request, got %s", hsts)
	}

	req := httptest.NewRequest("GET", "/api/kinds", http.NoBody)
	req.TLS = &tls.ConnectionState{}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("Expected HSTS header for TLS request")
	}
}

func TestRateLimit(t *testing.T) {
	sm := newTestSecurity(2, 2, 0)
	defer sm.rateLimiter.Close()
	handler := sm.RateLimit(okHandler)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/parse/list", http.NoBody)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := send(); w.Code != http.StatusOK {
			t.Errorf("Request %d should have succeeded, got status %d", i+1, w.Code)
		}
	}

	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Expected rate limit status %d, got %d", http.StatusTooManyRequests, w.Code)
	}
	if retryAfter := w.Header().Get("Retry-After"); retryAfter != "1" {
		t.Errorf("Expected Retry-After header to be 1, got %s", retryAfter)
	}
}

func TestInputValidation(t *testing.T) {
	sm := newTestSecurity(10, 20, 2048)
	defer sm.rateLimiter.Close()

	var bodyErr error
	handler := sm.InputValidation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, bodyErr = io.ReadAll(r.Body)
		if bodyErr != nil {
			http.Error(w, "too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name         string
		url          string
		body         string
		unknownSize  bool
		expectedCode int
	}{
		{"plain parse request", "/api/parse/gallery", "<div id=\"gn\">x</div>", false, http.StatusOK},
		{"html body with script is accepted", "/api/parse/mpv", "<script>var gid = 1;</script>", false, http.StatusOK},
		{"path traversal", "/api/parse/../etc/passwd", "", false, http.StatusBadRequest},
		{"script in query", "/api/parse/list?debug=<script>", "", false, http.StatusBadRequest},
		{"sql in query", "/api/parse/list?q=1'%20union%20select", "", false, http.StatusBadRequest},
		{"declared oversize body", "/api/parse/list", strings.Repeat("a", 4096), false, http.StatusRequestEntityTooLarge},
		{"streamed oversize body", "/api/parse/list", strings.Repeat("a", 4096), true, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			req.URL.Path, req.URL.RawQuery, _ = strings.Cut(tt.url, "?")
			if tt.unknownSize {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, w.Code)
			}
		})
	}
}

func TestNewSecurityMiddleware_DefaultBodyLimit(t *testing.T) {
	sm := newTestSecurity(1, 1, 0)
	defer sm.rateLimiter.Close()
	if sm.maxBodyBytes != DefaultMaxBodyBytes {
		t.Errorf("Expected default body limit %d, got %d", DefaultMaxBodyBytes, sm.maxBodyBytes)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"X-Forwarded-For single IP", map[string]string{"X-Forwarded-For": "203.0.113.1"}, "10.0.0.1:1234", "203.0.113.1"},
		{"X-Forwarded-For multiple IPs", map[string]string{"X-Forwarded-For": "203.0.113.1, 198.51.100.1"}, "10.0.0.1:1234", "203.0.113.1"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "203.0.113.2"}, "10.0.0.1:1234", "203.0.113.2"},
		{"RemoteAddr fallback", nil, "203.0.113.3:5678", "203.0.113.3"},
		{"RemoteAddr without port", nil, "203.0.113.4", "203.0.113.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if ip := getClientIP(req); ip != tt.expectedIP {
				t.Errorf("Expected IP %s, got %s", tt.expectedIP, ip)
			}
		})
	}
}

func TestContainsSuspiciousPatterns(t *testing.T) {
	tests := []struct {
		input      string
		suspicious bool
	}{
		{"/api/parse/archive_result", false},
		{"/api/classify/copyright", false},
		{"favorites", false},
		{"<SCRIPT>alert(1)</script>", true},
		{"javascript:void(0)", true},
		{"../../etc/passwd", true},
		{"1 UNION SELECT password", true},
		{"name'--", true},
		{"${jndi:ldap}", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := containsSuspiciousPatterns(tt.input); got != tt.suspicious {
				t.Errorf("containsSuspiciousPatterns(%q) = %v, want %v", tt.input, got, tt.suspicious)
			}
		})
	}
}
