package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/toozej/go-ehparse/internal/types"
	"github.com/toozej/go-ehparse/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080},
		Parser: config.ParserConfig{
			SiteNames:          []string{"E-Hentai", "ExHentai"},
			Timezone:           "UTC",
			ConfigFormSelector: "#outer form",
		},
		Security: config.SecurityConfig{
			RateLimit:    config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100},
			MaxBodyBytes: 1 << 20,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "json", Output: "stdout", EnableHTTP: true},
	}
}

func TestServer_New(t *testing.T) {
	cfg := testConfig()
	server := NewServer(cfg)
	defer func() { _ = server.Stop(context.Background()) }()

	if server.config != cfg {
		t.Error("Expected server config to match provided config")
	}
	if server.router == nil || server.logger == nil {
		t.Fatal("Expected router and logger to be initialized")
	}
	if server.parser == nil || server.classifier == nil {
		t.Fatal("Expected parser and classifier to be initialized")
	}
	if server.Logger() != server.logger {
		t.Error("Logger() should expose the server logger")
	}
	if server.Handler() != server.Handler() {
		t.Error("Handler() should build routes once")
	}
}

func TestServer_NewNilConfigPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected NewServer(nil) to panic")
		}
	}()
	NewServer(nil)
}

func TestServer_DefaultsForZeroConfig(t *testing.T) {
	server := NewServer(&config.Config{})
	defer func() { _ = server.Stop(context.Background()) }()

	if server.logger.GetLevel().String() != "info" {
		t.Errorf("Expected default info level, got %s", server.logger.GetLevel())
	}
}

func TestServer_StopWithoutStart(t *testing.T) {
	server := NewServer(testConfig())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		t.Errorf("Stop() before Start() returned %v", err)
	}
}

func TestParserOptions(t *testing.T) {
	opts := ParserOptions(config.ParserConfig{
		SiteNames:          []string{" Mirror ", ""},
		Timezone:           "Asia/Tokyo",
		ConfigFormSelector: "#settings form",
	})

	if len(opts.SiteNames) != 1 || opts.SiteNames[0] != "Mirror" {
		t.Errorf("Expected cleaned site names, got %v", opts.SiteNames)
	}
	if opts.Location.String() != "Asia/Tokyo" {
		t.Errorf("Expected Asia/Tokyo location, got %s", opts.Location)
	}
	if opts.ConfigFormSelector != "#settings form" {
		t.Errorf("Expected selector to carry over, got %q", opts.ConfigFormSelector)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: %q", types.ErrUnknownKind, "x"), http.StatusNotFound},
		{fmt.Errorf("%w: #gdd missing", types.ErrUnexpectedLayout), http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: heading", types.ErrUnknownPageKind), http.StatusUnprocessableEntity},
		{fmt.Errorf("row 1: %w", types.ErrMalformedIdentity), http.StatusUnprocessableEntity},
		{types.ErrEmptyDocument, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
