package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Parser   ParserConfig   `envPrefix:"PARSER_"`
	Security SecurityConfig `envPrefix:"SECURITY_"`
	Logging  LoggingConfig  `envPrefix:"LOGGING_"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`
}

type ParserConfig struct {
	SiteNames          []string `env:"SITE_NAMES" envDefault:"E-Hentai,ExHentai" envSeparator:","`
	Timezone           string   `env:"TIMEZONE" envDefault:"UTC"`
	ConfigFormSelector string   `env:"CONFIG_FORM_SELECTOR" envDefault:"#outer form"`
}

type SecurityConfig struct {
	RateLimit    RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	MaxBodyBytes int64           `env:"MAX_BODY_BYTES" envDefault:"8388608"`
}

type RateLimitConfig struct {
	RequestsPerSecond int `env:"REQUESTS_PER_SECOND" envDefault:"10"`
	Burst             int `env:"BURST" envDefault:"20"`
}

type LoggingConfig struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Format     string `env:"FORMAT" envDefault:"text"`
	Output     string `env:"OUTPUT" envDefault:"stdout"`
	EnableHTTP bool   `env:"ENABLE_HTTP" envDefault:"true"`
}

// minBodyBytes is the smallest accepted request body limit
const minBodyBytes = 1024

// Address returns the server address
func (s ServerConfig) Address() string {
	if s.Host == "" {
		s.Host = "127.0.0.1"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Location resolves the configured timezone, falling back to UTC
func (p ParserConfig) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CleanSiteNames returns the site names with blanks removed
func (p ParserConfig) CleanSiteNames() []string {
	names := make([]string, 0, len(p.SiteNames))
	for _, name := range p.SiteNames {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func GetEnvVars(debug bool) Config {
	// Load .env file if it exists (will not override existing environment variables)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %s\n", err)
		} else if debug {
			fmt.Fprintln(os.Stderr, "Loaded environment variables from .env file")
		}
	}

	// Parse environment variables into config struct
	var conf Config
	if err := env.Parse(&conf); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing configuration from environment: %s\n", err)
		os.Exit(1)
	}

	// Validate configuration
	if err := validateConfig(&conf); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		fmt.Fprintln(os.Stderr, "Please check your configuration and try again.")
		os.Exit(1)
	}

	if debug {
		fmt.Fprintf(os.Stderr, "Loaded configuration: %#v\n", conf)
	}

	return conf
}

// validateConfig validates the configuration
func validateConfig(conf *Config) error {
	var errors []string

	// Validate server configuration
	if conf.Server.Port < 1 || conf.Server.Port > 65535 {
		errors = append(errors, "server port must be between 1 and 65535")
	}

	// Validate parser configuration
	if len(conf.Parser.CleanSiteNames()) == 0 {
		errors = append(errors, "parser site names must not be empty")
	}
	if conf.Parser.Timezone != "" {
		if _, err := time.LoadLocation(conf.Parser.Timezone); err != nil {
			errors = append(errors, fmt.Sprintf("parser timezone %q is not a valid IANA zone", conf.Parser.Timezone))
		}
	}

	if conf.Parser.ConfigFormSelector != "" {
		if _, err := cascadia.Compile(conf.Parser.ConfigFormSelector); err != nil {
			errors = append(errors, fmt.Sprintf("parser config form selector %q is invalid: %v", conf.Parser.ConfigFormSelector, err))
		}
	}

	// Validate security configuration
	if conf.Security.RateLimit.RequestsPerSecond < 1 {
		errors = append(errors, "rate limit requests per second must be at least 1")
	}
	if conf.Security.RateLimit.Burst < 1 {
		errors = append(errors, "rate limit burst must be at least 1")
	}
	if conf.Security.MaxBodyBytes < minBodyBytes {
		errors = append(errors, fmt.Sprintf("max body bytes must be at least %d", minBodyBytes))
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[conf.Logging.Level] {
		errors = append(errors, "logging level must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validLogFormats[conf.Logging.Format] {
		errors = append(errors, "logging format must be one of: json, text")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}
