package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/metrics"
	"github.com/toozej/go-ehparse/internal/middleware"
	"github.com/toozej/go-ehparse/internal/services/classify"
	"github.com/toozej/go-ehparse/internal/services/parser"
	"github.com/toozej/go-ehparse/internal/types"
	"github.com/toozej/go-ehparse/pkg/config"
	"github.com/toozej/go-ehparse/pkg/logging"
	"github.com/toozej/go-ehparse/pkg/version"
)

// classifyKinds are the page kinds whose message can be classified
var classifyKinds = []string{classify.KindArchiveResult, classify.KindCopyright}

// Server represents the HTTP parse service
type Server struct {
	router             *http.ServeMux
	parser             PageParser
	classifier         MessageClassifier
	config             *config.Config
	logger             *logging.Logger
	rateLimiter        *middleware.RateLimiter
	securityMiddleware *middleware.SecurityMiddleware
	loggingMiddleware  *middleware.LoggingMiddleware
	server             *http.Server
	routesOnce         sync.Once
	handler            http.Handler
}

// ParserOptions converts the parser configuration section into parser options
func ParserOptions(cfg config.ParserConfig) parser.Options {
	return parser.Options{
		SiteNames:          cfg.CleanSiteNames(),
		Location:           cfg.Location(),
		ConfigFormSelector: cfg.ConfigFormSelector,
	}
}

// NewServer creates a new server instance with all components properly wired
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		panic("configuration cannot be nil")
	}

	loggingCfg := cfg.Logging
	if loggingCfg.Level == "" {
		loggingCfg.Level = "info"
	}
	if loggingCfg.Format == "" {
		loggingCfg.Format = "json"
	}
	if loggingCfg.Output == "" {
		loggingCfg.Output = "stdout"
	}

	logger := logging.NewLogger(loggingCfg)
	logger.WithComponent("server").Info("Initializing server components")

	requestsPerSecond := cfg.Security.RateLimit.RequestsPerSecond
	if requestsPerSecond == 0 {
		requestsPerSecond = 10
	}
	burst := cfg.Security.RateLimit.Burst
	if burst == 0 {
		burst = 20
	}

	rateLimiter := middleware.NewRateLimiter(requestsPerSecond, burst)
	securityMiddleware := middleware.NewSecurityMiddleware(logger, rateLimiter, cfg.Security.MaxBodyBytes)
	loggingMiddleware := middleware.NewLoggingMiddleware(logger)

	metrics.Init()

	logger.WithComponent("server").WithFields(logrus.Fields{
		"site_names":       cfg.Parser.CleanSiteNames(),
		"timezone":         cfg.Parser.Location().String(),
		"rate_limit_rps":   requestsPerSecond,
		"rate_limit_burst": burst,
		"max_body_bytes":   cfg.Security.MaxBodyBytes,
		"logging_level":    loggingCfg.Level,
		"http_logging":     loggingCfg.EnableHTTP,
	}).Info("Server components initialized successfully")

	return &Server{
		router:             http.NewServeMux(),
		parser:             parser.New(logger.Logger, ParserOptions(cfg.Parser)),
		classifier:         classify.NewClassifier(logger.Logger),
		config:             cfg,
		logger:             logger,
		rateLimiter:        rateLimiter,
		securityMiddleware: securityMiddleware,
		loggingMiddleware:  loggingMiddleware,
	}
}

// SetParser replaces the page parser. It must be called before Handler or Start.
func (s *Server) SetParser(p PageParser) {
	s.parser = p
}

// SetClassifier replaces the message classifier. It must be called before Handler or Start.
func (s *Server) SetClassifier(c MessageClassifier) {
	s.classifier = c
}

// Logger returns the server's structured logger
func (s *Server) Logger() *logging.Logger {
	return s.logger
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	s.routesOnce.Do(s.setupRoutes)
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Server.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.WithComponent("server").WithFields(logrus.Fields{
		"address": s.config.Server.Address(),
	}).Info("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.WithComponent("server").Info("Shutting down HTTP server")
	s.rateLimiter.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes with security and logging middleware
func (s *Server) setupRoutes() {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("POST /api/parse/{kind}", s.handleParse)
	apiMux.HandleFunc("POST /api/classify/{kind}", s.handleClassify)
	apiMux.HandleFunc("GET /api/kinds", s.handleKinds)

	var api http.Handler = apiMux
	api = s.securityMiddleware.SecurityHeaders(
		s.securityMiddleware.RateLimit(
			s.securityMiddleware.InputValidation(api),
		),
	)

	s.router.Handle("/api/", api)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.Handle("GET /metrics", metrics.Handler())

	var handler http.Handler = s.router
	if s.config.Logging.EnableHTTP {
		handler = s.loggingMiddleware.LogRequests(handler)
	}
	s.handler = metrics.Middleware(handler)
}

// handleParse parses the request body as the page kind named in the path
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !slices.Contains(parser.Kinds, kind) {
		s.writeJSONError(w, fmt.Sprintf("unknown page kind %q", kind), http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeReadError(w, r, err)
		return
	}

	start := time.Now()
	record, err := s.parser.ParseBytes(kind, body, r.Header.Get("Content-Type"))
	elapsed := time.Since(start)

	s.logger.LogParse(r.Context(), kind, len(body), elapsed, err)
	metrics.ObserveParse(kind, len(body), elapsed, err)

	if err != nil {
		s.writeJSONError(w, err.Error(), statusFor(err))
		return
	}

	s.writeJSONResponse(w, APIResponse{Success: true, Kind: kind, Data: record}, http.StatusOK)
}

// handleClassify classifies an archive result or copyright message. The body
// is either {"message": "..."} JSON or the raw page, whose message is parsed out
// first.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if !slices.Contains(classifyKinds, kind) {
		s.writeJSONError(w, fmt.Sprintf("unknown message kind %q", kind), http.StatusNotFound)
		return
	}

	message, err := s.classifyMessage(r, kind)
	if err != nil {
		var reqErr requestError
		switch {
		case errors.As(err, &reqErr):
			s.writeJSONError(w, reqErr.Error(), http.StatusBadRequest)
		case isBodyTooLarge(err):
			s.writeReadError(w, r, err)
		default:
			s.writeJSONError(w, err.Error(), statusFor(err))
		}
		return
	}

	result, err := s.classifier.Classify(kind, message)
	if err != nil {
		s.writeJSONError(w, err.Error(), statusFor(err))
		return
	}

	s.logger.LogClassification(r.Context(), kind, string(result.Outcome), result.Confidence)
	metrics.ObserveClassification(kind, string(result.Outcome))

	s.writeJSONResponse(w, APIResponse{Success: true, Kind: kind, Data: result}, http.StatusOK)
}

type requestError struct{ msg string }

func (e requestError) Error() string { return e.msg }

func (s *Server) classifyMessage(r *http.Request, kind string) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req ClassifyRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			if isBodyTooLarge(err) {
				return "", err
			}
			return "", requestError{msg: "invalid request format"}
		}
		if strings.TrimSpace(req.Message) == "" {
			return "", requestError{msg: "message is required"}
		}
		return req.Message, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	record, err := s.parser.ParseBytes(kind, body, r.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	if message, ok := parser.Message(record); ok {
		return message, nil
	}
	return "", fmt.Errorf("unexpected record %T for %s", record, kind)
}

// handleKinds lists the accepted parse and classify kinds
func (s *Server) handleKinds(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, APIResponse{
		Success: true,
		Data: map[string][]string{
			"parse":    parser.Kinds,
			"classify": classifyKinds,
		},
	}, http.StatusOK)
}

// handleHealth reports liveness and the running version
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSONResponse(w, map[string]string{
		"status":  "ok",
		"version": version.Get().Version,
	}, http.StatusOK)
}

// statusFor maps a parse or classify error onto an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrUnknownKind):
		return http.StatusNotFound
	case types.IsParseFailure(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	if isBodyTooLarge(err) {
		s.writeJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	s.logger.WithContext(r.Context()).WithField("component", "server").WithError(err).Warn("Failed to read request body")
	s.writeJSONError(w, "failed to read request body", http.StatusBadRequest)
}

// writeJSONResponse writes a JSON response
func (s *Server) writeJSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithField("component", "server").WithError(err).Error("Failed to encode JSON response")
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	s.writeJSONResponse(w, APIResponse{Success: false, Error: message}, statusCode)
}
