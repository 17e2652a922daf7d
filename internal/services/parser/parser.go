// Package parser extracts typed records from the pages of a gallery-hosting
// site.
//
// Every operation takes raw markup, loads it once through the DOM loader,
// runs a list of named extraction rules against fixed structural anchors and
// returns a single record. Operations never perform I/O and share no mutable
// state, so one Parser may be used from any number of goroutines.
//
// Fatal conditions (wrong page, unsupported display mode, malformed gallery
// identity) are returned as errors wrapping the sentinels in package types.
// Missing optional fields degrade to zero values and are only logged.
package parser

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/loader"
	"github.com/toozej/go-ehparse/internal/types"
)

// Page kind names accepted by Parse
const (
	KindList          = "list"
	KindGallery       = "gallery"
	KindMPV           = "mpv"
	KindSingle        = "single"
	KindConfig        = "config"
	KindFavorites     = "favorites"
	KindArchiver      = "archiver"
	KindArchiveResult = "archive_result"
	KindCopyright     = "copyright"
)

// Kinds lists every page kind Parse understands, in a stable order.
var Kinds = []string{
	KindList, KindGallery, KindMPV, KindSingle, KindConfig,
	KindFavorites, KindArchiver, KindArchiveResult, KindCopyright,
}

// Options tunes page classification and time parsing.
type Options struct {
	// SiteNames are matched against a listing heading to detect the front page
	SiteNames []string
	// Location is applied to timestamps that carry no zone
	Location *time.Location
	// ConfigFormSelector scopes the settings form serializer
	ConfigFormSelector string
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{
		SiteNames:          []string{"E-Hentai", "ExHentai"},
		Location:           time.UTC,
		ConfigFormSelector: "#outer form",
	}
}

// Parser implements every page parsing operation.
type Parser struct {
	loader loader.DocumentLoader
	logger *logrus.Logger
	opts   Options
}

// New creates a Parser backed by the goquery loader.
func New(logger *logrus.Logger, opts Options) *Parser {
	logger = orDiscard(logger)
	return NewWithLoader(loader.NewGoqueryLoader(logger), logger, opts)
}

func orDiscard(logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return logger
}

// NewWithLoader creates a Parser using the given document loader.
func NewWithLoader(l loader.DocumentLoader, logger *logrus.Logger, opts Options) *Parser {
	logger = orDiscard(logger)
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if len(opts.SiteNames) == 0 {
		opts.SiteNames = DefaultOptions().SiteNames
	}
	if opts.ConfigFormSelector == "" {
		opts.ConfigFormSelector = DefaultOptions().ConfigFormSelector
	} else if err := l.ValidateSelector(opts.ConfigFormSelector); err != nil {
		logger.WithField("component", "parser").WithError(err).Warn("Falling back to the default settings form selector")
		opts.ConfigFormSelector = DefaultOptions().ConfigFormSelector
	}
	return &Parser{
		loader: l,
		logger: logger,
		opts:   opts,
	}
}

// Parse dispatches html to the parser registered for kind.
func (p *Parser) Parse(kind, html string) (any, error) {
	switch kind {
	case KindList:
		return p.ParseList(html)
	case KindGallery:
		return p.ParseGallery(html)
	case KindMPV:
		return p.ParseMPV(html)
	case KindSingle:
		return p.ParseSinglePage(html)
	case KindConfig:
		return p.ParseConfigForm(html)
	case KindFavorites:
		return p.ParseFavoritePopup(html)
	case KindArchiver:
		return p.ParseArchiver(html)
	case KindArchiveResult:
		return p.ParseArchiveResult(html)
	case KindCopyright:
		return p.ParseCopyrightNotice(html)
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownKind, kind)
}

// ParseBytes decodes a raw response body using its Content-Type header and
// dispatches it like Parse.
func (p *Parser) ParseBytes(kind string, body []byte, contentType string) (any, error) {
	text, _, err := p.loader.Decode(body, contentType)
	if err != nil {
		return nil, err
	}
	return p.Parse(kind, text)
}

// load builds the document for one parse call.
func (p *Parser) load(operation, html string) (*loader.ParsedDocument, *logrus.Entry, error) {
	log := p.logger.WithFields(logrus.Fields{
		"component": "parser",
		"operation": operation,
	})
	doc, err := p.loader.Load(html)
	if err != nil {
		log.WithError(err).Debug("Failed to load document")
		return nil, log, err
	}
	return doc, log, nil
}

// layoutError wraps ErrUnexpectedLayout with a description.
func layoutError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrUnexpectedLayout, fmt.Sprintf(format, args...))
}
