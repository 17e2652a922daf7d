// Package loader turns raw page markup into a queryable document tree.
//
// The loader is the single entry point every page parser goes through. It
// never performs I/O beyond reading the supplied bytes and never fails for
// malformed markup: the underlying HTML5 tree builder repairs truncated or
// unbalanced documents the same way a browser would.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/types"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// DocumentLoader defines the interface for building documents from markup.
type DocumentLoader interface {
	Load(htmlContent string) (*ParsedDocument, error)
	LoadBytes(body []byte, contentType string) (*ParsedDocument, error)
	Decode(body []byte, contentType string) (string, string, error)
	ValidateSelector(cssSelector string) error
}

// ParsedDocument represents a loaded HTML document.
type ParsedDocument struct {
	// Document holds the goquery document
	Document *goquery.Document
	// Charset is the encoding the input was decoded from
	Charset string
}

// Find is shorthand for doc.Document.Find.
func (d *ParsedDocument) Find(selector string) *goquery.Selection {
	return d.Document.Find(selector)
}

// GoqueryLoader implements the DocumentLoader interface using goquery.
type GoqueryLoader struct {
	logger *logrus.Logger
}

// NewGoqueryLoader creates a new GoqueryLoader instance.
func NewGoqueryLoader(logger *logrus.Logger) *GoqueryLoader {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &GoqueryLoader{
		logger: logger,
	}
}

// Load converts an HTML string to a goquery document.
func (g *GoqueryLoader) Load(htmlContent string) (*ParsedDocument, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return nil, types.ErrEmptyDocument
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		g.logger.WithError(err).Error("Failed to parse HTML content")
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	g.logger.WithField("content_length", len(htmlContent)).Debug("Successfully parsed HTML document")
	return &ParsedDocument{
		Document: doc,
		Charset:  "utf-8",
	}, nil
}

// LoadBytes decodes body according to contentType (or a <meta> charset
// declaration when contentType carries none) and builds the document.
func (g *GoqueryLoader) LoadBytes(body []byte, contentType string) (*ParsedDocument, error) {
	text, name, err := g.Decode(body, contentType)
	if err != nil {
		return nil, err
	}

	doc, err := g.Load(text)
	if err != nil {
		return nil, err
	}
	doc.Charset = name
	return doc, nil
}

// Decode converts body to UTF-8 text and reports the charset it was read as.
func (g *GoqueryLoader) Decode(body []byte, contentType string) (string, string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", "", types.ErrEmptyDocument
	}

	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && utf8.Valid(body) {
		name = "utf-8"
	}
	if name == "utf-8" {
		return string(body), name, nil
	}

	g.logger.WithField("charset", name).Debug("Decoding non UTF-8 document")
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", name, fmt.Errorf("failed to decode %s document: %w", name, err)
	}
	return string(decoded), name, nil
}

// ValidateSelector validates a CSS selector by compiling it.
func (g *GoqueryLoader) ValidateSelector(cssSelector string) error {
	if cssSelector == "" {
		return nil // Empty selector is valid (means use entire body)
	}

	if _, err := cascadia.Compile(cssSelector); err != nil {
		g.logger.WithError(err).WithField("selector", cssSelector).Warn("Invalid CSS selector")
		return fmt.Errorf("invalid CSS selector '%s': %w", cssSelector, err)
	}
	return nil
}
