package parser

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

// ParseArchiveResult extracts the message shown after an archive request.
// Classifying the message is left to the caller.
func (p *Parser) ParseArchiveResult(html string) (*types.ArchiveResult, error) {
	doc, log, err := p.load("parse_archive_result", html)
	if err != nil {
		return nil, err
	}
	msg, ok := firstParagraph(doc.Document.Selection, "#db p", "p")
	if !ok {
		return nil, layoutError("archive result message not found")
	}
	log.WithField("message", msg).Debug("Parsed archive result")
	return &types.ArchiveResult{Message: msg}, nil
}

// ParseCopyrightNotice extracts the takedown message of a removed gallery.
func (p *Parser) ParseCopyrightNotice(html string) (*types.CopyrightNotice, error) {
	doc, log, err := p.load("parse_copyright_notice", html)
	if err != nil {
		return nil, err
	}
	msg, ok := firstParagraph(doc.Document.Selection, ".d p", "p")
	if !ok {
		return nil, layoutError("copyright notice not found")
	}
	log.WithField("message", msg).Debug("Parsed copyright notice")
	return &types.CopyrightNotice{Message: msg}, nil
}

// firstParagraph returns the first non-empty paragraph text matched by the
// selectors, tried in order.
func firstParagraph(root *goquery.Selection, selectors ...string) (string, bool) {
	for _, sel := range selectors {
		var msg string
		root.Find(sel).EachWithBreak(func(_ int, para *goquery.Selection) bool {
			msg = extract.CleanText(para.Text())
			return msg == ""
		})
		if msg != "" {
			return msg, true
		}
	}
	return "", false
}

// Message returns the server message carried by an archive result or
// copyright notice record.
func Message(record any) (string, bool) {
	switch rec := record.(type) {
	case *types.ArchiveResult:
		return rec.Message, true
	case *types.CopyrightNotice:
		return rec.Message, true
	}
	return "", false
}
