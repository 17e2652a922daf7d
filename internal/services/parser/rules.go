package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// rule is one named extraction: an anchor selector relative to the root and
// a transform writing into the record. When the anchor matches nothing the
// record keeps whatever default it was initialized with.
type rule[T any] struct {
	name     string
	selector string
	apply    func(sel *goquery.Selection, rec *T)
}

// runRules applies rules in order against root.
func runRules[T any](root *goquery.Selection, rec *T, rules []rule[T], log *logrus.Entry) {
	for _, r := range rules {
		sel := root
		if r.selector != "" {
			sel = root.Find(r.selector)
		}
		if sel.Length() == 0 {
			log.WithField("rule", r.name).Debug("Anchor not found, keeping default")
			continue
		}
		r.apply(sel, rec)
	}
}

// isTextNode reports whether the first node of s is a text node.
func isTextNode(_ int, s *goquery.Selection) bool {
	return len(s.Nodes) > 0 && s.Nodes[0].Type == html.TextNode
}

// ownText returns the concatenated direct text children of s.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().FilterFunction(isTextNode).Each(func(_ int, t *goquery.Selection) {
		b.WriteString(t.Text())
	})
	return b.String()
}

// scriptText joins the text of every inline script in the document.
func scriptText(doc *goquery.Selection) string {
	var b strings.Builder
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		b.WriteString(s.Text())
		b.WriteByte('\n')
	})
	return b.String()
}

// hasAnyClass reports whether s carries one of classes.
func hasAnyClass(s *goquery.Selection, classes ...string) bool {
	for _, c := range classes {
		if s.HasClass(c) {
			return true
		}
	}
	return false
}

// myRatingClasses mark a star sprite rendered with the viewer's own rating.
var myRatingClasses = []string{"irr", "irg", "irb"}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
