package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

const descriptionSeparator = " :: "

var (
	dimensionsPattern = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)
	originalPattern   = regexp.MustCompile(`(\d+)\s*x\s*(\d+)\s+([\d.]+\s*[KMGT]?i?B)`)
)

// ParseSinglePage parses a per-image viewer page.
func (p *Parser) ParseSinglePage(html string) (*types.SinglePage, error) {
	doc, log, err := p.load("parse_single_page", html)
	if err != nil {
		return nil, err
	}
	root := doc.Document.Selection

	src, ok := root.Find("#img").First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return nil, layoutError("image element not found")
	}

	page := &types.SinglePage{ImageURL: src}
	applyDescription(page, root)
	runRules(root, page, singlePageRules, log)

	if vars := extract.ParseScriptVars(scriptText(root)); len(vars) > 0 {
		page.ShowKey, _ = vars.String("showkey")
	}

	log.WithFields(logrus.Fields{
		"gid":  page.GID,
		"page": page.Page,
	}).Debug("Parsed single image page")

	return page, nil
}

// applyDescription splits the "name :: W x H :: size" description line. The
// last two parts are dimensions and size; a leading third part is the file
// name. Original values default to these until a download link overrides.
func applyDescription(page *types.SinglePage, root *goquery.Selection) {
	var desc string
	root.Find("#i2 div, #i4 div").EachWithBreak(func(_ int, d *goquery.Selection) bool {
		text := extract.CleanText(d.Text())
		if d.Children().Length() == 0 && strings.Contains(text, strings.TrimSpace(descriptionSeparator)) {
			desc = text
			return false
		}
		return true
	})
	if desc == "" {
		return
	}

	parts := strings.Split(desc, descriptionSeparator)
	if len(parts) >= 3 {
		page.FileName = strings.TrimSpace(parts[0])
	}
	if len(parts) >= 2 {
		page.Dimensions = strings.TrimSpace(parts[len(parts)-2])
		page.FileSize = strings.TrimSpace(parts[len(parts)-1])
	}
	if m := dimensionsPattern.FindStringSubmatch(page.Dimensions); m != nil {
		page.Width, _ = strconv.Atoi(m[1])
		page.Height, _ = strconv.Atoi(m[2])
	}
	page.OriginalWidth, page.OriginalHeight, page.OriginalSize = page.Width, page.Height, page.FileSize
}

var singlePageRules = []rule[types.SinglePage]{
	{name: "position", selector: ".sn div span", apply: func(s *goquery.Selection, sp *types.SinglePage) {
		sp.Page = int(extract.ParseInt(s.Eq(0).Text()))
		if s.Length() > 1 {
			sp.TotalPages = int(extract.ParseInt(s.Eq(1).Text()))
		}
	}},
	{name: "next", selector: "#next", apply: func(s *goquery.Selection, sp *types.SinglePage) {
		sp.NextURL, _ = s.First().Attr("href")
	}},
	{name: "prev", selector: "#prev", apply: func(s *goquery.Selection, sp *types.SinglePage) {
		sp.PrevURL, _ = s.First().Attr("href")
	}},
	{name: "gallery", selector: "#i5 a", apply: func(s *goquery.Selection, sp *types.SinglePage) {
		href, _ := s.First().Attr("href")
		if gid, token, err := extract.ParseGalleryURL(href); err == nil {
			sp.GID, sp.Token = gid, token
		}
	}},
	{name: "original", selector: "#i6 a, #i7 a", apply: func(s *goquery.Selection, sp *types.SinglePage) {
		s.EachWithBreak(func(_ int, a *goquery.Selection) bool {
			m := originalPattern.FindStringSubmatch(extract.CleanText(a.Text()))
			if m == nil {
				return true
			}
			sp.OriginalWidth, _ = strconv.Atoi(m[1])
			sp.OriginalHeight, _ = strconv.Atoi(m[2])
			sp.OriginalSize = m[3]
			sp.OriginalURL, _ = a.Attr("href")
			return false
		})
	}},
}
