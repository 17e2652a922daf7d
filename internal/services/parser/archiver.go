package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

var hathHandlerPattern = regexp.MustCompile(`do_hathdl\('([^']*)'\)`)

// ParseArchiver parses the archiver popup: identity from the form target,
// H@H resolutions and direct archive downloads.
func (p *Parser) ParseArchiver(html string) (*types.ArchiverPage, error) {
	doc, log, err := p.load("parse_archiver", html)
	if err != nil {
		return nil, err
	}
	root := doc.Document.Selection

	action, ok := root.Find(`form[action*="archiver.php"]`).First().Attr("action")
	if !ok {
		return nil, layoutError("archiver form not found")
	}
	page, err := archiverIdentity(action)
	if err != nil {
		return nil, err
	}

	page.Hath = hathOptions(root)
	page.Downloads = directDownloads(root)

	log.WithFields(logrus.Fields{
		"gid":       page.GID,
		"hath":      len(page.Hath),
		"downloads": len(page.Downloads),
	}).Debug("Parsed archiver page")

	return page, nil
}

// archiverIdentity decodes gid, token and or from the form target query.
func archiverIdentity(action string) (*types.ArchiverPage, error) {
	u, err := url.Parse(action)
	if err != nil {
		return nil, fmt.Errorf("%w: archiver target %q: %v", types.ErrMalformedIdentity, action, err)
	}
	q := u.Query()
	gid, err := strconv.ParseInt(q.Get("gid"), 10, 64)
	if err != nil || q.Get("token") == "" || q.Get("or") == "" {
		return nil, fmt.Errorf("%w: archiver target %q", types.ErrMalformedIdentity, action)
	}
	return &types.ArchiverPage{
		GID:       gid,
		Token:     q.Get("token"),
		Or:        q.Get("or"),
		Hath:      []types.HathOption{},
		Downloads: []types.ArchiveDownload{},
	}, nil
}

// hathOptions decodes every cell holding an actionable resolution link.
// Cells are label, size and price paragraphs in that order.
func hathOptions(root *goquery.Selection) []types.HathOption {
	options := []types.HathOption{}
	root.Find("td").Each(func(_ int, cell *goquery.Selection) {
		link := cell.Find("a[onclick]").First()
		if link.Length() == 0 {
			return
		}
		onclick, _ := link.Attr("onclick")
		m := hathHandlerPattern.FindStringSubmatch(onclick)
		if m == nil {
			return
		}
		paras := cell.Find("p")
		options = append(options, types.HathOption{
			Solution: m[1],
			Label:    extract.CleanText(link.Text()),
			Size:     extract.CleanText(paras.Eq(1).Text()),
			Price:    extract.CleanText(paras.Eq(2).Text()),
		})
	})
	return options
}

// directDownloads decodes the original and resample archive blocks.
func directDownloads(root *goquery.Selection) []types.ArchiveDownload {
	downloads := []types.ArchiveDownload{}
	root.Find("input[name=dltype]").Each(func(_ int, in *goquery.Selection) {
		block := in.Closest("div")
		if block.Length() == 0 {
			return
		}
		strong := block.Find("strong")
		downloads = append(downloads, types.ArchiveDownload{
			Type:  in.AttrOr("value", ""),
			Label: block.Find("input[type=submit]").First().AttrOr("value", ""),
			Cost:  extract.CleanText(strong.Eq(0).Text()),
			Size:  extract.CleanText(strong.Eq(1).Text()),
		})
	})
	return downloads
}
