package parser

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/titanous/json5"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

const imageListVar = "imagelist"

// mpvEntry is the compact wire shape of one image list element.
type mpvEntry struct {
	Key          string `json:"k"`
	Name         string `json:"n"`
	ThumbnailURL string `json:"t"`
}

// ParseMPV parses a multi-page viewer page. Identity and the image index
// live only in inline script assignments.
func (p *Parser) ParseMPV(html string) (*types.MPVPage, error) {
	doc, log, err := p.load("parse_mpv", html)
	if err != nil {
		return nil, err
	}
	script := scriptText(doc.Document.Selection)
	vars := extract.ParseScriptVars(script)

	gid, ok := vars.Int("gid")
	if !ok {
		return nil, layoutError("mpv gid assignment not found")
	}

	page := &types.MPVPage{GID: gid}
	page.MPVKey, _ = vars.String("mpvkey")
	page.GalleryURL, _ = vars.String("gallery_url")

	_, token, err := extract.ParseGalleryURL(page.GalleryURL)
	if err != nil {
		return nil, fmt.Errorf("mpv gallery url: %w", err)
	}
	page.Token = token

	images, err := decodeImageList(script)
	if err != nil {
		return nil, err
	}
	page.Images = images

	if n, ok := vars.Int("pagecount"); ok {
		page.PageCount = int(n)
	} else {
		page.PageCount = len(images)
	}

	log.WithFields(logrus.Fields{
		"gid":        gid,
		"page_count": page.PageCount,
		"images":     len(images),
	}).Debug("Parsed multi-page viewer")

	return page, nil
}

// decodeImageList locates the image list array literal after its variable
// name and decodes it. Element order is page order.
func decodeImageList(script string) ([]types.MPVImage, error) {
	idx := strings.Index(script, imageListVar)
	if idx < 0 {
		return nil, layoutError("mpv image list not found")
	}
	literal, ok := extract.ArrayLiteral(script[idx:])
	if !ok {
		return nil, layoutError("mpv image list is not a closed array")
	}

	var entries []mpvEntry
	if err := json5.Unmarshal([]byte(literal), &entries); err != nil {
		return nil, layoutError("mpv image list: %v", err)
	}

	images := make([]types.MPVImage, len(entries))
	for i, e := range entries {
		images[i] = types.MPVImage{
			Page:         i + 1,
			Key:          e.Key,
			Name:         e.Name,
			ThumbnailURL: e.ThumbnailURL,
		}
	}
	return images, nil
}
