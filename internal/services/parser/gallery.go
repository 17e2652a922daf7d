package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

const (
	// newerVersionDatePrefix is the ", added " lead-in before each date.
	newerVersionDatePrefix = 8

	visibleNoPrefix = "No"
	translatedLabel = "TR"

	// addFavoritesLabel is the favorite link text of a gallery not yet favorited.
	addFavoritesLabel = "Add to Favorites"
)

var (
	imageTitlePattern = regexp.MustCompile(`^Page\s+(\d+):\s*(.*)$`)
	imagePagePattern  = regexp.MustCompile(`-(\d+)$`)
)

// ParseGallery parses a gallery detail page.
func (p *Parser) ParseGallery(html string) (*types.Gallery, error) {
	doc, log, err := p.load("parse_gallery", html)
	if err != nil {
		return nil, err
	}
	root := doc.Document.Selection

	if root.Find("#gn").Length() == 0 && root.Find("#gdd").Length() == 0 {
		return nil, layoutError("gallery metadata block not found")
	}

	g := &types.Gallery{
		Tags:          []types.TagListItem{},
		NewerVersions: []types.NewerVersion{},
		Images:        []types.Image{},
		Comments:      []types.Comment{},
		Visible:       true,
		ThumbnailSize: types.ThumbnailSizeNormal,
	}

	scriptIdentity(extract.ParseScriptVars(scriptText(root)), g)
	runRules(root, g, p.galleryRules(), log)

	if tiles := root.Find("#gdt .gdtl"); tiles.Length() > 0 {
		g.ThumbnailSize = types.ThumbnailSizeLarge
		g.Images = largeImages(tiles)
	} else {
		g.Images = normalImages(root.Find("#gdt .gdtm"))
	}

	g.Comments = p.parseComments(root.Find("#cdiv .c1"), log)

	log.WithFields(logrus.Fields{
		"gid":            g.GID,
		"images":         len(g.Images),
		"comments":       len(g.Comments),
		"thumbnail_size": g.ThumbnailSize,
	}).Debug("Parsed gallery page")

	return g, nil
}

// scriptIdentity fills identity and rating aggregates from script variables.
// Every value defaults to zero when absent.
func scriptIdentity(vars extract.ScriptVars, g *types.Gallery) {
	g.GID, _ = vars.Int("gid")
	g.Token, _ = vars.String("token")
	g.APIUID, _ = vars.Int("apiuid")
	g.APIKey, _ = vars.String("apikey")
	g.Rating.Average, _ = vars.Float("average_rating")
	g.Rating.Display, _ = vars.Float("display_rating")
}

// metaCell selects the value cell of metadata row n (1-based).
func metaCell(n int) string {
	return "#gdd tr:nth-child(" + strconv.Itoa(n) + ") td.gdt2"
}

func (p *Parser) galleryRules() []rule[types.Gallery] {
	loc := p.opts.Location
	return []rule[types.Gallery]{
		{name: "title", selector: "#gn", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Title = extract.CleanText(s.First().Text())
		}},
		{name: "title_japanese", selector: "#gj", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.TitleJapanese = extract.CleanText(s.First().Text())
		}},
		{name: "category", selector: "#gdc", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Category = types.Category(extract.CleanText(s.First().Text()))
		}},
		{name: "uploader", selector: "#gdn a", apply: func(s *goquery.Selection, g *types.Gallery) {
			if name := extract.CleanText(s.First().Text()); name != "" {
				g.Uploader = strPtr(name)
			}
		}},
		{name: "cover", selector: "#gd1 div", apply: func(s *goquery.Selection, g *types.Gallery) {
			style, _ := s.First().Attr("style")
			g.CoverURL = extract.BackgroundURL(style)
		}},
		{name: "posted", selector: metaCell(1), apply: func(s *goquery.Selection, g *types.Gallery) {
			if t, ok := extract.ParsePostedTime(s.First().Text(), loc); ok {
				g.PostedAt = t
			}
		}},
		{name: "parent", selector: metaCell(2), apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Parent = parentRef(s.First())
		}},
		{name: "visible", selector: metaCell(3), apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Visible, g.VisibleNote = visibility(s.First().Text())
		}},
		{name: "language", selector: metaCell(4), apply: func(s *goquery.Selection, g *types.Gallery) {
			cell := s.First()
			g.Language = extract.CleanText(ownText(cell))
			g.Translated = strings.Contains(cell.Find(".halp").Text(), translatedLabel)
		}},
		{name: "file_size", selector: metaCell(5), apply: func(s *goquery.Selection, g *types.Gallery) {
			g.FileSize = extract.CleanText(s.First().Text())
			g.FileSizeBytes = extract.ParseFileSize(g.FileSize)
		}},
		{name: "length", selector: metaCell(6), apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Length = int(extract.ParseInt(s.First().Text()))
		}},
		{name: "favorite_count", selector: metaCell(7), apply: func(s *goquery.Selection, g *types.Gallery) {
			g.FavoriteCount = extract.ParseFavoriteCount(s.First().Text())
		}},
		{name: "rating_count", selector: "#rating_count", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Rating.Count = int(extract.ParseInt(s.First().Text()))
		}},
		{name: "rated", selector: "#rating_image", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Rating.Rated = hasAnyClass(s.First(), myRatingClasses...)
		}},
		{name: "favorite", selector: "#fav .i", apply: func(s *goquery.Selection, g *types.Gallery) {
			icon := s.First()
			g.FavoriteState = galleryFavoriteState(icon, icon.Closest("#gdf").Find("#favoritelink").First())
		}},
		{name: "tags", selector: "#taglist tr", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.Tags = extract.ParseTagRows(s)
		}},
		{name: "newer_versions", selector: "#gnd", apply: func(s *goquery.Selection, g *types.Gallery) {
			g.NewerVersions = newerVersions(s.First(), loc)
		}},
		{name: "image_pages", selector: ".ptt td a", apply: func(s *goquery.Selection, g *types.Gallery) {
			s.Each(func(_ int, a *goquery.Selection) {
				if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > g.ImagePages {
					g.ImagePages = n
				}
			})
		}},
	}
}

// parentRef decodes the parent gallery cell. The literal "None" means no
// parent; an undecodable link is treated the same way.
func parentRef(cell *goquery.Selection) *types.GalleryRef {
	if strings.TrimSpace(cell.Text()) == "None" {
		return nil
	}
	href, ok := cell.Find("a").First().Attr("href")
	if !ok {
		return nil
	}
	gid, token, err := extract.ParseGalleryURL(href)
	if err != nil {
		return nil
	}
	return &types.GalleryRef{GID: gid, Token: token, URL: href}
}

// visibility decodes "Yes" or "No (Reason)".
func visibility(text string) (bool, string) {
	text = extract.CleanText(text)
	if !strings.HasPrefix(text, visibleNoPrefix) {
		return true, ""
	}
	note := strings.TrimSpace(strings.TrimPrefix(text, visibleNoPrefix))
	note = strings.TrimSuffix(strings.TrimPrefix(note, "("), ")")
	return false, note
}

// galleryFavoriteState reads the favorite icon: its sprite offset selects the
// category and its title carries the category name, falling back to the
// favorite link text. Without a category name the gallery is not favorited.
func galleryFavoriteState(icon, link *goquery.Selection) types.FavoriteState {
	style, _ := icon.Attr("style")
	idx, ok := extract.FavCatFromOffset(style)
	if !ok {
		return types.FavoriteState{}
	}
	title, _ := icon.Attr("title")
	title = strings.TrimSpace(title)
	if title == "" {
		if text := extract.CleanText(link.Text()); text != addFavoritesLabel {
			title = text
		}
	}
	if title == "" {
		return types.FavoriteState{}
	}
	return types.FavoriteState{Favorited: true, FavCat: intPtr(idx), FavCatTitle: strPtr(title)}
}

// newerVersions decodes the flat (link, date text, break) sequence of the
// newer-version container.
func newerVersions(container *goquery.Selection, loc *time.Location) []types.NewerVersion {
	var nodes []*goquery.Selection
	container.Contents().Each(func(_ int, n *goquery.Selection) {
		if isTextNode(0, n) && strings.TrimSpace(n.Text()) == "" {
			return
		}
		nodes = append(nodes, n)
	})

	versions := []types.NewerVersion{}
	for _, run := range extract.Windows(nodes, 3) {
		link, date := run[0], run[1]
		href, ok := link.Attr("href")
		if !ok {
			continue
		}
		v := types.NewerVersion{URL: href, Title: extract.CleanText(link.Text())}
		if text := date.Text(); len(text) > newerVersionDatePrefix {
			if t, ok := extract.ParsePostedTime(text[newerVersionDatePrefix:], loc); ok {
				v.PostedAt = t
			}
		}
		versions = append(versions, v)
	}
	return versions
}

// largeImages decodes single-column tiles: each has its own thumbnail image
// titled "Page N: name".
func largeImages(tiles *goquery.Selection) []types.Image {
	images := make([]types.Image, 0, tiles.Length())
	tiles.Each(func(i int, tile *goquery.Selection) {
		img := tile.Find("img").First()
		image := types.Image{Page: i + 1}
		image.URL, _ = tile.Find("a").First().Attr("href")
		image.ThumbnailURL, _ = img.Attr("src")
		title, _ := img.Attr("title")
		if m := imageTitlePattern.FindStringSubmatch(strings.TrimSpace(title)); m != nil {
			image.Page, _ = strconv.Atoi(m[1])
			image.Name = m[2]
		} else if page, ok := pageFromURL(image.URL); ok {
			image.Page = page
		}
		images = append(images, image)
	})
	return images
}

// normalImages decodes grid tiles cut from shared sprite sheets. The sheet
// index comes from the horizontal offset divided by tile width, or failing
// that from the tile's position among tiles sharing the same sheet.
func normalImages(tiles *goquery.Selection) []types.Image {
	images := make([]types.Image, 0, tiles.Length())
	sheetCount := map[string]int{}
	tiles.Each(func(i int, tile *goquery.Selection) {
		box := tile.Find("div[style]").First()
		if box.Length() == 0 {
			box = tile
		}
		style, _ := box.Attr("style")
		image := types.Image{Page: i + 1}
		image.URL, _ = tile.Find("a").First().Attr("href")
		image.ThumbnailURL = extract.BackgroundURL(style)

		if title, ok := tile.Find("img").First().Attr("title"); ok {
			if m := imageTitlePattern.FindStringSubmatch(strings.TrimSpace(title)); m != nil {
				image.Page, _ = strconv.Atoi(m[1])
				image.Name = m[2]
			}
		} else if page, ok := pageFromURL(image.URL); ok {
			image.Page = page
		}

		if image.ThumbnailURL != "" {
			sheet := sheetCount[image.ThumbnailURL]
			sheetCount[image.ThumbnailURL]++
			if x, _, ok := extract.BackgroundOffset(style); ok {
				if w := extract.StyleWidth(style); w > 0 {
					sheet = x / w
				}
			}
			image.SheetIndex = intPtr(sheet)
		}
		images = append(images, image)
	})
	return images
}

// pageFromURL reads the trailing "-N" page number of an image page URL.
func pageFromURL(u string) (int, bool) {
	m := imagePagePattern.FindStringSubmatch(strings.TrimSuffix(u, "/"))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}
