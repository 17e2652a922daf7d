package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

const (
	// extendedMode is the display-mode option value of the extended listing.
	extendedMode = "e"

	resultCountPrefix = "Found about "
)

var filteredPattern = regexp.MustCompile(`Filtered\s+([\d,]+)\s+results?`)

// favoritesOrders maps the favorites sort control values.
var favoritesOrders = map[string]types.FavoritesOrder{
	"fs_f": types.FavoritesOrderFavorited,
	"fs_p": types.FavoritesOrderPublished,
}

// ParseList parses a front page, watched, popular or favorites listing
// rendered in extended display density.
func (p *Parser) ParseList(html string) (*types.ListPage, error) {
	doc, log, err := p.load("parse_list", html)
	if err != nil {
		return nil, err
	}
	root := doc.Document.Selection

	mode, _ := root.Find("#dms option[selected]").First().Attr("value")
	if mode != extendedMode {
		return nil, layoutError("listing display mode is %q, extended required", mode)
	}

	kind, err := p.classifyList(root)
	if err != nil {
		return nil, err
	}

	_, prev := root.Find("#uprev").First().Attr("href")
	_, next := root.Find("#unext").First().Attr("href")

	items, err := p.listItems(root, log)
	if err != nil {
		return nil, err
	}

	page := &types.ListPage{
		Kind:              kind,
		Items:             items,
		PrevPageAvailable: prev,
		NextPageAvailable: next,
	}

	switch kind {
	case types.PageKindFrontPage:
		page.FrontPage = frontPageInfo(root)
	case types.PageKindFavorites:
		page.Favorites = favoritesInfo(root)
	}

	log.WithFields(logrus.Fields{
		"kind":  kind,
		"items": len(items),
		"prev":  prev,
		"next":  next,
	}).Debug("Parsed listing page")

	return page, nil
}

// classifyList decides the listing kind from the primary heading.
func (p *Parser) classifyList(root *goquery.Selection) (types.PageKind, error) {
	heading := extract.CleanText(root.Find("h1").First().Text())

	switch {
	case strings.Contains(heading, "Watched"):
		return types.PageKindWatched, nil
	case strings.Contains(heading, "Popular"):
		return types.PageKindPopular, nil
	case strings.Contains(heading, "Favorites"):
		return types.PageKindFavorites, nil
	}
	for _, site := range p.opts.SiteNames {
		if site != "" && strings.Contains(heading, site) {
			return types.PageKindFrontPage, nil
		}
	}
	return "", fmt.Errorf("%w: heading %q", types.ErrUnknownPageKind, heading)
}

// listItems extracts every gallery row of the result table. A table with at
// most one cell means no results (or everything filtered).
func (p *Parser) listItems(root *goquery.Selection, log *logrus.Entry) ([]types.ListItem, error) {
	table := root.Find("table.itg").First()
	if table.Find("td").Length() <= 1 {
		return []types.ListItem{}, nil
	}

	rows := table.ChildrenFiltered("tbody").ChildrenFiltered("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Find(".gl3e").Length() > 0
	})

	items := make([]types.ListItem, 0, rows.Length())
	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		item, err := p.listItem(row, log)
		if err != nil {
			rowErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		items = append(items, item)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return items, nil
}

// listItemRules are the per-row extraction rules; meta cells are the
// children of the .gl3e column in order category, posted, rating, uploader,
// length, torrents and (favorites only) favorited time.
func (p *Parser) listItemRules() []rule[types.ListItem] {
	loc := p.opts.Location
	return []rule[types.ListItem]{
		{name: "thumbnail", selector: ".gl1e img", apply: func(s *goquery.Selection, it *types.ListItem) {
			img := s.First()
			if src, ok := img.Attr("data-src"); ok && src != "" {
				it.ThumbnailURL = src
				return
			}
			it.ThumbnailURL, _ = img.Attr("src")
		}},
		{name: "category", selector: ".gl3e > :nth-child(1)", apply: func(s *goquery.Selection, it *types.ListItem) {
			it.Category = types.Category(extract.CleanText(s.First().Text()))
		}},
		{name: "posted", selector: ".gl3e > :nth-child(2)", apply: func(s *goquery.Selection, it *types.ListItem) {
			cell := s.First()
			if t, ok := extract.ParsePostedTime(cell.Text(), loc); ok {
				it.PostedAt = t
			}
			it.Visible = cell.Find("s").Length() == 0
			it.FavoriteState = listFavoriteState(cell)
		}},
		{name: "rating", selector: ".gl3e > .ir", apply: func(s *goquery.Selection, it *types.ListItem) {
			star := s.First()
			style, _ := star.Attr("style")
			it.Rating = extract.RatingFromStyle(style)
			it.IsMyRating = hasAnyClass(star, myRatingClasses...)
		}},
		{name: "uploader", selector: ".gl3e > :nth-child(4) a", apply: func(s *goquery.Selection, it *types.ListItem) {
			if name := extract.CleanText(s.First().Text()); name != "" {
				it.Uploader = strPtr(name)
			}
		}},
		{name: "length", selector: ".gl3e > :nth-child(5)", apply: func(s *goquery.Selection, it *types.ListItem) {
			it.Length = int(extract.ParseInt(s.First().Text()))
		}},
		{name: "torrents", selector: ".gldown a", apply: func(_ *goquery.Selection, it *types.ListItem) {
			it.HasTorrents = true
		}},
		{name: "favorited_at", selector: ".gl3e > :nth-child(7)", apply: func(s *goquery.Selection, it *types.ListItem) {
			if t, ok := extract.ParsePostedTime(s.First().Text(), loc); ok {
				it.FavoritedAt = &t
			}
		}},
		{name: "title", selector: ".glink", apply: func(s *goquery.Selection, it *types.ListItem) {
			it.Title = extract.CleanText(s.First().Text())
		}},
		{name: "tags", selector: ".gl2e table tr", apply: func(s *goquery.Selection, it *types.ListItem) {
			it.Tags = extract.ParseTagRows(s)
		}},
	}
}

// listItem decodes one result row. The gallery identity is mandatory.
func (p *Parser) listItem(row *goquery.Selection, log *logrus.Entry) (types.ListItem, error) {
	item := types.ListItem{
		Visible: true,
		Tags:    []types.TagListItem{},
	}

	href, ok := row.Find(".gl1e a[href]").First().Attr("href")
	if !ok {
		href, ok = row.Find(".gl2e a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return a.Find(".glink").Length() > 0
		}).First().Attr("href")
	}
	if !ok {
		return item, fmt.Errorf("%w: gallery link missing", types.ErrMalformedIdentity)
	}
	gid, token, err := extract.ParseGalleryURL(href)
	if err != nil {
		return item, err
	}
	item.GID, item.Token, item.URL = gid, token, href

	runRules(row, &item, p.listItemRules(), log.WithField("gid", gid))
	return item, nil
}

// listFavoriteState reads favorite state from the posted-time cell: a title
// attribute marks a favorite, the background color picks the category.
func listFavoriteState(cell *goquery.Selection) types.FavoriteState {
	title, ok := cell.Attr("title")
	title = strings.TrimSpace(title)
	if !ok || title == "" {
		return types.FavoriteState{}
	}
	state := types.FavoriteState{
		Favorited:   true,
		FavCatTitle: strPtr(title),
	}
	style, _ := cell.Attr("style")
	if idx, ok := extract.FavCatFromColor(style); ok {
		state.FavCat = intPtr(idx)
	}
	return state
}

// frontPageInfo reads the result-count sentence and filtered count.
func frontPageInfo(root *goquery.Selection) *types.FrontPageInfo {
	info := &types.FrontPageInfo{}
	text := extract.CleanText(root.Find(".searchtext p").First().Text())
	if strings.HasPrefix(text, resultCountPrefix) {
		info.ResultCount = extract.ParseCount(text, resultCountPrefix)
	} else {
		info.ResultCount = extract.ParseCount(text, "Found ")
	}
	if m := filteredPattern.FindStringSubmatch(extract.CleanText(root.Find("body").Text())); m != nil {
		info.FilteredCount = int(extract.ParseInt(m[1]))
	}
	return info
}

// favoritesInfo reads the sort order and per-category summaries. The last
// child of the category container is the "show all" control, not data.
func favoritesInfo(root *goquery.Selection) *types.FavoritesInfo {
	info := &types.FavoritesInfo{
		Order:      types.FavoritesOrderUnknown,
		Categories: []types.FavoriteCategorySummary{},
	}

	root.Find(".searchnav select").Has(`option[value^="fs_"]`).Find("option[selected]").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		value, _ := opt.Attr("value")
		if !strings.HasPrefix(value, "fs_") {
			return true
		}
		info.SortOrder = value
		if order, ok := favoritesOrders[value]; ok {
			info.Order = order
		}
		return false
	})

	cats := root.Find(".ido .nosel").First().Children()
	if n := cats.Length(); n > 1 {
		cats.Slice(0, n-1).Each(func(i int, cat *goquery.Selection) {
			parts := cat.Children()
			info.Categories = append(info.Categories, types.FavoriteCategorySummary{
				Index: i,
				Count: int(extract.ParseInt(parts.First().Text())),
				Title: extract.CleanText(parts.Last().Text()),
			})
		})
	}
	return info
}
