package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/services/extract"
	"github.com/toozej/go-ehparse/internal/types"
)

// favoriteCategoryCount is the number of user favorite categories; the
// popup renders one extra "remove" row when the gallery is already filed.
const favoriteCategoryCount = 10

// ParseFavoritePopup parses the "add to favorites" popup.
func (p *Parser) ParseFavoritePopup(html string) (*types.FavoritePopup, error) {
	doc, log, err := p.load("parse_favorite_popup", html)
	if err != nil {
		return nil, err
	}
	root := doc.Document.Selection

	container := root.Find("div.nosel").FilterFunction(func(_ int, d *goquery.Selection) bool {
		return d.ChildrenFiltered("div").Find("input[name=favcat]").Length() > 0
	}).First()
	if container.Length() == 0 {
		return nil, layoutError("favorite category list not found")
	}

	rows := container.ChildrenFiltered("div")
	popup := &types.FavoritePopup{
		Categories: []string{},
		Favorited:  rows.Length() > favoriteCategoryCount,
	}

	rows.Each(func(i int, row *goquery.Selection) {
		if i >= favoriteCategoryCount {
			return
		}
		popup.Categories = append(popup.Categories, extract.CleanText(row.Text()))
	})

	if v, ok := root.Find("input[name=favcat][checked]").First().Attr("value"); ok {
		if idx, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			popup.Selected = intPtr(idx)
		}
	}
	popup.Note = strings.TrimSpace(root.Find("textarea[name=favnote]").First().Text())

	log.WithFields(logrus.Fields{
		"categories": len(popup.Categories),
		"favorited":  popup.Favorited,
	}).Debug("Parsed favorites popup")

	return popup, nil
}
