package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/toozej/go-ehparse/internal/types"
)

// ParseTagRows decodes a tag table: each row's first cell is the namespace
// with a trailing colon, the second cell's children are the tags. Aliases
// after a "|" separator are stripped. Rows are returned in document order.
func ParseTagRows(rows *goquery.Selection) []types.TagListItem {
	items := []types.TagListItem{}
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		ns := strings.TrimSuffix(CleanText(cells.Eq(0).Text()), ":")
		if ns == "" {
			ns = string(types.NamespaceMisc)
		}

		tags := []string{}
		cells.Eq(1).Children().Each(func(_ int, tag *goquery.Selection) {
			text := StripAlias(CleanText(tag.Text()))
			if text != "" {
				tags = append(tags, text)
			}
		})

		items = append(items, types.TagListItem{
			Namespace: types.Namespace(strings.ToLower(ns)),
			Tags:      tags,
		})
	})
	return items
}
