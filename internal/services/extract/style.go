package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// starWidth and starRowHeight are the rating sprite's cell sizes in px.
	starWidth     = 16
	starRowHeight = 21

	// favRowHeight is the row height of the favorite icon sprite in px.
	favRowHeight = 19
)

var (
	pxPattern  = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:px)?`)
	urlPattern = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
)

// favoritePalette maps the background-color of a listing's posted-time cell
// to the favorite category index.
var favoritePalette = map[string]int{
	"rgba(0,0,0,.1)":       0,
	"rgba(240,0,0,.1)":     1,
	"rgba(240,160,0,.1)":   2,
	"rgba(208,208,0,.1)":   3,
	"rgba(0,128,0,.1)":     4,
	"rgba(144,240,64,.1)":  5,
	"rgba(64,176,240,.1)":  6,
	"rgba(0,0,240,.1)":     7,
	"rgba(80,0,128,.1)":    8,
	"rgba(224,128,224,.1)": 9,
}

// StyleValue returns the value of property prop in an inline style
// attribute, or "" when absent.
func StyleValue(style, prop string) string {
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), prop) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// BackgroundPosition reads the two pixel offsets of background-position as
// absolute values.
func BackgroundPosition(style string) (x, y int, ok bool) {
	return offsets(StyleValue(style, "background-position"))
}

// offsets parses the first two pixel lengths in value.
func offsets(value string) (x, y int, ok bool) {
	m := pxPattern.FindAllString(value, 2)
	if len(m) < 2 {
		return 0, 0, false
	}
	xf, errX := strconv.ParseFloat(strings.TrimSuffix(m[0], "px"), 64)
	yf, errY := strconv.ParseFloat(strings.TrimSuffix(m[1], "px"), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return int(math.Abs(xf)), int(math.Abs(yf)), true
}

// RatingFromOffset converts star sprite offsets to a rating in half steps:
// 5 - x/16 - floor(y/21)*0.5.
func RatingFromOffset(x, y int) float64 {
	return 5 - float64(x)/starWidth - math.Floor(float64(y)/starRowHeight)*0.5
}

// RatingFromStyle reads a rating from a star sprite style attribute;
// malformed or missing positions yield 0.
func RatingFromStyle(style string) float64 {
	x, y, ok := BackgroundPosition(style)
	if !ok {
		return 0
	}
	return RatingFromOffset(x, y)
}

// FavCatFromColor maps the background-color of style through the favorite
// palette.
func FavCatFromColor(style string) (int, bool) {
	color := strings.ReplaceAll(strings.ToLower(StyleValue(style, "background-color")), " ", "")
	idx, ok := favoritePalette[color]
	return idx, ok
}

// FavCatFromOffset maps the vertical sprite offset of the gallery favorite
// icon to the favorite category index.
func FavCatFromOffset(style string) (int, bool) {
	_, y, ok := BackgroundPosition(style)
	if !ok {
		return 0, false
	}
	idx := y / favRowHeight
	if idx < 0 || idx > 9 {
		return 0, false
	}
	return idx, true
}

// BackgroundURL returns the url(...) referenced by a background or
// background-image declaration.
func BackgroundURL(style string) string {
	m := urlPattern.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// BackgroundOffset returns the pixel offsets following url(...) in a
// background shorthand, e.g. "transparent url(x.jpg) -200px 0 no-repeat".
func BackgroundOffset(style string) (x, y int, ok bool) {
	bg := StyleValue(style, "background")
	loc := urlPattern.FindStringIndex(bg)
	if loc == nil {
		return 0, 0, false
	}
	return offsets(bg[loc[1]:])
}

// StyleWidth returns the width property in px, or 0.
func StyleWidth(style string) int {
	m := pxPattern.FindString(StyleValue(style, "width"))
	if m == "" {
		return 0
	}
	w, err := strconv.ParseFloat(strings.TrimSuffix(m, "px"), 64)
	if err != nil {
		return 0
	}
	return int(w)
}
