package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	postedLayout  = "2006-01-02 15:04"
	commentLayout = "02 January 2006, 15:04"
)

var (
	postedPattern  = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}`)
	commentPattern = regexp.MustCompile(`\d{1,2} [A-Z][a-z]+ \d{4}, \d{2}:\d{2}`)
	intPattern     = regexp.MustCompile(`[+-]?\d[\d,]*`)
	sizePattern    = regexp.MustCompile(`([\d.]+)\s*([KMGT]i?B|B)`)
)

// ParsePostedTime finds a "YYYY-MM-DD hh:mm" timestamp in text and parses it
// in loc, which callers pass as UTC unless configured otherwise.
func ParsePostedTime(text string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	m := postedPattern.FindString(text)
	if m == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(postedLayout, m, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseCommentTime finds a "02 January 2006, 15:04" timestamp in text.
func ParseCommentTime(text string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	m := commentPattern.FindString(text)
	if m == "" {
		return time.Time{}, false
	}
	if len(m) > 0 && m[1] == ' ' {
		m = "0" + m
	}
	t, err := time.ParseInLocation(commentLayout, m, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseInt returns the first integer in text with thousands separators
// removed, or 0 when there is none.
func ParseInt(text string) int64 {
	m := intPattern.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseCount strips prefix from text and reads the count that follows,
// e.g. "Found about 1,234 results." with prefix "Found about ".
func ParseCount(text, prefix string) int64 {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, prefix)
	if text == "" || text[0] < '0' || text[0] > '9' {
		return 0
	}
	return ParseInt(text)
}

// ParseFileSize converts "12.3 MiB" style text to bytes; 0 when unparseable.
func ParseFileSize(text string) int64 {
	m := sizePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	var mult float64
	switch strings.TrimSuffix(strings.TrimSuffix(m[2], "B"), "i") {
	case "":
		mult = 1
	case "K":
		mult = 1 << 10
	case "M":
		mult = 1 << 20
	case "G":
		mult = 1 << 30
	case "T":
		mult = 1 << 40
	}
	return int64(math.Round(value * mult))
}

// ParseFavoriteCount reads the "Favorited" metadata cell: "Never", "Once"
// or "N times".
func ParseFavoriteCount(text string) int {
	text = strings.TrimSpace(text)
	switch text {
	case "Never", "":
		return 0
	case "Once":
		return 1
	}
	return int(ParseInt(text))
}

// CleanText collapses runs of whitespace, non-breaking spaces included.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// StripAlias drops a display alias following a "|" separator.
func StripAlias(tag string) string {
	if i := strings.Index(tag, "|"); i >= 0 {
		tag = tag[:i]
	}
	return strings.TrimSpace(tag)
}
