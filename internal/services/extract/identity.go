// Package extract holds the small stateless field extractors shared by every
// page parser: identity decoding, dates, numbers, sprite offsets, favorite
// palettes, tag rows and the inline-script micro-parser.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/toozej/go-ehparse/internal/types"
)

// galleryURLPattern matches .../{type}/{gid}/{token}/ where type is the
// gallery or multi-page-viewer path segment.
var galleryURLPattern = regexp.MustCompile(`/(g|mpv)/(\d+)/([0-9a-z]+)(?:/|$|\?|#)`)

// ParseGalleryURL decodes gid and token together from a gallery URL. Both
// are required; a URL missing either yields ErrMalformedIdentity.
func ParseGalleryURL(rawURL string) (int64, string, error) {
	m := galleryURLPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return 0, "", fmt.Errorf("%w: %q", types.ErrMalformedIdentity, rawURL)
	}
	gid, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: gid %q: %v", types.ErrMalformedIdentity, m[2], err)
	}
	return gid, m[3], nil
}

// FormatGalleryURL builds the canonical gallery URL for gid and token.
func FormatGalleryURL(baseURL string, gid int64, token string) string {
	return fmt.Sprintf("%s/g/%d/%s/", strings.TrimRight(baseURL, "/"), gid, token)
}
