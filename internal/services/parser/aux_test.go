package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/toozej/go-ehparse/internal/types"
)

func TestParser_ParseMPV(t *testing.T) {
	p := newTestParser(t)

	page, err := p.ParseMPV(loadFixture(t, "mpv.html"))
	require.NoError(t, err)

	want := &types.MPVPage{
		GID:        2000001,
		Token:      "0123456789",
		MPVKey:     "mpvkey0123",
		GalleryURL: "https://e-hentai.org/g/2000001/0123456789/",
		PageCount:  3,
		Images: []types.MPVImage{
			{Page: 1, Key: "k001aaaaaa", Name: "001.jpg", ThumbnailURL: "(https://ehgt.org/m/01.jpg) -0px 0"},
			{Page: 2, Key: "k002bbbbbb", Name: "002 [extra].jpg", ThumbnailURL: "(https://ehgt.org/m/01.jpg) -100px 0"},
			{Page: 3, Key: "k003cccccc", Name: "003.jpg", ThumbnailURL: "(https://ehgt.org/m/01.jpg) -200px 0"},
		},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("mpv page mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_ParseMPV_Errors(t *testing.T) {
	p := newTestParser(t)
	fixture := loadFixture(t, "mpv.html")

	tests := []struct {
		name    string
		html    string
		wantErr error
	}{
		{"missing gid", strings.Replace(fixture, "var gid = 2000001;", "", 1), types.ErrUnexpectedLayout},
		{"bad gallery url", strings.Replace(fixture, "/g/2000001/0123456789/", "/gallery/", 1), types.ErrMalformedIdentity},
		{"missing image list", strings.Replace(fixture, "var imagelist", "var other", 1), types.ErrUnexpectedLayout},
		{"unterminated image list", strings.Replace(fixture, `-200px 0"}];`, `-200px 0"}`, 1), types.ErrUnexpectedLayout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseMPV(tt.html)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParser_ParseMPV_PageCountFallback(t *testing.T) {
	p := newTestParser(t)
	html := `<html><head><script>
var gid = 5;
var gallery_url = "https://e-hentai.org/g/5/abcdef0123/";
var imagelist = [{n:'a.jpg',k:'k1',t:'t1'},{n:'b.jpg',k:'k2',t:'t2'},];
</script></head><body></body></html>`

	page, err := p.ParseMPV(html)
	require.NoError(t, err)
	require.Equal(t, 2, page.PageCount)
	require.Len(t, page.Images, 2)
	require.Equal(t, "b.jpg", page.Images[1].Name)
}

func TestParser_ParseSinglePage(t *testing.T) {
	p := newTestParser(t)

	page, err := p.ParseSinglePage(loadFixture(t, "single.html"))
	require.NoError(t, err)

	want := &types.SinglePage{
		GID:            2000001,
		Token:          "0123456789",
		ShowKey:        "showkey01",
		Page:           5,
		TotalPages:     24,
		ImageURL:       "https://abc.hath.network/h/xyz/keystamp=1;fileindex=5/005.jpg",
		FileName:       "005.jpg",
		Dimensions:     "1280 x 1810",
		Width:          1280,
		Height:         1810,
		FileSize:       "412.3 KiB",
		OriginalWidth:  2400,
		OriginalHeight: 3394,
		OriginalSize:   "1.21 MiB",
		OriginalURL:    "https://e-hentai.org/fullimg/2000001/5/xyz/005.jpg",
		NextURL:        "https://e-hentai.org/s/fff6666666/2000001-6",
		PrevURL:        "https://e-hentai.org/s/ddd4444444/2000001-4",
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("single page mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_ParseSinglePage_NoOriginal(t *testing.T) {
	p := newTestParser(t)
	html := `<html><body><div id="i2"><div>1280 x 1810 :: 412.3 KiB</div></div>
<div id="i3"><img id="img" src="https://example.org/1.jpg"></div>
<div id="i6"><a href="#">Download original</a></div></body></html>`

	page, err := p.ParseSinglePage(html)
	require.NoError(t, err)
	require.Empty(t, page.FileName)
	require.Equal(t, 1280, page.OriginalWidth)
	require.Equal(t, 1810, page.OriginalHeight)
	require.Equal(t, "412.3 KiB", page.OriginalSize)
	require.Empty(t, page.OriginalURL)
}

func TestParser_ParseConfigForm(t *testing.T) {
	p := newTestParser(t)

	form, err := p.ParseConfigForm(loadFixture(t, "config.html"))
	require.NoError(t, err)

	require.Equal(t, "https://e-hentai.org/uconfig.php", form.Action)
	want := map[string]string{
		"apply":   "Apply",
		"uh":      "0",
		"xn_1":    "on",
		"xl_1024": "1024",
		"fv":      "Favorites",
		"empty":   "",
		"xl":      "english\njapanese",
		"dm":      "2",
		"tl":      "1",
	}
	if diff := cmp.Diff(want, form.Fields); diff != "" {
		t.Errorf("form fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_ParseConfigForm_Fallback(t *testing.T) {
	p := New(nil, Options{ConfigFormSelector: "#missing form"})

	form, err := p.ParseConfigForm(`<html><body><form><input name="a" value="1"></form></body></html>`)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1"}, form.Fields)
}

func TestParser_ParseFavoritePopup(t *testing.T) {
	p := newTestParser(t)

	popup, err := p.ParseFavoritePopup(loadFixture(t, "favorites_popup.html"))
	require.NoError(t, err)

	require.True(t, popup.Favorited)
	require.Len(t, popup.Categories, 10)
	require.Equal(t, "Favorites 0", popup.Categories[0])
	require.Equal(t, "Reading", popup.Categories[1])
	require.Equal(t, "Favorites 9", popup.Categories[9])
	require.NotNil(t, popup.Selected)
	require.Equal(t, 2, *popup.Selected)
	require.Equal(t, "check the sequel", popup.Note)
}

func TestParser_ParseFavoritePopup_NotFavorited(t *testing.T) {
	p := newTestParser(t)
	fixture := loadFixture(t, "favorites_popup.html")

	html := strings.Replace(fixture, `<div style="height:25px; cursor:pointer"><div style="float:left"><input type="radio" name="favcat" value="favdel" id="favdel"></div><div style="float:left; padding:2px 0 0 5px">Remove from Favorites</div><div class="c"></div></div>`, "", 1)
	html = strings.Replace(html, ` checked="checked"`, "", 1)

	popup, err := p.ParseFavoritePopup(html)
	require.NoError(t, err)
	require.False(t, popup.Favorited)
	require.Len(t, popup.Categories, 10)
	require.Nil(t, popup.Selected)
}

func TestParser_ParseFavoritePopup_RemoveSelected(t *testing.T) {
	p := newTestParser(t)
	fixture := loadFixture(t, "favorites_popup.html")

	html := strings.Replace(fixture, ` checked="checked"`, "", 1)
	html = strings.Replace(html, `value="favdel" id="favdel"`, `value="favdel" id="favdel" checked`, 1)

	popup, err := p.ParseFavoritePopup(html)
	require.NoError(t, err)
	require.True(t, popup.Favorited)
	require.Nil(t, popup.Selected)
}

func TestParser_ParseArchiver(t *testing.T) {
	p := newTestParser(t)

	page, err := p.ParseArchiver(loadFixture(t, "archiver.html"))
	require.NoError(t, err)

	want := &types.ArchiverPage{
		GID:   2000001,
		Token: "0123456789",
		Or:    "123456--abcdef0123",
		Hath: []types.HathOption{
			{Solution: "780", Label: "780x", Size: "3.21 MiB", Price: "Free"},
			{Solution: "org", Label: "Original", Size: "12.5 MiB", Price: "Free"},
		},
		Downloads: []types.ArchiveDownload{
			{Type: "org", Label: "Download Original Archive", Cost: "Free!", Size: "12.5 MiB"},
			{Type: "res", Label: "Download Resample Archive", Cost: "1,234 GP", Size: "5.1 MiB"},
		},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("archiver page mismatch (-want +got):\n%s", diff)
	}
}

func TestParser_ParseArchiver_MalformedTarget(t *testing.T) {
	p := newTestParser(t)
	html := `<html><body><form action="https://e-hentai.org/archiver.php?gid=abc&amp;token=x&amp;or=y"></form></body></html>`

	_, err := p.ParseArchiver(html)
	require.ErrorIs(t, err, types.ErrMalformedIdentity)
}

func TestParser_ParseArchiveResult(t *testing.T) {
	p := newTestParser(t)

	res, err := p.ParseArchiveResult(loadFixture(t, "archive_result.html"))
	require.NoError(t, err)
	require.Equal(t, "You must have a H@H client assigned to your account to use this feature.", res.Message)

	res, err = p.ParseArchiveResult(`<html><body><p>Your H@H client appears to be offline.</p></body></html>`)
	require.NoError(t, err)
	require.Equal(t, "Your H@H client appears to be offline.", res.Message)
}

func TestParser_ParseCopyrightNotice(t *testing.T) {
	p := newTestParser(t)

	notice, err := p.ParseCopyrightNotice(loadFixture(t, "copyright.html"))
	require.NoError(t, err)
	require.Equal(t, "This gallery is unavailable due to a copyright claim by Example Media. Sorry about that.", notice.Message)
}

func TestMessage(t *testing.T) {
	msg, ok := Message(&types.ArchiveResult{Message: "queued"})
	require.True(t, ok)
	require.Equal(t, "queued", msg)

	msg, ok = Message(&types.CopyrightNotice{Message: "claim"})
	require.True(t, ok)
	require.Equal(t, "claim", msg)

	_, ok = Message(&types.Gallery{})
	require.False(t, ok)
}
