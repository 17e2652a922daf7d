package loader

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/toozej/go-ehparse/internal/types"
)

func newTestLoader() *GoqueryLoader {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewGoqueryLoader(logger)
}

func TestNewGoqueryLoader(t *testing.T) {
	l := NewGoqueryLoader(nil)
	if l == nil || l.logger == nil {
		t.Fatal("NewGoqueryLoader(nil) should substitute a logger")
	}
}

func TestGoqueryLoader_Load(t *testing.T) {
	l := newTestLoader()

	tests := []struct {
		name    string
		html    string
		wantErr error
		wantH1  string
	}{
		{"complete document", `<html><body><h1 id="gn">Title</h1></body></html>`, nil, "Title"},
		{"fragment", `<h1 id="gn">Fragment</h1>`, nil, "Fragment"},
		{"unbalanced", `<div><h1 id="gn">Broken<div></span>`, nil, "Broken"},
		{"empty", "", types.ErrEmptyDocument, ""},
		{"whitespace", " \n\t ", types.ErrEmptyDocument, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := l.Load(tt.html)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error = %v", err)
			}
			if got := doc.Find("#gn").Text(); got != tt.wantH1 {
				t.Errorf("#gn text = %q, want %q", got, tt.wantH1)
			}
			if doc.Charset != "utf-8" {
				t.Errorf("Charset = %q, want utf-8", doc.Charset)
			}
		})
	}
}

func TestGoqueryLoader_LoadBytes(t *testing.T) {
	l := newTestLoader()

	t.Run("utf-8 without declaration", func(t *testing.T) {
		doc, err := l.LoadBytes([]byte("<p>café</p>"), "")
		if err != nil {
			t.Fatalf("LoadBytes() error = %v", err)
		}
		if got := doc.Find("p").Text(); got != "café" {
			t.Errorf("text = %q", got)
		}
		if doc.Charset != "utf-8" {
			t.Errorf("Charset = %q, want utf-8", doc.Charset)
		}
	})

	t.Run("latin-1 from content type", func(t *testing.T) {
		doc, err := l.LoadBytes([]byte("<p>caf\xe9</p>"), "text/html; charset=iso-8859-1")
		if err != nil {
			t.Fatalf("LoadBytes() error = %v", err)
		}
		if got := doc.Find("p").Text(); got != "café" {
			t.Errorf("text = %q, want decoded e-acute", got)
		}
		if doc.Charset == "utf-8" {
			t.Error("Charset should reflect the declared encoding")
		}
	})

	t.Run("empty", func(t *testing.T) {
		if _, err := l.LoadBytes([]byte("  "), ""); !errors.Is(err, types.ErrEmptyDocument) {
			t.Errorf("LoadBytes() error = %v, want ErrEmptyDocument", err)
		}
	})
}

func TestGoqueryLoader_ValidateSelector(t *testing.T) {
	l := newTestLoader()

	valid := []string{"", "#gdd tr:nth-child(2) td.gdt2", ".gl3e > .ir", `form[action*="archiver.php"]`, "#i6 a, #i7 a"}
	for _, sel := range valid {
		if err := l.ValidateSelector(sel); err != nil {
			t.Errorf("ValidateSelector(%q) error = %v", sel, err)
		}
	}
	if err := l.ValidateSelector("div[["); err == nil {
		t.Error("ValidateSelector() accepted an invalid selector")
	}
}

func TestGoqueryLoader_Decode(t *testing.T) {
	l := newTestLoader()

	tests := []struct {
		name        string
		body        []byte
		contentType string
		want        string
		wantUTF8    bool
	}{
		{"plain utf-8", []byte("<p>naïve</p>"), "text/html", "<p>naïve</p>", true},
		{"meta declared latin-1", []byte("<meta charset=\"iso-8859-1\"><p>na\xefve</p>"), "", `<meta charset="iso-8859-1"><p>naïve</p>`, false},
		{"header wins", []byte("<p>\xe9</p>"), "text/html; charset=windows-1252", "<p>é</p>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, name, err := l.Decode(tt.body, tt.contentType)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %q, want %q", got, tt.want)
			}
			if (name == "utf-8") != tt.wantUTF8 {
				t.Errorf("Decode() charset = %q", name)
			}
		})
	}

	if _, _, err := l.Decode(nil, ""); !errors.Is(err, types.ErrEmptyDocument) {
		t.Errorf("Decode(nil) error = %v, want ErrEmptyDocument", err)
	}
}
