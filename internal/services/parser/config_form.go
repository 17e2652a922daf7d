package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/toozej/go-ehparse/internal/types"
)

// skippedInputTypes are controls that never contribute a value.
var skippedInputTypes = map[string]bool{
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
	"file":   true,
}

// ParseConfigForm serializes the settings form into a flat name to value
// map the way a browser would submit it.
func (p *Parser) ParseConfigForm(html string) (*types.ConfigForm, error) {
	doc, log, err := p.load("parse_config_form", html)
	if err != nil {
		return nil, err
	}
	root := doc.Document.Selection

	form := root.Find(p.opts.ConfigFormSelector).First()
	if form.Length() == 0 {
		form = root.Find("form").First()
	}
	if form.Length() == 0 {
		return nil, layoutError("settings form not found")
	}

	result := &types.ConfigForm{Fields: SerializeForm(form)}
	result.Action, _ = form.Attr("action")

	log.WithField("fields", len(result.Fields)).Debug("Serialized settings form")
	return result, nil
}

// SerializeForm walks the input, textarea and select controls under form.
// Checkboxes and radios count only when checked; unnamed and disabled
// controls are skipped. Later controls overwrite earlier ones of the same
// name.
func SerializeForm(form *goquery.Selection) map[string]string {
	fields := map[string]string{}
	form.Find("input, textarea, select").Each(func(_ int, ctl *goquery.Selection) {
		name, ok := ctl.Attr("name")
		if !ok || name == "" {
			return
		}
		if _, disabled := ctl.Attr("disabled"); disabled {
			return
		}

		switch goquery.NodeName(ctl) {
		case "textarea":
			fields[name] = ctl.Text()
		case "select":
			opt := ctl.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = ctl.Find("option").First()
			}
			if opt.Length() == 0 {
				return
			}
			fields[name] = optionValue(opt)
		default:
			kind := strings.ToLower(ctl.AttrOr("type", "text"))
			if skippedInputTypes[kind] {
				return
			}
			if kind == "checkbox" || kind == "radio" {
				if _, checked := ctl.Attr("checked"); !checked {
					return
				}
				fields[name] = ctl.AttrOr("value", "on")
				return
			}
			fields[name] = ctl.AttrOr("value", "")
		}
	})
	return fields
}

// optionValue is the value attribute, or the option text when absent.
func optionValue(opt *goquery.Selection) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(opt.Text())
}
