package parser

import (
	"strings"
)

// Strategy is one step of an extraction cascade. Extract must not mutate the
// page and reports ok=false to let the next step run.
type Strategy struct {
	Source  string
	Extract func(p *Page) (string, bool)
}

// Cascade is an ordered list of strategies; the first success wins.
type Cascade []Strategy

// Run returns the first successful value and the source of the step that
// produced it.
func (c Cascade) Run(p *Page) (value, source string, ok bool) {
	for _, s := range c {
		if v, ok := s.Extract(p); ok {
			return v, s.Source, true
		}
	}
	return "", "", false
}

// metaProperty reads the content of the first <meta property=...> tag.
func metaProperty(source, property string) Strategy {
	return Strategy{
		Source: source,
		Extract: func(p *Page) (string, bool) {
			content, _ := p.Doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
			content = strings.TrimSpace(content)
			return content, content != ""
		},
	}
}

// firstText reads the stripped text of the first element matching selector.
func firstText(source, selector string) Strategy {
	return Strategy{
		Source: source,
		Extract: func(p *Page) (string, bool) {
			text := StrippedText(p.Doc.Find(selector).First())
			return text, text != ""
		},
	}
}

// selectorList expands a selector list into one strategy per selector.
func selectorList(source string, selectors []string) []Strategy {
	out := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		out = append(out, firstText(source, sel))
	}
	return out
}
