package parser

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// JSONLD returns the first application/ld+json block on the page, decoded.
// A list document yields its first element. The result is memoized; a
// malformed block returns a *types.ParseError and a nil map.
func (p *Page) JSONLD() (map[string]any, error) {
	if p.ldParsed {
		return p.ld, p.ldErr
	}
	p.ldParsed = true

	script := p.Doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return nil, nil
	}
	raw := strings.TrimSpace(script.Text())
	if raw == "" {
		return nil, nil
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		p.ldErr = &types.ParseError{URL: p.URL, Selector: "script[type=application/ld+json]", Err: err}
		return nil, p.ldErr
	}
	if list, ok := data.([]any); ok {
		if len(list) == 0 {
			return nil, nil
		}
		data = list[0]
	}
	obj, _ := data.(map[string]any)
	p.ld = productNode(obj)
	return p.ld, nil
}

// productNode picks the first Product node of a @graph document, falling
// back to the document itself.
func productNode(obj map[string]any) map[string]any {
	graph, ok := obj["@graph"].([]any)
	if !ok {
		return obj
	}
	for _, n := range graph {
		node, ok := n.(map[string]any)
		if ok && hasType(node, "Product") {
			return node
		}
	}
	return obj
}

func hasType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// first unwraps a list to its first element.
func first(v any) any {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

// scalarString renders a JSON scalar. Numbers drop trailing zeros.
func scalarString(v any) (string, bool) {
	switch x := first(v).(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	}
	return "", false
}

// ldOffers returns the offers object of the product node.
func ldOffers(ld map[string]any) map[string]any {
	offers, _ := first(ld["offers"]).(map[string]any)
	return offers
}

func ldDescription(p *Page) (string, bool) {
	ld, err := p.JSONLD()
	if err != nil || ld == nil {
		return "", false
	}
	return scalarString(ld["description"])
}
