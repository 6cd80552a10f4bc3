package parser

import (
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

var nameSelectors = []string{
	".product-title, .product-name, .product__title",
	"#product-title",
	`[itemprop="name"]`,
	".product-single__title",
	"[data-product-title]",
}

var headingClasses = map[string]bool{"product-title": true, "title": true, "name": true}

// nameCascade excludes the URL fallback, which needs the product URL.
var nameCascade = func() Cascade {
	c := Cascade{metaProperty(string(types.NameFromOpenGraph), "og:title")}
	c = append(c, selectorList(string(types.NameFromSelector), nameSelectors)...)
	return append(c, Strategy{Source: string(types.NameFromHeading), Extract: headingName})
}()

// headingName finds the first <h1> carrying a product-ish class token.
func headingName(p *Page) (string, bool) {
	for _, h1 := range htmlquery.Find(p.Root(), "//h1[@class]") {
		for _, class := range strings.Fields(htmlquery.SelectAttr(h1, "class")) {
			if headingClasses[class] {
				text := nodeText(h1, "", true)
				return text, text != ""
			}
		}
	}
	return "", false
}

// NameFromURL derives a display name from the last path segment.
func NameFromURL(productURL string) string {
	segs := strings.Split(productURL, "/")
	last := segs[len(segs)-1]
	if raw, err := url.PathUnescape(last); err == nil {
		last = raw
	}
	last = strings.NewReplacer("-", " ", "_", " ").Replace(last)
	return cases.Title(language.English).String(last)
}

// ExtractName always yields a name; the URL fallback may be empty when the
// URL has no usable last segment.
func ExtractName(p *Page, productURL string) (string, types.NameSource) {
	if v, src, ok := nameCascade.Run(p); ok {
		return v, types.NameSource(src)
	}
	return strings.TrimSpace(NameFromURL(productURL)), types.NameFromURL
}
