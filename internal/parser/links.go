package parser

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/IshaanNene/shopcrawl/internal/urlnorm"
)

var navSelectors = []string{
	"nav.nav, nav.navigation, nav.main-menu",
	"nav#main-nav",
	"nav.site-nav",
	`nav[role="navigation"]`,
}

var contentSelectors = []string{
	"div.collection-grid, div.product-grid, div.shop-grid",
	"div#collections",
	"div.collection-list",
	"div.shop-by-category",
}

var cardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)card|product-card|grid-item`),
	regexp.MustCompile(`(?i)product-item|product-grid-item`),
	regexp.MustCompile(`(?i)collection-item|product-block`),
	regexp.MustCompile(`(?i)product-thumbnail|product-info`),
}

var skippedSchemes = []string{"mailto:", "tel:", "javascript:"}

// FindCollectionPages returns the collection links found in the page's
// navigation and grid containers.
func FindCollectionPages(p *Page) []string {
	base, err := url.Parse(p.URL)
	if err != nil {
		return nil
	}
	found := make(map[string]struct{})
	scan := func(container *goquery.Selection) {
		container.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href := a.AttrOr("href", "")
			if !hasCollectionMarker(href) {
				return
			}
			if abs, ok := urlnorm.Resolve(base, href); ok {
				found[urlnorm.Normalize(abs)] = struct{}{}
			}
		})
	}
	for _, sel := range navSelectors {
		scan(p.Doc.Find(sel).First())
	}
	for _, sel := range contentSelectors {
		scan(p.Doc.Find(sel).First())
	}
	return sortedKeys(found)
}

// FindProductLinks returns the product URLs linked from card-like elements.
func FindProductLinks(p *Page) []string {
	base, err := url.Parse(p.URL)
	if err != nil {
		return nil
	}
	found := make(map[string]struct{})
	cards := p.Doc.Find("[class]")
	for _, re := range cardPatterns {
		cards.Each(func(_ int, card *goquery.Selection) {
			if !re.MatchString(card.AttrOr("class", "")) {
				return
			}
			href := strings.TrimSpace(card.Find("a[href]").First().AttrOr("href", ""))
			if href == "" || skipped(href) {
				return
			}
			abs, ok := urlnorm.Resolve(base, href)
			if ok && IsProductPage(abs) {
				found[urlnorm.Normalize(abs)] = struct{}{}
			}
		})
	}
	return sortedKeys(found)
}

func skipped(href string) bool {
	lower := strings.ToLower(href)
	for _, s := range skippedSchemes {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
