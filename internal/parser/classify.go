package parser

import (
	"net/url"
	"regexp"
	"strings"
)

// productPathPatterns are checked in order against the lowercased URL path.
var productPathPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/collections/[^/]+/products/`),
	regexp.MustCompile(`/products/`),
	regexp.MustCompile(`/product/`),
	regexp.MustCompile(`/shop/`),
	regexp.MustCompile(`/item/`),
	regexp.MustCompile(`/p/`),
	regexp.MustCompile(`/buy/`),
	regexp.MustCompile(`/furniture/`),
}

var collectionMarkers = []string{"/collections/", "/collection/", "/shop/"}

// IsProductPage reports whether the URL path follows a known product-path
// convention.
func IsProductPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, re := range productPathPatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// IsCollectionURL reports whether the URL path looks like a category listing.
func IsCollectionURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return hasCollectionMarker(strings.ToLower(u.Path))
}

func hasCollectionMarker(s string) bool {
	for _, m := range collectionMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
