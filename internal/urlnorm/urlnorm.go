// Package urlnorm canonicalizes URLs for visited-set keys and groups them by
// registrable domain.
package urlnorm

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Normalize reduces a URL to scheme://host/path with no trailing slash.
// Query string and fragment are dropped, so two links that differ only by
// query parameters share a key. Unparseable input is cut at the first '?' or
// '#' instead of failing.
func Normalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		s := rawURL
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
		return strings.TrimRight(s, "/")
	}
	clean := u.Scheme + "://" + u.Host + u.EscapedPath()
	return strings.TrimRight(clean, "/")
}

// Resolve resolves href against base and normalizes the result.
// ok is false when either URL cannot be parsed.
func Resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	return Normalize(base.ResolveReference(ref).String()), true
}

// RegistrableDomain returns the eTLD+1 of the URL's host, for example
// "example.co.uk" for https://shop.example.co.uk/p/1. IP literals and hosts
// without a public suffix are returned as-is.
func RegistrableDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" || net.ParseIP(host) != nil {
		return host
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// DomainGroup is the list of seed URLs sharing one registrable domain.
type DomainGroup struct {
	Domain string
	Seeds  []string
}

// GroupByDomain partitions seeds by registrable domain. Groups are returned
// in the order their domain first appears; seeds keep their input order.
func GroupByDomain(seeds []string) []DomainGroup {
	index := make(map[string]int)
	var groups []DomainGroup
	for _, seed := range seeds {
		domain := RegistrableDomain(seed)
		i, ok := index[domain]
		if !ok {
			i = len(groups)
			index[domain] = i
			groups = append(groups, DomainGroup{Domain: domain})
		}
		groups[i].Seeds = append(groups[i].Seeds, seed)
	}
	return groups
}
