package urlnorm

import (
	"net/url"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://shop.example.com/collections/chairs/", "https://shop.example.com/collections/chairs"},
		{"https://shop.example.com/products/oak?variant=12#reviews", "https://shop.example.com/products/oak"},
		{"https://shop.example.com/", "https://shop.example.com"},
		{"https://shop.example.com", "https://shop.example.com"},
		{"http://Example.com:8080/a//", "http://Example.com:8080/a"},
		{"https://example.com/a%20b", "https://example.com/a%20b"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeProperties(t *testing.T) {
	inputs := []string{
		"https://shop.example.com/collections/chairs/?page=2",
		"https://example.com/products/table#top",
		"https://example.com/?q=1",
		"not a url at all/?x=1#frag",
		"://broken/path/",
		"https://example.com/a%20b/c/",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.HasSuffix(once, "/") {
			t.Errorf("Normalize(%q) = %q has trailing slash", in, once)
		}
		if strings.ContainsAny(once, "?#") {
			t.Errorf("Normalize(%q) = %q kept query or fragment", in, once)
		}
	}
}

func TestResolve(t *testing.T) {
	base, _ := url.Parse("https://shop.example.com/collections/chairs")
	got, ok := Resolve(base, "../products/oak-chair/?ref=grid")
	if !ok {
		t.Fatal("expected resolve to succeed")
	}
	if want := "https://shop.example.com/products/oak-chair"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://shop.example.co.uk/products/x", "example.co.uk"},
		{"https://www.example.com/", "example.com"},
		{"https://example.com:8443/p/1", "example.com"},
		{"http://127.0.0.1:8080/shop/", "127.0.0.1"},
		{"http://localhost/", "localhost"},
	}
	for _, tt := range tests {
		if got := RegistrableDomain(tt.in); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGroupByDomain(t *testing.T) {
	groups := GroupByDomain([]string{
		"https://www.alpha.com/collections/a",
		"https://beta.com/shop/",
		"https://shop.alpha.com/collections/b",
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Domain != "alpha.com" || len(groups[0].Seeds) != 2 {
		t.Errorf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Domain != "beta.com" {
		t.Errorf("unexpected second group: %+v", groups[1])
	}
}
