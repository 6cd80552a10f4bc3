package pipeline

import (
	"html"
	"strings"
	"sync"

	"github.com/IshaanNene/shopcrawl/internal/types"
	"github.com/IshaanNene/shopcrawl/internal/urlnorm"
)

// TrimMiddleware trims surrounding whitespace; optional fields left empty
// become nil.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(p *types.Product) (*types.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.RegularPrice = trimPtr(p.RegularPrice)
	p.SalePrice = trimPtr(p.SalePrice)
	p.Description = trimPtr(p.Description)
	return p, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return types.StringPtr(strings.TrimSpace(*s))
}

// WhitespaceMiddleware decodes HTML entities and collapses runs of
// whitespace in the name and description.
type WhitespaceMiddleware struct {
	replacer *strings.Replacer
}

func NewWhitespaceMiddleware() *WhitespaceMiddleware {
	return &WhitespaceMiddleware{
		replacer: strings.NewReplacer("\u00a0", " ", "\u200b", ""),
	}
}

func (m *WhitespaceMiddleware) Name() string { return "whitespace" }

func (m *WhitespaceMiddleware) Process(p *types.Product) (*types.Product, error) {
	p.Name = m.clean(p.Name)
	if p.Description != nil {
		p.Description = types.StringPtr(m.clean(*p.Description))
	}
	return p, nil
}

func (m *WhitespaceMiddleware) clean(s string) string {
	s = m.replacer.Replace(html.UnescapeString(s))
	return strings.Join(strings.Fields(s), " ")
}

// RequireNameMiddleware drops products without a name.
type RequireNameMiddleware struct{}

func (m *RequireNameMiddleware) Name() string { return "require_name" }

func (m *RequireNameMiddleware) Process(p *types.Product) (*types.Product, error) {
	if p.Name == "" {
		return nil, nil
	}
	return p, nil
}

// TrustedNameMiddleware drops products whose name was derived from the URL
// rather than found in the page.
type TrustedNameMiddleware struct{}

func (m *TrustedNameMiddleware) Name() string { return "trusted_name" }

func (m *TrustedNameMiddleware) Process(p *types.Product) (*types.Product, error) {
	if !p.Trusted() {
		return nil, nil
	}
	return p, nil
}

// RequirePriceMiddleware drops products with neither a regular nor a sale price.
type RequirePriceMiddleware struct{}

func (m *RequirePriceMiddleware) Name() string { return "require_price" }

func (m *RequirePriceMiddleware) Process(p *types.Product) (*types.Product, error) {
	if p.Regular() == "" && p.Sale() == "" {
		return nil, nil
	}
	return p, nil
}

// DedupMiddleware drops products whose normalized URL was already seen.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(p *types.Product) (*types.Product, error) {
	key := urlnorm.Normalize(p.URL)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[key]; exists {
		return nil, nil
	}
	m.seen[key] = struct{}{}
	return p, nil
}
