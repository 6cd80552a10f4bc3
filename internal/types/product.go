package types

// NameSource records which extraction step produced a product name.
type NameSource string

const (
	NameFromOpenGraph NameSource = "og:title"
	NameFromSelector  NameSource = "selector"
	NameFromHeading   NameSource = "heading"
	NameFromURL       NameSource = "url"
)

// Product is one scraped product page.
type Product struct {
	Name         string     `json:"name"          bson:"name"`
	RegularPrice *string    `json:"regular_price" bson:"regular_price"`
	SalePrice    *string    `json:"sale_price"    bson:"sale_price"`
	Description  *string    `json:"description"   bson:"description"`
	URL          string     `json:"url"           bson:"url"`
	NameSource   NameSource `json:"name_source"   bson:"name_source"`
}

// Trusted reports whether the name came from page markup rather than the URL.
func (p *Product) Trusted() bool {
	return p.NameSource != NameFromURL
}

// Regular returns the regular price or "".
func (p *Product) Regular() string { return deref(p.RegularPrice) }

// Sale returns the sale price or "".
func (p *Product) Sale() string { return deref(p.SalePrice) }

// Desc returns the description or "".
func (p *Product) Desc() string { return deref(p.Description) }

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
