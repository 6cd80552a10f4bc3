package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// priceRe requires a digit first so a bare comma or dollar sign never matches.
var priceRe = regexp.MustCompile(`\$?\d[\d,]*(?:\.\d{1,2})?`)

var productSectionRe = regexp.MustCompile(`(?i)product|item|detail`)

var priceSelectors = []string{
	".price, .product-price, .price-item",
	`[itemprop="price"]`,
	".regular-price",
	".current-price",
	".sale-price",
	"[data-product-price]",
	"#price",
}

// Prices holds the raw price strings as they appeared on the page.
type Prices struct {
	Regular string
	Sale    string
}

// priceStep refines the prices found so far.
type priceStep func(p *Page, pr *Prices)

var priceSteps = []priceStep{
	ldPrices,
	selectorPrices,
	sectionPrice,
	promoteSale,
}

// ExtractPrices runs every price step in order.
func ExtractPrices(p *Page) Prices {
	var pr Prices
	for _, step := range priceSteps {
		step(p, &pr)
	}
	return pr
}

// FindPrice returns the first price-looking token in text.
func FindPrice(text string) (string, bool) {
	m := priceRe.FindString(text)
	return m, m != ""
}

func ldPrices(p *Page, pr *Prices) {
	ld, err := p.JSONLD()
	if err != nil || ld == nil {
		return
	}
	offers := ldOffers(ld)
	if offers == nil {
		return
	}
	if v, ok := scalarString(offers["price"]); ok {
		pr.Regular = v
	}
	if v, ok := scalarString(offers["salePrice"]); ok {
		pr.Sale = v
	}
}

func selectorPrices(p *Page, pr *Prices) {
	for _, sel := range priceSelectors {
		el := p.Doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		value, ok := FindPrice(StrippedText(el))
		if !ok {
			continue
		}
		class := strings.ToLower(el.AttrOr("class", ""))
		if strings.Contains(class, "sale") || strings.Contains(class, "discount") {
			pr.Sale = value
		} else if pr.Regular == "" {
			pr.Regular = value
		}
	}
}

func sectionPrice(p *Page, pr *Prices) {
	if pr.Regular != "" {
		return
	}
	section := p.Doc.Find("[class]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return productSectionRe.MatchString(s.AttrOr("class", ""))
	}).First()
	if section.Length() == 0 {
		return
	}
	if value, ok := FindPrice(RawText(section)); ok {
		pr.Regular = value
	}
}

func promoteSale(_ *Page, pr *Prices) {
	if pr.Sale != "" && pr.Regular == "" {
		pr.Regular, pr.Sale = pr.Sale, ""
	}
}
