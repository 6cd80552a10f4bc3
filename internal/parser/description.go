package parser

var descriptionSelectors = []string{
	".product-description, .description, .product__description",
	"#product-description",
	`[itemprop="description"]`,
	".product-single__description",
	"[data-product-description]",
}

var descriptionCascade = func() Cascade {
	c := Cascade{
		metaProperty("og:description", "og:description"),
		{Source: "json-ld", Extract: ldDescription},
	}
	c = append(c, selectorList("selector", descriptionSelectors)...)
	return append(c, firstText("paragraph", "p"))
}()

// ExtractDescription returns "" when no step matched.
func ExtractDescription(p *Page) string {
	v, _, _ := descriptionCascade.Run(p)
	return v
}
