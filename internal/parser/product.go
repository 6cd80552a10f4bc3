package parser

import (
	"fmt"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// ExtractProduct parses body and extracts the product it describes.
func ExtractProduct(productURL string, body []byte) (*types.Product, error) {
	p, err := NewPage(productURL, body)
	if err != nil {
		return nil, err
	}
	return ExtractFromPage(productURL, p)
}

// ExtractFromPage combines the name, price and description extractors. It
// returns types.ErrNoProductName when no name could be derived.
func ExtractFromPage(productURL string, p *Page) (*types.Product, error) {
	name, source := ExtractName(p, productURL)
	if name == "" {
		return nil, fmt.Errorf("extract %s: %w", productURL, types.ErrNoProductName)
	}
	prices := ExtractPrices(p)
	return &types.Product{
		Name:         name,
		RegularPrice: types.StringPtr(prices.Regular),
		SalePrice:    types.StringPtr(prices.Sale),
		Description:  types.StringPtr(ExtractDescription(p)),
		URL:          productURL,
		NameSource:   source,
	}, nil
}
