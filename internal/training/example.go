// Package training turns scraped products into labelled NER examples and
// partitions them into train, dev and test sets.
package training

import (
	"fmt"
	"unicode"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// Sentence renders the context sentence for a product. The template depends
// on which optional fields are present.
func Sentence(p *types.Product) string {
	regular, sale, desc := p.Regular(), p.Sale(), p.Desc()
	switch {
	case desc != "":
		return fmt.Sprintf("%s: %s", p.Name, desc)
	case sale != "" && regular != "":
		return fmt.Sprintf("Special offer: %s now %s (was %s)", p.Name, sale, regular)
	case sale != "":
		return fmt.Sprintf("Sale: %s for %s", p.Name, sale)
	case regular != "":
		return fmt.Sprintf("Price: %s at %s", p.Name, regular)
	default:
		return p.Name
	}
}

// GenerateExample labels the first case-insensitive occurrence of the
// product name in its context sentence. Offsets count characters, not bytes.
// It reports false when the name is empty or cannot be located.
func GenerateExample(p *types.Product) (*types.TrainingExample, bool) {
	if p == nil || p.Name == "" {
		return nil, false
	}
	text := Sentence(p)
	start := IndexFold(text, p.Name)
	if start < 0 {
		return nil, false
	}
	return &types.TrainingExample{
		Text: text,
		Entities: []types.Entity{{
			Start: start,
			End:   start + len([]rune(p.Name)),
			Label: types.LabelProduct,
		}},
	}, true
}

// IndexFold returns the rune offset of the first case-insensitive
// occurrence of substr in s, or -1.
func IndexFold(s, substr string) int {
	hay := lowerRunes(s)
	needle := lowerRunes(substr)
	if len(needle) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, r := range needle {
			if hay[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

func lowerRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}
