// Package ner finds product mentions in free text.
package ner

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/IshaanNene/shopcrawl/internal/training"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

// EntityExtractor returns the distinct entity texts found in text, in
// order of first appearance.
type EntityExtractor interface {
	Extract(text string) ([]string, error)
}

// Gazetteer matches a fixed list of product names. Matching is
// case-insensitive, prefers the longest name at each position, never
// overlaps and only accepts matches on word boundaries.
type Gazetteer struct {
	// byFirst maps the first lowered rune of a name to its candidates,
	// longest first.
	byFirst map[rune][][]rune
	size    int
}

// NewGazetteer builds a gazetteer from names. Blank and duplicate names
// (ignoring case) are skipped.
func NewGazetteer(names []string) *Gazetteer {
	g := &Gazetteer{byFirst: make(map[rune][][]rune)}
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.Join(strings.Fields(name), " ")
		if name == "" {
			continue
		}
		lower := lowerRunes(name)
		key := string(lower)
		if seen[key] {
			continue
		}
		seen[key] = true
		g.byFirst[lower[0]] = append(g.byFirst[lower[0]], lower)
		g.size++
	}
	for _, bucket := range g.byFirst {
		slices.SortStableFunc(bucket, func(a, b []rune) int { return len(b) - len(a) })
	}
	return g
}

// FromExamples builds a gazetteer from the PRODUCT spans of labelled
// examples.
func FromExamples(examples []types.TrainingExample) *Gazetteer {
	var names []string
	for _, ex := range examples {
		text := []rune(ex.Text)
		for _, ent := range ex.Entities {
			if ent.Label != types.LabelProduct {
				continue
			}
			if ent.Start < 0 || ent.End > len(text) || ent.Start >= ent.End {
				continue
			}
			names = append(names, string(text[ent.Start:ent.End]))
		}
	}
	return NewGazetteer(names)
}

// LoadGazetteer reads a JSONL training file and builds a gazetteer from it.
func LoadGazetteer(path string, logger *slog.Logger) (*Gazetteer, error) {
	examples, err := training.ReadExamplesFile(path)
	if err != nil {
		return nil, fmt.Errorf("load gazetteer: %w", err)
	}
	g := FromExamples(examples)
	logger.Info("gazetteer loaded", "component", "ner", "path", path, "examples", len(examples), "names", g.Len())
	return g, nil
}

// Len returns the number of distinct names.
func (g *Gazetteer) Len() int { return g.size }

// Extract implements EntityExtractor. Results keep the casing found in text.
func (g *Gazetteer) Extract(text string) ([]string, error) {
	orig := []rune(text)
	lower := lowerRunes(text)

	var (
		out  []string
		seen = make(map[string]bool)
	)
	for i := 0; i < len(lower); {
		if i > 0 && isWordRune(lower[i-1]) {
			i++
			continue
		}
		n := g.matchAt(lower, i)
		if n == 0 {
			i++
			continue
		}
		key := string(lower[i : i+n])
		if !seen[key] {
			seen[key] = true
			out = append(out, string(orig[i:i+n]))
		}
		i += n
	}
	return out, nil
}

// matchAt returns the rune length of the longest name starting at i, or 0.
func (g *Gazetteer) matchAt(text []rune, i int) int {
	for _, cand := range g.byFirst[text[i]] {
		end := i + len(cand)
		if end > len(text) || !slices.Equal(text[i:end], cand) {
			continue
		}
		if end < len(text) && isWordRune(text[end]) && isWordRune(cand[len(cand)-1]) {
			continue
		}
		return len(cand)
	}
	return 0
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lowerRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}
