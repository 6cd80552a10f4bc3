package training

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

func examples(n int, label string) []types.TrainingExample {
	out := make([]types.TrainingExample, n)
	for i := range out {
		out[i] = types.TrainingExample{
			Text:     fmt.Sprintf("%s item %d", label, i),
			Entities: []types.Entity{{Start: 0, End: len(label), Label: label}},
		}
	}
	return out
}

func TestSplitCounts(t *testing.T) {
	tests := []struct {
		n                int
		train, dev, test int
	}{
		{10, 7, 2, 1},
		{1, 1, 0, 0},
		{3, 3, 0, 0},
		{7, 5, 2, 0},
		{100, 70, 20, 10},
		{0, 0, 0, 0},
	}
	for _, tt := range tests {
		s := Split(examples(tt.n, types.LabelProduct), 0.7, 0.2, NewRand(1))
		if len(s.Train) != tt.train || len(s.Dev) != tt.dev || len(s.Test) != tt.test {
			t.Errorf("n=%d: got %d/%d/%d, want %d/%d/%d",
				tt.n, len(s.Train), len(s.Dev), len(s.Test), tt.train, tt.dev, tt.test)
		}
	}
}

func TestSplitPerLabel(t *testing.T) {
	in := append(examples(10, "PRODUCT"), examples(10, "BRAND")...)
	in = append(in, types.TrainingExample{Text: "unlabelled"})

	s := Split(in, 0.7, 0.2, NewRand(42))
	if len(s.Train) != 14 || len(s.Dev) != 4 || len(s.Test) != 2 {
		t.Fatalf("got %d/%d/%d, want 14/4/2", len(s.Train), len(s.Dev), len(s.Test))
	}
	count := map[string]int{}
	for _, ex := range s.Test {
		count[ex.Label()]++
	}
	if count["PRODUCT"] != 1 || count["BRAND"] != 1 {
		t.Errorf("test partition not stratified: %v", count)
	}
}

func TestSplitPartitionsAreDisjoint(t *testing.T) {
	in := examples(50, types.LabelProduct)
	s := Split(in, 0.7, 0.2, NewRand(7))

	seen := map[string]bool{}
	for _, part := range [][]types.TrainingExample{s.Train, s.Dev, s.Test} {
		for _, ex := range part {
			if seen[ex.Text] {
				t.Fatalf("%q appears twice", ex.Text)
			}
			seen[ex.Text] = true
		}
	}
	if len(seen) != 50 {
		t.Errorf("lost examples: %d of 50", len(seen))
	}
}

func TestSplitSeeded(t *testing.T) {
	a := Split(examples(30, types.LabelProduct), 0.7, 0.2, NewRand(99))
	b := Split(examples(30, types.LabelProduct), 0.7, 0.2, NewRand(99))
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should give the same split")
	}
}
