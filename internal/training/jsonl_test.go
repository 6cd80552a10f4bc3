package training

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

func TestExampleWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	ew := NewExampleWriter(&buf)
	ex := &types.TrainingExample{
		Text:     "Price: Oak Chair at $99",
		Entities: []types.Entity{{Start: 6, End: 15, Label: types.LabelProduct}},
	}
	if err := ew.Write(ex); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := ew.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	want := `{"text":"Price: Oak Chair at $99","entities":[[6,15,"PRODUCT"]]}` + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
	if ew.Count() != 1 {
		t.Errorf("Count = %d", ew.Count())
	}
}

func TestReadExamples(t *testing.T) {
	in := `{"text":"Rug","entities":[[0,3,"PRODUCT"]]}

{"text":"Lamp & Shade","entities":[[0,12,"PRODUCT"]]}
`
	got, err := ReadExamples(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadExamples: %v", err)
	}
	if len(got) != 2 || got[1].Text != "Lamp & Shade" || got[1].Entities[0].End != 12 {
		t.Errorf("got %+v", got)
	}
}

func TestReadExamplesBadLine(t *testing.T) {
	in := `{"text":"Rug","entities":[[0,3,"PRODUCT"]]}
{"text":"Bad","entities":[[0,3]]}
`
	_, err := ReadExamples(strings.NewReader(in))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 error", err)
	}
}

func TestWriteSplits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "corpus")
	s := Split(examples(10, types.LabelProduct), 0.7, 0.2, NewRand(3))
	if err := WriteSplits(dir, s); err != nil {
		t.Fatalf("WriteSplits: %v", err)
	}

	for name, want := range map[string][]types.TrainingExample{
		"train.jsonl": s.Train,
		"dev.jsonl":   s.Dev,
		"test.jsonl":  s.Test,
	} {
		got, err := ReadExamplesFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s round trip mismatch", name)
		}
	}
}

func TestReadExamplesFileMissing(t *testing.T) {
	_, err := ReadExamplesFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
