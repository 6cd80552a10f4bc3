package training

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

const maxLineSize = 4 * 1024 * 1024

// ReadExamples decodes one TrainingExample per non-blank line.
func ReadExamples(r io.Reader) ([]types.TrainingExample, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []types.TrainingExample
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var ex types.TrainingExample
		if err := json.Unmarshal(raw, &ex); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, ex)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read examples: %w", err)
	}
	return out, nil
}

// ReadExamplesFile reads a JSONL file of examples.
func ReadExamplesFile(path string) ([]types.TrainingExample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadExamples(f)
}

// ExampleWriter writes examples as JSON Lines.
type ExampleWriter struct {
	w     *bufio.Writer
	enc   *json.Encoder
	count int
}

// NewExampleWriter wraps w.
func NewExampleWriter(w io.Writer) *ExampleWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &ExampleWriter{w: bw, enc: enc}
}

// Write encodes one example on its own line.
func (ew *ExampleWriter) Write(ex *types.TrainingExample) error {
	if err := ew.enc.Encode(ex); err != nil {
		return err
	}
	ew.count++
	return nil
}

// Count returns the number of examples written.
func (ew *ExampleWriter) Count() int { return ew.count }

// Flush writes any buffered data.
func (ew *ExampleWriter) Flush() error { return ew.w.Flush() }

// WriteExamplesFile replaces path with the given examples.
func WriteExamplesFile(path string, examples []types.TrainingExample) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	ew := NewExampleWriter(f)
	for i := range examples {
		if err := ew.Write(&examples[i]); err != nil {
			f.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if err := ew.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// WriteSplits writes train.jsonl, dev.jsonl and test.jsonl into dir.
func WriteSplits(dir string, s Splits) error {
	parts := []struct {
		name     string
		examples []types.TrainingExample
	}{
		{"train.jsonl", s.Train},
		{"dev.jsonl", s.Dev},
		{"test.jsonl", s.Test},
	}
	for _, p := range parts {
		if err := WriteExamplesFile(filepath.Join(dir, p.name), p.examples); err != nil {
			return err
		}
	}
	return nil
}
