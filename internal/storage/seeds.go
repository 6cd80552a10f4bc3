package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadSeeds reads a headerless CSV whose first column holds seed URLs.
// Blank rows are skipped.
func ReadSeeds(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var seeds []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seeds: %w", err)
		}
		if len(rec) == 0 {
			continue
		}
		if u := strings.TrimSpace(rec[0]); u != "" {
			seeds = append(seeds, u)
		}
	}
	return seeds, nil
}

// ReadSeedsFile reads seeds from a CSV file.
func ReadSeedsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds: %w", err)
	}
	defer f.Close()
	return ReadSeeds(f)
}
