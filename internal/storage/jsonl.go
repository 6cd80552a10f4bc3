package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/shopcrawl/internal/types"
)

// JSONLStorage archives products as JSON Lines. Each Store call is flushed
// to disk before it returns.
type JSONLStorage struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates (or truncates) the archive at path.
func NewJSONLStorage(path string, logger *slog.Logger) (*JSONLStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create products dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create products file: %w", err)
	}

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONLStorage{
		path:   path,
		file:   f,
		buf:    buf,
		enc:    enc,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(products []*types.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if err := s.enc.Encode(p); err != nil {
			return fmt.Errorf("encode %s: %w", p.URL, err)
		}
		s.count++
	}
	return s.buf.Flush()
}

func (s *JSONLStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("products archived", "path", s.path, "count", s.count)
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return s.file.Close()
}
