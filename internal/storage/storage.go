// Package storage reads seed URLs and archives scraped products.
package storage

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

// Storage is the interface for all product storage backends.
type Storage interface {
	// Store persists a batch of products.
	Store(products []*types.Product) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New opens the backends named by cfg.ProductsType. It returns nil when
// product archiving is disabled and a MultiStorage when several are named.
func New(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	var backends []Storage
	closeAll := func() {
		for _, b := range backends {
			_ = b.Close()
		}
	}

	for _, kind := range config.ProductStores(cfg.ProductsType) {
		var (
			s   Storage
			err error
		)
		switch kind {
		case "jsonl":
			s, err = NewJSONLStorage(cfg.ProductsPath, logger)
		case "sqlite":
			s, err = NewSQLiteStorage(cfg.SQLitePath, logger)
		case "mongodb":
			s, err = NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
		default:
			err = fmt.Errorf("unknown products_type %q", kind)
		}
		if err != nil {
			closeAll()
			return nil, &types.StorageError{Backend: kind, Err: err}
		}
		backends = append(backends, s)
	}

	switch len(backends) {
	case 0:
		return nil, nil
	case 1:
		return backends[0], nil
	default:
		return NewMultiStorage(backends, logger), nil
	}
}
