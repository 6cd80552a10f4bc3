package pipeline

import (
	"errors"
	"log/slog"

	"github.com/IshaanNene/shopcrawl/internal/config"
	"github.com/IshaanNene/shopcrawl/internal/types"
)

// ErrDropped is wrapped in the *types.PipelineError returned for a product
// that a middleware filtered out.
var ErrDropped = errors.New("product dropped")

// Middleware processes a product and returns the (possibly modified) product.
// Return nil to drop the product from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a product. Return nil to drop it.
	Process(p *types.Product) (*types.Product, error)
}

// Pipeline chains middleware processors together.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// FromConfig builds the standard product chain: cleanup, the configured
// filters, then de-duplication by URL.
func FromConfig(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	p := New(logger)
	p.Use(&TrimMiddleware{})
	p.Use(NewWhitespaceMiddleware())
	p.Use(&RequireNameMiddleware{})
	if cfg.RequireTrustedName {
		p.Use(&TrustedNameMiddleware{})
	}
	if cfg.RequirePrice {
		p.Use(&RequirePriceMiddleware{})
	}
	p.Use(NewDedupMiddleware())
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the product through all middleware in order. A dropped
// product yields a *types.PipelineError wrapping ErrDropped.
func (p *Pipeline) Process(prod *types.Product) (*types.Product, error) {
	current := prod

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{Stage: mw.Name(), Product: current, Err: err}
		}
		if result == nil {
			p.logger.Debug("product dropped", "stage", mw.Name(), "url", prod.URL)
			return nil, &types.PipelineError{Stage: mw.Name(), Product: current, Err: ErrDropped}
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}
