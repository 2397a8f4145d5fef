package extractors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/metrics"
	"github.com/cooklang/cooklang-import/internal/recipe"
)

// Chain runs structured extractors strictly in order. The first success is
// returned as is; results are never merged across extractors.
type Chain struct {
	extractors []Extractor
}

// NewChain builds a chain from extractor identifiers. An empty order means
// DefaultOrder.
func NewChain(order []string) (*Chain, error) {
	kinds := DefaultOrder()
	if len(order) > 0 {
		kinds = make([]Kind, len(order))
		for i, name := range order {
			kinds[i] = Kind(name)
		}
	}

	c := &Chain{}
	for _, k := range kinds {
		e, err := New(k)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid extractor order", "INVALID_EXTRACTOR", err)
		}
		c.extractors = append(c.extractors, e)
	}
	return c, nil
}

// NewChainOf builds a chain from ready extractors.
func NewChainOf(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// Kinds lists the chain order.
func (c *Chain) Kinds() []Kind {
	kinds := make([]Kind, len(c.extractors))
	for i, e := range c.extractors {
		kinds[i] = e.Kind()
	}
	return kinds
}

// Extract returns the recipe from the first extractor that accepts the page
// along with that extractor's kind. When every extractor rejects it the
// error is a NO_EXTRACTOR_MATCHED AppError carrying each rejection.
func (c *Chain) Extract(ctx context.Context, pc *ParsingContext) (*recipe.Recipe, Kind, error) {
	var rejections []error
	for _, e := range c.extractors {
		r, err := e.Parse(pc)
		if err == nil {
			metrics.RecordExtractorAttempt(ctx, string(e.Kind()), "success")
			slog.DebugContext(ctx, "Extractor matched", "extractor", e.Kind(), "url", pc.URL)
			return r, e.Kind(), nil
		}
		metrics.RecordExtractorAttempt(ctx, string(e.Kind()), "rejected")
		slog.DebugContext(ctx, "Extractor rejected page", "extractor", e.Kind(), "url", pc.URL, "error", err)
		rejections = append(rejections, fmt.Errorf("%s: %w", e.Kind(), err))
	}
	return nil, "", apperrors.NewNoExtractorMatchedError(errors.Join(rejections...))
}
