// Package pipelines assembles fetch, extraction and conversion for each kind
// of recipe source.
package pipelines

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/extractors"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/scraper"
	"github.com/cooklang/cooklang-import/internal/services/textextract"
)

// URLPipeline turns a web page into Components.
type URLPipeline struct {
	fetcher scraper.Fetcher
	chain   *extractors.Chain
	// renderer supplies page text for the plain-text path. Optional.
	renderer scraper.Fetcher
	// text extracts fields from page text. Without it the plain-text path is off.
	text *textextract.Extractor
}

func NewURLPipeline(fetcher scraper.Fetcher, chain *extractors.Chain, renderer scraper.Fetcher, text *textextract.Extractor) *URLPipeline {
	return &URLPipeline{fetcher: fetcher, chain: chain, renderer: renderer, text: text}
}

// Extract fetches pageURL and runs the extraction chain, falling back to the
// plain-text path when no structured extractor accepts the page.
func (p *URLPipeline) Extract(ctx context.Context, pageURL string) (recipe.Components, error) {
	body, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return recipe.Components{}, err
	}

	pc, err := extractors.NewParsingContext(pageURL, body)
	if err != nil {
		return recipe.Components{}, errors.NewExtractionError("failed to parse page", "INVALID_HTML", err)
	}

	slog.Debug("Running extractors", "url", pageURL, "order", p.chain.Kinds())
	r, kind, err := p.chain.Extract(ctx, pc)
	if err == nil {
		slog.Info("Recipe extracted from page", "url", pageURL, "extractor", kind)
		return r.Components(), nil
	}

	if p.text == nil {
		return recipe.Components{}, err
	}

	slog.Info("No structured recipe found, using plain-text extraction", "url", pageURL)
	return p.plainText(ctx, pc)
}

func (p *URLPipeline) plainText(ctx context.Context, pc *extractors.ParsingContext) (recipe.Components, error) {
	var text string
	if p.renderer != nil {
		rendered, err := p.renderer.Fetch(ctx, pc.URL)
		if err != nil {
			return recipe.Components{}, err
		}
		text = rendered
	} else {
		text = strings.Join(pc.VisibleText(), "\n")
	}

	if strings.TrimSpace(text) == "" {
		return recipe.Components{}, errors.NewExtractionError("page has no visible text", "EMPTY_PAGE", nil)
	}

	c, err := p.text.Extract(ctx, text, pc.URL, false)
	if err != nil {
		return recipe.Components{}, err
	}
	if c.Name == "" {
		c.Name = pc.PageTitle()
	}
	return c, nil
}
