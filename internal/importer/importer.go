// Package importer is the single entry point used by the CLI, the HTTP API
// and the worker. It validates a Request, builds the providers it needs and
// runs the matching pipeline.
package importer

import (
	"context"
	"log/slog"
	"time"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/extractors"
	"github.com/cooklang/cooklang-import/internal/metrics"
	"github.com/cooklang/cooklang-import/internal/pipelines"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/ocr"
	"github.com/cooklang/cooklang-import/internal/services/providers"
	"github.com/cooklang/cooklang-import/internal/services/scraper"
	"github.com/cooklang/cooklang-import/internal/services/textextract"
)

// Source names the kind of input of a Request.
type Source string

const (
	SourceURL   Source = "url"
	SourceText  Source = "text"
	SourceImage Source = "image"
)

// Request describes one import. Exactly one of URL, Text and Images is set.
type Request struct {
	URL    string
	Text   string
	Images []recipe.ImageSource

	// Extract asks the model to pull fields out of Text. Other sources ignore it.
	Extract bool
	// ExtractOnly skips conversion and returns Components.
	ExtractOnly bool

	// Provider, Model and APIKey select a single provider for this request.
	Provider string
	Model    string
	APIKey   string

	// Timeout overrides the configured page fetch timeout.
	Timeout time.Duration
}

// Source reports which input the request carries.
func (r Request) Source() Source {
	switch {
	case r.URL != "":
		return SourceURL
	case len(r.Images) > 0:
		return SourceImage
	default:
		return SourceText
	}
}

// Validate applies the builder rules without touching the network.
func (r Request) Validate() error {
	sources := 0
	if r.URL != "" {
		sources++
	}
	if r.Text != "" {
		sources++
	}
	if len(r.Images) > 0 {
		sources++
	}

	switch {
	case sources == 0:
		return errors.NewBuilderError("one of url, text or images is required", "NO_SOURCE")
	case sources > 1:
		return errors.NewBuilderError("only one of url, text or images may be set", "MULTIPLE_SOURCES")
	}

	if r.ExtractOnly && len(r.Images) > 0 {
		return errors.NewBuilderError("extract_only is not supported for image input", "EXTRACT_ONLY_IMAGE")
	}
	if r.ExtractOnly && r.Text != "" && !r.Extract {
		return errors.NewBuilderError("extract_only with text input requires extract", "EXTRACT_ONLY_TEXT")
	}
	if r.Timeout < 0 {
		return errors.NewBuilderError("timeout must not be negative", "INVALID_TIMEOUT")
	}
	return nil
}

// Result is the outcome of an import. Cooklang is empty for extract-only requests.
type Result struct {
	Source     Source            `json:"source"`
	Cooklang   string            `json:"cooklang,omitempty"`
	Components recipe.Components `json:"components"`
}

// Engine is what the importer needs from a provider chain.
type Engine interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Convert(ctx context.Context, content string) (string, error)
}

type Importer struct {
	cfg *config.Config

	fetcher  scraper.Fetcher
	renderer scraper.Fetcher
	reader   ocr.Reader
	engine   Engine
}

type Option func(*Importer)

// WithFetcher replaces the page fetcher.
func WithFetcher(f scraper.Fetcher) Option {
	return func(im *Importer) { im.fetcher = f }
}

// WithRenderer replaces the page renderer used by the plain-text path.
func WithRenderer(f scraper.Fetcher) Option {
	return func(im *Importer) { im.renderer = f }
}

// WithOCR replaces the image reader.
func WithOCR(r ocr.Reader) Option {
	return func(im *Importer) { im.reader = r }
}

// WithEngine replaces the provider chain built from configuration.
func WithEngine(e Engine) Option {
	return func(im *Importer) { im.engine = e }
}

func New(cfg *config.Config, opts ...Option) *Importer {
	im := &Importer{cfg: cfg}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import validates req and runs it.
func (im *Importer) Import(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	source := req.Source()

	res, err := im.run(ctx, req)

	status := "success"
	if err != nil {
		status = "failure"
		if appErr, ok := errors.As(err); ok {
			status = string(appErr.Type)
		}
		slog.Error("Import failed", "source", source, "error", err)
	} else {
		slog.Info("Import completed", "source", source, "extract_only", req.ExtractOnly, "duration_ms", time.Since(start).Milliseconds())
	}
	metrics.RecordImport(ctx, string(source), status, start)

	return res, err
}

func (im *Importer) run(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ai := im.cfg.AI
	if req.Provider != "" || req.Model != "" || req.APIKey != "" {
		name := req.Provider
		if name == "" {
			name = ai.DefaultProvider
		}
		ai = ai.WithProvider(name, req.Model, req.APIKey)
	}

	source := req.Source()
	needsEngine := !req.ExtractOnly || (req.Extract && source == SourceText)

	engine, err := im.buildEngine(ai)
	if err != nil {
		if needsEngine {
			return nil, err
		}
		// URL extract-only imports still work without a provider; they just
		// lose the plain-text path.
		slog.Debug("No AI provider available, plain-text extraction disabled", "error", err)
	}

	var text *textextract.Extractor
	if engine != nil {
		completer, err := im.extractionCompleter(ai, engine)
		if err != nil {
			return nil, err
		}
		text = textextract.New(completer)
	}

	var components recipe.Components
	switch source {
	case SourceURL:
		chain, err := extractors.NewChain(ai.ExtractorOrder())
		if err != nil {
			return nil, err
		}
		timeout := req.Timeout
		if timeout == 0 {
			timeout = im.cfg.FetchTimeout()
		}
		components, err = pipelines.NewURLPipeline(im.pageFetcher(timeout), chain, im.pageRenderer(timeout), text).Extract(ctx, req.URL)
		if err != nil {
			return nil, err
		}
	case SourceText:
		components, err = pipelines.NewTextPipeline(text).Extract(ctx, req.Text, req.Extract)
		if err != nil {
			return nil, err
		}
	case SourceImage:
		reader, err := im.imageReader()
		if err != nil {
			return nil, err
		}
		components, err = pipelines.NewImagePipeline(reader).Extract(ctx, req.Images)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{Source: source, Components: components}
	if req.ExtractOnly {
		return res, nil
	}

	res.Cooklang, err = pipelines.Convert(ctx, engine, components)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (im *Importer) buildEngine(ai config.AIConfig) (Engine, error) {
	if im.engine != nil {
		return im.engine, nil
	}
	engine, err := providers.FromConfig(ai)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// extractionCompleter returns the dedicated extraction provider when one is
// configured, otherwise the conversion engine.
func (im *Importer) extractionCompleter(ai config.AIConfig, engine Engine) (textextract.Completer, error) {
	if im.engine != nil || ai.Extraction.Provider == "" {
		return engine, nil
	}
	return providers.ForExtraction(ai)
}

func (im *Importer) pageFetcher(timeout time.Duration) scraper.Fetcher {
	if im.fetcher != nil {
		return im.fetcher
	}
	return scraper.NewRequestFetcher(timeout)
}

func (im *Importer) pageRenderer(timeout time.Duration) scraper.Fetcher {
	if im.renderer != nil {
		return im.renderer
	}
	if im.cfg.PageScriberURL == "" {
		return nil
	}
	return scraper.NewPageScriber(im.cfg.PageScriberURL, timeout)
}

func (im *Importer) imageReader() (ocr.Reader, error) {
	if im.reader != nil {
		return im.reader, nil
	}
	return ocr.NewVision(im.cfg.GoogleVisionKey, "")
}
