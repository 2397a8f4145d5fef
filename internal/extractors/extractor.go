// Package extractors turns fetched HTML into canonical recipes.
//
// Three structured extractors are available (JSON-LD, MicroData and a CSS
// class heuristic). A Chain tries them in a configured order and the first
// success wins. When all of them reject a page, callers fall back to the
// visible text produced by VisibleLines.
package extractors

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cooklang/cooklang-import/internal/recipe"
)

// Kind identifies one structured extractor.
type Kind string

const (
	KindJSONLD    Kind = "json_ld"
	KindMicroData Kind = "microdata"
	KindHTMLClass Kind = "html_class"
)

// DefaultOrder is the accuracy-first order used when none is configured.
func DefaultOrder() []Kind {
	return []Kind{KindJSONLD, KindMicroData, KindHTMLClass}
}

// Extractor turns a parsed page into a Recipe or rejects it. Implementations
// keep no state between calls.
type Extractor interface {
	Kind() Kind
	Parse(pc *ParsingContext) (*recipe.Recipe, error)
}

// New returns the extractor for kind.
func New(kind Kind) (Extractor, error) {
	switch kind {
	case KindJSONLD:
		return JSONLDExtractor{}, nil
	case KindMicroData:
		return MicroDataExtractor{}, nil
	case KindHTMLClass:
		return HTMLClassExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor: %s", kind)
	}
}

// ParsingContext bundles everything one extraction attempt may read. It
// belongs to a single Chain.Extract call and is not safe for concurrent use.
// Extractors treat it as read-only; the only write is the memoized Text.
type ParsingContext struct {
	URL      string
	Document *goquery.Document
	// Text is optional pre-flattened page text.
	Text []string
}

// NewParsingContext parses body as HTML.
func NewParsingContext(url, body string) (*ParsingContext, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &ParsingContext{URL: url, Document: doc}, nil
}

// PageTitle returns the trimmed <title> text, if any.
func (pc *ParsingContext) PageTitle() string {
	return strings.TrimSpace(pc.Document.FindMatcher(titleSelector).First().Text())
}

// VisibleText returns the pre-flattened text. When Text is nil it is
// computed once and stored in Text, so later calls return the same slice.
func (pc *ParsingContext) VisibleText() []string {
	if pc.Text == nil && len(pc.Document.Nodes) > 0 {
		pc.Text = VisibleLines(pc.Document.Nodes[0])
	}
	return pc.Text
}
