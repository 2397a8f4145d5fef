package pipelines

import (
	"context"
	"strings"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/textextract"
)

// TextPipeline handles recipe text supplied by the caller.
type TextPipeline struct {
	text *textextract.Extractor
}

func NewTextPipeline(text *textextract.Extractor) *TextPipeline {
	return &TextPipeline{text: text}
}

// Extract returns the text as Components. Without extraction a leading
// frontmatter block becomes metadata and the rest passes through unchanged.
func (p *TextPipeline) Extract(ctx context.Context, text string, extract bool) (recipe.Components, error) {
	if strings.TrimSpace(text) == "" {
		return recipe.Components{}, errors.NewBuilderError("recipe text cannot be empty", "EMPTY_TEXT")
	}

	if !extract {
		return recipe.ParseDocument(text), nil
	}

	if p.text == nil {
		return recipe.Components{}, errors.NewConfigError("text extraction requires an AI provider", "NO_PROVIDER", nil)
	}
	return p.text.Extract(ctx, text, textextract.DirectInput, true)
}
