package pipelines

import (
	"context"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/recipe"
)

// Converter rewrites a recipe document as Cooklang.
type Converter interface {
	Convert(ctx context.Context, content string) (string, error)
}

// Convert renders c with its frontmatter and hands it to conv.
func Convert(ctx context.Context, conv Converter, c recipe.Components) (string, error) {
	out, err := conv.Convert(ctx, c.Frontmatter())
	if err != nil {
		if _, ok := errors.As(err); ok {
			return "", err
		}
		return "", errors.NewConversionError("conversion failed", "CONVERSION_FAILED", err)
	}
	return out, nil
}
