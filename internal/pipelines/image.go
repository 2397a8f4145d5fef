package pipelines

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/ocr"
	"github.com/cooklang/cooklang-import/internal/utils"
)

// maxConcurrentReads bounds parallel OCR calls per import.
const maxConcurrentReads = 4

// ImagePipeline reads recipe text from one or more images.
type ImagePipeline struct {
	reader ocr.Reader
}

func NewImagePipeline(reader ocr.Reader) *ImagePipeline {
	return &ImagePipeline{reader: reader}
}

// Extract runs OCR on every image, a few at a time, keeping input order. Texts are separated by a blank
// line and the source metadata lists each image.
func (p *ImagePipeline) Extract(ctx context.Context, images []recipe.ImageSource) (recipe.Components, error) {
	if len(images) == 0 {
		return recipe.Components{}, errors.NewBuilderError("at least one image is required", "NO_IMAGES")
	}

	texts, err := utils.MapOrdered(ctx, images, maxConcurrentReads, func(ctx context.Context, i int, img recipe.ImageSource) (string, error) {
		text, err := p.reader.Read(ctx, img)
		if err != nil {
			return "", err
		}
		slog.Debug("Image read", "index", i, "source", img.Label(), "chars", len(text))
		return text, nil
	})
	if err != nil {
		return recipe.Components{}, err
	}

	sources := make([]string, len(images))
	for i, img := range images {
		sources[i] = img.Label()
	}

	return recipe.Components{
		Text:     strings.Join(texts, "\n\n"),
		Metadata: "source: " + strings.Join(sources, ", "),
	}, nil
}
