package validation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/scraper"
)

// Limits bound what a remote caller may submit.
type Limits struct {
	MaxTextLength int
	MaxImages     int
	MaxImageBytes int
}

// DefaultLimits are the limits applied by the HTTP API.
func DefaultLimits() Limits {
	return Limits{
		MaxTextLength: 100_000,
		MaxImages:     10,
		MaxImageBytes: 10 * 1024 * 1024,
	}
}

// ValidateImportRequest checks a request that arrived over the network.
// Besides the builder rules it rejects local image paths, oversized input
// and text that cannot be a recipe.
func ValidateImportRequest(req importer.Request, limits Limits) error {
	if err := req.Validate(); err != nil {
		return err
	}

	switch req.Source() {
	case importer.SourceURL:
		if err := scraper.ValidateURL(req.URL); err != nil {
			return errors.NewValidationError(
				fmt.Sprintf("invalid url %q", req.URL),
				"INVALID_URL",
				"Use an absolute http or https URL.",
			)
		}

	case importer.SourceText:
		if len(req.Text) > limits.MaxTextLength {
			return errors.NewValidationError(
				fmt.Sprintf("text is longer than %d bytes", limits.MaxTextLength),
				"TEXT_TOO_LONG",
				"Submit a single recipe.",
			)
		}
		if req.Extract {
			if result := QuickValidate(req.Text); !result.IsValid {
				return errors.NewValidationError(result.Reason, "NOT_A_RECIPE", "Include the ingredients and steps.")
			}
		}

	case importer.SourceImage:
		if len(req.Images) > limits.MaxImages {
			return errors.NewValidationError(
				fmt.Sprintf("at most %d images are allowed", limits.MaxImages),
				"TOO_MANY_IMAGES",
				"Split the upload into several imports.",
			)
		}
		for i, img := range req.Images {
			if err := validateImage(i, img, limits.MaxImageBytes); err != nil {
				return err
			}
		}
	}
	return nil
}

// RequestValidator applies ValidateImportRequest and, for text that will be
// extracted, the content check. Completer may be nil.
type RequestValidator struct {
	Limits    Limits
	Content   ContentValidationConfig
	Completer Completer
}

func (v RequestValidator) Validate(ctx context.Context, req importer.Request) error {
	if err := ValidateImportRequest(req, v.Limits); err != nil {
		return err
	}
	if req.Source() != importer.SourceText || !req.Extract || !v.Content.EnableAIValidation {
		return nil
	}

	result, err := ValidateContent(ctx, req.Text, v.Content, v.Completer)
	if err != nil {
		return err
	}
	if !result.IsValid {
		return errors.NewValidationError(result.Reason, "NOT_A_RECIPE", "Include the ingredients and steps.")
	}
	return nil
}

func validateImage(i int, img recipe.ImageSource, maxBytes int) error {
	if img.Kind != recipe.ImageBase64 {
		return errors.NewValidationError(
			fmt.Sprintf("image %d: only base64 images are accepted", i),
			"INVALID_IMAGE",
			"Send the image content base64 encoded.",
		)
	}
	data := img.Value
	if _, rest, ok := strings.Cut(data, ","); ok && strings.HasPrefix(data, "data:") {
		data = rest
	}
	if base64.StdEncoding.DecodedLen(len(data)) > maxBytes {
		return errors.NewValidationError(
			fmt.Sprintf("image %d is larger than %d bytes", i, maxBytes),
			"IMAGE_TOO_LARGE",
			"Resize the image before uploading.",
		)
	}
	if _, err := base64.StdEncoding.DecodeString(data); err != nil {
		return errors.NewValidationError(
			fmt.Sprintf("image %d is not valid base64", i),
			"INVALID_IMAGE",
			"Send the image content base64 encoded.",
		)
	}
	return nil
}
