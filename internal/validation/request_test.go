package validation

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/recipe"
)

func TestValidateImportRequest(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("fake png bytes"))
	limits := Limits{MaxTextLength: 200, MaxImages: 2, MaxImageBytes: 64}

	tests := []struct {
		name     string
		req      importer.Request
		wantCode string
	}{
		{"url ok", importer.Request{URL: "https://example.com/pie"}, ""},
		{"url without scheme", importer.Request{URL: "example.com/pie"}, "INVALID_URL"},
		{"no source", importer.Request{}, "NO_SOURCE"},
		{"text passthrough", importer.Request{Text: ">> servings: 2\n\nMix @flour{200%g}."}, ""},
		{"text too long", importer.Request{Text: strings.Repeat("a", 201)}, "TEXT_TOO_LONG"},
		{"extract short text", importer.Request{Text: "hello", Extract: true}, "NOT_A_RECIPE"},
		{"extract recipe text", importer.Request{Text: "Mix 2 cups flour with sugar, then bake for 20 minutes.", Extract: true}, ""},
		{"base64 image", importer.Request{Images: []recipe.ImageSource{recipe.Base64Image(png)}}, ""},
		{"data uri image", importer.Request{Images: []recipe.ImageSource{recipe.Base64Image("data:image/png;base64," + png)}}, ""},
		{"path image", importer.Request{Images: []recipe.ImageSource{recipe.PathImage("/etc/passwd")}}, "INVALID_IMAGE"},
		{"bad base64", importer.Request{Images: []recipe.ImageSource{recipe.Base64Image("!!!")}}, "INVALID_IMAGE"},
		{"too many images", importer.Request{Images: []recipe.ImageSource{
			recipe.Base64Image(png), recipe.Base64Image(png), recipe.Base64Image(png),
		}}, "TOO_MANY_IMAGES"},
		{"image too large", importer.Request{Images: []recipe.ImageSource{
			recipe.Base64Image(base64.StdEncoding.EncodeToString(make([]byte, 100))),
		}}, "IMAGE_TOO_LARGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImportRequest(tt.req, limits)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			appErr, ok := errors.As(err)
			if assert.True(t, ok, "expected AppError, got %v", err) {
				assert.Equal(t, tt.wantCode, appErr.Code())
			}
		})
	}
}

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	assert.Equal(t, 10, l.MaxImages)
	assert.Greater(t, l.MaxTextLength, 0)
}

func TestRequestValidator_ContentCheck(t *testing.T) {
	noKeywords := "This is a long description that does not have any of the common things we are searching for."
	notRecipe := func(ctx context.Context, system, user string) (string, error) {
		return `{"has_recipe": false, "confidence": "high", "reason": "No food mentioned", "missing": ["ingredients"]}`, nil
	}

	t.Run("weak text rejected by the model", func(t *testing.T) {
		mock := &mockCompleter{completeFunc: notRecipe}
		v := RequestValidator{Limits: DefaultLimits(), Content: ContentValidationConfig{EnableAIValidation: true}, Completer: mock}

		err := v.Validate(context.Background(), importer.Request{Text: noKeywords, Extract: true})
		appErr, ok := errors.As(err)
		require.True(t, ok, "expected AppError, got %v", err)
		assert.Equal(t, "NOT_A_RECIPE", appErr.Code())
		assert.Contains(t, appErr.Message, "No food mentioned")
		assert.Equal(t, 1, mock.calls)
	})

	t.Run("disabled check leaves weak text alone", func(t *testing.T) {
		mock := &mockCompleter{completeFunc: notRecipe}
		v := RequestValidator{Limits: DefaultLimits(), Completer: mock}

		assert.NoError(t, v.Validate(context.Background(), importer.Request{Text: noKeywords, Extract: true}))
		assert.Equal(t, 0, mock.calls)
	})

	t.Run("keyword text skips the model", func(t *testing.T) {
		mock := &mockCompleter{completeFunc: notRecipe}
		v := RequestValidator{Limits: DefaultLimits(), Content: ContentValidationConfig{EnableAIValidation: true}, Completer: mock}

		req := importer.Request{Text: "Mix 2 cups flour with sugar, then bake for 20 minutes.", Extract: true}
		assert.NoError(t, v.Validate(context.Background(), req))
		assert.Equal(t, 0, mock.calls)
	})

	t.Run("text without extract is not checked", func(t *testing.T) {
		mock := &mockCompleter{completeFunc: notRecipe}
		v := RequestValidator{Limits: DefaultLimits(), Content: ContentValidationConfig{EnableAIValidation: true}, Completer: mock}

		assert.NoError(t, v.Validate(context.Background(), importer.Request{Text: noKeywords}))
		assert.Equal(t, 0, mock.calls)
	})

	t.Run("no completer keeps the quick result", func(t *testing.T) {
		v := RequestValidator{Limits: DefaultLimits(), Content: ContentValidationConfig{EnableAIValidation: true}}
		assert.NoError(t, v.Validate(context.Background(), importer.Request{Text: noKeywords, Extract: true}))
	})

	t.Run("limits still apply", func(t *testing.T) {
		v := RequestValidator{Limits: DefaultLimits()}
		err := v.Validate(context.Background(), importer.Request{URL: "example.com/pie"})
		appErr, ok := errors.As(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_URL", appErr.Code())
	})
}
