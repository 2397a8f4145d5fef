// Package textextract asks a language model to pull recipe fields out of
// unstructured text.
package textextract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/ai"
)

// DirectInput is the source label for text passed in by the caller.
const DirectInput = "direct-input"

// Completer is satisfied by a single provider or the fallback engine.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Fields is the JSON shape returned by the model.
type Fields struct {
	Title        looseString `json:"title"`
	Servings     looseString `json:"servings"`
	PrepTime     looseString `json:"prep_time"`
	CookTime     looseString `json:"cook_time"`
	TotalTime    looseString `json:"total_time"`
	Ingredients  stringList  `json:"ingredients"`
	Instructions stringList  `json:"instructions"`
	Error        looseString `json:"error"`
}

type Extractor struct {
	completer Completer
}

func New(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

// Fields sends text to the model and decodes its reply. A non-empty error
// field means the text is not a recipe.
func (e *Extractor) Fields(ctx context.Context, text string, extended bool) (*Fields, error) {
	reply, err := e.completer.Complete(ctx, ai.BuildExtractionPrompt(extended), text)
	if err != nil {
		return nil, err
	}

	var fields Fields
	if err := json.Unmarshal([]byte(stripFences(reply)), &fields); err != nil {
		slog.Debug("Unparseable extraction reply", "reply", truncate(reply, 200))
		return nil, errors.NewExtractionError("failed to parse extracted recipe fields", "INVALID_EXTRACTION_JSON", err)
	}

	if msg := strings.TrimSpace(string(fields.Error)); msg != "" {
		return nil, errors.NewExtractionError(msg, "NOT_A_RECIPE", nil)
	}
	if len(fields.Ingredients) == 0 && len(fields.Instructions) == 0 {
		return nil, errors.NewExtractionError("no ingredients or instructions found", "EMPTY_RECIPE", nil)
	}

	return &fields, nil
}

// Extract turns text into Components. source is the page URL or DirectInput.
// The extended shape also captures title, servings and times.
func (e *Extractor) Extract(ctx context.Context, text, source string, extended bool) (recipe.Components, error) {
	fields, err := e.Fields(ctx, text, extended)
	if err != nil {
		return recipe.Components{}, err
	}
	return fields.Components(source), nil
}

// Components renders the fields: ingredients one per line, instructions
// space-joined.
func (f *Fields) Components(source string) recipe.Components {
	meta := map[string]string{}
	if source != "" {
		meta["source"] = source
	}
	for key, value := range map[string]looseString{
		"servings":      f.Servings,
		"prep time":     f.PrepTime,
		"cook time":     f.CookTime,
		"time required": f.TotalTime,
	} {
		if v := strings.TrimSpace(string(value)); v != "" {
			meta[key] = v
		}
	}

	return recipe.Components{
		Text: recipe.JoinContent(
			strings.Join(f.Ingredients, "\n"),
			strings.Join(f.Instructions, " "),
		),
		Metadata: recipe.MetadataLines(meta),
		Name:     strings.TrimSpace(string(f.Title)),
	}
}

// stripFences removes Markdown code fences and any prose around the JSON object.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*s = looseString(t)
	case float64:
		*s = looseString(fmt.Sprint(t))
	default:
		*s = ""
	}
	return nil
}

// stringList keeps only the non-empty string entries of a JSON array.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	*l = out
	return nil
}
