package extractors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cooklang/cooklang-import/internal/recipe"
)

var errNoJSONLDRecipe = errors.New("no valid recipe found in any JSON-LD script")

// JSONLDExtractor reads schema.org Recipe objects from
// <script type="application/ld+json"> blocks.
type JSONLDExtractor struct{}

func (JSONLDExtractor) Kind() Kind { return KindJSONLD }

// Parse tries every JSON-LD script in document order. A script that does not
// parse or holds no recipe is skipped rather than failing the extractor.
func (e JSONLDExtractor) Parse(pc *ParsingContext) (*recipe.Recipe, error) {
	scripts := pc.Document.FindMatcher(ldScriptSelector)
	slog.Debug("json-ld scripts found", "url", pc.URL, "count", scripts.Length())

	var found *recipe.Recipe
	scripts.EachWithBreak(func(i int, s *goquery.Selection) bool {
		r, err := parseJSONLDScript(s.Text(), pc.URL)
		if err != nil {
			slog.Debug("skipping json-ld script", "index", i, "error", err)
			return true
		}
		found = r
		return false
	})
	if found == nil {
		return nil, errNoJSONLDRecipe
	}
	return found, nil
}

func parseJSONLDScript(body, url string) (*recipe.Recipe, error) {
	var doc any
	if err := json.Unmarshal([]byte(sanitizeJSON(body)), &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	obj := locateRecipe(doc)
	if obj == nil {
		return nil, errors.New("no recipe object")
	}

	// Re-encode the located object so the typed fields can settle their shapes.
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var ld jsonLDRecipe
	if err := json.Unmarshal(raw, &ld); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	if ld.Name == nil {
		return nil, errors.New("recipe has no name")
	}
	return ld.toRecipe(url), nil
}

// locateRecipe finds the Recipe object in a parsed JSON-LD document: the
// first qualifying element of a top-level array, the top-level object
// itself, or the first Recipe inside @graph.
func locateRecipe(doc any) map[string]any {
	switch v := doc.(type) {
	case []any:
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if _, has := obj["recipeInstructions"]; has || isRecipeType(obj) {
				return obj
			}
		}
	case map[string]any:
		if isRecipeType(v) {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if obj, ok := item.(map[string]any); ok && isRecipeType(obj) {
					return obj
				}
			}
		}
	}
	return nil
}

func isRecipeType(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return strings.EqualFold(t, "recipe")
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && strings.EqualFold(s, "recipe") {
				return true
			}
		}
	}
	return false
}

func (ld *jsonLDRecipe) toRecipe(url string) *recipe.Recipe {
	meta := make(map[string]string)
	set := func(key, value string) {
		if value != "" {
			meta[key] = value
		}
	}

	set("source", url)
	set("author", strings.Join(ld.Author, ", "))
	set("servings", string(ld.Yield))
	set("course", strings.Join(ld.Category, ", "))
	if ld.TotalTime != "" {
		set("time required", HumanDuration(string(ld.TotalTime)))
	}
	if ld.PrepTime != "" {
		set("prep time", HumanDuration(string(ld.PrepTime)))
	}
	if ld.CookTime != "" {
		set("cook time", HumanDuration(string(ld.CookTime)))
	}
	set("cuisine", strings.Join(ld.Cuisine, ", "))
	set("diet", cleanDiets(ld.Diet))
	set("tags", strings.Join(ld.Keywords, ", "))
	if len(ld.Image) > 0 {
		set("image", ld.Image[0])
	}

	image := []string(ld.Image)
	if image == nil {
		image = []string{}
	}

	return &recipe.Recipe{
		Name:        decodeEntities(*ld.Name),
		Description: string(ld.Description),
		Image:       image,
		Content: recipe.JoinContent(
			strings.Join(ld.Ingredients, "\n"),
			strings.Join(ld.Instructions, " "),
		),
		Metadata: meta,
	}
}

func cleanDiets(diets []string) string {
	var cleaned []string
	for _, d := range diets {
		if c := cleanDiet(d); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, ", ")
}

// cleanDiet turns "https://schema.org/VeganDiet" into "Vegan".
func cleanDiet(diet string) string {
	diet = strings.TrimSpace(diet)
	diet = strings.TrimPrefix(diet, "https://schema.org/")
	diet = strings.TrimPrefix(diet, "http://schema.org/")
	diet = strings.TrimSuffix(diet, "Diet")
	return strings.TrimSpace(diet)
}
