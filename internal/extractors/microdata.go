package extractors

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/cooklang/cooklang-import/internal/recipe"
)

var (
	errNoMicroDataContainer = errors.New("no MicroData Recipe container found")
	errMicroDataNoName      = errors.New("could not extract recipe name")
	errMicroDataNoContent   = errors.New("could not extract recipe content")
)

// microDataTypes are the itemtype fragments accepted for the recipe container.
var microDataTypes = []string{"schema.org/Recipe", "data-vocabulary.org/Recipe"}

// microDataFields maps itemprop names to metadata keys.
var microDataFields = []struct {
	prop string
	key  string
}{
	{"prepTime", "prep_time"},
	{"cookTime", "cook_time"},
	{"totalTime", "total_time"},
	{"recipeYield", "servings"},
	{"recipeCategory", "course"},
	{"recipeCuisine", "cuisine"},
	{"suitableForDiet", "diet"},
	{"keywords", "tags"},
}

var itempropSelectors = compileItemprops(
	"name", "description", "image", "author",
	"prepTime", "cookTime", "totalTime", "recipeYield", "recipeCategory",
	"recipeCuisine", "suitableForDiet", "keywords",
	"ingredients", "recipeIngredient", "recipeInstructions", "instructions",
)

func compileItemprops(props ...string) map[string]cascadia.Selector {
	m := make(map[string]cascadia.Selector, len(props))
	for _, p := range props {
		m[p] = cascadia.MustCompile(`[itemprop="` + p + `"]`)
	}
	return m
}

// MicroDataExtractor reads itemprop values scoped to a schema.org Recipe
// itemscope. Pages without such a container are rejected outright so that
// unrelated itemprops elsewhere on the page are never picked up.
type MicroDataExtractor struct{}

func (MicroDataExtractor) Kind() Kind { return KindMicroData }

func (e MicroDataExtractor) Parse(pc *ParsingContext) (*recipe.Recipe, error) {
	container := findMicroDataContainer(pc.Document)
	if container == nil {
		return nil, errNoMicroDataContainer
	}

	name := itempropValue(container, "name")
	if name == "" {
		return nil, errMicroDataNoName
	}

	meta := make(map[string]string)
	if img := container.FindMatcher(itempropSelectors["image"]).First(); img.Length() > 0 {
		if src, ok := img.Attr("src"); ok {
			meta["image"] = src
		} else if text := elementText(img); text != "" {
			meta["image"] = text
		}
	}

	if author := container.FindMatcher(itempropSelectors["author"]).First(); author.Length() > 0 {
		target := author.FindMatcher(itempropSelectors["name"]).First()
		if target.Length() == 0 {
			target = author
		}
		if text := elementText(target); text != "" {
			meta["author"] = text
		}
	}

	for _, f := range microDataFields {
		if v := itempropValue(container, f.prop); v != "" {
			meta[f.key] = v
		}
	}

	ingredients := itempropList(container, "ingredients")
	if len(ingredients) == 0 {
		ingredients = itempropList(container, "recipeIngredient")
	}
	instructions := itempropList(container, "recipeInstructions")
	if len(instructions) == 0 {
		instructions = itempropList(container, "instructions")
	}
	if len(ingredients) == 0 && len(instructions) == 0 {
		return nil, errMicroDataNoContent
	}

	if pc.URL != "" {
		meta["source_url"] = pc.URL
	}

	return &recipe.Recipe{
		Name:        name,
		Description: itempropValue(container, "description"),
		Image:       []string{},
		Content: recipe.JoinContent(
			strings.Join(ingredients, "\n"),
			strings.Join(instructions, "\n\n"),
		),
		Metadata: meta,
	}, nil
}

func findMicroDataContainer(doc *goquery.Document) *goquery.Selection {
	var container *goquery.Selection
	doc.FindMatcher(itemscopeSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		itemtype, _ := s.Attr("itemtype")
		for _, t := range microDataTypes {
			if strings.Contains(itemtype, t) {
				container = s
				return false
			}
		}
		return true
	})
	return container
}

// itempropValue reads the first matching itemprop. Visible text wins; <meta>
// and <time> style elements fall back to their content or datetime attribute.
func itempropValue(root *goquery.Selection, prop string) string {
	el := root.FindMatcher(itempropSelectors[prop]).First()
	if el.Length() == 0 {
		return ""
	}
	if text := elementText(el); text != "" {
		return text
	}
	for _, attr := range []string{"content", "datetime"} {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func itempropList(root *goquery.Selection, prop string) []string {
	var items []string
	root.FindMatcher(itempropSelectors[prop]).Each(func(_ int, s *goquery.Selection) {
		if text := elementText(s); text != "" {
			items = append(items, text)
		}
	})
	return items
}
