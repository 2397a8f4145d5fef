package extractors

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/cooklang/cooklang-import/internal/recipe"
)

var (
	errHTMLClassNoTitle   = errors.New("could not extract recipe title from HTML")
	errHTMLClassNoContent = errors.New("could not extract recipe content from HTML")
)

// fuzzyTextLimit rejects fuzzy matches large enough to be whole-page wrappers.
const fuzzyTextLimit = 5000

// Item text bounds when a container has no <li> children.
const (
	minItemLen = 5
	maxItemLen = 500
)

type classRule struct {
	name string
	sel  cascadia.Selector
}

type classTable struct {
	exact []classRule
	fuzzy []classRule
}

func newClassTable(classes []string, patterns ...string) classTable {
	var t classTable
	for _, c := range classes {
		t.exact = append(t.exact, classRule{name: c, sel: cascadia.MustCompile("." + c)})
	}
	for _, p := range patterns {
		t.fuzzy = append(t.fuzzy, classRule{name: p, sel: cascadia.MustCompile(`[class*="` + p + `"]`)})
	}
	return t
}

// Class conventions of the common recipe plugins, most specific first.
var (
	titleClasses = newClassTable([]string{
		"wprm-recipe-name", "tasty-recipes-title", "mv-create-title", "recipe-name",
		"recipe-title", "recipecardname", "recipe-card-title", "recipe-header-title",
		"wprp-recipe-title", "recipe_name", "recipe-content-title",
		"simple-recipe-pro-recipe-title", "recipe-callout-title", "wpzoom-recipe-card-title",
		"recipe-card__title", "wpupg-recipe-name", "recipe-title-name", "recipess-recipe-title",
	}, "recipe", "title", "name", "heading")

	descriptionClasses = newClassTable([]string{
		"wprm-recipe-summary", "recipe-summary", "recipe-description", "mv-create-description",
		"tasty-recipes-description", "recipe-card-summary", "wpzoom-recipe-summary",
		"recipe-summary-text", "recipe-intro", "recipe_description",
		"simple-recipe-pro-recipe-description", "recipe-callout-summary",
		"wpupg-recipe-summary", "recipe-card-description",
	}, "summary", "description", "intro")

	ingredientClasses = newClassTable([]string{
		"wprm-recipe-ingredients-container", "wprm-recipe-ingredient", "tasty-recipes-ingredients",
		"mv-create-ingredients", "recipe-ingredients", "recipe-ingredient-list",
		"recipe-card-ingredients", "wpzoom-recipe-ingredients", "recipe-ingredients-section",
		"simple-recipe-pro-recipe-ingredients", "recipe-callout-ingredients",
		"wpupg-recipe-ingredients", "recipe-card-ingredient-list", "recipe_ingredients",
		"recipess-ingredients-list", "structured-ingredients", "mpprecipe-ingredients",
		"recipe-content-ingredients", "recipe-ingredient-group",
	}, "ingredient")

	instructionClasses = newClassTable([]string{
		"wprm-recipe-instructions-container", "wprm-recipe-instruction", "tasty-recipes-instructions",
		"mv-create-instructions", "recipe-instructions", "recipe-instruction-list",
		"recipe-card-instructions", "wpzoom-recipe-instructions", "recipe-instructions-section",
		"simple-recipe-pro-recipe-instructions", "recipe-callout-instructions",
		"wpupg-recipe-instructions", "recipe-card-instruction-list", "recipe_instructions",
		"recipess-instructions-list", "structured-instructions", "mpprecipe-instructions",
		"recipe-content-instructions", "recipe-instruction-group", "directions", "recipe-directions",
	}, "instruction", "direction", "method", "step")

	// Metadata fields only use exact classes.
	htmlClassMetadata = []struct {
		key   string
		table classTable
	}{
		{"prep_time", newClassTable([]string{
			"wprm-recipe-prep-time", "recipe-prep-time", "prep-time", "tasty-recipes-prep-time",
			"mv-create-time-prep", "recipe-card-prep-time", "wpzoom-recipe-prep-time",
			"recipe-prep_time", "simple-recipe-pro-prep-time", "wpupg-recipe-prep-time",
			"recipe-time-prep",
		})},
		{"cook_time", newClassTable([]string{
			"wprm-recipe-cook-time", "recipe-cook-time", "cook-time", "tasty-recipes-cook-time",
			"mv-create-time-active", "recipe-card-cook-time", "wpzoom-recipe-cook-time",
			"recipe-cook_time", "simple-recipe-pro-cook-time", "wpupg-recipe-cook-time",
			"recipe-time-cook",
		})},
		{"total_time", newClassTable([]string{
			"wprm-recipe-total-time", "recipe-total-time", "total-time", "tasty-recipes-total-time",
			"mv-create-time-total", "recipe-card-total-time", "wpzoom-recipe-total-time",
			"recipe-total_time", "simple-recipe-pro-total-time", "wpupg-recipe-total-time",
			"recipe-time-total",
		})},
		{"servings", newClassTable([]string{
			"wprm-recipe-servings", "recipe-yield", "recipe-servings", "tasty-recipes-yield",
			"mv-create-yield", "recipe-card-servings", "wpzoom-recipe-servings",
			"recipe-yield-value", "simple-recipe-pro-servings", "wpupg-recipe-servings",
			"recipe-card-yield", "recipeyield",
		})},
		{"notes", newClassTable([]string{
			"wprm-recipe-notes", "recipe-notes", "tasty-recipes-notes", "mv-create-notes",
			"recipe-card-notes", "wpzoom-recipe-notes", "recipe-tips", "simple-recipe-pro-notes",
			"wpupg-recipe-notes", "recipe-card-tips", "recipe-footnotes",
		})},
	}
)

// HTMLClassExtractor recognises recipe cards by the CSS classes popular
// recipe plugins emit.
type HTMLClassExtractor struct{}

func (HTMLClassExtractor) Kind() Kind { return KindHTMLClass }

func (e HTMLClassExtractor) Parse(pc *ParsingContext) (*recipe.Recipe, error) {
	doc := pc.Document.Selection

	name := titleClasses.findText(doc)
	if name == "" {
		name = elementText(doc.FindMatcher(headingSelector).First())
	}

	ingredients := ingredientClasses.listItems(doc)
	instructions := instructionClasses.listItems(doc)

	meta := make(map[string]string)
	for _, f := range htmlClassMetadata {
		if v := f.table.findText(doc); v != "" {
			meta[f.key] = v
		}
	}
	if pc.URL != "" {
		meta["source_url"] = pc.URL
	}

	if name == "" {
		return nil, errHTMLClassNoTitle
	}
	if len(ingredients) == 0 && len(instructions) == 0 {
		return nil, errHTMLClassNoContent
	}

	numbered := make([]string, len(instructions))
	for i, step := range instructions {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, step)
	}

	return &recipe.Recipe{
		Name:        name,
		Description: descriptionClasses.findText(doc),
		Image:       []string{},
		Content: recipe.JoinContent(
			strings.Join(ingredients, "\n"),
			strings.Join(numbered, "\n"),
		),
		Metadata: meta,
	}, nil
}

// findText returns the text of every element carrying the first matching
// class. Fuzzy patterns are tried only when no exact class matched.
func (t classTable) findText(doc *goquery.Selection) string {
	for _, rule := range t.exact {
		if text := joinedText(doc.FindMatcher(rule.sel)); text != "" {
			slog.Debug("html class matched", "class", rule.name)
			return text
		}
	}
	for _, rule := range t.fuzzy {
		if text := joinedText(doc.FindMatcher(rule.sel)); text != "" && len(text) < fuzzyTextLimit {
			slog.Debug("html class pattern matched", "pattern", rule.name)
			return text
		}
	}
	return ""
}

// listItems collects <li> texts inside the first exact class that yields
// anything. Containers without list items contribute div, p and span texts
// within the item length bounds.
func (t classTable) listItems(doc *goquery.Selection) []string {
	var items []string
	for _, rule := range t.exact {
		doc.FindMatcher(rule.sel).Each(func(_ int, container *goquery.Selection) {
			container.FindMatcher(listItemSelector).Each(func(_ int, li *goquery.Selection) {
				if text := elementText(li); text != "" {
					items = append(items, text)
				}
			})
			if len(items) > 0 {
				return
			}
			for _, sel := range blockItemSelectors {
				container.FindMatcher(sel).Each(func(_ int, el *goquery.Selection) {
					if text := elementText(el); len(text) > minItemLen && len(text) < maxItemLen {
						items = append(items, text)
					}
				})
			}
		})
		if len(items) > 0 {
			slog.Debug("html class list matched", "class", rule.name, "items", len(items))
			return items
		}
	}
	return nil
}
