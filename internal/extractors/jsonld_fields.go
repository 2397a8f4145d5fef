package extractors

import (
	"bytes"
	"encoding/json"
	"html"
	"strings"
	"unicode"
)

// jsonLDRecipe is the subset of schema.org/Recipe the JSON-LD extractor
// reads. Every field that sites publish in more than one shape has its own
// type which settles the shape while decoding, so the mapping code only ever
// sees plain strings and slices. Shapes none of them recognise decode as absent.
type jsonLDRecipe struct {
	Name         *string          `json:"name"`
	Description  flexText         `json:"description"`
	Image        flexImages       `json:"image"`
	Ingredients  flexIngredients  `json:"recipeIngredient"`
	Instructions flexInstructions `json:"recipeInstructions"`
	Yield        flexYield        `json:"recipeYield"`
	PrepTime     flexText         `json:"prepTime"`
	CookTime     flexText         `json:"cookTime"`
	TotalTime    flexText         `json:"totalTime"`
	Diet         flexList         `json:"suitableForDiet"`
	Category     flexList         `json:"recipeCategory"`
	Cuisine      flexList         `json:"recipeCuisine"`
	Keywords     flexList         `json:"keywords"`
	Author       flexAuthor       `json:"author"`
}

// decodeEntities unescapes HTML entities twice; many sites double-encode.
func decodeEntities(s string) string {
	return html.UnescapeString(html.UnescapeString(s))
}

// flexText is a string or an object with a "text" member.
type flexText string

func (t *flexText) UnmarshalJSON(b []byte) error {
	if s, ok := asString(b); ok {
		*t = flexText(decodeEntities(s))
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(b, &obj) == nil {
		*t = flexText(decodeEntities(obj.Text))
	}
	return nil
}

// flexImages is a URL string, an ImageObject, or an array of either.
type flexImages []string

func (im *flexImages) UnmarshalJSON(b []byte) error {
	for _, raw := range asItems(b) {
		if s, ok := asString(raw); ok {
			if s != "" {
				*im = append(*im, decodeEntities(s))
			}
			continue
		}
		var obj struct {
			URL string `json:"url"`
		}
		if json.Unmarshal(raw, &obj) == nil && obj.URL != "" {
			*im = append(*im, decodeEntities(obj.URL))
		}
	}
	return nil
}

// flexIngredients is a list of strings or of {name, amount} objects.
// Blank entries are dropped and a non-empty amount is prefixed to the name.
type flexIngredients []string

func (in *flexIngredients) UnmarshalJSON(b []byte) error {
	for _, raw := range asItems(b) {
		if s, ok := asString(raw); ok {
			if strings.TrimSpace(s) != "" {
				*in = append(*in, decodeEntities(s))
			}
			continue
		}
		var obj struct {
			Name   string          `json:"name"`
			Amount json.RawMessage `json:"amount"`
		}
		if json.Unmarshal(raw, &obj) != nil || strings.TrimSpace(obj.Name) == "" {
			continue
		}
		name := decodeEntities(obj.Name)
		if amount := strings.TrimSpace(scalarString(obj.Amount)); amount != "" {
			name = amount + " " + name
		}
		*in = append(*in, name)
	}
	return nil
}

// flexInstructions is a string, a list of strings, a list of HowToStep or
// HowToSection objects, or lists nested one level deeper. Everything is
// flattened into step texts in document order.
type flexInstructions []string

func (st *flexInstructions) UnmarshalJSON(b []byte) error {
	collectSteps(b, (*[]string)(st))
	return nil
}

type howToNode struct {
	Text            *string           `json:"text"`
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	ItemListElement []json.RawMessage `json:"itemListElement"`
}

func collectSteps(raw json.RawMessage, out *[]string) {
	switch firstByte(raw) {
	case '"':
		if s, ok := asString(raw); ok && s != "" {
			*out = append(*out, decodeEntities(s))
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(raw, &items) == nil {
			for _, item := range items {
				collectSteps(item, out)
			}
		}
	case '{':
		var node howToNode
		if json.Unmarshal(raw, &node) != nil {
			return
		}
		if len(node.ItemListElement) > 0 {
			for _, item := range node.ItemListElement {
				collectSteps(item, out)
			}
			return
		}
		// A step contributes one value: text, else name, else description.
		for _, v := range []*string{node.Text, node.Name, node.Description} {
			if v != nil {
				if *v != "" {
					*out = append(*out, decodeEntities(*v))
				}
				return
			}
		}
	}
}

// flexYield is a string, a number or an array of either. From an array the
// first entry containing a letter wins ("15 units" over "15").
type flexYield string

func (y *flexYield) UnmarshalJSON(b []byte) error {
	if firstByte(b) != '[' {
		*y = flexYield(decodeEntities(scalarString(b)))
		return nil
	}
	var values []string
	for _, raw := range asItems(b) {
		values = append(values, decodeEntities(scalarString(raw)))
	}
	for _, v := range values {
		if strings.IndexFunc(v, unicode.IsLetter) >= 0 {
			*y = flexYield(v)
			return nil
		}
	}
	if len(values) > 0 {
		*y = flexYield(values[0])
	}
	return nil
}

// flexList is a string or an array of strings. Blank entries are dropped.
type flexList []string

func (l *flexList) UnmarshalJSON(b []byte) error {
	for _, raw := range asItems(b) {
		if s, ok := asString(raw); ok {
			if s = decodeEntities(s); strings.TrimSpace(s) != "" {
				*l = append(*l, s)
			}
		}
	}
	return nil
}

// flexAuthor is a name, a Person/Organization object, or an array of those.
// Objects without a name are dropped.
type flexAuthor []string

func (a *flexAuthor) UnmarshalJSON(b []byte) error {
	for _, raw := range asItems(b) {
		if s, ok := asString(raw); ok {
			if s != "" {
				*a = append(*a, decodeEntities(s))
			}
			continue
		}
		var obj struct {
			Name *string `json:"name"`
		}
		if json.Unmarshal(raw, &obj) == nil && obj.Name != nil && *obj.Name != "" {
			*a = append(*a, decodeEntities(*obj.Name))
		}
	}
	return nil
}

func firstByte(b []byte) byte {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func asString(b []byte) (string, bool) {
	if firstByte(b) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false
	}
	return s, true
}

// asItems returns the elements of a JSON array, or b itself for any other
// non-null value.
func asItems(b []byte) []json.RawMessage {
	switch firstByte(b) {
	case 0, 'n':
		return nil
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(b, &items) != nil {
			return nil
		}
		return items
	default:
		return []json.RawMessage{b}
	}
}

// scalarString renders a JSON string or number as text.
func scalarString(b []byte) string {
	if s, ok := asString(b); ok {
		return s
	}
	var n json.Number
	if json.Unmarshal(b, &n) == nil {
		return n.String()
	}
	return ""
}
