// Package recipe holds the canonical records shared by extractors, pipelines and the importer.
package recipe

import (
	"sort"
	"strings"
)

// Recipe is what a structured extractor produces.
type Recipe struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Image       []string          `json:"image"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
}

// JoinContent merges ingredients and instructions with exactly one blank
// line between them. A missing half adds no separator.
func JoinContent(ingredients, instructions string) string {
	switch {
	case ingredients != "" && instructions != "":
		return ingredients + "\n\n" + instructions
	case ingredients != "":
		return ingredients
	default:
		return instructions
	}
}

// Components flattens the recipe into the shape pipelines hand around.
// The description rides along as metadata unless an extractor already set one.
func (r *Recipe) Components() Components {
	meta := make(map[string]string, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		meta[k] = v
	}
	if r.Description != "" {
		if _, ok := meta["description"]; !ok {
			meta["description"] = r.Description
		}
	}
	return Components{
		Text:     r.Content,
		Metadata: MetadataLines(meta),
		Name:     r.Name,
	}
}

// MetadataLines renders metadata as "key: value" lines sorted by key.
// Line breaks inside a value are folded into single spaces.
func MetadataLines(meta map[string]string) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+singleLine(meta[k]))
	}
	return strings.Join(lines, "\n")
}

func singleLine(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return value
	}
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
