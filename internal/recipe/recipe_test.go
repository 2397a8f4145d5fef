package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinContent(t *testing.T) {
	tests := []struct {
		name         string
		ingredients  string
		instructions string
		want         string
	}{
		{"both", "flour\nsugar", "Mix.", "flour\nsugar\n\nMix."},
		{"ingredients only", "flour", "", "flour"},
		{"instructions only", "", "Mix.", "Mix."},
		{"neither", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinContent(tt.ingredients, tt.instructions))
		})
	}
}

func TestMetadataLines(t *testing.T) {
	got := MetadataLines(map[string]string{
		"source":   "https://example.com/pie",
		"author":   "Jane",
		"servings": "4",
	})
	assert.Equal(t, "author: Jane\nservings: 4\nsource: https://example.com/pie", got)
	assert.Empty(t, MetadataLines(nil))
}

func TestMetadataLines_FoldsLineBreaks(t *testing.T) {
	got := MetadataLines(map[string]string{
		"notes":    "Use stock.\nServe hot.\r\n\n  Keeps a week.",
		"servings": "4",
	})
	assert.Equal(t, "notes: Use stock. Serve hot. Keeps a week.\nservings: 4", got)

	c := Components{Metadata: got}
	doc := ParseDocument(c.Frontmatter())
	assert.Equal(t, "Use stock. Serve hot. Keeps a week.", lookup(doc.Metadata, "notes"))
	assert.Equal(t, "4", lookup(doc.Metadata, "servings"))
}

func TestRecipe_Components(t *testing.T) {
	r := &Recipe{
		Name:        "Pie",
		Description: "A nice pie",
		Content:     "apples\n\nBake.",
		Metadata:    map[string]string{"source": "https://example.com"},
	}

	c := r.Components()
	assert.Equal(t, "Pie", c.Name)
	assert.Equal(t, "apples\n\nBake.", c.Text)
	assert.Equal(t, "description: A nice pie\nsource: https://example.com", c.Metadata)
}

func TestComponents_Frontmatter(t *testing.T) {
	t.Run("with name and metadata", func(t *testing.T) {
		c := Components{Text: "body", Metadata: "source: x", Name: "Soup"}
		assert.Equal(t, "---\ntitle: Soup\nsource: x\n---\n\nbody", c.Frontmatter())
	})

	t.Run("title already present", func(t *testing.T) {
		c := Components{Text: "body", Metadata: "title: Stew", Name: "Soup"}
		assert.Equal(t, "---\ntitle: Stew\n---\n\nbody", c.Frontmatter())
	})

	t.Run("bare text", func(t *testing.T) {
		c := Components{Text: "body"}
		assert.Equal(t, "body", c.Frontmatter())
	})
}

func TestParseDocument(t *testing.T) {
	t.Run("frontmatter", func(t *testing.T) {
		c := ParseDocument("---\ntitle: Soup\nsource: x\n---\n\n@water\n")
		assert.Equal(t, "title: Soup\nsource: x", c.Metadata)
		assert.Equal(t, "Soup", c.Name)
		assert.Equal(t, "@water\n", c.Text)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		c := ParseDocument("just text")
		assert.Equal(t, Components{Text: "just text"}, c)
	})

	t.Run("unterminated block", func(t *testing.T) {
		c := ParseDocument("---\ntitle: Soup\n")
		assert.Equal(t, "---\ntitle: Soup\n", c.Text)
		assert.Empty(t, c.Metadata)
	})

	t.Run("round trip", func(t *testing.T) {
		in := Components{Text: "body", Metadata: "source: x", Name: "Soup"}
		out := ParseDocument(in.Frontmatter())
		assert.Equal(t, "body", out.Text)
		assert.Equal(t, "Soup", out.Name)
	})
}

func TestImageSource_Label(t *testing.T) {
	assert.Equal(t, "/tmp/a.jpg", PathImage("/tmp/a.jpg").Label())
	assert.Equal(t, "base64-image", Base64Image("aGVsbG8=").Label())
}
