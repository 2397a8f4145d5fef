package extractors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testURL = "https://example.com/recipe"

func parsePage(t *testing.T, body string) *ParsingContext {
	t.Helper()
	pc, err := NewParsingContext(testURL, body)
	require.NoError(t, err)
	return pc
}

// ldPage wraps each body in its own JSON-LD script tag.
func ldPage(scripts ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Page</title>")
	for _, s := range scripts {
		b.WriteString(`<script type="application/ld+json">`)
		b.WriteString(s)
		b.WriteString("</script>")
	}
	b.WriteString("</head><body><p>Hello</p></body></html>")
	return b.String()
}
