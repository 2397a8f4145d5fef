package extractors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func visibleLines(t *testing.T, page string) []string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return VisibleLines(root)
}

func TestVisibleLines(t *testing.T) {
	tests := []struct {
		name string
		page string
		want []string
	}{
		{
			name: "block elements",
			page: `<html><body><div>Hello</div><p>World</p><span>Test</span></body></html>`,
			want: []string{"Hello", "World", "Test"},
		},
		{
			name: "hidden elements",
			page: `<div>Visible</div><div hidden>Hidden</div><div style="display: none">Also Hidden</div><p style="visibility: hidden">Gone</p>`,
			want: []string{"Visible"},
		},
		{
			name: "minified hidden styles",
			page: `<div>Visible</div><div style="display:none">HIDDEN</div><p style="color:red;VISIBILITY :  hidden">Gone</p><div style="display:block">Shown</div>`,
			want: []string{"Visible", "Shown"},
		},
		{
			name: "skipped tags",
			page: `<div>Visible content</div><script>console.log('Skip this');</script><style>body { color: red; }</style><svg><text>icon</text></svg><div>More content</div>`,
			want: []string{"Visible content", "More content"},
		},
		{
			name: "inline runs merge",
			page: `<p>Mix   the <b>flour</b>
				and <i>water</i></p>`,
			want: []string{"Mix the flour and water"},
		},
		{
			name: "br splits lines",
			page: `<p>1 cup rice<br>2 cups water</p>`,
			want: []string{"1 cup rice", "2 cups water"},
		},
		{
			name: "list items",
			page: `<ul><li>salt</li><li>pepper</li></ul>`,
			want: []string{"salt", "pepper"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visibleLines(t, tt.page))
		})
	}
}

func TestTokens_BoundariesAreStructured(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`<body><p>a <b>b</b></p>c</body>`))
	require.NoError(t, err)

	var got []Token
	for tok := range Tokens(root) {
		got = append(got, tok)
	}

	assert.Equal(t, []Token{
		{Boundary: true},
		{Text: "a"},
		{Text: "b"},
		{Boundary: true},
		{Text: "c"},
	}, got)
}

func TestTokens_StopsEarly(t *testing.T) {
	root, err := html.Parse(strings.NewReader(`<p>one</p><p>two</p><p>three</p>`))
	require.NoError(t, err)

	var texts []string
	for tok := range Tokens(root) {
		if tok.Text != "" {
			texts = append(texts, tok.Text)
		}
		if len(texts) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"one", "two"}, texts)
}
