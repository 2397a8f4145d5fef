package extractors

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	titleSelector     = cascadia.MustCompile("title")
	headingSelector   = cascadia.MustCompile("h1, h2")
	listItemSelector  = cascadia.MustCompile("li")
	ldScriptSelector  = cascadia.MustCompile(`script[type="application/ld+json"]`)
	itemscopeSelector = cascadia.MustCompile("[itemscope]")
	// Tried in this order when a container holds no <li>.
	blockItemSelectors = []cascadia.Selector{
		cascadia.MustCompile("div"),
		cascadia.MustCompile("p"),
		cascadia.MustCompile("span"),
	}
)

// nodeText joins the descendant text nodes of n with single spaces.
func nodeText(n *html.Node) string {
	var parts []string
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.TextNode {
			parts = append(parts, cur.Data)
			continue
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return strings.Join(parts, " ")
}

// elementText is nodeText of the first node in s, trimmed.
func elementText(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(nodeText(s.Get(0)))
}

// joinedText joins the text of every node in s with newlines.
func joinedText(s *goquery.Selection) string {
	texts := make([]string, 0, s.Length())
	for _, n := range s.Nodes {
		texts = append(texts, nodeText(n))
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}
