package extractors

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
)

// Token is one unit of visible page text. Boundary tokens carry no text and
// mark the start or end of a block element or a <br>.
type Token struct {
	Text     string
	Boundary bool
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "canvas": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "noscript": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tfoot": true, "tr": true, "ul": true, "video": true,
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true, "canvas": true, "svg": true,
}

type visitFrame struct {
	node *html.Node
	exit bool
}

// Tokens walks root depth-first without recursion and yields its visible
// text. Hidden subtrees and non-content tags are skipped; each text node has
// its whitespace collapsed.
func Tokens(root *html.Node) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		stack := []visitFrame{{node: root}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			n := f.node

			if f.exit {
				if !yield(Token{Boundary: true}) {
					return
				}
				continue
			}

			switch n.Type {
			case html.TextNode:
				if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
					if !yield(Token{Text: text}) {
						return
					}
				}
				continue
			case html.ElementNode:
				tag := strings.ToLower(n.Data)
				if skippedTags[tag] || isHidden(n) {
					continue
				}
				if tag == "br" {
					if !yield(Token{Boundary: true}) {
						return
					}
					continue
				}
				if blockTags[tag] {
					if !yield(Token{Boundary: true}) {
						return
					}
					stack = append(stack, visitFrame{node: n, exit: true})
				}
			case html.DocumentNode:
			default:
				continue
			}

			for c := n.LastChild; c != nil; c = c.PrevSibling {
				stack = append(stack, visitFrame{node: c})
			}
		}
	}
}

// VisibleLines merges runs of inline text into lines, breaking at block
// boundaries.
func VisibleLines(root *html.Node) []string {
	var lines, current []string
	flush := func() {
		if merged := strings.TrimSpace(strings.Join(current, " ")); merged != "" {
			lines = append(lines, merged)
		}
		current = current[:0]
	}

	for tok := range Tokens(root) {
		if tok.Boundary {
			flush()
			continue
		}
		current = append(current, tok.Text)
	}
	flush()
	return lines
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "style":
			style := strings.Join(strings.Fields(strings.ToLower(a.Val)), "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}
