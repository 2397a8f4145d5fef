package extractors

import (
	"strings"
	"unicode"
)

const noRune rune = -1

// sanitizeJSON minifies a JSON-LD body and repairs two common defects:
// missing commas between adjacent values and stray commas next to closing
// brackets or colons. It tracks only whether it is inside a string, the
// bracket depth and the previous character, so it can misfire on badly
// broken input.
func sanitizeJSON(raw string) string {
	chars := []rune(raw)
	out := make([]rune, 0, len(chars))
	inString := false
	prev := noRune
	depth := 0

	for i, c := range chars {
		switch {
		case c == '"' && prev != '\\':
			inString = !inString
			if !inString {
				next := nextNonSpace(chars, i+1)
				if prev != ',' && prev != '[' && prev != '{' &&
					(next == '"' || next == '[' || next == '{') {
					out = append(out, '"', ',')
					prev = ','
					continue
				}
			}
			out = append(out, c)
		case (c == '[' || c == '{') && !inString:
			depth++
			out = append(out, c)
		case (c == ']' || c == '}') && !inString:
			depth--
			out = append(out, c)
			if depth > 0 && nextNonSpace(chars, i+1) == '"' {
				out = append(out, ',')
				prev = ','
				continue
			}
		case c == ',' && !inString:
			if prev != ',' {
				out = append(out, c)
			}
		case c == ':' && !inString:
			if prev == ',' && len(out) > 0 {
				out = out[:len(out)-1]
			}
			out = append(out, c)
		default:
			if inString || !unicode.IsSpace(c) {
				out = append(out, c)
			}
		}
		prev = c
	}

	return cleanupPunctuation(string(out))
}

func cleanupPunctuation(s string) string {
	for _, r := range [][2]string{
		{",]", "]"},
		{",}", "}"},
		{",,", ","},
		{",:,", ":"},
		{":,", ":"},
		{",:", ":"},
	} {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}

func nextNonSpace(chars []rune, from int) rune {
	for j := from; j < len(chars); j++ {
		if !unicode.IsSpace(chars[j]) {
			return chars[j]
		}
	}
	return noRune
}
