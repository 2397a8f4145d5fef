package recipe

import "strings"

const frontmatterDelimiter = "---"

// Components is the common currency between pipelines and the importer.
// Any field may be empty.
type Components struct {
	Text     string `json:"text"`
	Metadata string `json:"metadata"`
	Name     string `json:"name"`
}

// Frontmatter renders the components as a document with a leading
// metadata block. The name is emitted as "title" unless the metadata
// already carries one.
func (c Components) Frontmatter() string {
	var header []string
	if c.Name != "" && !hasKey(c.Metadata, "title") {
		header = append(header, "title: "+c.Name)
	}
	if c.Metadata != "" {
		header = append(header, c.Metadata)
	}
	if len(header) == 0 {
		return c.Text
	}

	var b strings.Builder
	b.WriteString(frontmatterDelimiter + "\n")
	b.WriteString(strings.Join(header, "\n"))
	b.WriteString("\n" + frontmatterDelimiter + "\n\n")
	b.WriteString(c.Text)
	return b.String()
}

// ParseDocument splits a leading "---" block off text. Text without a
// closed block is returned whole as the body.
func ParseDocument(text string) Components {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	if !strings.HasPrefix(trimmed, frontmatterDelimiter+"\n") {
		return Components{Text: text}
	}

	rest := trimmed[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return Components{Text: text}
	}

	meta := strings.TrimSpace(rest[:end])
	body := rest[end+len(frontmatterDelimiter)+1:]
	return Components{
		Text:     strings.TrimLeft(body, "\r\n"),
		Metadata: meta,
		Name:     lookup(meta, "title"),
	}
}

func hasKey(metadata, key string) bool {
	_, ok := find(metadata, key)
	return ok
}

func lookup(metadata, key string) string {
	v, _ := find(metadata, key)
	return v
}

func find(metadata, key string) (string, bool) {
	for _, line := range strings.Split(metadata, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
