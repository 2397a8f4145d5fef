package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/cooklang/cooklang-import/internal/errors"
	"github.com/cooklang/cooklang-import/internal/importer"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type theme struct {
	Error lipgloss.Style
	Hint  lipgloss.Style
	Title lipgloss.Style
	Ok    lipgloss.Style
	Faint lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Error: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Hint:  lipgloss.NewStyle().Faint(true),
		Title: lipgloss.NewStyle().Bold(true),
		Ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Faint: lipgloss.NewStyle().Faint(true),
	}
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (want text or json)", format)
}

// writeResult prints the Cooklang markup, or the extracted recipe as a
// frontmatter document for extract-only runs.
func writeResult(w io.Writer, format string, result *importer.Result) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out := result.Cooklang
	if out == "" {
		out = result.Components.Frontmatter()
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}

func writeError(w io.Writer, err error) {
	t := defaultTheme()
	fmt.Fprintln(w, t.Error.Render("Error:")+" "+err.Error())
	if appErr, ok := apperrors.As(err); ok && appErr.RecoverySuggestion() != "" {
		fmt.Fprintln(w, t.Hint.Render(appErr.RecoverySuggestion()))
	}
}

type providerRow struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
	Enabled    bool   `json:"enabled"`
	Default    bool   `json:"default"`
	Model      string `json:"model,omitempty"`
	Problem    string `json:"problem,omitempty"`
}

func writeProviders(w io.Writer, format string, rows []providerRow, fallback bool) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"fallback": fallback, "providers": rows})
	}

	t := defaultTheme()
	fmt.Fprintln(w, t.Title.Render("Providers"))
	for _, row := range rows {
		state := t.Faint.Render("not configured")
		switch {
		case row.Problem != "":
			state = t.Error.Render(row.Problem)
		case row.Enabled:
			state = t.Ok.Render("enabled")
		case row.Configured:
			state = t.Faint.Render("disabled")
		}
		line := fmt.Sprintf("  %-13s %s", row.Name, state)
		if row.Model != "" {
			line += t.Faint.Render(" (" + row.Model + ")")
		}
		if row.Default {
			line += " " + t.Title.Render("default")
		}
		fmt.Fprintln(w, line)
	}
	fallbackState := "off"
	if fallback {
		fallbackState = "on"
	}
	fmt.Fprintln(w, t.Faint.Render("Fallback: "+fallbackState))
	return nil
}
