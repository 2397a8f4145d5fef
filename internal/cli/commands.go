package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/recipe"
	"github.com/cooklang/cooklang-import/internal/services/providers"
)

func (a *App) urlCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "url <url>",
		Short: "Import a recipe from a web page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), importer.Request{URL: args[0]})
		},
	}
}

func (a *App) textCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text [file|-]",
		Short: "Import a recipe from plain text (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			text, err := a.readText(path)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), importer.Request{Text: text, Extract: a.v.GetBool("extract")})
		},
	}
	cmd.Flags().Bool("extract", false, "Pull ingredients and steps out of free-form text with the AI model")
	return cmd
}

func (a *App) imageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "image <path>...",
		Short: "Import a recipe from one or more photos (Google Vision OCR)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images := make([]recipe.ImageSource, 0, len(args))
			for _, path := range args {
				images = append(images, recipe.PathImage(path))
			}
			return a.run(cmd.Context(), importer.Request{Images: images})
		},
	}
}

func (a *App) providersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List AI providers and their configuration state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([]providerRow, 0, len(providers.Available()))
			for _, name := range providers.Available() {
				pc, configured := a.cfg.AI.Providers[name]
				row := providerRow{
					Name:       name,
					Configured: configured,
					Enabled:    configured && pc.Enabled,
					Model:      pc.Model,
					Default:    name == a.cfg.AI.DefaultProvider,
				}
				if row.Enabled {
					if _, err := providers.New(name, pc); err != nil {
						row.Problem = err.Error()
					}
				}
				rows = append(rows, row)
			}
			return writeProviders(a.Stdout, a.v.GetString("format"), rows, a.cfg.AI.Fallback.Enabled)
		},
	}
}

func (a *App) readText(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading recipe text: %w", err)
	}
	return string(data), nil
}
