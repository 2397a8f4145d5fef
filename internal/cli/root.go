// Package cli implements the cooklang-import command line using Cobra.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cooklang/cooklang-import/internal/config"
	"github.com/cooklang/cooklang-import/internal/importer"
	"github.com/cooklang/cooklang-import/internal/logger"
)

// Runner runs one import.
type Runner interface {
	Import(ctx context.Context, req importer.Request) (*importer.Result, error)
}

// App holds the command dependencies. Tests replace the streams and NewRunner.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewRunner builds the importer from the loaded configuration.
	NewRunner func(cfg *config.Config) Runner

	v   *viper.Viper
	cfg *config.Config
}

// NewApp returns an App wired to the process streams.
func NewApp() *App {
	return &App{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewRunner: func(cfg *config.Config) Runner {
			return importer.New(cfg)
		},
	}
}

// Command builds the root command. Flags are bound through viper, so every
// flag can also be set as COOKLANG_<FLAG> in the environment.
func (a *App) Command() *cobra.Command {
	a.v = viper.New()
	a.v.SetEnvPrefix("COOKLANG")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "cooklang-import",
		Short: "Import recipes from web pages, text and images as Cooklang",
		Long: `cooklang-import turns recipes into Cooklang markup.

Web pages are read from their structured data (JSON-LD, MicroData or common
recipe plugin markup) and fall back to an AI model for everything else.

Examples:
  cooklang-import url https://example.com/best-pancakes
  cooklang-import url https://example.com/best-pancakes --extract-only
  cooklang-import text recipe.txt --extract
  cat recipe.txt | cooklang-import text --provider anthropic
  cooklang-import image page1.jpg page2.jpg --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Path to the YAML config file (default: $COOKLANG_CONFIG or config.yaml)")
	flags.String("provider", "", "Use only this AI provider")
	flags.String("model", "", "Model for the selected provider")
	flags.String("api-key", "", "API key for the selected provider")
	flags.Duration("timeout", 0, "Page fetch timeout (default: from config)")
	flags.String("format", formatText, "Output format: text or json")
	flags.Bool("extract-only", false, "Print the extracted recipe without converting it")
	flags.BoolP("verbose", "v", false, "Log progress to stderr")

	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	root.AddCommand(a.urlCommand(), a.textCommand(), a.imageCommand(), a.providersCommand())
	return root
}

func (a *App) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	slog.SetDefault(logger.NewCLI(a.Stderr, a.v.GetBool("verbose")))

	if err := validateFormat(a.v.GetString("format")); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if path := a.v.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// request fills the options shared by every import command.
func (a *App) request(req importer.Request) importer.Request {
	req.ExtractOnly = a.v.GetBool("extract-only")
	req.Provider = a.v.GetString("provider")
	req.Model = a.v.GetString("model")
	req.APIKey = a.v.GetString("api-key")
	req.Timeout = a.v.GetDuration("timeout")
	return req
}

func (a *App) run(ctx context.Context, req importer.Request) error {
	result, err := a.NewRunner(a.cfg).Import(ctx, a.request(req))
	if err != nil {
		return err
	}
	return writeResult(a.Stdout, a.v.GetString("format"), result)
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := app.Command()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		writeError(app.Stderr, err)
		return 1
	}
	return 0
}
