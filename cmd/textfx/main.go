package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/auth"
	"github.com/slicken/TextFx-Studio/internal/config"
	"github.com/slicken/TextFx-Studio/internal/generator"
	"github.com/slicken/TextFx-Studio/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// Global flags. Unset flags fall back to the environment (see internal/config).
var (
	catalogFlag   string
	modelFlag     string
	generatorFlag string
	historyFlag   string
	outputDirFlag string
	ownerFlag     string
	logLevelFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "textfx",
	Short: "Stylized typography images from a line of text",
	Long: `TextFx Studio turns a short text into a square typography image. Pick a
style, up to any number of effects, a background, and a creativity level;
TextFx compiles them into a prompt for the Gemini image model.

Examples:
  textfx generate HELLO --style neon-cyberpunk --effect glow --background cyber
  textfx generate "SALE" --random --save-dialog
  textfx interactive
  textfx serve --port 8080
  textfx mcp`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init()
		if logLevelFlag != "" {
			logging.InitLevel(logLevelFlag)
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&catalogFlag, "catalog", "", "Preset catalog: full, classic, or a JSON file path")
	pf.StringVarP(&modelFlag, "model", "m", "", "Gemini image model (default "+generator.DefaultModel+")")
	pf.StringVar(&generatorFlag, "generator", "", "Generator backend: sdk or rest")
	pf.StringVar(&historyFlag, "history", "", "History backend: memory, dynamo, or postgres")
	pf.StringVarP(&outputDirFlag, "output-dir", "o", "", "Directory for exported images")
	pf.StringVar(&ownerFlag, "owner", "local", "History owner for persistent backends")
	pf.StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(generateCmd, catalogCmd, historyCmd, serveCmd, mcpCmd, interactiveCmd, keyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies explicitly set flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrInvalid) {
		return cfg, err
	}
	overrides := []struct {
		flag string
		dst  *string
	}{
		{catalogFlag, &cfg.Catalog},
		{modelFlag, &cfg.ImageModel},
		{generatorFlag, &cfg.Generator},
		{historyFlag, &cfg.History},
		{outputDirFlag, &cfg.OutputDir},
	}
	for _, o := range overrides {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	return cfg, cfg.Validate()
}

// newApp builds the studio. Commands that never generate pass needKey false
// and get a REST generator without credentials.
func newApp(ctx context.Context, needKey bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var apiKey string
	if needKey {
		if apiKey, err = auth.GetAPIKey(); err != nil {
			return nil, err
		}
	} else {
		cfg.Generator = generator.BackendREST
	}

	a, err := app.New(ctx, cfg, apiKey)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("model", cfg.ImageModel).
		Str("generator", cfg.Generator).
		Str("history", cfg.History).
		Str("owner", ownerFlag).
		Msg("Studio ready")
	return a, nil
}

// userError prints a user-facing message and returns it as the command error.
func userError(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintln(os.Stderr, err)
	return err
}
