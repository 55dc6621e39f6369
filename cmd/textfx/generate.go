package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/catalog"
	"github.com/slicken/TextFx-Studio/internal/export"
	"github.com/slicken/TextFx-Studio/internal/history"
	"github.com/slicken/TextFx-Studio/internal/prompt"
	"github.com/slicken/TextFx-Studio/internal/session"
	"github.com/slicken/TextFx-Studio/internal/studio"
)

var (
	styleFlag            string
	customStyleFlag      string
	effectFlags          []string
	customEffectFlag     string
	backgroundFlag       string
	customBackgroundFlag string
	creativityFlag       int
	randomFlag           bool
	dryRunFlag           bool
	saveDialogFlag       bool
	outFlag              string
)

var generateCmd = &cobra.Command{
	Use:   "generate TEXT",
	Short: "Generate one image and export it",
	Long: `Generate compiles the selection into a prompt, asks the image model for a
square image, and exports the result. By default the image is written to the
output directory (or uploaded when TEXTFX_EXPORT_BUCKET is set); --out writes
to an exact path and --save-dialog asks for one.`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&styleFlag, "style", "s", "", "Style preset key")
	f.StringVar(&customStyleFlag, "custom-style", "", "Free-text style (overrides --style)")
	f.StringSliceVarP(&effectFlags, "effect", "e", nil, "Effect preset key (repeatable)")
	f.StringVar(&customEffectFlag, "custom-effect", "", "Free-text effect appended after the presets")
	f.StringVarP(&backgroundFlag, "background", "b", "", "Background preset key")
	f.StringVar(&customBackgroundFlag, "custom-background", "", "Free-text background (overrides --background)")
	f.IntVarP(&creativityFlag, "creativity", "c", 0, "Creativity 1 (precise) to 5 (expressive)")
	f.BoolVar(&randomFlag, "random", false, "Pick a random style, background, and effects")
	f.BoolVar(&dryRunFlag, "dry-run", false, "Print the prompt without generating")
	f.BoolVar(&saveDialogFlag, "save-dialog", false, "Choose the output file in a native save dialog")
	f.StringVar(&outFlag, "out", "", "Write the image to this exact path")
}

func selectionFromFlags(args []string) studio.Selection {
	return studio.Selection{
		Text:             strings.Join(args, " "),
		Style:            styleFlag,
		CustomStyle:      customStyleFlag,
		Effects:          effectFlags,
		CustomEffect:     customEffectFlag,
		Background:       backgroundFlag,
		CustomBackground: customBackgroundFlag,
		Creativity:       creativityFlag,
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sel := selectionFromFlags(args)

	if dryRunFlag {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := catalog.Named(cfg.Catalog)
		if err != nil {
			return err
		}
		store := studio.NewStore(cat)
		if _, err := store.Apply(sel); err != nil {
			return err
		}
		if randomFlag {
			store.Randomize()
		}
		p, err := prompt.Compile(store.Snapshot())
		if err != nil {
			return describe(err)
		}
		fmt.Println(p)
		return nil
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sess := a.NewSession(ownerFlag)
	if _, err := sess.Store().Apply(sel); err != nil {
		return err
	}
	if randomFlag {
		cfg := sess.Store().Randomize()
		fmt.Printf("Random pick: style=%s background=%s effects=%v\n", cfg.Style, cfg.Background, cfg.Effects)
	}

	fmt.Println("Generating...")
	img, err := sess.Generate(ctx)
	if err != nil {
		return describe(err)
	}

	location, err := save(ctx, a, img)
	if err != nil {
		return err
	}
	fmt.Println(location)
	return nil
}

// describe turns session errors into the messages the studio shows users.
func describe(err error) error {
	switch {
	case errors.Is(err, studio.ErrEmptyText):
		return userError("%s", session.MessageEmptyText)
	case errors.Is(err, session.ErrGenerationFailed):
		log.Debug().Err(err).Msg("Generation failed")
		return userError("%s", session.MessageFailed)
	default:
		return err
	}
}

// save exports img according to --out and --save-dialog.
func save(ctx context.Context, a *app.App, img *history.GeneratedImage) (string, error) {
	switch {
	case outFlag != "":
		return outFlag, export.WriteTo(outFlag, img)
	case saveDialogFlag:
		path, err := export.DialogPath(export.FileName(time.Now(), img.Ext()))
		if errors.Is(err, export.ErrCanceled) {
			return "", userError("export canceled")
		}
		if err != nil {
			return "", err
		}
		return path, export.WriteTo(path, img)
	default:
		return a.Exporter.Export(ctx, img)
	}
}
