package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/app"
	"github.com/slicken/TextFx-Studio/internal/prompt"
	"github.com/slicken/TextFx-Studio/internal/session"
	"github.com/slicken/TextFx-Studio/internal/studio"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Edit a selection and generate images from a prompt",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		return repl(cmd.Context(), a, a.NewSession(ownerFlag), os.Stdin, os.Stdout)
	},
}

const replHelp = `Commands:
  text TEXT            set the text (max 30 characters)
  style KEY            pick a style preset
  custom-style TEXT    free-text style (empty to clear)
  effect KEY           toggle an effect preset
  custom-effect TEXT   free-text effect (empty to clear)
  bg KEY               pick a background preset
  custom-bg TEXT       free-text background (empty to clear)
  creativity N         1 (precise) to 5 (expressive)
  random               random style, background, and effects
  reset                restore defaults, keep the text
  show                 show the selection and prompt
  generate | g         generate an image
  history              list images from this session
  select ID            make a history image current
  export               export the current image
  catalog              list presets
  quit | q`

// repl runs the interactive loop until quit or EOF.
func repl(ctx context.Context, a *app.App, sess *session.Session, in io.Reader, out io.Writer) error {
	store := sess.Store()
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "TextFx Studio. Type 'help' for commands.")

	for {
		fmt.Fprint(out, "textfx> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		// Free-text arguments are kept verbatim after the separator space.
		cmd, raw, _ := strings.Cut(strings.TrimLeft(scanner.Text(), " \t"), " ")
		cmd, arg := strings.TrimSpace(cmd), strings.TrimSpace(raw)

		var err error
		switch cmd {
		case "":
			continue
		case "help", "?":
			fmt.Fprintln(out, replHelp)
		case "quit", "q", "exit":
			return nil
		case "text":
			cfg := store.SetText(raw)
			fmt.Fprintf(out, "text: %q\n", cfg.Text)
		case "style":
			_, err = store.SelectStyle(arg)
		case "custom-style":
			store.SetCustomStyle(raw)
		case "effect":
			var cfg studio.TextConfig
			if cfg, err = store.ToggleEffect(arg); err == nil {
				fmt.Fprintf(out, "effects: %v\n", cfg.Effects)
			}
		case "custom-effect":
			store.SetCustomEffect(raw)
		case "bg", "background":
			_, err = store.SelectBackground(arg)
		case "custom-bg", "custom-background":
			store.SetCustomBackground(raw)
		case "creativity":
			var level int
			if level, err = strconv.Atoi(arg); err == nil {
				_, err = store.SetCreativity(level)
			}
		case "random":
			store.Randomize()
			showSelection(out, store)
		case "reset":
			store.Reset()
			showSelection(out, store)
		case "show":
			showSelection(out, store)
		case "generate", "g":
			fmt.Fprintln(out, "Generating...")
			var id string
			if img, gerr := sess.Generate(ctx); gerr == nil {
				id = img.ID
			}
			showStatus(out, sess, id)
		case "history":
			err = listHistory(ctx, out, sess)
		case "select":
			if _, err = sess.Select(ctx, arg); err == nil {
				fmt.Fprintf(out, "current: %s\n", arg)
			}
		case "export":
			current := sess.Status().Current
			if current == nil {
				fmt.Fprintln(out, "Nothing to export yet.")
				break
			}
			var location string
			if location, err = save(ctx, a, current); err == nil {
				fmt.Fprintln(out, location)
			}
		case "catalog":
			printCatalog(store.Catalog())
		default:
			fmt.Fprintf(out, "unknown command %q, type 'help'\n", cmd)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func showSelection(out io.Writer, store *studio.Store) {
	cfg := store.Snapshot()
	fmt.Fprintf(out, "text=%q style=%s background=%s effects=%v creativity=%d\n",
		cfg.Text, studio.Resolve(cfg.Style, cfg.CustomStyle),
		studio.Resolve(cfg.Background, cfg.CustomBackground), cfg.Effects, cfg.Creativity)
	if p, err := prompt.Compile(cfg); err == nil {
		fmt.Fprintf(out, "prompt: %s\n", p)
	} else if !errors.Is(err, studio.ErrEmptyText) {
		fmt.Fprintf(out, "prompt error: %v\n", err)
	}
}

func showStatus(out io.Writer, sess *session.Session, id string) {
	st := sess.Status()
	if st.Notice != nil {
		fmt.Fprintln(out, st.Notice.Message)
		return
	}
	if st.State == session.Succeeded && id != "" {
		fmt.Fprintf(out, "generated %s (%d bytes). Type 'export' to save it.\n", id, len(st.Current.Data))
	}
}

func listHistory(ctx context.Context, out io.Writer, sess *session.Session) error {
	list, err := sess.History().List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No images yet.")
	}
	for _, img := range list {
		fmt.Fprintf(out, "  %s  %s  %q\n", img.ID, img.CreatedAt.Local().Format("15:04:05"), img.Text)
	}
	return nil
}
