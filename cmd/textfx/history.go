package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/export"
	"github.com/slicken/TextFx-Studio/internal/history"
)

var bundleOutFlag string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List images generated by --owner (persistent history backends only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.HistoryFor(ownerFlag).List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No images yet.")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tTEXT")
		for _, img := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", img.ID, img.CreatedAt.Local().Format(time.DateTime), img.Text)
		}
		return tw.Flush()
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export one image from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		img, err := a.HistoryFor(ownerFlag).Get(ctx, args[0])
		if err != nil {
			return err
		}
		if img == nil {
			return fmt.Errorf("%w: %s", history.ErrNotFound, args[0])
		}
		location, err := save(ctx, a, img)
		if err != nil {
			return err
		}
		fmt.Println(location)
		return nil
	},
}

var historyBundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Write the whole history to a ZIP archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.HistoryFor(ownerFlag).List(ctx)
		if err != nil {
			return err
		}
		path := bundleOutFlag
		if path == "" {
			path = fmt.Sprintf("%shistory-%d.zip", export.FilePrefix, time.Now().UnixMilli())
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.Bundle(f, list); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("%s (%d images)\n", path, len(list))
		return nil
	},
}

func init() {
	historyBundleCmd.Flags().StringVar(&bundleOutFlag, "out", "", "Archive path (default textfx-history-<ms>.zip)")
	historyExportCmd.Flags().StringVar(&outFlag, "out", "", "Write the image to this exact path")
	historyExportCmd.Flags().BoolVar(&saveDialogFlag, "save-dialog", false, "Choose the output file in a native save dialog")
	historyCmd.AddCommand(historyExportCmd, historyBundleCmd)
}
