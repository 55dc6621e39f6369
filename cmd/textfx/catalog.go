package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/catalog"
)

var catalogJSONFlag bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List style, effect, and background presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		c, err := catalog.Named(cfg.Catalog)
		if err != nil {
			return err
		}
		if catalogJSONFlag {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(c)
		}
		printCatalog(c)
		return nil
	},
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogJSONFlag, "json", false, "Print the catalog as JSON")
}

func printCatalog(c *catalog.Catalog) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintf(tw, "STYLES (%s)\n", c.Name)
	for _, s := range c.Styles {
		fmt.Fprintf(tw, "  %s\t%s %s\t%s\n", s.Key, s.Icon, s.Label, s.Description)
	}
	fmt.Fprintln(tw, "\nEFFECTS")
	for _, e := range c.Effects {
		fmt.Fprintf(tw, "  %s\t%s\t\n", e.Key, e.Label)
	}
	fmt.Fprintln(tw, "\nBACKGROUNDS")
	for _, b := range c.Backgrounds {
		fmt.Fprintf(tw, "  %s\t%s\t\n", b.Key, b.Label)
	}
}
