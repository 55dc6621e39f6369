package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/slicken/TextFx-Studio/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the studio as MCP tools over stdio",
	Long: `mcp runs a Model Context Protocol server on stdin/stdout exposing
list_catalog, compile_prompt, and generate_text_image. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		return mcpserver.New(a, version).Run(ctx)
	},
}
