package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kpbrowse/kpcli/internal/mcp"
)

// mcpServerCmd starts the MCP server for AI coding assistant integration.
var mcpServerCmd = &cobra.Command{
	Use:   "mcp-server [database]",
	Short: "Start the MCP server for AI coding assistant integration",
	Long: `Start an MCP (Model Context Protocol) server over stdio that lets AI
agents browse the vault tree without ever receiving plaintext secrets.

Available tools:
  - entry_list:       list entries and groups under a group (paths only)
  - entry_fields:     list an entry's field names (no values)
  - entry_get_masked: get a masked field value (e.g. "****WXYZ")

Authentication:
  Set KPCLI_PASSWORD before starting the server. The variable is read once
  and immediately cleared from the environment.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(&mcp.ServerOptions{
			VaultPath: args[0],
			Program:   cfg.CLIProgram,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintln(os.Stderr, "kpcli MCP server listening on stdio")
		return server.Run(ctx)
	},
}
