package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/inicheck/internal/cli"
	"github.com/aretw0/inicheck/pkg/adapters/mcp"
	"github.com/aretw0/inicheck/pkg/observability"
	"github.com/aretw0/inicheck/pkg/schema"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the master schema to AI agents as an MCP server, with tools to
check a configuration and describe a schema item.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		logger, err := cli.NewLogger(opts)
		if err != nil {
			return err
		}
		master, err := schema.Load(opts.SchemaPath)
		if err != nil {
			return err
		}

		srv := mcp.NewServer(master,
			mcp.WithLogger(logger),
			mcp.WithHooks(observability.LogHooks(logger)),
		)

		switch transport {
		case "stdio":
			// Logs go to stderr; stdout carries JSON-RPC.
			logger.Info("starting inicheck MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("starting inicheck MCP server (sse)", "port", port)

			ctx := cli.NewSignalContext(context.Background())
			defer ctx.Cancel()

			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
