package main

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/adapters/mcp"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server for the backend",
	Long: `Exposes compile-line, compile, execute and node processing as MCP tools
so AI agents can drive the backend.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup(cmd)
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		session, err := cli.NewSession(cfg, logger, domain.LifecycleHooks{})
		if err != nil {
			fail(err)
		}
		defer session.Close()
		srv := mcp.NewServer(session, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// stdout carries the protocol, so nothing else may print there.
			err = srv.ServeStdio()
		case "sse":
			ctx, stop := cli.NotifyContext(context.Background())
			defer stop()
			addr := fmt.Sprintf(":%d", port)
			err = srv.ServeSSE(ctx, addr, fmt.Sprintf("http://localhost:%d", port))
		default:
			err = fmt.Errorf("unknown transport %q (use stdio or sse)", transport)
		}
		if err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "Port for the sse transport")
}
