package main

import (
	"context"
	"errors"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay pushed compile-line events to the compiler",
	Long: `Subscribes to the push transport (SSE or Redis), sends each compile-line
event to the backend and prints the responses. Runs until interrupted.

With --admin-addr the admin API, Prometheus metrics and an SSE hub for
'weft push' are served alongside.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger := setup(cmd)

		if banner, _ := cmd.Flags().GetBool("banner"); banner {
			tui.PrintBanner(cmd.OutOrStdout(), weft.Version)
		}

		ctx, stop := cli.NotifyContext(context.Background())
		defer stop()

		err := cli.RunRelay(ctx, cli.RelayOptions{
			Config:    cfg,
			Logger:    logger,
			Presenter: newPresenter(cmd),
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(relayCmd)
	f := relayCmd.Flags()
	f.String("policy", "", "Response policy: all, latest or serial")
	f.String("push-transport", "", "Push transport: sse or redis")
	f.String("push-url", "", "SSE stream URL (default <base-url>/events)")
	f.String("redis-addr", "", "Redis address for the redis transport")
	f.String("channel", "", "Redis channel for the redis transport")
	f.String("event", "", "Event name that triggers a compile (default compile-line)")
	f.String("admin-addr", "", "Serve the admin API on this address, e.g. :8080")
	f.Bool("banner", false, "Print the banner on startup")
}
