package main

import (
	"context"
	"fmt"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push [code]",
	Short: "Publish a push event for running relays",
	Long: `Publishes one event on the push transport. With SSE the event is posted to
the admin hub of a 'weft relay --admin-addr' instance; with Redis it is
published on the channel. Reads stdin when no code is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _ := setup(cmd)
		data, err := readInput(cmd, args)
		if err != nil {
			fail(err)
		}
		id, _ := cmd.Flags().GetString("id")

		n, err := cli.Publish(context.Background(), cfg, redis.Envelope{ID: id, Event: cfg.Push.Event, Data: data})
		if err != nil {
			fail(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "delivered to %d subscriber(s)\n", n)
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	f := pushCmd.Flags()
	f.String("id", "", "Event ID")
	f.String("event", "", "Event name (default compile-line)")
	f.String("push-transport", "", "Push transport: sse or redis")
	f.String("push-url", "", "Hub URL (default <base-url>/events)")
	f.String("redis-addr", "", "Redis address for the redis transport")
	f.String("channel", "", "Redis channel for the redis transport")
}
