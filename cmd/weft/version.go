package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Weft",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "weft version %s\n", strings.TrimSpace(weft.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
