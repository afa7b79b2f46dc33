package main

import (
	"context"
	"encoding/json"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
)

var executeCmd = &cobra.Command{
	Use:   "execute [data]",
	Short: "Run the backend pipeline",
	Long: `Posts {"data": ...} to the execute endpoint and prints the reply.
Data that parses as JSON is sent as JSON, anything else as a string. Reads stdin when no data is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := readInput(cmd, args)
		if err != nil {
			fail(err)
		}
		var data any = raw
		var parsed any
		if json.Unmarshal([]byte(raw), &parsed) == nil {
			data = parsed
		}
		runCall(cmd, func(ctx context.Context, s *weft.Session) (domain.Output, error) {
			res, err := s.Client().Execute(ctx, data)
			if err != nil {
				return domain.Output{}, err
			}
			return domain.Output{Source: "execute", Text: domain.FormatValue(res.Data)}, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(executeCmd)
}
