package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Send a node to the processing endpoint",
	Long: `Builds a node from flags, or loads one from a YAML or JSON file, and prints
the backend result.

  weft process --id n1 --type ML --param layers=3 --param activation=relu
  weft process --file node.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		node, err := nodeFromFlags(cmd)
		if err != nil {
			fail(err)
		}
		runCall(cmd, func(ctx context.Context, s *weft.Session) (domain.Output, error) {
			if err := s.Register(node); err != nil {
				return domain.Output{}, err
			}
			if _, err := s.Select(node.ID()); err != nil {
				return domain.Output{}, err
			}
			res, err := s.ProcessSelected(ctx)
			if err != nil {
				return domain.Output{}, err
			}
			return domain.Output{Source: "process " + node.ID(), Text: domain.FormatValue(res.Result)}, nil
		})
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringP("file", "f", "", "Node file (YAML or JSON)")
	processCmd.Flags().String("id", "", "Node ID")
	processCmd.Flags().String("type", domain.NodeTypeML, "Node type, e.g. ML or HTML")
	processCmd.Flags().StringArrayP("param", "p", nil, "Node parameter as key=value (repeatable)")
}

func nodeFromFlags(cmd *cobra.Command) (*domain.Node, error) {
	node := &domain.Node{}
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read node file: %w", err)
		}
		// JSON is valid YAML, so one decoder serves both.
		if err := yaml.Unmarshal(data, node); err != nil {
			return nil, fmt.Errorf("failed to parse node file: %w", err)
		}
	}

	if cmd.Flags().Changed("id") || node.NodeID == "" {
		node.NodeID, _ = cmd.Flags().GetString("id")
	}
	if cmd.Flags().Changed("type") || node.Type == "" {
		node.Type, _ = cmd.Flags().GetString("type")
	}
	params, _ := cmd.Flags().GetStringArray("param")
	for _, kv := range params {
		key, value, err := parseParam(kv)
		if err != nil {
			return nil, err
		}
		if node.Parameters == nil {
			node.Parameters = make(map[string]any)
		}
		node.Parameters[key] = value
	}

	if node.NodeID == "" {
		return nil, fmt.Errorf("node id is required (--id or id: in --file)")
	}
	return node, nil
}

// parseParam splits key=value and types the value as YAML would,
// so "3" is a number and "true" a bool.
func parseParam(kv string) (string, any, error) {
	key, raw, ok := strings.Cut(kv, "=")
	if !ok || key == "" {
		return "", nil, fmt.Errorf("invalid parameter %q, expected key=value", kv)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return key, raw, nil
	}
	return key, value, nil
}
