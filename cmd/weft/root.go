package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Weft is the client for a node-based code editor backend",
	Long: `Weft talks to a compute backend over JSON/HTTP: it processes nodes,
compiles single lines or whole programs, executes pipelines, and relays
server-pushed compile-line events to the compiler.

Settings come from weft.yaml, .env and WEFT_* variables; flags win.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default weft.yaml when present)")
	pf.String("base-url", "", "Backend base URL")
	pf.Duration("timeout", 0, "Per-request timeout, e.g. 10s (0 keeps the configured value)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
}

// setup loads configuration, applies flag overrides and builds the logger.
// It exits the process on invalid settings.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	if err := config.LoadDotEnv(".env"); err != nil {
		fail(err)
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		fail(err)
	}

	overrides := map[string]*string{
		"base-url":       &cfg.BaseURL,
		"log-level":      &cfg.Log.Level,
		"log-format":     &cfg.Log.Format,
		"push-transport": &cfg.Push.Transport,
		"push-url":       &cfg.Push.URL,
		"redis-addr":     &cfg.Push.RedisAddr,
		"channel":        &cfg.Push.Channel,
		"event":          &cfg.Push.Event,
		"policy":         &cfg.Relay.Policy,
		"admin-addr":     &cfg.Admin.Addr,
	}
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	return cfg, cli.NewLogger(cfg)
}

func newPresenter(cmd *cobra.Command) *tui.Presenter {
	return tui.NewPresenter(cmd.OutOrStdout(), tui.WithErrorWriter(cmd.ErrOrStderr()))
}

// readInput joins args, or reads stdin when there are none or the only arg is "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// runCall runs a one-shot backend call and surfaces its outcome. Failures
// have already been reported by the presenter or the logger, so the process
// just exits non-zero.
func runCall(cmd *cobra.Command, call func(ctx context.Context, s *weft.Session) (domain.Output, error)) {
	cfg, logger := setup(cmd)
	s, err := cli.NewSession(cfg, logger, domain.LifecycleHooks{})
	if err != nil {
		fail(err)
	}
	err = presentCall(cmd, s, logger, call)
	s.Close()
	if err != nil {
		os.Exit(1)
	}
}

// presentCall performs call against s and hands the outcome to client.Surface,
// which reports each failure exactly once.
func presentCall(cmd *cobra.Command, s *weft.Session, logger *slog.Logger, call func(ctx context.Context, s *weft.Session) (domain.Output, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := call(ctx, s)
	return cli.Present(ctx, newPresenter(cmd), logger, out, err)
}

// readSource reads the file named by args[0], or stdin.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		return readInput(cmd, nil)
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(b), nil
}
