// Package main runs the voxchatter over-the-air scenario on a simulated
// channel and exits non-zero when any step fails.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter/testnet/internal"
)

func newRootCmd() *cobra.Command {
	cfg := internal.DefaultTestConfig()

	cmd := &cobra.Command{
		Use:          "voxchatter-testnet",
		Short:        "Run the voxchatter station scenario on a simulated channel",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := internal.NewTestOrchestrator(cfg)
			if err != nil {
				return fmt.Errorf("failed to create test orchestrator: %w", err)
			}
			if err := orchestrator.ValidateConfiguration(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			results, err := orchestrator.RunTests(cmd.Context())
			if results != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\n📊 Summary: %d steps, %d passed, %d failed (execution time: %v)\n",
					results.TotalTests, results.PassedTests, results.FailedTests, results.ExecutionTime)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.WorkDir, "work-dir", "", "directory for station keystores (default: a temporary directory)")
	flags.DurationVar(&cfg.OverallTimeout, "overall-timeout", cfg.OverallTimeout, "overall run timeout")
	flags.DurationVar(&cfg.MessageTimeout, "message-timeout", cfg.MessageTimeout, "how long to wait for each expected message")
	flags.DurationVar(&cfg.SilenceWait, "silence-wait", cfg.SilenceWait, "how long a station must stay quiet when no message is expected")
	flags.DurationVar(&cfg.EchoDebounce, "echo-debounce", cfg.EchoDebounce, "echo suppression window")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&cfg.LogFile, "log-file", "", "log file path (default: stdout)")
	flags.BoolVar(&cfg.VerboseOutput, "verbose", cfg.VerboseOutput, "log the configuration before running")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
