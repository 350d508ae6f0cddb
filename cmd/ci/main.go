// ci — CI для Nix flakes: lockfile, сборка всех выходов для каждой платформы,
// flake check и пользовательские шаги для flake и его subflakes.
//
// Использование:
//
//	ci [--verbose] [--log-format text|json] [--json] <command> [flags]
//
// Команды:
//
//	run      Прогон CI (локально или --on ssh-ng://host)
//	history  История прогонов в Postgres
//
// Коды завершения: 0 — успех, 1 — ошибка прогона, 2 — ошибка использования,
// 3 — окружение не прошло health check.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shaiso/flakeci/internal/cli"
	"github.com/shaiso/flakeci/internal/exitcode"
	"github.com/shaiso/flakeci/internal/nix"
	"github.com/shaiso/flakeci/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var verbose bool
	var logFormat string
	var jsonOutput bool
	logger := slog.Default()

	rootCmd := &cobra.Command{
		Use:           "ci",
		Short:         "ci — CI for Nix flakes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = telemetry.SetupLogger(os.Stderr, logFormat, verbose)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json (env LOG_FORMAT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", exitcode.ErrUsage, err)
	})

	serviceFn := func() *cli.Service {
		return cli.NewService(nix.NewCmd(nil, os.Stderr, logger), os.Stdout, logger)
	}
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewRunCmd(serviceFn, outputFn),
		cli.NewHistoryCmd(cli.OpenHistory, outputFn),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		exitcode.Exit(err)
	}
}
