package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/exitcode"
)

// Переменные окружения для приёмников прогона. Флаги имеют приоритет.
const (
	EnvResultsDB   = "FLAKECI_DB_URL"
	EnvEventsURL   = "FLAKECI_EVENTS_URL"
	EnvMetricsFile = "FLAKECI_METRICS_FILE"
)

// runFlags — флаги команды run.
type runFlags struct {
	on          string
	systems     string
	results     string
	includeDeps bool
	opts        Options
}

// NewRunCmd создаёт команду `ci run`.
func NewRunCmd(serviceFn func() *Service, outputFn func() *Output) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [flake-ref] [-- extra nix build args]",
		Short: "Run CI for a flake and its subflakes",
		Long: `Run CI for a flake: lockfile check, build of all outputs for every
requested system, flake check and custom steps, per subflake.

The flake ref may carry an attribute path: the first attribute selects the
configuration (default "default"), the next one a single subflake, the one
after that a single step of it.`,
		Example: `  ci run
  ci run --systems github:nix-systems/default-linux -o result.json .
  ci run --on ssh-ng://builder@mac.local .#default.dev
  ci run . -- --rebuild`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := buildRunSpec(f, args, cmd.ArgsLenAtDash())
			if err != nil {
				return err
			}

			res, err := serviceFn().Run(cmd.Context(), spec, f.opts)
			if err != nil {
				return err
			}
			outputFn().Summary(res)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.on, "on", "", "Remote store to run CI on (e.g. ssh-ng://user@host)")
	flags.StringVar(&f.systems, "systems", "", "Flake ref listing systems to build for (default: current system)")
	flags.StringVarP(&f.results, "results", "o", "", "Write the JSON results to this file (- for stdout)")
	flags.BoolVar(&f.includeDeps, "include-all-dependencies", false, "Include the full dependency closure of built outputs in the results")
	flags.StringVar(&f.opts.ResultsDB, "results-db", os.Getenv(EnvResultsDB), "Postgres DSN to store run history in (env "+EnvResultsDB+")")
	flags.StringVar(&f.opts.EventsURL, "events-url", os.Getenv(EnvEventsURL), "AMQP URL to publish run events to (env "+EnvEventsURL+")")
	flags.StringVar(&f.opts.MetricsFile, "metrics-file", os.Getenv(EnvMetricsFile), "Write Prometheus metrics to this file (env "+EnvMetricsFile+")")

	return cmd
}

// buildRunSpec собирает RunSpec из флагов и позиционных аргументов.
//
// dash — индекс первого аргумента после "--" или -1.
func buildRunSpec(f runFlags, args []string, dash int) (domain.RunSpec, error) {
	positional, extra := args, []string(nil)
	if dash >= 0 {
		positional, extra = args[:dash], args[dash:]
	}
	if len(positional) > 1 {
		return domain.RunSpec{}, fmt.Errorf("%w: expected at most one flake ref, got %d", exitcode.ErrUsage, len(positional))
	}

	spec := domain.RunSpec{
		Results: f.results,
		Steps: domain.StepsArgs{
			IncludeAllDependencies: f.includeDeps,
			ExtraBuildArgs:         extra,
		},
	}
	if len(positional) == 1 {
		spec.FlakeRef = domain.FlakeURL(positional[0])
	}

	if f.on != "" {
		uri, err := domain.ParseStoreURI(f.on)
		if err != nil {
			return domain.RunSpec{}, fmt.Errorf("%w: --on: %w", exitcode.ErrUsage, err)
		}
		spec.On = &uri
	}

	if f.systems != "" {
		ref := domain.FlakeURL(f.systems)
		spec.Systems = &ref
	}

	return spec, nil
}
