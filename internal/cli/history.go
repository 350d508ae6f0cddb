package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/exitcode"
	"github.com/shaiso/flakeci/internal/repo"
)

// HistoryReader читает историю прогонов.
type HistoryReader interface {
	List(ctx context.Context, filter repo.RunFilter) ([]repo.RunRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repo.RunRecord, error)
}

// HistoryOpener открывает историю по DSN. Возвращённая функция закрывает её.
type HistoryOpener func(ctx context.Context, dsn string) (HistoryReader, func(), error)

// OpenHistory открывает историю в Postgres.
func OpenHistory(ctx context.Context, dsn string) (HistoryReader, func(), error) {
	pool, err := repo.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return repo.NewRunRepo(pool), pool.Close, nil
}

// historyView — запись истории в JSON-выводе.
type historyView struct {
	ID         uuid.UUID         `json:"id"`
	Flake      domain.FlakeURL   `json:"flake"`
	Systems    []domain.System   `json:"systems"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Result     *domain.RunResult `json:"result,omitempty"`
}

func newHistoryView(rec repo.RunRecord) historyView {
	return historyView{
		ID:         rec.ID,
		Flake:      rec.Flake,
		Systems:    rec.Systems,
		Status:     rec.Status,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
		Result:     rec.Result,
	}
}

// NewHistoryCmd создаёт группу команд для истории прогонов.
func NewHistoryCmd(open HistoryOpener, outputFn func() *Output) *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored CI runs",
	}
	cmd.PersistentFlags().StringVar(&dsn, "results-db", os.Getenv(EnvResultsDB), "Postgres DSN with run history (env "+EnvResultsDB+")")

	withHistory := func(ctx context.Context, fn func(HistoryReader) error) error {
		if dsn == "" {
			return fmt.Errorf("%w: --results-db is required", exitcode.ErrUsage)
		}
		h, closeFn, err := open(ctx, dsn)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(h)
	}

	cmd.AddCommand(
		newHistoryListCmd(withHistory, outputFn),
		newHistoryShowCmd(withHistory, outputFn),
	)

	return cmd
}

type historyFn func(ctx context.Context, fn func(HistoryReader) error) error

func newHistoryListCmd(withHistory historyFn, outputFn func() *Output) *cobra.Command {
	var flake string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), func(h HistoryReader) error {
				runs, err := h.List(cmd.Context(), repo.RunFilter{Flake: domain.FlakeURL(flake), Limit: limit})
				if err != nil {
					return err
				}

				headers := []string{"ID", "FLAKE", "STATUS", "SYSTEMS", "STARTED", "DURATION"}
				rows := make([][]string, len(runs))
				views := make([]historyView, len(runs))
				for i, r := range runs {
					rows[i] = []string{
						r.ID.String(),
						r.Flake.String(),
						r.Status,
						joinSystems(r.Systems),
						r.StartedAt.Format(time.RFC3339),
						r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
					}
					views[i] = newHistoryView(r)
				}

				outputFn().Print(headers, rows, views)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flake, "flake", "", "Filter by flake ref")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results (default 20)")

	return cmd
}

func newHistoryShowCmd(withHistory historyFn, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("%w: invalid run ID %q: %w", exitcode.ErrUsage, args[0], err)
			}

			return withHistory(cmd.Context(), func(h HistoryReader) error {
				rec, err := h.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := outputFn()
				if out.jsonMode {
					out.JSON(newHistoryView(*rec))
					return nil
				}

				out.Table([]string{"FIELD", "VALUE"}, [][]string{
					{"ID", rec.ID.String()},
					{"FLAKE", rec.Flake.String()},
					{"STATUS", rec.Status},
					{"SYSTEMS", joinSystems(rec.Systems)},
					{"STARTED", rec.StartedAt.Format(time.RFC3339)},
					{"FINISHED", rec.FinishedAt.Format(time.RFC3339)},
					{"ERROR", orDash(rec.Error)},
				})
				if rec.Result != nil && len(rec.Result.Result) > 0 {
					fmt.Fprintln(out.w)
					out.Table([]string{"SUBFLAKE", "STEPS", "OUT_PATHS"}, SummaryRows(rec.Result))
				}
				return nil
			})
		},
	}
}

func joinSystems(systems []domain.System) string {
	if len(systems) == 0 {
		return "-"
	}
	parts := make([]string, len(systems))
	for i, s := range systems {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
