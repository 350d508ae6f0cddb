package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/flakeci/internal/config"
	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/engine"
	"github.com/shaiso/flakeci/internal/health"
	"github.com/shaiso/flakeci/internal/nix"
	"github.com/shaiso/flakeci/internal/orchestrator"
	"github.com/shaiso/flakeci/internal/remote"
	"github.com/shaiso/flakeci/internal/repo"
	"github.com/shaiso/flakeci/internal/report"
	"github.com/shaiso/flakeci/internal/steps"
	"github.com/shaiso/flakeci/internal/systems"
	"github.com/shaiso/flakeci/internal/telemetry"
)

// Service выполняет `ci run`: локально или через удалённый store.
type Service struct {
	// Nix запускает nix, ssh и сам ci.
	Nix *nix.Cmd

	// Stdout получает отчёт при --results -.
	Stdout io.Writer

	// Logger
	Logger *slog.Logger

	// Registry — виды шагов. nil — steps.DefaultRegistry.
	Registry *steps.Registry

	// History подменяет Postgres-историю (для тестов).
	History HistoryStore
}

// NewService создаёт Service.
func NewService(cmd *nix.Cmd, stdout io.Writer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{Nix: cmd, Stdout: stdout, Logger: logger}
}

// Run выполняет прогон по spec и записывает отчёт в spec.Results.
//
// Упавший прогон отчёт не пишет; история и метрики сохраняются в обоих случаях.
// Ошибка записи отчёта считается ошибкой прогона.
func (s *Service) Run(ctx context.Context, spec domain.RunSpec, opts Options) (*domain.RunResult, error) {
	spec.Preprocess()

	runID := uuid.New()
	logger := telemetry.WithRunID(s.Logger, runID.String())
	ctx = telemetry.WithLogger(ctx, logger)

	sk, err := openSinks(ctx, runID, spec.FlakeRef, opts, logger)
	if err != nil {
		return nil, err
	}
	defer sk.Close()
	if s.History != nil {
		sk.history = s.History
	}

	started := time.Now()
	var res *domain.RunResult
	switch t := spec.Transport().(type) {
	case domain.RemoteRun:
		res, err = s.runRemote(ctx, t, sk, logger)
	case domain.LocalRun:
		res, err = s.runLocal(ctx, t.Spec, sk, logger)
	}
	if err == nil {
		err = s.writeReport(res, spec.Results, logger)
	}
	finished := time.Now()

	var ran []domain.System
	if res != nil {
		ran = res.Systems
	}
	sk.record(ctx, repo.NewRunRecord(runID, spec.FlakeRef, ran, res, err, started, finished))
	if err != nil {
		return nil, err
	}
	return res, nil
}

// writeReport пишет отчёт в dest ("" — не писать, "-" — stdout).
func (s *Service) writeReport(res *domain.RunResult, dest string, logger *slog.Logger) error {
	if err := report.NewSink(s.Stdout).Write(res, dest); err != nil {
		return err
	}
	if dest != "" && dest != report.Stdout {
		logger.Info("Results written to " + dest)
	}
	return nil
}

func (s *Service) runRemote(ctx context.Context, run domain.RemoteRun, sk *sinks, logger *slog.Logger) (*domain.RunResult, error) {
	started := time.Now()
	sk.runStarted(ctx, nil)

	res, err := remote.NewDispatcher(s.Nix, logger).Dispatch(ctx, run)
	sk.runFinished(ctx, time.Since(started), err)
	return res, err
}

func (s *Service) runLocal(ctx context.Context, spec domain.RunSpec, sk *sinks, logger *slog.Logger) (*domain.RunResult, error) {
	started := time.Now()
	fail := func(err error) (*domain.RunResult, error) {
		sk.runFinished(ctx, time.Since(started), err)
		return nil, err
	}

	logger.Info("👟 Gathering NixInfo")
	info, err := nix.GatherInfo(ctx, s.Nix)
	if err != nil {
		return fail(fmt.Errorf("gather nix info: %w", err))
	}

	cfg, err := config.Load(ctx, s.Nix, spec.FlakeRef)
	if err != nil {
		return fail(err)
	}

	logger.Info("🫀 Performing health check")
	hc, err := health.LoadConfig(cfg)
	if err != nil {
		return fail(err)
	}
	if err := health.Gate(ctx, logger, info, hc.Checks()); err != nil {
		return fail(err)
	}

	targets, err := systems.NewResolver(s.Nix, logger).Resolve(ctx, spec.Systems, info.Config.System)
	if err != nil {
		return fail(err)
	}

	proj, err := cfg.ProjectCI()
	if err != nil {
		return fail(err)
	}
	plan, err := engine.NewPlan(proj)
	if err != nil {
		return fail(err)
	}

	sk.runStarted(ctx, targets)
	logger.Info(fmt.Sprintf("🤖 Running CI for %s", plan.Flake), "systems", targets)

	orch := orchestrator.New(orchestrator.Config{
		Executor: orchestrator.NewStepsExecutor(s.Registry, s.Nix),
		Observer: sk.observers(),
		Logger:   logger,
	})
	return orch.Run(ctx, spec.Steps, targets, plan)
}
