package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/engine"
	"github.com/shaiso/flakeci/internal/telemetry"
)

// Orchestrator выполняет план CI.
//
// Orchestrator:
//   - Обходит subflakes плана в порядке Names()
//   - Пропускает не выбранные селектором и несовместимые с платформами
//   - Выполняет шаги остальных через Executor
//   - Прерывает прогон на первой ошибке
type Orchestrator struct {
	executor Executor
	observer Observer
	logger   *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	// Executor выполняет шаги subflake (обязателен).
	Executor Executor

	// Observer получает события прогона (опционален).
	Observer Observer

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	observer := cfg.Observer
	if observer == nil {
		observer = Observers(nil)
	}

	return &Orchestrator{
		executor: cfg.Executor,
		observer: observer,
		logger:   logger,
	}
}

// Run выполняет план для платформ systems.
//
// В результат попадают только subflakes, чей pipeline был выполнен.
// При ошибке результат не возвращается: ошибка — *SubflakeError
// с именем упавшего subflake.
func (o *Orchestrator) Run(ctx context.Context, args domain.StepsArgs, systems []domain.System, plan *engine.Plan) (*domain.RunResult, error) {
	start := time.Now()
	res, err := o.run(ctx, args, systems, plan)
	o.observer.RunFinished(ctx, time.Since(start), err)
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, args domain.StepsArgs, systems []domain.System, plan *engine.Plan) (*domain.RunResult, error) {
	res := domain.NewRunResult(plan.Flake, systems)

	for _, name := range plan.Subflakes.Names() {
		sub := plan.Subflakes[name]
		if sub == nil {
			sub = domain.DefaultSubflake(name)
		}

		if !plan.Selector.Matches(name) || sub.Skip {
			o.logger.Info("🍊 "+name+" skipped (deselected out)", "subflake", name)
			o.observer.SubflakeSkipped(ctx, name, SkipDeselected)
			continue
		}

		if !sub.CanRunOn(systems) {
			o.logger.Info("🍊 "+name+" skipped (cannot run on this system)", "subflake", name)
			o.observer.SubflakeSkipped(ctx, name, SkipIncompatible)
			continue
		}

		o.logger.Info("🍎 "+name, "subflake", name)
		o.observer.SubflakeStarted(ctx, name)

		subLogger := telemetry.WithSubflake(o.logger, name)
		subCtx := telemetry.WithLogger(ctx, subLogger)

		started := time.Now()
		stepsRes, err := o.executor.Execute(subCtx, jobFor(plan, sub, systems, args), o.observer)
		o.observer.SubflakeFinished(ctx, name, time.Since(started), err)
		if err != nil {
			return nil, &SubflakeError{Name: name, Err: err}
		}

		res.Result[name] = stepsRes
	}

	o.logger.Info("🥳 Success!")
	return res, nil
}
