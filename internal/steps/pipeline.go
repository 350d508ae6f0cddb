package steps

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/telemetry"
)

// Pipeline — упорядоченные шаги одного subflake.
type Pipeline struct {
	Subflake string
	Steps    []Step
}

// Names возвращает имена шагов в порядке выполнения.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		names[i] = s.Name()
	}
	return names
}

// Only возвращает Pipeline из одного шага name.
// Возвращает ErrStepNotFound, если такого шага нет.
func (p *Pipeline) Only(name string) (*Pipeline, error) {
	for _, s := range p.Steps {
		if s.Name() == name {
			return &Pipeline{Subflake: p.Subflake, Steps: []Step{s}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in subflake %s", ErrStepNotFound, name, p.Subflake)
}

// Execute выполняет шаги по порядку.
//
// Первая ошибка прерывает выполнение и возвращается как *StepError.
func (p *Pipeline) Execute(ctx context.Context, req *Request) (*domain.StepsResult, error) {
	logger := telemetry.FromContext(ctx)
	res := &domain.StepsResult{}

	for _, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, &StepError{Step: step.Name(), Err: err}
		}

		stepLogger := telemetry.WithStep(logger, step.Name())
		stepCtx := telemetry.WithLogger(ctx, stepLogger)
		stepLogger.Debug("step started")

		start := time.Now()
		out, err := step.Execute(stepCtx, req)
		elapsed := time.Since(start)

		if req.Observer != nil {
			req.Observer.StepFinished(ctx, p.Subflake, step.Name(), elapsed, err)
		}

		if err != nil {
			var stepErr *StepError
			if !errors.As(err, &stepErr) {
				err = &StepError{Step: step.Name(), Err: err}
			}
			stepLogger.Error("step failed", "duration", elapsed, "error", err)
			return nil, err
		}

		if out == nil || out.Result == nil {
			stepLogger.Info("step skipped (cannot run on this system)")
			continue
		}

		res.Record(out.Result)
		stepLogger.Debug("step finished", "duration", elapsed)
	}

	return res, nil
}
