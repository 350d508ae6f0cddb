package orchestrator

import (
	"context"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/engine"
	"github.com/shaiso/flakeci/internal/nix"
	"github.com/shaiso/flakeci/internal/steps"
)

// Job — задание на выполнение шагов одного subflake.
type Job struct {
	Subflake *domain.Subflake
	Flake    domain.FlakeURL
	Systems  []domain.System
	Args     domain.StepsArgs

	// Step — если задан, выполняется только этот шаг.
	Step string
}

// Executor выполняет шаги одного subflake.
type Executor interface {
	Execute(ctx context.Context, job Job, observer Observer) (*domain.StepsResult, error)
}

// StepsExecutor выполняет subflake через steps.Pipeline.
type StepsExecutor struct {
	registry *steps.Registry
	nix      *nix.Cmd
}

// NewStepsExecutor создаёт StepsExecutor. registry == nil — DefaultRegistry.
func NewStepsExecutor(registry *steps.Registry, cmd *nix.Cmd) *StepsExecutor {
	if registry == nil {
		registry = steps.DefaultRegistry()
	}
	return &StepsExecutor{registry: registry, nix: cmd}
}

// Execute строит pipeline subflake и выполняет его.
func (e *StepsExecutor) Execute(ctx context.Context, job Job, observer Observer) (*domain.StepsResult, error) {
	pipeline := e.registry.Plan(job.Subflake)
	if job.Step != "" {
		only, err := pipeline.Only(job.Step)
		if err != nil {
			return nil, err
		}
		pipeline = only
	}

	req := &steps.Request{
		Subflake: job.Subflake,
		Flake:    job.Flake,
		Systems:  job.Systems,
		Args:     job.Args,
		Nix:      e.nix,
	}
	if observer != nil {
		req.Observer = observer
	}
	return pipeline.Execute(ctx, req)
}

// compile-time check
var _ Executor = (*StepsExecutor)(nil)

// jobFor строит Job для subflake плана.
func jobFor(plan *engine.Plan, sub *domain.Subflake, systems []domain.System, args domain.StepsArgs) Job {
	job := Job{
		Subflake: sub,
		Flake:    plan.Flake,
		Systems:  systems,
		Args:     args,
	}
	if plan.Selector.Subflake == sub.Name {
		job.Step = plan.Selector.Step
	}
	return job
}
