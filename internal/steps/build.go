package steps

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shaiso/flakeci/internal/domain"
	"github.com/shaiso/flakeci/internal/nix"
	"github.com/shaiso/flakeci/internal/systems"
	"github.com/shaiso/flakeci/internal/telemetry"
)

// DevourFlake — flake, собирающий все outputs другого flake одной derivation.
const DevourFlake domain.FlakeURL = "github:srid/devour-flake"

// BuildKind — сборка всех outputs flake.
type BuildKind struct{}

// Name возвращает "build".
func (BuildKind) Name() string { return "build" }

// Steps возвращает BuildStep, если шаг включён.
func (BuildKind) Steps(sub *domain.Subflake) []Step {
	if !sub.Steps.Build.Enable {
		return nil
	}
	return []Step{NewBuildStep(sub.Steps.Build)}
}

// devourOutput — содержимое файла, который собирает devour-flake.
type devourOutput struct {
	OutPaths []string          `json:"outPaths"`
	ByName   map[string]string `json:"byName"`
}

// BuildStep собирает flake через devour-flake отдельно для каждой платформы.
type BuildStep struct {
	cfg domain.BuildStepConfig

	// readFile читает вывод devour-flake из store.
	readFile func(string) ([]byte, error)
}

// NewBuildStep создаёт BuildStep.
func NewBuildStep(cfg domain.BuildStepConfig) *BuildStep {
	return &BuildStep{cfg: cfg, readFile: os.ReadFile}
}

// Name возвращает имя шага.
func (s *BuildStep) Name() string { return "build" }

// Execute собирает flake для каждой платформы прогона.
//
// Ошибка сборки для платформы прерывает шаг и возвращается как *StepError с System.
func (s *BuildStep) Execute(ctx context.Context, req *Request) (*Outcome, error) {
	logger := telemetry.FromContext(ctx)
	res := &domain.BuildResult{
		BySystem: make(map[domain.System][]string, len(req.Systems)),
	}

	var all []string
	for _, sys := range req.Systems {
		logger.Info("building", "system", sys.String(), "flake", req.URL().String())

		paths, err := s.buildFor(ctx, req, sys)
		if err != nil {
			return nil, &StepError{Step: s.Name(), System: sys, Err: err}
		}
		res.BySystem[sys] = paths
		all = append(all, paths...)
	}
	res.OutPaths = nix.SortedUnique(all)

	if req.Args.IncludeAllDependencies {
		deps, err := nix.Requisites(ctx, req.Nix, res.OutPaths...)
		if err != nil {
			return nil, fmt.Errorf("query requisites: %w", err)
		}
		res.AllDeps = deps
	}

	return NewOutcome(res), nil
}

func (s *BuildStep) buildFor(ctx context.Context, req *Request, sys domain.System) ([]string, error) {
	args := []string{
		DevourFlake.String(), "-L",
		"--override-input", "flake", req.URL().String(),
		"--override-input", "systems", systems.FlakeRef(sys).String(),
	}
	args = append(args, req.OverrideArgs("flake/")...)
	if s.cfg.Impure {
		args = append(args, "--impure")
	}
	args = append(args, req.Args.ExtraBuildArgs...)

	outs, err := nix.Build(ctx, req.Nix, args...)
	if err != nil {
		return nil, err
	}
	if len(outs) != 1 {
		return nil, fmt.Errorf("%w: expected one devour-flake output, got %d", ErrInvalidOutput, len(outs))
	}

	data, err := s.readFile(outs[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidOutput, outs[0], err)
	}

	var out devourOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidOutput, outs[0], err)
	}
	return nix.SortedUnique(out.OutPaths), nil
}
